package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/net/websocket"
)

// response is the JSON body of every non-websocket reply.
type response struct {
	ContainerID string `json:"containerId,omitempty"`
	Output      string `json:"output,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

type startRequest struct {
	EnvironmentID string `json:"environmentId"`
	Command       string `json:"command"`
}

type executeRequest struct {
	EnvironmentID string `json:"environmentId"`
	ContainerID   string `json:"containerId"`
	Command       string `json:"command"`
	Daemonize     bool   `json:"daemonize"`
}

type stopRequest struct {
	EnvironmentID string `json:"environmentId"`
	ContainerID   string `json:"containerId"`
}

func sendJSON(w http.ResponseWriter, body response, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func sendError(w http.ResponseWriter, msg string, statusCode int) {
	sendJSON(w, response{Error: msg}, statusCode)
}

// fail logs err and replies with a generic message for its kind.
func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Error(err)
	switch {
	case errors.Is(err, domain.ErrMissingEnvironmentName),
		errors.Is(err, domain.ErrInvalidEnvironmentName),
		errors.Is(err, domain.ErrInvalidContainerID),
		errors.Is(err, domain.ErrUnknownPlatform):
		sendError(w, "Invalid request.", http.StatusBadRequest)
	case errors.Is(err, domain.ErrEnvironmentNotFound):
		sendError(w, "Environment not found.", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotBuilt):
		sendError(w, "Environment is not built.", http.StatusConflict)
	case errors.Is(err, domain.ErrNotRunning):
		sendError(w, "Container is not running.", http.StatusBadRequest)
	default:
		sendError(w, "Internal server error.", http.StatusInternalServerError)
	}
}

// decode reads a JSON body into v and checks that the named fields are set.
func decode[T any](w http.ResponseWriter, r *http.Request, v *T, fields func(*T) map[string]string, required ...string) bool {
	if r.Body == nil || json.NewDecoder(r.Body).Decode(v) != nil {
		sendError(w, "Valid JSON body was not found.", http.StatusBadRequest)
		return false
	}

	values := fields(v)
	var missing []string
	for _, name := range required {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sendError(w, fmt.Sprintf("Missing parameter(s) in body: %s.", strings.Join(missing, ", ")), http.StatusBadRequest)
		return false
	}
	return true
}

func environmentOrDefault(name string) string {
	if name == "" {
		return domain.DefaultEnvironmentName
	}
	return name
}

// handleShell bridges a websocket to a shell, on the host or in a container.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	if !correlate(w, r, "") {
		return
	}

	query := r.URL.Query()
	platform := domain.PlatformUnix
	if value := query.Get("platform"); value != "" {
		var err error
		if platform, err = domain.ParsePlatform(value); err != nil {
			s.fail(w, err)
			return
		}
	}

	session, err := s.sessions.Open(environmentOrDefault(query.Get("environment")), domain.SessionOptions{Platform: &platform})
	if err != nil {
		s.fail(w, err)
		return
	}

	s.upgrade(w, r, func(ws *websocket.Conn) error {
		return session.Run(r.Context(), ws, ws, false)
	})
}

// handleInteract bridges a websocket to the terminal of a running container.
func (s *Server) handleInteract(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	containerID := query.Get("containerId")
	if containerID == "" {
		sendError(w, "Missing parameter(s) in query: containerId.", http.StatusBadRequest)
		return
	}
	if !correlate(w, r, containerID) {
		return
	}

	platform := domain.PlatformDocker
	session, err := s.sessions.Open(environmentOrDefault(query.Get("environment")), domain.SessionOptions{
		Platform:    &platform,
		ContainerID: containerID,
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	s.upgrade(w, r, func(ws *websocket.Conn) error {
		return session.Attach(r.Context(), ws, ws, false)
	})
}

// upgrade switches the connection to a websocket carrying binary frames and runs
// fn on it.
func (s *Server) upgrade(w http.ResponseWriter, r *http.Request, fn func(*websocket.Conn) error) {
	websocket.Server{
		Handler: func(ws *websocket.Conn) {
			defer func() { _ = ws.Close() }()
			ws.PayloadType = websocket.BinaryFrame
			if err := fn(ws); err != nil {
				s.logger.Error(zerr.With(zerr.Wrap(err, "session ended"), "path", r.URL.Path))
			}
		},
	}.ServeHTTP(w, r)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if !correlate(w, r, "") {
		return
	}
	var req startRequest
	if !decode(w, r, &req, func(v *startRequest) map[string]string {
		return map[string]string{"environmentId": v.EnvironmentID}
	}, "environmentId") {
		return
	}

	platform := domain.PlatformDocker
	session, err := s.sessions.Open(req.EnvironmentID, domain.SessionOptions{Platform: &platform, Command: req.Command})
	if err != nil {
		s.fail(w, err)
		return
	}
	id, err := session.Start(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	sendJSON(w, response{ContainerID: id}, http.StatusOK)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if !decode(w, r, &req, func(v *executeRequest) map[string]string {
		return map[string]string{
			"environmentId": v.EnvironmentID,
			"containerId":   v.ContainerID,
			"command":       v.Command,
		}
	}, "environmentId", "containerId", "command") {
		return
	}
	if !correlate(w, r, req.ContainerID) {
		return
	}

	platform := domain.PlatformDocker
	session, err := s.sessions.Open(req.EnvironmentID, domain.SessionOptions{Platform: &platform, ContainerID: req.ContainerID})
	if err != nil {
		s.fail(w, err)
		return
	}
	output, err := session.Execute(r.Context(), req.Command, req.Daemonize)
	if err != nil {
		s.fail(w, err)
		return
	}
	sendJSON(w, response{Output: output}, http.StatusOK)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	var req stopRequest
	if !decode(w, r, &req, func(v *stopRequest) map[string]string {
		return map[string]string{"environmentId": v.EnvironmentID, "containerId": v.ContainerID}
	}, "environmentId", "containerId") {
		return
	}
	if !correlate(w, r, req.ContainerID) {
		return
	}

	running, err := s.sessions.ContainerIsRunning(r.Context(), req.ContainerID)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !running {
		sendError(w, fmt.Sprintf("Container %s is not running.", req.ContainerID), http.StatusBadRequest)
		return
	}

	platform := domain.PlatformDocker
	session, err := s.sessions.Open(req.EnvironmentID, domain.SessionOptions{Platform: &platform, ContainerID: req.ContainerID})
	if err != nil {
		s.fail(w, err)
		return
	}
	stopped, err := session.Stop(r.Context())
	if err != nil {
		s.logger.Error(err)
	}
	if err != nil || !stopped {
		sendError(w, fmt.Sprintf("Container %s was not stopped.", req.ContainerID), http.StatusInternalServerError)
		return
	}
	sendJSON(w, response{Message: fmt.Sprintf("Container %s stopped.", req.ContainerID)}, http.StatusOK)
}
