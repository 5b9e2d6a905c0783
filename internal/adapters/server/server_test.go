package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nixster/internal/adapters/server"
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
	"golang.org/x/net/websocket"
)

const (
	secret      = "test-secret"
	containerID = "0123456789ab"
)

type opened struct {
	env  string
	opts domain.SessionOptions
}

type fakeSessions struct {
	mu      sync.Mutex
	opened  []opened
	openErr error
	running bool
	session *fakeSession
}

func (f *fakeSessions) Open(env string, opts domain.SessionOptions) (server.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, opened{env: env, opts: opts})
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.session, nil
}

func (f *fakeSessions) ContainerIsRunning(_ context.Context, id string) (bool, error) {
	if err := domain.ValidateContainerID(id); err != nil {
		return false, err
	}
	return f.running, nil
}

func (f *fakeSessions) last() opened {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened[len(f.opened)-1]
}

type fakeSession struct {
	mu        sync.Mutex
	startID   string
	output    string
	err       error
	stopped   bool
	command   string
	daemonize bool
}

// echo greets and then echoes every message back until the client goes away.
func echo(in io.Reader, out io.Writer) error {
	if _, err := io.WriteString(out, "ready"); err != nil {
		return err
	}
	buf := make([]byte, 512)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return nil
		}
		if _, err := out.Write(bytes.ToUpper(buf[:n])); err != nil {
			return nil
		}
	}
}

func (f *fakeSession) Run(_ context.Context, in io.Reader, out io.Writer, _ bool) error {
	return echo(in, out)
}

func (f *fakeSession) Attach(_ context.Context, in io.Reader, out io.Writer, _ bool) error {
	return echo(in, out)
}

func (f *fakeSession) Start(context.Context) (string, error) { return f.startID, f.err }

func (f *fakeSession) Execute(_ context.Context, command string, daemonize bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.command, f.daemonize = command, daemonize
	return f.output, f.err
}

func (f *fakeSession) Stop(context.Context) (bool, error) { return f.stopped, f.err }

func newServer(t *testing.T, sessions *fakeSessions) *httptest.Server {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(gomock.Any()).AnyTimes()
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	srv := httptest.NewServer(server.New(sessions, logger, secret).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func token(t *testing.T, cid string) string {
	t.Helper()
	tok, err := server.SignToken(secret, server.Claims{ContainerID: cid})
	require.NoError(t, err)
	return tok
}

func post(t *testing.T, srv *httptest.Server, path, tok, body string) (int, map[string]string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = res.Body.Close() }()

	var decoded map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&decoded))
	return res.StatusCode, decoded
}

func TestAuthentication(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeSessions{session: &fakeSession{startID: containerID}})

	status, body := post(t, srv, "/start", "", `{"environmentId":"science"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No authorization token was found.", body["error"])

	forged, err := server.SignToken("other-secret", server.Claims{})
	require.NoError(t, err)
	status, _ = post(t, srv, "/start", forged, `{"environmentId":"science"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	status, _ = post(t, srv, "/start", unsigned, `{"environmentId":"science"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTokenFromQuery(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeSessions{session: &fakeSession{startID: containerID}})

	status, body := post(t, srv, "/start?token="+token(t, ""), "", `{"environmentId":"science"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, containerID, body["containerId"])
}

func TestStart(t *testing.T) {
	t.Parallel()
	sessions := &fakeSessions{session: &fakeSession{startID: containerID}}
	srv := newServer(t, sessions)

	status, body := post(t, srv, "/start", token(t, ""), `{"environmentId":"science","command":"sleep 60"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]string{"containerId": containerID}, body)

	last := sessions.last()
	assert.Equal(t, "science", last.env)
	assert.Equal(t, domain.PlatformDocker, *last.opts.Platform)
	assert.Equal(t, "sleep 60", last.opts.Command)
}

func TestStart_Rejections(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeSessions{session: &fakeSession{startID: containerID}})

	status, body := post(t, srv, "/start", token(t, containerID), `{"environmentId":"science"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Attempted to use a token that already has a container ID.", body["error"])

	status, body = post(t, srv, "/start", token(t, ""), `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing parameter(s) in body: environmentId.", body["error"])

	status, body = post(t, srv, "/start", token(t, ""), `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Valid JSON body was not found.", body["error"])
}

func TestExecute(t *testing.T) {
	t.Parallel()
	session := &fakeSession{output: "Linux\n"}
	sessions := &fakeSessions{session: session}
	srv := newServer(t, sessions)

	status, body := post(t, srv, "/execute", token(t, containerID),
		`{"environmentId":"science","containerId":"`+containerID+`","command":"uname","daemonize":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Linux\n", body["output"])
	session.mu.Lock()
	assert.Equal(t, "uname", session.command)
	assert.True(t, session.daemonize)
	session.mu.Unlock()
	assert.Equal(t, containerID, sessions.last().opts.ContainerID)
}

func TestExecute_Rejections(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeSessions{session: &fakeSession{}})

	status, body := post(t, srv, "/execute", token(t, containerID), `{"containerId":""}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing parameter(s) in body: environmentId, containerId, command.", body["error"])

	status, body = post(t, srv, "/execute", token(t, "ba9876543210"),
		`{"environmentId":"science","containerId":"`+containerID+`","command":"uname"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Container ID in token does not match expected.", body["error"])

	status, _ = post(t, srv, "/execute", token(t, ""),
		`{"environmentId":"science","containerId":"`+containerID+`","command":"uname"}`)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestErrorsAreGeneric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", zerr.Wrap(domain.ErrEnvironmentNotFound, "read"), http.StatusNotFound, "Environment not found."},
		{"not built", zerr.Wrap(domain.ErrNotBuilt, "load"), http.StatusConflict, "Environment is not built."},
		{"not running", zerr.Wrap(domain.ErrNotRunning, "check"), http.StatusBadRequest, "Container is not running."},
		{
			"command failed",
			zerr.With(zerr.Wrap(domain.ErrCommandFailed, "docker"), "stderr", "permission denied on /var/run/docker.sock"),
			http.StatusInternalServerError,
			"Internal server error.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newServer(t, &fakeSessions{session: &fakeSession{err: tt.err}})

			status, body := post(t, srv, "/execute", token(t, containerID),
				`{"environmentId":"science","containerId":"`+containerID+`","command":"uname"}`)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, map[string]string{"error": tt.msg}, body)
		})
	}
}

func TestStop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		running bool
		stopped bool
		err     error
		status  int
		body    map[string]string
	}{
		{
			name:    "stopped",
			running: true,
			stopped: true,
			status:  http.StatusOK,
			body:    map[string]string{"message": "Container " + containerID + " stopped."},
		},
		{
			name:   "not running",
			status: http.StatusBadRequest,
			body:   map[string]string{"error": "Container " + containerID + " is not running."},
		},
		{
			name:    "not stopped",
			running: true,
			status:  http.StatusInternalServerError,
			body:    map[string]string{"error": "Container " + containerID + " was not stopped."},
		},
		{
			name:    "stop failed",
			running: true,
			err:     zerr.Wrap(domain.ErrCommandFailed, "docker"),
			status:  http.StatusInternalServerError,
			body:    map[string]string{"error": "Container " + containerID + " was not stopped."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newServer(t, &fakeSessions{
				running: tt.running,
				session: &fakeSession{stopped: tt.stopped, err: tt.err},
			})

			status, body := post(t, srv, "/stop", token(t, containerID),
				`{"environmentId":"science","containerId":"`+containerID+`"}`)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestStop_Rejections(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeSessions{session: &fakeSession{}})

	status, body := post(t, srv, "/stop", token(t, containerID), `{"environmentId":"science"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing parameter(s) in body: containerId.", body["error"])

	status, _ = post(t, srv, "/stop", token(t, "bad id"), `{"environmentId":"science","containerId":"bad id"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	ws, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readMessage(t *testing.T, ws *websocket.Conn) string {
	t.Helper()
	var msg []byte
	require.NoError(t, websocket.Message.Receive(ws, &msg))
	return string(msg)
}

func TestShell(t *testing.T) {
	t.Parallel()
	sessions := &fakeSessions{session: &fakeSession{}}
	srv := newServer(t, sessions)

	ws := dial(t, srv, "/shell?token="+token(t, ""))
	assert.Equal(t, "ready", readMessage(t, ws))

	require.NoError(t, websocket.Message.Send(ws, []byte("ls")))
	assert.Equal(t, "LS", readMessage(t, ws))

	last := sessions.last()
	assert.Equal(t, domain.DefaultEnvironmentName, last.env)
	assert.Equal(t, domain.PlatformUnix, *last.opts.Platform)
}

func TestShell_Platform(t *testing.T) {
	t.Parallel()
	sessions := &fakeSessions{session: &fakeSession{}}
	srv := newServer(t, sessions)

	ws := dial(t, srv, "/shell?environment=science&platform=docker&token="+token(t, ""))
	assert.Equal(t, "ready", readMessage(t, ws))

	last := sessions.last()
	assert.Equal(t, "science", last.env)
	assert.Equal(t, domain.PlatformDocker, *last.opts.Platform)
}

func TestShell_Rejections(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeSessions{session: &fakeSession{}})

	res, err := srv.Client().Get(srv.URL + "/shell?platform=amiga&token=" + token(t, ""))
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = srv.Client().Get(srv.URL + "/shell?token=" + token(t, containerID))
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestInteract(t *testing.T) {
	t.Parallel()
	sessions := &fakeSessions{session: &fakeSession{}}
	srv := newServer(t, sessions)

	ws := dial(t, srv, "/interact?environment=science&containerId="+containerID+"&token="+token(t, containerID))
	assert.Equal(t, "ready", readMessage(t, ws))

	last := sessions.last()
	assert.Equal(t, containerID, last.opts.ContainerID)
	assert.Equal(t, domain.PlatformDocker, *last.opts.Platform)
}

func TestInteract_Rejections(t *testing.T) {
	t.Parallel()
	srv := newServer(t, &fakeSessions{session: &fakeSession{}})

	res, err := srv.Client().Get(srv.URL + "/interact?token=" + token(t, containerID))
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, err = srv.Client().Get(srv.URL + "/interact?containerId=" + containerID + "&token=" + token(t, "ba9876543210"))
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestServeListener_StopsWithContext(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any())

	lis := httptest.NewUnstartedServer(nil).Listener
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.New(&fakeSessions{}, logger, secret).ServeListener(ctx, lis)
	}()

	cancel()
	require.NoError(t, <-done)
}
