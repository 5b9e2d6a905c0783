package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.trai.ch/zerr"
)

// Claims are the token claims understood by the server.
type Claims struct {
	// ContainerID binds the token to one container. Tokens for opening shells and
	// starting containers carry none.
	ContainerID string `json:"cid,omitempty"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

// SignToken signs claims with secret using HS256.
func SignToken(secret string, claims Claims) (string, error) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", zerr.Wrap(err, "failed to sign token")
	}
	return token, nil
}

// bearer returns the token of r from the Authorization header, or else from the
// token query parameter used by websocket clients.
func bearer(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}

func (s *Server) verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, zerr.Wrap(err, "invalid token")
	}
	return claims, nil
}

// authenticated rejects requests without a valid token and passes the claims of
// valid ones to next.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearer(r)
		if raw == "" {
			sendError(w, "No authorization token was found.", http.StatusUnauthorized)
			return
		}
		claims, err := s.verify(raw)
		if err != nil {
			s.logger.Debug(err.Error())
			sendError(w, "Invalid authorization token.", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// correlate checks the container binding of the request token. An empty
// containerID requires a token without one.
func correlate(w http.ResponseWriter, r *http.Request, containerID string) bool {
	claims, _ := r.Context().Value(claimsKey{}).(*Claims)
	if claims == nil {
		sendError(w, "Invalid authorization token.", http.StatusUnauthorized)
		return false
	}
	switch {
	case containerID != "" && claims.ContainerID != containerID:
		sendError(w, "Container ID in token does not match expected.", http.StatusForbidden)
		return false
	case containerID == "" && claims.ContainerID != "":
		sendError(w, "Attempted to use a token that already has a container ID.", http.StatusForbidden)
		return false
	}
	return true
}
