// Package server exposes environment sessions over HTTP and websockets.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/core/ports"
	"go.trai.ch/zerr"
)

// Sessions opens sessions in environments.
type Sessions interface {
	Open(env string, opts domain.SessionOptions) (Session, error)
	ContainerIsRunning(ctx context.Context, id string) (bool, error)
}

// Session is one execution context opened by Sessions.
type Session interface {
	Run(ctx context.Context, in io.Reader, out io.Writer, interactive bool) error
	Attach(ctx context.Context, in io.Reader, out io.Writer, interactive bool) error
	Start(ctx context.Context) (string, error)
	Execute(ctx context.Context, command string, daemonize bool) (string, error)
	Stop(ctx context.Context) (bool, error)
}

const shutdownTimeout = 5 * time.Second

// Server serves shells, container attachment and container control to clients
// holding a signed token.
type Server struct {
	sessions Sessions
	logger   ports.Logger
	secret   []byte
	mux      *http.ServeMux
}

// New creates a Server that verifies tokens signed with secret.
func New(sessions Sessions, logger ports.Logger, secret string) *Server {
	s := &Server{
		sessions: sessions,
		logger:   logger,
		secret:   []byte(secret),
		mux:      http.NewServeMux(),
	}

	s.mux.Handle("GET /shell", s.authenticated(s.handleShell))
	s.mux.Handle("GET /interact", s.authenticated(s.handleInteract))
	s.mux.Handle("POST /start", s.authenticated(s.handleStart))
	s.mux.Handle("POST /execute", s.authenticated(s.handleExecute))
	s.mux.Handle("POST /stop", s.authenticated(s.handleStop))
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Serve accepts connections on addr until ctx is done. Open sessions end with ctx.
func (s *Server) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "address", addr)
	}
	return s.ServeListener(ctx, lis)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.logger.Info("serving on " + lis.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return zerr.Wrap(err, "failed to shut down server")
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, "server failed")
	}
}
