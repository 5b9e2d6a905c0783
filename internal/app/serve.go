package app

import (
	"context"
	"net"
	"strconv"

	"go.trai.ch/nixster/internal/adapters/server" //nolint:depguard // Wired in app layer
	"go.trai.ch/nixster/internal/core/domain"
	"go.trai.ch/nixster/internal/engine/session"
)

// ServeOptions configuration for the Serve method. Zero values fall back to the
// settings.
type ServeOptions struct {
	Address string
	Port    int
}

// Serve exposes sessions over HTTP and websockets until ctx is done.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	secret, err := a.settings.Serve.TokenSecret()
	if err != nil {
		return err
	}
	if a.settings.Serve.Secret == "" {
		a.logger.Warn("serving with the development token secret")
	}

	address, port := opts.Address, opts.Port
	if address == "" {
		address = a.settings.Serve.Address
	}
	if port == 0 {
		port = a.settings.Serve.Port
	}

	srv := server.New(sessionOpener{a.sessions}, a.logger, secret)
	return srv.Serve(ctx, net.JoinHostPort(address, strconv.Itoa(port)))
}

// sessionOpener adapts the session manager to the server.
type sessionOpener struct {
	*session.Manager
}

func (o sessionOpener) Open(env string, opts domain.SessionOptions) (server.Session, error) {
	s, err := o.NewSession(env, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}
