// Package server hosts the TCP listener and the newline-delimited JSON
// protocol spoken on every accepted connection.
package server

import (
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/tunegrid/jukebox/internal/broadcast"
	"github.com/tunegrid/jukebox/internal/core/ports"
)

// Server accepts client connections and spawns one handler goroutine per
// connection. All handlers share the same domain services and broadcast
// registry.
type Server struct {
	addr     string
	accounts ports.AccountService
	catalog  ports.CatalogService
	registry *broadcast.Registry
	validate *payloadValidator
	log      zerolog.Logger

	lis net.Listener
}

func New(addr string, accounts ports.AccountService, catalog ports.CatalogService,
	registry *broadcast.Registry, log zerolog.Logger) *Server {
	return &Server{
		addr:     addr,
		accounts: accounts,
		catalog:  catalog,
		registry: registry,
		validate: newPayloadValidator(),
		log:      log,
	}
}

// Start binds the listener and begins accepting in a background goroutine.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.lis = lis
	s.log.Info().Str("addr", lis.Addr().String()).Msg("socket server listening")

	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.lis.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		h := newConnHandler(conn, s.accounts, s.catalog, s.registry, s.validate, s.log)
		go h.run()
	}
}

// Addr returns the bound listener address, useful when starting on port 0.
func (s *Server) Addr() net.Addr {
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

// Close stops accepting new connections. Existing connections run until
// their clients disconnect.
func (s *Server) Close() error {
	if s.lis == nil {
		return nil
	}
	return s.lis.Close()
}
