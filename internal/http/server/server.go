// Package server envuelve el http.Server con arranque y apagado ordenado.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
)

// Server corre el handler HTTP con timeouts de producción.
type Server struct {
	srv *http.Server
}

// New crea el server.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Run bloquea sirviendo hasta que ctx se cancele, y apaga con gracia.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening", logger.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.L().Info("http server shutting down")
	return s.srv.Shutdown(shutdownCtx)
}
