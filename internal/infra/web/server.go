// Package web serves the client's local debug endpoints: health, Prometheus
// metrics and a redacted snapshot of the state container.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lexa-chat/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// StateSource is satisfied by *state.Store.
type StateSource interface {
	State() state.State
}

type Server struct {
	src    StateSource
	dev    bool
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(port int, src StateSource, dev bool, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "DebugServer").Logger()
	s := &Server{src: src, dev: dev, log: &l}
	s.server = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the chi router; exposed for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log), Timeout(10*time.Second))
	r.Get("/healthz", healthHandler())
	r.Get("/debug/state", stateHandler(s.src, s.dev))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.server.Addr).Msg("debug server listening")
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errc
		return nil
	}
}
