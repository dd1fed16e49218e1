package sched

import (
	"context"
	"time"

	"lexa-chat/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// SessionValidator is the slice of the session use case the refresher needs.
type SessionValidator interface {
	ValidateSession(ctx context.Context) bool
}

// SessionRefresher periodically revalidates an authenticated session so a
// session expired server-side moves the client to logged-out.
type SessionRefresher struct {
	interval      time.Duration
	session       SessionValidator
	authenticated func() bool
	log           *zerolog.Logger
}

func NewSessionRefresher(interval time.Duration, session SessionValidator, authenticated func() bool, logger *zerolog.Logger) *SessionRefresher {
	refLog := logger.With().Str("component", "SessionRefresher").Logger()
	return &SessionRefresher{
		interval:      interval,
		session:       session,
		authenticated: authenticated,
		log:           &refLog,
	}
}

// Run blocks until ctx is done. A non-positive interval disables it.
func (w *SessionRefresher) Run(ctx context.Context) error {
	if w.interval <= 0 {
		w.log.Debug().Msg("session refresh disabled")
		<-ctx.Done()
		return ctx.Err()
	}
	w.log.Info().Dur("interval", w.interval).Msg("Starting session refresher")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session refresher")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SessionRefresher) tick(ctx context.Context) {
	if !w.authenticated() {
		return
	}
	if w.session.ValidateSession(ctx) {
		metrics.IncSessionRefresh("valid")
		return
	}
	metrics.IncSessionRefresh("invalid")
	w.log.Info().Msg("session no longer valid; signed out")
}
