package usecase

import (
	"context"
	"errors"
	"time"

	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/domain/ports/repository"
	"lexa-chat/internal/infra/logging"
	"lexa-chat/internal/state"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

type SessionUseCase interface {
	// RestoreSession seeds the API client with the persisted session cookie.
	RestoreSession(ctx context.Context)
	// ValidateSession never surfaces a failure: an invalid session is the
	// logged-out state. It reports whether the user is authenticated.
	ValidateSession(ctx context.Context) bool
	Login(ctx context.Context, creds adapter.Credentials) (*model.User, error)
	Register(ctx context.Context, reg adapter.Registration) (*model.User, error)
	SetUser(ctx context.Context, user *model.User)
	// Logout clears the local session even when the server call fails; the
	// failure is still returned.
	Logout(ctx context.Context) error
}

// TokenExpiryFunc reports whether a session token is known to be expired.
type TokenExpiryFunc func(token string, now time.Time) bool

type sessionUC struct {
	fx      *Effects
	api     adapter.ChatAPI
	tokens  repository.SessionTokenRepository
	expired TokenExpiryFunc
	log     *zerolog.Logger
	devMode bool
}

func NewSessionUseCase(fx *Effects, api adapter.ChatAPI, tokens repository.SessionTokenRepository, expired TokenExpiryFunc, logger *zerolog.Logger, devMode bool) *sessionUC {
	if expired == nil {
		expired = func(string, time.Time) bool { return false }
	}
	return &sessionUC{fx: fx, api: api, tokens: tokens, expired: expired, log: logger, devMode: devMode}
}

func (s *sessionUC) RestoreSession(ctx context.Context) {
	tok, err := s.tokens.LoadSessionToken(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn().Err(err).Msg("failed to load session token")
		}
		return
	}
	s.api.SetSessionToken(tok)
}

func (s *sessionUC) ValidateSession(ctx context.Context) bool {
	defer logging.TraceDuration(s.log, "SessionUC.ValidateSession")()

	s.fx.store.Dispatch(state.SessionValidationStarted{})

	if tok := s.api.SessionToken(); tok != "" && s.expired(tok, time.Now()) {
		s.log.Debug().Msg("session token expired locally; skipping validation")
		s.forgetToken(ctx)
		s.fx.Dispatch(ctx, state.SessionInvalidated{})
		return false
	}

	user, err := s.api.ValidateSession(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("session not valid")
		if errors.Is(err, domain.ErrUnauthorized) {
			s.forgetToken(ctx)
		}
		s.fx.Dispatch(ctx, state.SessionInvalidated{})
		return false
	}

	s.fx.Dispatch(ctx, state.SessionValidated{User: user})
	s.saveToken(ctx)
	logging.With(logging.WithUserID(ctx, user.ID), s.log).Debug().Msg("session valid")
	return true
}

func (s *sessionUC) Login(ctx context.Context, creds adapter.Credentials) (*model.User, error) {
	defer logging.TraceDuration(s.log, "SessionUC.Login")()

	s.fx.store.Dispatch(state.AuthStarted{})
	user, err := s.api.Login(ctx, creds)
	if err != nil {
		s.log.Info().Err(err).Str("email", logging.Redact(creds.Email, s.devMode)).Msg("login failed")
		s.fx.store.Dispatch(state.AuthFailed{Message: authFailureText(err)})
		return nil, err
	}
	s.SetUser(ctx, user)
	return user, nil
}

func (s *sessionUC) Register(ctx context.Context, reg adapter.Registration) (*model.User, error) {
	defer logging.TraceDuration(s.log, "SessionUC.Register")()

	s.fx.store.Dispatch(state.AuthStarted{})
	user, err := s.api.Register(ctx, reg)
	if err != nil {
		s.log.Info().Err(err).Str("email", logging.Redact(reg.Email, s.devMode)).Msg("registration failed")
		s.fx.store.Dispatch(state.AuthFailed{Message: authFailureText(err)})
		return nil, err
	}
	s.SetUser(ctx, user)
	return user, nil
}

func (s *sessionUC) SetUser(ctx context.Context, user *model.User) {
	s.fx.Dispatch(ctx, state.UserSet{User: user})
	if !user.IsZero() {
		s.saveToken(ctx)
	}
}

func (s *sessionUC) Logout(ctx context.Context) error {
	defer logging.TraceDuration(s.log, "SessionUC.Logout")()

	err := s.api.Logout(ctx)
	s.forgetToken(ctx)
	s.fx.Dispatch(ctx, state.LoggedOut{})
	if err != nil {
		s.log.Warn().Err(err).Msg("server logout failed; signed out locally")
		s.fx.raise("Logout did not reach the server; signed out locally", err)
		return err
	}
	return nil
}

func (s *sessionUC) saveToken(ctx context.Context) {
	tok := s.api.SessionToken()
	if tok == "" {
		return
	}
	if err := s.tokens.SaveSessionToken(ctx, tok); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist session token")
	}
}

func (s *sessionUC) forgetToken(ctx context.Context) {
	s.api.SetSessionToken("")
	if err := s.tokens.ClearSessionToken(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear session token")
	}
}

func authFailureText(err error) string {
	var sm serverMessager
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "Invalid email or password"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "Please check the form and try again"
	}
	return "Unable to reach the server"
}
