package security

import (
	"context"
	"fmt"

	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/ports/repository"
)

var _ repository.SessionTokenRepository = (*SealedTokenRepository)(nil)

// SealedTokenRepository keeps the session token encrypted in the underlying
// client state storage.
type SealedTokenRepository struct {
	inner  repository.SessionTokenRepository
	sealer *Sealer
}

func NewSealedTokenRepository(inner repository.SessionTokenRepository, sealer *Sealer) *SealedTokenRepository {
	return &SealedTokenRepository{inner: inner, sealer: sealer}
}

// LoadSessionToken reports an unreadable value (other key, tampered file) as
// domain.ErrNotFound: the client simply starts logged out.
func (r *SealedTokenRepository) LoadSessionToken(ctx context.Context) (string, error) {
	sealed, err := r.inner.LoadSessionToken(ctx)
	if err != nil {
		return "", err
	}
	token, err := r.sealer.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: stored session token: %v", domain.ErrNotFound, err)
	}
	return token, nil
}

func (r *SealedTokenRepository) SaveSessionToken(ctx context.Context, token string) error {
	if token == "" {
		return r.inner.ClearSessionToken(ctx)
	}
	sealed, err := r.sealer.Seal(token)
	if err != nil {
		return err
	}
	return r.inner.SaveSessionToken(ctx, sealed)
}

func (r *SealedTokenRepository) ClearSessionToken(ctx context.Context) error {
	return r.inner.ClearSessionToken(ctx)
}
