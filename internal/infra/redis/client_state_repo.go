package redis

import (
	"context"
	"errors"
	"fmt"

	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/ports/repository"
	"lexa-chat/internal/infra/metrics"

	"github.com/go-redis/redis/v8"
)

var _ repository.ClientStateRepository = (*ClientStateRepo)(nil)

// ClientStateRepo keeps the client's persisted keys in Redis, namespaced by
// profile so several clients can share one server.
type ClientStateRepo struct {
	client  RedisClient
	profile string
}

func NewClientStateRepo(client RedisClient, profile string) *ClientStateRepo {
	return &ClientStateRepo{client: client, profile: profile}
}

func (r *ClientStateRepo) activeChatKey() string {
	return fmt.Sprintf("lexa:%s:active_chat", r.profile)
}

func (r *ClientStateRepo) sessionTokenKey() string {
	return fmt.Sprintf("lexa:%s:session_token", r.profile)
}

func (r *ClientStateRepo) LoadActiveChat(ctx context.Context) (string, error) {
	return r.load(ctx, "load_active_chat", r.activeChatKey())
}

func (r *ClientStateRepo) SaveActiveChat(ctx context.Context, chatID string) error {
	return r.save(ctx, "save_active_chat", r.activeChatKey(), chatID)
}

func (r *ClientStateRepo) ClearActiveChat(ctx context.Context) error {
	return r.clear(ctx, "clear_active_chat", r.activeChatKey())
}

func (r *ClientStateRepo) LoadSessionToken(ctx context.Context) (string, error) {
	return r.load(ctx, "load_session_token", r.sessionTokenKey())
}

func (r *ClientStateRepo) SaveSessionToken(ctx context.Context, token string) error {
	return r.save(ctx, "save_session_token", r.sessionTokenKey(), token)
}

func (r *ClientStateRepo) ClearSessionToken(ctx context.Context) error {
	return r.clear(ctx, "clear_session_token", r.sessionTokenKey())
}

func (r *ClientStateRepo) Close() error { return r.client.Close() }

func (r *ClientStateRepo) load(ctx context.Context, op, key string) (string, error) {
	v, err := r.client.Get(ctx, key)
	switch {
	case errors.Is(err, redis.Nil):
		metrics.IncClientStateRequest("redis", op, "miss")
		return "", domain.ErrNotFound
	case err != nil:
		metrics.IncClientStateRequest("redis", op, "error")
		return "", err
	case v == "":
		metrics.IncClientStateRequest("redis", op, "miss")
		return "", domain.ErrNotFound
	}
	metrics.IncClientStateRequest("redis", op, "ok")
	return v, nil
}

func (r *ClientStateRepo) save(ctx context.Context, op, key, value string) error {
	if value == "" {
		return r.clear(ctx, op, key)
	}
	if err := r.client.Set(ctx, key, value, 0); err != nil {
		metrics.IncClientStateRequest("redis", op, "error")
		return err
	}
	metrics.IncClientStateRequest("redis", op, "ok")
	return nil
}

func (r *ClientStateRepo) clear(ctx context.Context, op, key string) error {
	if err := r.client.Del(ctx, key); err != nil {
		metrics.IncClientStateRequest("redis", op, "error")
		return err
	}
	metrics.IncClientStateRequest("redis", op, "ok")
	return nil
}
