package api

import (
	"context"
	"fmt"
	"net/http"

	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
)

type userEnvelope struct {
	User *wireUser `json:"user"`
}

func (e userEnvelope) user(op string) (*model.User, error) {
	if e.User == nil {
		return nil, fmt.Errorf("%s: response carried no user", op)
	}
	u, err := model.NewUser(string(e.User.ID), e.User.Email, e.User.FirstName, e.User.LastName)
	if err != nil {
		return nil, fmt.Errorf("%s: malformed user: %w", op, err)
	}
	return u, nil
}

func (c *Client) ValidateSession(ctx context.Context) (*model.User, error) {
	var env userEnvelope
	if err := c.do(ctx, "validate_session", http.MethodGet, "/auth/profile", nil, &env); err != nil {
		return nil, err
	}
	return env.user("validate_session")
}

func (c *Client) Login(ctx context.Context, creds adapter.Credentials) (*model.User, error) {
	var env userEnvelope
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", creds, &env); err != nil {
		return nil, err
	}
	return env.user("login")
}

func (c *Client) Register(ctx context.Context, reg adapter.Registration) (*model.User, error) {
	var env userEnvelope
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", reg, &env); err != nil {
		return nil, err
	}
	return env.user("register")
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/auth/logout", struct{}{}, nil)
}
