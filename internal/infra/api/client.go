// Package api is the resty-backed adapter for the remote chat HTTP API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"lexa-chat/internal/config"
	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/infra/metrics"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var _ adapter.ChatAPI = (*Client)(nil)

const requestIDHeader = "X-Request-ID"

// Error is a non-2xx answer from the API. It unwraps to the matching domain
// sentinel so callers can use errors.Is.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.Status)
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return domain.ErrInvalidArgument
	}
	return nil
}

// Client talks to the remote API. The session cookie lives in the client's
// cookie jar, exactly like a browser's credentials: "include".
type Client struct {
	http       *resty.Client
	jar        http.CookieJar
	base       *url.URL
	cookieName string
	log        *zerolog.Logger
}

func NewClient(apiCfg config.APIConfig, sessCfg config.SessionConfig, logger *zerolog.Logger) (*Client, error) {
	base, err := url.Parse(apiCfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	apiLog := logger.With().Str("component", "APIClient").Logger()

	rc := resty.New().
		SetBaseURL(apiCfg.BaseURL).
		SetTimeout(apiCfg.Timeout).
		SetCookieJar(jar).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(requestIDHeader) == "" {
			r.SetHeader(requestIDHeader, uuid.NewString())
		}
		return nil
	})

	return &Client{
		http:       rc,
		jar:        jar,
		base:       base,
		cookieName: sessCfg.CookieName,
		log:        &apiLog,
	}, nil
}

// SessionToken returns the session cookie value for the API host.
func (c *Client) SessionToken() string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/auth/profile"
	for _, ck := range c.jar.Cookies(&u) {
		if ck.Name == c.cookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionToken seeds (or with "" expires) the session cookie.
func (c *Client) SetSessionToken(token string) {
	ck := &http.Cookie{Name: c.cookieName, Value: token, Path: "/"}
	if token == "" {
		ck.MaxAge = -1
	}
	c.jar.SetCookies(c.base, []*http.Cookie{ck})
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do executes req and decodes a JSON 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	res, err := req.Execute(method, path)
	if err != nil {
		metrics.ObserveAPIRequest(op, 0, time.Since(start), false)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.ObserveAPIRequest(op, res.StatusCode(), time.Since(start), res.IsSuccess())

	if !res.IsSuccess() {
		apiErr := &Error{Op: op, Status: res.StatusCode()}
		var eb errorBody
		if json.Unmarshal(res.Body(), &eb) == nil {
			apiErr.Message = eb.Message
			if apiErr.Message == "" {
				apiErr.Message = eb.Error
			}
		}
		c.log.Debug().Str("op", op).Int("status", apiErr.Status).Str("request_id", res.Request.Header.Get(requestIDHeader)).Msg("api error")
		return apiErr
	}

	if out == nil || len(res.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// ServerMessage is the human-readable message from the response body.
func (e *Error) ServerMessage() string { return e.Message }
