package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"lexa-chat/internal/config"
	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/infra/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var _ adapter.RealtimeDialer = (*Dialer)(nil)

// TokenSource yields the current session cookie value.
type TokenSource func() string

// Dialer opens one websocket per chat. The session cookie is replayed on
// the handshake so the server can authenticate the socket.
type Dialer struct {
	cfg        config.RealtimeConfig
	cookieName string
	token      TokenSource
	ws         *websocket.Dialer
	log        *zerolog.Logger
}

func NewDialer(cfg config.RealtimeConfig, cookieName string, token TokenSource, logger *zerolog.Logger) *Dialer {
	l := logger.With().Str("component", "RealtimeDialer").Logger()
	return &Dialer{
		cfg:        cfg,
		cookieName: cookieName,
		token:      token,
		ws: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		log: &l,
	}
}

// Dial connects and starts the channel's read loop. It returns once the
// socket is open; later drops are retried internally and reported through
// h.OnPhase.
func (d *Dialer) Dial(ctx context.Context, chatID string, h adapter.ChannelHandler) (adapter.RealtimeChannel, error) {
	conn, err := d.connect(ctx, chatID)
	if err != nil {
		metrics.IncRealtimeEvent("dial", "error")
		return nil, err
	}
	metrics.IncRealtimeEvent("dial", "ok")
	return startChannel(d, chatID, conn, h), nil
}

func (d *Dialer) connect(ctx context.Context, chatID string) (*websocket.Conn, error) {
	target, err := d.endpoint(chatID)
	if err != nil {
		return nil, err
	}
	hdr := http.Header{}
	if tok := d.token(); tok != "" {
		hdr.Set("Cookie", (&http.Cookie{Name: d.cookieName, Value: tok}).String())
	}

	conn, resp, err := d.ws.DialContext(ctx, target, hdr)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: status %d: %w", chatID, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", chatID, err)
	}
	if d.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(d.cfg.MaxMessageSize)
	}
	d.log.Debug().Str("chat_id", chatID).Msg("websocket connected")
	return conn, nil
}

func (d *Dialer) endpoint(chatID string) (string, error) {
	u, err := url.Parse(d.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("realtime url: %w", err)
	}
	q := u.Query()
	q.Set("chatId", chatID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
