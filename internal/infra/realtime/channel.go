package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/infra/metrics"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Channel is an open realtime connection scoped to one chat.
type Channel struct {
	d      *Dialer
	chatID string
	h      adapter.ChannelHandler
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	mu   sync.Mutex // guards conn and serialises writes
	conn *websocket.Conn

	now func() time.Time
}

func startChannel(d *Dialer, chatID string, conn *websocket.Conn, h adapter.ChannelHandler) *Channel {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Channel{
		d:      d,
		chatID: chatID,
		h:      h,
		log:    d.log.With().Str("chat_id", chatID).Logger(),
		ctx:    ctx,
		cancel: cancel,
		conn:   conn,
		now:    time.Now,
	}
	metrics.ChannelOpened()
	c.wg.Add(1)
	go c.run(conn)
	return c
}

func (c *Channel) ChatID() string { return c.chatID }

// Send writes one user_message frame. It fails with
// domain.ErrChannelUnavailable while the socket is down or reconnecting.
func (c *Channel) Send(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.ctx.Err() != nil {
		return domain.ErrChannelUnavailable
	}

	deadline := c.now().Add(c.d.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteJSON(newUserMessage(c.chatID, content, c.now())); err != nil {
		metrics.IncRealtimeEvent("out", "error")
		return fmt.Errorf("%w: %v", domain.ErrChannelUnavailable, err)
	}
	metrics.IncRealtimeEvent("out", "ok")
	return nil
}

// Close is idempotent and returns once every goroutine of the channel exited.
func (c *Channel) Close() error {
	var err error
	c.once.Do(func() {
		c.cancel()
		c.mu.Lock()
		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				c.now().Add(time.Second))
			err = c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()
		c.wg.Wait()
		metrics.ChannelClosed()
		c.log.Debug().Msg("channel closed")
	})
	return err
}

func (c *Channel) run(conn *websocket.Conn) {
	defer c.wg.Done()
	for {
		err := c.serve(conn)
		if c.ctx.Err() != nil {
			return
		}
		c.log.Warn().Err(err).Msg("websocket dropped")

		conn = c.reconnect()
		if conn == nil {
			c.h.OnPhase(c.chatID, model.ChannelDisconnected, err)
			return
		}
		c.h.OnPhase(c.chatID, model.ChannelConnected, nil)
	}
}

// serve pumps inbound frames until the socket fails.
func (c *Channel) serve(conn *websocket.Conn) error {
	stop := make(chan struct{})
	var pinger sync.WaitGroup
	pinger.Add(1)
	go func() {
		defer pinger.Done()
		c.ping(conn, stop)
	}()
	defer func() {
		close(stop)
		pinger.Wait()
	}()

	readTimeout := c.d.cfg.ReadTimeout
	if readTimeout > 0 {
		_ = conn.SetReadDeadline(c.now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(c.now().Add(readTimeout))
		})
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				_ = conn.Close()
				c.conn = nil
			}
			c.mu.Unlock()
			return err
		}
		if readTimeout > 0 {
			_ = conn.SetReadDeadline(c.now().Add(readTimeout))
		}
		c.handle(data)
	}
}

func (c *Channel) handle(data []byte) {
	env, err := decodeEnvelope(data)
	if err != nil {
		metrics.IncRealtimeEvent("in", "malformed")
		c.log.Warn().Err(err).Msg("malformed frame")
		return
	}
	switch env.Type {
	case TypeAIResponse:
		if env.ChatID == "" {
			metrics.IncRealtimeEvent("in", "dropped")
			c.log.Debug().Msg("dropping reply without chat id")
			return
		}
		metrics.IncRealtimeEvent("in", "ok")
		c.h.OnReply(adapter.Reply{ChatID: env.ChatID, Content: env.Content})
	case TypeError:
		metrics.IncRealtimeEvent("in", "server_error")
		c.log.Error().Str("code", env.Code).Str("message", env.Message).Msg("server reported error")
	default:
		metrics.IncRealtimeEvent("in", "ignored")
		c.log.Debug().Str("type", env.Type).Msg("ignoring frame")
	}
}

func (c *Channel) ping(conn *websocket.Conn, stop <-chan struct{}) {
	if c.d.cfg.PingInterval <= 0 {
		return
	}
	t := time.NewTicker(c.d.cfg.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-c.ctx.Done():
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, c.now().Add(c.d.cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

// reconnect retries with linear backoff and returns nil when attempts are
// exhausted or the channel was closed.
func (c *Channel) reconnect() *websocket.Conn {
	attempts := c.d.cfg.ReconnectAttempts
	for i := 1; i <= attempts; i++ {
		c.h.OnPhase(c.chatID, model.ChannelConnecting, nil)
		select {
		case <-c.ctx.Done():
			return nil
		case <-time.After(c.d.cfg.ReconnectBackoff * time.Duration(i)):
		}
		metrics.IncRealtimeReconnect()

		conn, err := c.d.connect(c.ctx, c.chatID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Warn().Err(err).Int("attempt", i).Msg("reconnect failed")
			continue
		}

		c.mu.Lock()
		if c.ctx.Err() != nil {
			c.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		c.conn = conn
		c.mu.Unlock()
		c.log.Info().Int("attempt", i).Msg("websocket reconnected")
		return conn
	}
	return nil
}
