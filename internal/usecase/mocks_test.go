// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
	"lexa-chat/internal/state"

	"github.com/rs/zerolog"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// fakeAPI is an in-memory ChatAPI. Errors are injected per operation.
type fakeAPI struct {
	mu      sync.Mutex
	user    *model.User
	token   string
	chats   []model.Chat
	history map[string][]adapter.HistoryRecord
	nextID  int

	// gates block ListMessages for a chat until the channel is closed
	gates map[string]chan struct{}

	validateErr error
	loginErr    error
	logoutErr   error
	listErr     error
	createErr   error
	deleteErr   error
	historyErr  error
	sendErr     error

	// reply is returned by SendMessage; nil echoes the content back
	reply       *string
	httpSent    []string
	logoutCalls int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		history: map[string][]adapter.HistoryRecord{},
		gates:   map[string]chan struct{}{},
		nextID:  100,
	}
}

func (f *fakeAPI) ValidateSession(ctx context.Context) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	if f.user == nil {
		return nil, domain.ErrUnauthorized
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeAPI) Login(ctx context.Context, creds adapter.Credentials) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.user = &model.User{ID: "u1", Email: creds.Email, FirstName: "Ada"}
	f.token = "tok-u1"
	cp := *f.user
	return &cp, nil
}

func (f *fakeAPI) Register(ctx context.Context, reg adapter.Registration) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.user = &model.User{ID: "u2", Email: reg.Email, FirstName: reg.FirstName, LastName: reg.LastName}
	f.token = "tok-u2"
	cp := *f.user
	return &cp, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.user = nil
	return nil
}

func (f *fakeAPI) ListChats(ctx context.Context) ([]model.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Chat, len(f.chats))
	copy(out, f.chats)
	return out, nil
}

func (f *fakeAPI) CreateChat(ctx context.Context, title string) (*model.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	c := model.Chat{ID: strconv.Itoa(f.nextID), Title: title}
	f.chats = append([]model.Chat{c}, f.chats...)
	return &c, nil
}

func (f *fakeAPI) DeleteChat(ctx context.Context, chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	i := model.IndexOfChat(f.chats, chatID)
	if i < 0 {
		return domain.ErrNotFound
	}
	f.chats = append(f.chats[:i:i], f.chats[i+1:]...)
	return nil
}

func (f *fakeAPI) ListMessages(ctx context.Context, chatID string) ([]adapter.HistoryRecord, error) {
	f.mu.Lock()
	gate := f.gates[chatID]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return append([]adapter.HistoryRecord(nil), f.history[chatID]...), nil
}

func (f *fakeAPI) SendMessage(ctx context.Context, chatID, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.httpSent = append(f.httpSent, chatID+":"+content)
	if f.reply != nil {
		return *f.reply, nil
	}
	return "echo: " + content, nil
}

func (f *fakeAPI) httpCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.httpSent)
}

func (f *fakeAPI) SessionToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAPI) SetSessionToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAPI) gate(chatID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[chatID] = g
	return g
}

// memClientState is an in-memory ClientStateRepository.
type memClientState struct {
	mu      sync.Mutex
	active  string
	token   string
	saveErr error
	writes  int
}

func (m *memClientState) LoadActiveChat(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == "" {
		return "", domain.ErrNotFound
	}
	return m.active, nil
}

func (m *memClientState) SaveActiveChat(ctx context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.writes++
	m.active = chatID
	return nil
}

func (m *memClientState) ClearActiveChat(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.active = ""
	return nil
}

func (m *memClientState) LoadSessionToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", domain.ErrNotFound
	}
	return m.token, nil
}

func (m *memClientState) SaveSessionToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memClientState) ClearSessionToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *memClientState) Close() error { return nil }

func (m *memClientState) activeChat() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// fakeSender records sends for the conversation use case.
type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	err   error
	block chan struct{}
}

func (s *fakeSender) Send(ctx context.Context, chatID, content string) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, chatID+":"+content)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// fakeDialer hands out fakeChannels and records the dial/close order.
type fakeDialer struct {
	mu      sync.Mutex
	events  []string
	open    map[string]*fakeChannel
	dialErr error
	dialed  chan string
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{open: map[string]*fakeChannel{}, dialed: make(chan string, 16)}
}

func (d *fakeDialer) Dial(ctx context.Context, chatID string, h adapter.ChannelHandler) (adapter.RealtimeChannel, error) {
	d.mu.Lock()
	if d.dialErr != nil {
		d.events = append(d.events, "fail:"+chatID)
		d.mu.Unlock()
		d.dialed <- chatID
		return nil, d.dialErr
	}
	for id := range d.open {
		d.mu.Unlock()
		return nil, fmt.Errorf("dial %s while %s still open", chatID, id)
	}
	ch := &fakeChannel{d: d, chatID: chatID, h: h}
	d.open[chatID] = ch
	d.events = append(d.events, "open:"+chatID)
	d.mu.Unlock()
	d.dialed <- chatID
	return ch, nil
}

func (d *fakeDialer) channel(chatID string) *fakeChannel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open[chatID]
}

func (d *fakeDialer) log() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

type fakeChannel struct {
	d      *fakeDialer
	chatID string
	h      adapter.ChannelHandler

	mu     sync.Mutex
	sent   []string
	closed bool
}

func (c *fakeChannel) ChatID() string { return c.chatID }

func (c *fakeChannel) Send(ctx context.Context, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrChannelUnavailable
	}
	c.sent = append(c.sent, content)
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.d.mu.Lock()
	delete(c.d.open, c.chatID)
	c.d.events = append(c.d.events, "close:"+c.chatID)
	c.d.mu.Unlock()
	return nil
}

func (c *fakeChannel) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

// harness wires the use cases over fakes the way the application does.
type harness struct {
	store   *state.Store
	api     *fakeAPI
	storage *memClientState
	sender  *fakeSender
	fx      *Effects
	session *sessionUC
	chats   *chatUC
	conv    *conversationUC
}

func newHarness() *harness {
	log := newTestLogger()
	h := &harness{
		store:   state.NewStore(log),
		api:     newFakeAPI(),
		storage: &memClientState{},
		sender:  &fakeSender{},
	}
	h.fx = NewEffects(h.store, h.api, h.storage, log)
	h.session = NewSessionUseCase(h.fx, h.api, h.storage, nil, log, true)
	h.chats = NewChatUseCase(h.fx, h.api, log)
	h.conv = NewConversationUseCase(h.fx, h.storage, h.sender, 0, log)
	return h
}

// signIn authenticates the harness user and loads chats.
func (h *harness) signIn(ctx context.Context, chats ...model.Chat) {
	h.api.mu.Lock()
	h.api.user = &model.User{ID: "u1", Email: "ada@example.com"}
	h.api.chats = append([]model.Chat(nil), chats...)
	h.api.mu.Unlock()
	h.session.ValidateSession(ctx)
	_, _ = h.chats.FetchChats(ctx)
}

// connect marks the realtime channel as connected for chatID, as the
// supervisor would.
func (h *harness) connect(chatID string) {
	h.store.Dispatch(state.ChannelPhaseChanged{ChatID: chatID, Phase: model.ChannelConnecting})
	h.store.Dispatch(state.ChannelPhaseChanged{ChatID: chatID, Phase: model.ChannelConnected})
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
