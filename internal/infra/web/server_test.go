//go:build !integration

package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/infra/metrics"
	"lexa-chat/internal/state"

	"github.com/rs/zerolog"
)

func newTestServer(t *testing.T, dev bool) (*httptest.Server, *state.Store) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store := state.NewStore(&logger)
	srv := httptest.NewServer(NewServer(0, store, dev, &logger).Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, false)
	res, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if res.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected a request id header")
	}
}

func TestDebugStateIsRedacted(t *testing.T) {
	srv, store := newTestServer(t, false)
	store.Dispatch(state.UserSet{User: &model.User{ID: "u1", Email: "someone@example.com"}})
	store.Dispatch(state.ChatsLoaded{Chats: []model.Chat{{ID: "42", Title: "Secret plans"}}})
	store.Dispatch(state.ChatSelected{ChatID: "42"})
	store.Dispatch(state.UserMessageAppended{Message: model.NewUserMessage("private text")})

	res, err := http.Get(srv.URL + "/debug/state")
	if err != nil {
		t.Fatalf("GET /debug/state: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	for _, leak := range []string{"someone@example.com", "private text", "Secret plans"} {
		if strings.Contains(string(body), leak) {
			t.Fatalf("snapshot leaks %q: %s", leak, body)
		}
	}

	var snap stateSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !snap.Session.Authenticated || snap.Session.User != "some...om" {
		t.Fatalf("unexpected session %+v", snap.Session)
	}
	if snap.Chats.Count != 1 || snap.Active.ChatID != "42" || snap.Active.Messages != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Channel.Phase != string(model.ChannelDisconnected) {
		t.Fatalf("phase = %q", snap.Channel.Phase)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.MustRegister()
	srv, store := newTestServer(t, true)
	store.Dispatch(state.NoticeRaised{Message: "x"})

	res, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(body), "lexa_store_dispatches_total") {
		t.Fatalf("expected store metrics exported")
	}
}
