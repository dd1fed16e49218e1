//go:build !integration

package state

import (
	"sync"
	"testing"
	"time"

	"lexa-chat/internal/domain/model"

	"github.com/rs/zerolog"
)

func newTestStore() *Store {
	logger := zerolog.Nop()
	return NewStore(&logger)
}

func TestStore_DispatchReturnsBothStates(t *testing.T) {
	st := newTestStore()
	prev, next := st.Dispatch(UserSet{User: &model.User{ID: "u1"}})
	if prev.Session.Authenticated {
		t.Error("expected prev to be anonymous")
	}
	if !next.Session.Authenticated || !st.State().Session.Authenticated {
		t.Error("expected next and stored state to be authenticated")
	}
}

func TestStore_SubscribeSignalsChanges(t *testing.T) {
	st := newTestStore()
	ch, cancel := st.Subscribe()
	defer cancel()

	st.Dispatch(NoticeRaised{Message: "a"})
	st.Dispatch(NoticeRaised{Message: "b"})

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a change signal")
	}
	if got := st.State().Notice; got != "b" {
		t.Errorf("expected latest notice, got %q", got)
	}

	cancel()
	st.Dispatch(NoticeDismissed{})
	select {
	case <-ch:
		t.Fatal("unexpected signal after cancel")
	default:
	}
}

func TestStore_ConcurrentSendsStartOnce(t *testing.T) {
	st := newTestStore()
	st.Dispatch(UserSet{User: &model.User{ID: "u1"}})
	st.Dispatch(ChatsLoaded{Chats: []model.Chat{{ID: "c"}}})
	st.Dispatch(ChatSelected{ChatID: "c"})

	const K = 16
	var wg sync.WaitGroup
	wg.Add(K)
	for i := 0; i < K; i++ {
		go func() {
			defer wg.Done()
			st.Dispatch(SendStarted{ChatID: "c", Message: model.NewUserMessage("hi")})
		}()
	}
	wg.Wait()

	s := st.State()
	if s.Channel.SendSeq != 1 || len(s.Active.Messages) != 1 {
		t.Fatalf("expected exactly one send to start, got seq=%d msgs=%d", s.Channel.SendSeq, len(s.Active.Messages))
	}
}
