// Package filestore persists client state to a small JSON document on disk.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"lexa-chat/internal/domain"
	"lexa-chat/internal/domain/ports/repository"
	"lexa-chat/internal/infra/metrics"
)

var _ repository.ClientStateRepository = (*Store)(nil)

type profileState struct {
	ActiveChatID string `json:"activeChatId,omitempty"`
	SessionToken string `json:"sessionToken,omitempty"`
}

type document struct {
	Profiles map[string]profileState `json:"profiles"`
}

// Store keeps one document per file, keyed by profile. Writes replace the
// file atomically through a temp file and rename.
type Store struct {
	mu      sync.Mutex
	path    string
	profile string
}

func New(path, profile string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("filestore: empty path: %w", domain.ErrInvalidArgument)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("filestore: %w", err)
	}
	return &Store{path: path, profile: profile}, nil
}

func (s *Store) LoadActiveChat(ctx context.Context) (string, error) {
	return s.get(ctx, "load_active_chat", func(p profileState) string { return p.ActiveChatID })
}

func (s *Store) SaveActiveChat(ctx context.Context, chatID string) error {
	return s.update(ctx, "save_active_chat", func(p *profileState) { p.ActiveChatID = chatID })
}

func (s *Store) ClearActiveChat(ctx context.Context) error {
	return s.update(ctx, "clear_active_chat", func(p *profileState) { p.ActiveChatID = "" })
}

func (s *Store) LoadSessionToken(ctx context.Context) (string, error) {
	return s.get(ctx, "load_session_token", func(p profileState) string { return p.SessionToken })
}

func (s *Store) SaveSessionToken(ctx context.Context, token string) error {
	return s.update(ctx, "save_session_token", func(p *profileState) { p.SessionToken = token })
}

func (s *Store) ClearSessionToken(ctx context.Context) error {
	return s.update(ctx, "clear_session_token", func(p *profileState) { p.SessionToken = "" })
}

func (s *Store) Close() error { return nil }

func (s *Store) get(ctx context.Context, op string, pick func(profileState) string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		metrics.IncClientStateRequest("file", op, "error")
		return "", err
	}
	v := pick(doc.Profiles[s.profile])
	if v == "" {
		metrics.IncClientStateRequest("file", op, "miss")
		return "", domain.ErrNotFound
	}
	metrics.IncClientStateRequest("file", op, "ok")
	return v, nil
}

func (s *Store) update(ctx context.Context, op string, mutate func(*profileState)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		metrics.IncClientStateRequest("file", op, "error")
		return err
	}
	p := doc.Profiles[s.profile]
	mutate(&p)
	if p == (profileState{}) {
		delete(doc.Profiles, s.profile)
	} else {
		doc.Profiles[s.profile] = p
	}
	if err := s.write(doc); err != nil {
		metrics.IncClientStateRequest("file", op, "error")
		return err
	}
	metrics.IncClientStateRequest("file", op, "ok")
	return nil
}

// read treats a missing or corrupt file as empty so a damaged state file
// never blocks startup.
func (s *Store) read() (document, error) {
	doc := document{Profiles: map[string]profileState{}}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("filestore: read: %w", err)
	}
	if err := json.Unmarshal(b, &doc); err != nil || doc.Profiles == nil {
		return document{Profiles: map[string]profileState{}}, nil
	}
	return doc, nil
}

func (s *Store) write(doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("filestore: temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("filestore: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("filestore: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("filestore: rename: %w", err)
	}
	return nil
}
