package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"lexa-chat/internal/domain/model"
	"lexa-chat/internal/domain/ports/adapter"
)

// wireID accepts an identifier sent as either a JSON string or a JSON
// number. Database-backed servers commonly emit integer primary keys.
type wireID string

func (w *wireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*w = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*w = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id %s is neither a string nor a number", b)
	}
	*w = wireID(n.String())
	return nil
}

type wireUser struct {
	ID        wireID `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type wireChat struct {
	ID    wireID `json:"id"`
	Title string `json:"title"`
}

func (w wireChat) chat() model.Chat {
	return model.Chat{ID: string(w.ID), Title: w.Title}
}

type wireRecord struct {
	ID        wireID    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w wireRecord) record() adapter.HistoryRecord {
	return adapter.HistoryRecord{ID: string(w.ID), Content: w.Content, Role: w.Role, CreatedAt: w.CreatedAt}
}
