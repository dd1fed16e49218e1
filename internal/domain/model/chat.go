package model

import (
	"strings"

	"lexa-chat/internal/domain"
)

// Chat is a conversation summary owned by the current user.
type Chat struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// NormalizeTitle trims a requested chat title and rejects blank ones.
func NormalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", domain.ErrInvalidArgument
	}
	return t, nil
}

// IndexOfChat returns the position of id in chats or -1.
func IndexOfChat(chats []Chat, id string) int {
	for i, c := range chats {
		if c.ID == id {
			return i
		}
	}
	return -1
}
