// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/jeranaias/copypaste-tui/internal/model"
)

// threadRecord is a thread as the backend lists it. Older records carry
// "id" or "_id" instead of "chatId".
type threadRecord struct {
	ChatID   string          `json:"chatId"`
	ID       string          `json:"id"`
	MongoID  string          `json:"_id"`
	Title    string          `json:"title"`
	Messages []messageRecord `json:"messages"`
	Favorite bool            `json:"favorite"`
}

// messageRecord keeps the sender as sent so unknown names can be reported.
type messageRecord struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

func (r threadRecord) id() string {
	switch {
	case r.ChatID != "":
		return r.ChatID
	case r.ID != "":
		return r.ID
	default:
		return r.MongoID
	}
}

func (r threadRecord) toThread(log *zap.Logger) model.Thread {
	id := r.id()
	msgs := make([]model.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		sender, ok := model.ParseSender(m.Sender)
		if !ok {
			log.Warn("unknown message sender, reading as assistant",
				zap.String("thread", id), zap.String("sender", m.Sender))
		}
		msgs = append(msgs, model.Message{Sender: sender, Text: m.Text})
	}
	return model.Thread{ID: id, Title: r.Title, Messages: msgs, Favorite: r.Favorite}
}

// saveRequest is the upsert body for /chat/save.
type saveRequest struct {
	ChatID   string          `json:"chatId"`
	Title    string          `json:"title"`
	Messages []model.Message `json:"messages"`
	Favorite bool            `json:"favorite"`
}

// ListThreads returns every thread of the signed-in account, in server order.
// Records without any id are skipped, and a repeated id keeps its first
// record.
func (c *Client) ListThreads(ctx context.Context) ([]model.Thread, error) {
	var records []threadRecord
	if err := c.Get(ctx, "/chat/all", &records); err != nil {
		return nil, err
	}

	threads := make([]model.Thread, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		t := r.toThread(c.log)
		if t.ID == "" {
			continue
		}
		if _, dup := seen[t.ID]; dup {
			c.log.Warn("duplicate thread id in listing, keeping first", zap.String("thread", t.ID))
			continue
		}
		seen[t.ID] = struct{}{}
		threads = append(threads, t)
	}
	return threads, nil
}

// SaveThread upserts one thread by id. An empty title is sent as "Untitled".
func (c *Client) SaveThread(ctx context.Context, t model.Thread) error {
	title := t.Title
	if title == "" {
		title = "Untitled"
	}
	msgs := t.Messages
	if msgs == nil {
		msgs = []model.Message{}
	}
	return c.Post(ctx, "/chat/save", saveRequest{
		ChatID:   t.ID,
		Title:    title,
		Messages: msgs,
		Favorite: t.Favorite,
	}, nil)
}

// DeleteThread removes one thread by id.
func (c *Client) DeleteThread(ctx context.Context, id string) error {
	return c.Delete(ctx, "/chat/"+url.PathEscape(id), nil)
}
