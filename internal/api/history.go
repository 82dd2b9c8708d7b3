// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"time"
)

// HistoryEntry is one recorded generation.
type HistoryEntry struct {
	ID        string    `json:"_id"`
	Query     string    `json:"query"`
	Result    string    `json:"result"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
}

type historyRequest struct {
	Query    string `json:"query"`
	Result   string `json:"result"`
	Language string `json:"language"`
}

// AppendHistory records a query/result pair.
func (c *Client) AppendHistory(ctx context.Context, query, result, language string) error {
	return c.Post(ctx, "/history", historyRequest{Query: query, Result: result, Language: language}, nil)
}

// ListHistory returns the account's history, newest first as the server
// orders it.
func (c *Client) ListHistory(ctx context.Context) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := c.Get(ctx, "/history", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
