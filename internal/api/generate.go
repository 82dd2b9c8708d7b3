// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultGenerateURL is the code generation endpoint.
const DefaultGenerateURL = "http://localhost:8000/generate_code"

// NoOutput is what a reply says when the service returned neither code nor result.
const NoOutput = "No output."

// Turn is one role-tagged message of generation context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generation is the service's answer. It sets Code or Result.
type Generation struct {
	Code   string `json:"code"`
	Result string `json:"result"`
}

// Output returns Code, else Result, else NoOutput.
func (g Generation) Output() string {
	if strings.TrimSpace(g.Code) != "" {
		return g.Code
	}
	if strings.TrimSpace(g.Result) != "" {
		return g.Result
	}
	return NoOutput
}

// Generator calls the generation service. It shares the plumbing of Client
// but posts to a single absolute URL.
type Generator struct {
	client *Client
}

// NewGenerator creates a generator for the given endpoint URL.
func NewGenerator(endpoint string) *Generator {
	return &Generator{client: NewClient(endpoint)}
}

// WithTimeout sets the per-request timeout.
func (g *Generator) WithTimeout(d time.Duration) *Generator {
	g.client.WithTimeout(d)
	return g
}

// WithToken forwards the session token, when there is one.
func (g *Generator) WithToken(src TokenSource) *Generator {
	g.client.WithToken(src)
	return g
}

// WithLogger sets the logger.
func (g *Generator) WithLogger(log *zap.Logger) *Generator {
	g.client.WithLogger(log)
	return g
}

// Generate sends a conversation and returns the service's reply.
func (g *Generator) Generate(ctx context.Context, turns []Turn) (Generation, error) {
	var out Generation
	err := g.client.Post(ctx, "", map[string]interface{}{"messages": turns}, &out)
	return out, err
}

// GenerateFromPrompt sends a single prompt with an explicit target language.
func (g *Generator) GenerateFromPrompt(ctx context.Context, prompt, language string) (Generation, error) {
	var out Generation
	err := g.client.Post(ctx, "", map[string]string{"prompt": prompt, "language": language}, &out)
	return out, err
}
