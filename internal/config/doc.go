// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for copypaste.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, validation and live reload.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (COPYPASTE_*)
//   - ~/.copypaste/config.toml
//   - ~/.copypaste/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClient(cfg.API.BaseURL).WithTimeout(cfg.Timeout())
//
// Watch for edits while the TUI is running:
//
//	w, _ := config.NewWatcher(path, func(c *config.Config) { ... }, nil)
//	go w.Run(ctx)
package config
