// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat threads to files.
//
// # Key Types
//
//   - Exporter: converts one thread to bytes
//   - Options: output directory and metadata toggle
//
// # Supported Formats
//
//   - Markdown: YAML frontmatter and one section per message
//   - JSON: the thread as the backend stores it
//   - YAML: the same record, for hand editing
//
// # Usage
//
//	exp, err := export.ForFormat("md", nil)
//	path, err := export.ToFile(thread, exp, nil)
package export
