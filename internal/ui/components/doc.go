// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the rendering pieces of the TUI.

Components are plain render functions over model types and a styles.Theme.
They hold no state of their own; the chat model owns scrolling, focus and
selection.

# Components

MessageBubble (message.go) - one chat message, with fenced code rendered by CodeBlock.
CodeBlock (codeblock.go) - Chroma-highlighted code with a language badge and line numbers.
ThreadList (sidebar.go) - the thread sidebar with favorite stars and sync badges.
StatusBar (statusbar.go) - identity, quota and key hints.
*/
package components
