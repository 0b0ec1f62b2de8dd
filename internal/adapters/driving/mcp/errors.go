// Package mcp provides an MCP (Model Context Protocol) server adapter for dossier.
// It lets AI assistants run company research through the same agents as the CLI.
package mcp

import "errors"

// ErrMissingSessionPool is returned when no agent session pool is provided.
var ErrMissingSessionPool = errors.New("mcp: session pool is required")
