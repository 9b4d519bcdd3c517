// Package driving holds the ports the CLI, TUI, MCP and websocket adapters
// call into. internal/core/services implements them.
package driving
