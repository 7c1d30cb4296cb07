// Package mcp exposes atomic chess to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API and the JSON answer is rendered as text for the agent.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board with rank/file labels, side to move, status, FEN
//   - move: one move given as from/to squares
//   - bulk_move: several moves, stops at the first rejection
//   - reset_game, move_history
//   - list_configs: starting setups
//   - game_instructions: the rules as implemented
//   - describe_square: occupant and blast report for one square
//
// Transport Modes:
//   - Stdio: ServeStdio for local MCP clients
//   - HTTP: HTTPHandler, mounted at /mcp by the server command
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
