// Package api provides the HTTP REST API for the atomic chess server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session, body {"config_id": "standard"}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Full game state as JSON
//   - GET /api/sessions/{id}/board - Plain text board, rank 8 first
//   - POST /api/sessions/{id}/move - {"from": "e2", "to": "e4", "reset": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": [{"from": "e2", "to": "e4"}], "reset": false}
//   - POST /api/sessions/{id}/reset - Restore the starting setup
//   - GET /api/sessions/{id}/history - Paginated history (?page=1&limit=20&order=desc)
//   - GET /api/sessions/{id}/squares/{square} - Occupant and blast report for a square
//
// Configuration:
//   - GET /api/configs - List starting setups
//   - GET /api/configs/{name} - Get one setup
//   - POST /api/configs - Save a setup
//
// Other:
//   - GET /ws?session={id} - WebSocket state updates, then capture/explosion/king_destroyed/victory events
//   - /mcp - MCP over streamable HTTP, when mounted
//   - GET /health - {"status": "healthy", "watched_sessions": n}
//
// A rejected move is not an HTTP error: the move endpoints answer 200 with
// success=false and a reason_code such as "path_blocked" or "wrong_side".
//
// Errors are returned as JSON:
//
//	{"error": "session not found: abc123"}
//
// Unknown sessions and setups map to 404, malformed squares and invalid
// setups to 400, anything else to 500.
package api
