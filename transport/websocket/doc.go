// Package websocket pushes live atomic chess state to browsers and other viewers.
//
// A Hub keeps, per session id, the set of connected clients. Clients attach
// with GET /ws?session=<id>; frames they send are ignored. After every move,
// bulk move or reset the API calls BroadcastToSession, which sends
//
//	{"session_id": "...", "event": "state_update", "game_state": {...}, "fen": "..."}
//
// to each client of that session. Each client has a bounded send buffer; a
// client whose buffer is full is disconnected instead of stalling the game.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Connections are kept alive with ping/pong; a peer that misses pongs for
// a minute is dropped.
package websocket
