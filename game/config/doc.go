// Package config manages the named starting setups of the atomic chess server.
//
// Setups are JSON files in a config directory, one per setup, named
// "<id>.json". Each carries a display name, a description, a FEN record for
// the starting position and optional end-of-game messages:
//
//	{
//	  "name": "Standard",
//	  "description": "Standard starting position",
//	  "fen": "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1",
//	  "messages": {"welcome": "...", "white_won": "...", "black_won": "..."}
//	}
//
// Only piece placement and side to move are read from the FEN. Every setup
// must have exactly one king per side.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	setup, err := manager.LoadConfig("standard")
//	defaultSetup := manager.GetDefault()
//	setups, err := manager.ListConfigs()
//
// Loaded setups are cached. RefreshCache re-reads them from disk; the server
// calls it on SIGHUP.
package config
