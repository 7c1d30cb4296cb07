// Package service provides the business logic layer for the atomic chess server.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing with rejection reason codes
//   - Bulk moves with per-step traces
//   - Paginated move history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads the named starting setups.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the rules engine. Each session owns its own engine instance; the service
// serializes every engine call behind a single mutex.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, logger)
//
//	info, err := gameService.CreateSession(ctx, "standard")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "e2", "e4", false)
package service
