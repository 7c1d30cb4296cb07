// Package session keeps live atomic chess games and their storage.
//
// Manager is a thread-safe, case-insensitive map of session id to
// service.Session. Each session owns its own engine, so moves in one game
// never touch another. IDs are the first group of a random UUID unless the
// caller supplies one.
//
// Persistence is optional. With a SessionPersistence attached the manager
// writes new sessions through, restores unknown ids on Get, and can load or
// save everything at once for server start and shutdown. Two backends exist:
//
//   - FilePersistence: one JSON file per session in a directory
//   - SQLPersistence: a "sessions" table through jinzhu/gorm (sqlite3 dialect registered)
//
// Both store the setup id and a copy of the setup, so a session still loads
// after its setup file is removed.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store, logger)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//	sess, err := manager.Create("", configManager.GetDefault())
package session
