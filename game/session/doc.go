// Package session keeps the live Ludo games of the server.
//
// Manager maps case-insensitive session IDs to sessions, each owning one
// engine started from a roster preset. Generated IDs are the first eight hex
// characters of a random UUID; caller-chosen IDs are limited to letters,
// digits, '-' and '_' so they double as file names.
//
// With a SessionPersistence attached the manager saves a session when it is
// created or touched, and loads sessions lazily on Get. FilePersistence
// writes one JSON document per session holding the roster and an engine
// snapshot.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions", configManager)
//	manager := session.NewManagerWithPersistence(persistence)
//	_ = manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", configManager.GetDefault())
//	if err != nil {
//		log.Fatal(err)
//	}
package session
