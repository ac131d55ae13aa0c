// Package saves stores engine snapshots in numbered slots.
//
// Three backends implement service.SaveStore:
//   - FileStore writes <dir>/save_slot_<n>.json
//   - SQLStore keeps a save_slots table in SQLite or PostgreSQL
//   - RedisStore keeps ludo:slot:<n> keys
//
// Load fails with an error wrapping engine.ErrSlotUnavailable both for empty
// slots and for slots whose contents cannot be decoded. List skips slots it
// cannot decode.
package saves
