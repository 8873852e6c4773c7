// Package history provides an append-only SQLite journal of automation
// events: messages dispatched, presence and darkness transitions,
// commands sent, and notifications raised.
//
// The journal exists for after-the-fact inspection ("why did the hall
// light come on at 03:12?"). It is write-mostly: automation never reads
// it back, so losing or truncating it affects nothing but forensics.
// The table is trimmed periodically to the configured maximum entries.
//
// The database uses WAL mode with a single connection, which is the
// appropriate shape for SQLite's single-writer model.
package history
