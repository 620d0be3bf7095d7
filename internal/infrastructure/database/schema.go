package database

import "context"

// schema holds the full database schema. The daemon only persists the
// last-known state per device, so a single table is enough and is created
// idempotently on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS device_states (
    device_id  INTEGER PRIMARY KEY,
    state      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// ensureSchema creates the schema if it does not exist.
func (db *DB) ensureSchema(ctx context.Context) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
