package device

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// StateStore persists the last-known state per device in SQLite.
//
// The hub writes through it after every refresh and command, and restores
// from it on startup so a daemon restart does not forget device state the
// cloud only reports lazily.
type StateStore struct {
	db *sql.DB
}

// NewStateStore creates a state store on an open database connection.
//
// Parameters:
//   - db: Open SQLite connection; the device_states table must exist
//
// Returns:
//   - *StateStore: Store ready for use
func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// Save upserts the state for one device.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - id: Device id
//   - st: State snapshot to persist
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (s *StateStore) Save(ctx context.Context, id int, st State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO device_states (device_id, state, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(device_id) DO UPDATE SET
		   state = excluded.state,
		   updated_at = CURRENT_TIMESTAMP`,
		id,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("saving device state: %w", err)
	}
	return nil
}

// SaveAll upserts the state of every device in one transaction.
//
// Used after a refresh so a crash mid-write cannot leave a half-saved
// snapshot.
func (s *StateStore) SaveAll(ctx context.Context, states map[int]State) error {
	if len(states) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO device_states (device_id, state, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(device_id) DO UPDATE SET
		   state = excluded.state,
		   updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	for id, st := range states {
		payload, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("marshalling state for device %d: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, id, string(payload)); err != nil {
			return fmt.Errorf("saving state for device %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing states: %w", err)
	}
	return nil
}

// Load returns the persisted state of every device.
//
// Rows with corrupt JSON are skipped rather than failing the whole load —
// one bad row should not block startup.
func (s *StateStore) Load(ctx context.Context) (map[int]State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT device_id, state FROM device_states`)
	if err != nil {
		return nil, fmt.Errorf("loading device states: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	states := make(map[int]State)
	for rows.Next() {
		var (
			id      int
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scanning device state: %w", err)
		}

		var st State
		if err := json.Unmarshal([]byte(payload), &st); err != nil {
			continue
		}
		states[id] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device states: %w", err)
	}

	return states, nil
}

// Clear removes all persisted states.
func (s *StateStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM device_states`); err != nil {
		return fmt.Errorf("clearing device states: %w", err)
	}
	return nil
}
