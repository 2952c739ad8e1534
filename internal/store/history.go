package store

import (
	"fmt"
	"time"

	"github.com/maltehb/capr/internal/forecast"
)

// HistoryEntry is one persisted parameter change with its session.
type HistoryEntry struct {
	ID        int
	SessionID string
	Change    forecast.ParameterChange
}

// AppendChanges records a batch of parameter changes for a session.
func (db *DB) AppendChanges(sessionID string, changes []forecast.ParameterChange) error {
	if len(changes) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting history transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO parameter_history (session_id, changed_at, slot, old_value, new_value, reason)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range changes {
		if _, err := stmt.Exec(
			sessionID,
			c.Timestamp.UTC().Format(time.RFC3339),
			string(c.Slot), c.OldValue, c.NewValue, c.Reason,
		); err != nil {
			return fmt.Errorf("inserting history row: %w", err)
		}
	}

	return tx.Commit()
}

// ListChanges returns parameter changes at or after since, oldest first. A
// zero since returns everything.
func (db *DB) ListChanges(since time.Time) ([]HistoryEntry, error) {
	query := `SELECT id, session_id, changed_at, old_value, new_value, slot, reason
	          FROM parameter_history`
	var args []interface{}
	if !since.IsZero() {
		query += " WHERE changed_at >= ?"
		args = append(args, since.UTC().Format(time.RFC3339))
	}
	query += " ORDER BY changed_at ASC, id ASC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var changedStr, slot string
		if err := rows.Scan(
			&e.ID, &e.SessionID, &changedStr,
			&e.Change.OldValue, &e.Change.NewValue, &slot, &e.Change.Reason,
		); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}

		e.Change.Slot = forecast.Slot(slot)
		if t, err := time.Parse(time.RFC3339, changedStr); err == nil {
			e.Change.Timestamp = t
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
