package store

import (
	"encoding/json"
	"fmt"

	"github.com/maltehb/capr/internal/forecast"
)

const sessionKey = "session"

// SaveSession persists the conversation state as JSON under a fixed key. The
// audit history travels separately through the parameter_history table, so it
// is stripped here to keep the blob small.
func (db *DB) SaveSession(state forecast.ConversationState) error {
	state.History = nil

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return db.SetState(sessionKey, string(data))
}

// LoadSession restores the persisted conversation state. A missing session
// returns (nil, nil); whoever receives it starts fresh. Partial blobs from
// older versions decode into zero values and are usable as-is.
func (db *DB) LoadSession() (*forecast.ConversationState, error) {
	raw, err := db.GetState(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	var state forecast.ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &state, nil
}

// ClearSession removes the persisted conversation state. History rows stay.
func (db *DB) ClearSession() error {
	return db.DeleteState(sessionKey)
}
