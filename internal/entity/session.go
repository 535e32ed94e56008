package entity

import (
	"encoding/json"
	"time"
)

// Session - the game instance bound to a chat group, stored as a snapshot.
type Session struct {
	GroupID   string          `json:"group_id"`
	Kind      string          `json:"kind"`
	State     json.RawMessage `json:"state"`
	UpdatedAt time.Time       `json:"updated_at"`
}
