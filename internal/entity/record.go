package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	OutcomeWin   = "win"
	OutcomeLoss  = "loss"
	OutcomeDraw  = "draw"
	OutcomeScore = "score"
)

// Outcome - how a finished round ended, from the human players' side.
type Outcome struct {
	Result string
	Score  float64
}

// GameRecord - finished round kept in the results history.
type GameRecord struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	GroupID   string    `json:"group_id" gorm:"index;not null"`
	Kind      string    `json:"kind" gorm:"not null"`
	Outcome   string    `json:"outcome" gorm:"not null"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func NewGameRecord(groupID, kind string, outcome Outcome) *GameRecord {
	return &GameRecord{
		ID:      uuid.New(),
		GroupID: groupID,
		Kind:    kind,
		Outcome: outcome.Result,
		Score:   outcome.Score,
	}
}
