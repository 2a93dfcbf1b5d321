package audit

import (
	"context"
	"time"
)

// Record is one persisted transcript entry from a scenario run.
type Record struct {
	ID           string    `json:"id"`
	Scenario     string    `json:"scenario"`
	SessionID    string    `json:"session_id"`
	UserInput    string    `json:"user_input"`
	StageBefore  string    `json:"stage_before,omitempty"`
	StageAfter   string    `json:"stage_after"`
	ReplyPreview string    `json:"reply_preview"`
	StageOmitted bool      `json:"stage_omitted,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store persists and retrieves the client-side transcript audit.
type Store interface {
	SaveEntry(ctx context.Context, record Record) error
	BySession(ctx context.Context, sessionID string, limit int) ([]Record, error)
	Close() error
}
