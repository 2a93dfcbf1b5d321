package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/soporteti/flowprobe/internal/botapi"
)

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrAlreadyStarted  = errors.New("session already started")
)

// BotClient is the subset of the flow bot API the session drives.
type BotClient interface {
	Greeting(ctx context.Context) (botapi.GreetingResponse, error)
	Chat(ctx context.Context, req botapi.ChatRequest) (botapi.ChatResponse, error)
}

// Session is one end-to-end chat with the flow bot. It owns the session
// identity, the current stage as declared by the service, and the
// append-only transcript. The service is the sole authority on stage
// transitions; the session never validates them.
type Session struct {
	client       BotClient
	previewChars int

	ID           string
	CurrentStage string

	transcript Transcript
}

func NewSession(client BotClient, previewChars int) *Session {
	if previewChars <= 0 {
		previewChars = 100
	}
	return &Session{
		client:       client,
		previewChars: previewChars,
	}
}

// Start opens the conversation and records the opening entry. On failure the
// session stays unusable: no id is assigned and no entry is appended.
func (s *Session) Start(ctx context.Context) (Entry, error) {
	if s.ID != "" {
		return Entry{}, ErrAlreadyStarted
	}

	res, err := s.client.Greeting(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("start conversation: %w", err)
	}

	s.ID = res.SessionID
	s.CurrentStage = res.Stage

	entry := Entry{
		Timestamp:    time.Now().UTC(),
		UserInput:    StartInput,
		StageAfter:   res.Stage,
		ReplyPreview: previewReply(res.Reply, s.previewChars),
	}
	s.transcript.append(entry)
	return entry, nil
}

// SendTurn sends one user turn and records it. The turn contract is checked
// before any network call; on a call failure the stage is left unchanged and
// nothing is appended.
func (s *Session) SendTurn(ctx context.Context, turn Turn) (Entry, error) {
	if err := turn.Validate(); err != nil {
		return Entry{}, err
	}
	if s.ID == "" {
		return Entry{}, ErrNoActiveSession
	}

	stageBefore := s.CurrentStage
	req := botapi.ChatRequest{SessionID: s.ID}
	if turn.IsButton() {
		req.ButtonID = turn.ButtonID()
	} else {
		req.Text = turn.TextValue()
	}

	res, err := s.client.Chat(ctx, req)
	if err != nil {
		return Entry{}, fmt.Errorf("send turn: %w", err)
	}

	// Missing stage keeps the prior one; the entry carries a marker so the
	// fallback is visible instead of silently masking a protocol mismatch.
	stageAfter := res.Stage
	omitted := false
	if stageAfter == "" {
		stageAfter = stageBefore
		omitted = true
	}
	s.CurrentStage = stageAfter

	entry := Entry{
		Timestamp:    time.Now().UTC(),
		UserInput:    turn.Label(),
		StageBefore:  stageBefore,
		StageAfter:   stageAfter,
		ReplyPreview: previewReply(res.Reply, s.previewChars),
		StageOmitted: omitted,
	}
	s.transcript.append(entry)
	return entry, nil
}

// Transcript exposes the append-only record for inspection.
func (s *Session) Transcript() *Transcript {
	return &s.transcript
}
