package botapi

import (
	"errors"
	"strings"
)

// GreetingResponse is the payload returned when a conversation is opened.
// All three fields are required; the service assigns the session id.
type GreetingResponse struct {
	SessionID string `json:"sessionId"`
	Stage     string `json:"stage"`
	Reply     string `json:"reply"`
}

// ChatRequest carries one user turn: free text or a button press, never both.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text,omitempty"`
	ButtonID  string `json:"buttonId,omitempty"`
}

// ChatResponse is the payload returned for one turn. Stage may be absent,
// in which case the caller keeps its prior stage.
type ChatResponse struct {
	Stage string `json:"stage"`
	Reply string `json:"reply"`
}

var (
	ErrEmptyTurn     = errors.New("chat request needs text or a button id")
	ErrAmbiguousTurn = errors.New("chat request must not carry both text and a button id")
	ErrNoSessionID   = errors.New("chat request is missing a session id")
)

// Validate enforces the turn contract before any network call is made.
func (r ChatRequest) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return ErrNoSessionID
	}
	hasText := strings.TrimSpace(r.Text) != ""
	hasButton := strings.TrimSpace(r.ButtonID) != ""
	switch {
	case hasText && hasButton:
		return ErrAmbiguousTurn
	case !hasText && !hasButton:
		return ErrEmptyTurn
	}
	return nil
}

func (g GreetingResponse) validate() error {
	if strings.TrimSpace(g.SessionID) == "" {
		return errors.New("greeting response is missing sessionId")
	}
	if strings.TrimSpace(g.Stage) == "" {
		return errors.New("greeting response is missing stage")
	}
	if g.Reply == "" {
		return errors.New("greeting response is missing reply")
	}
	return nil
}
