package conversation

import (
	"errors"
	"fmt"
	"strings"
)

// Synthetic transcript markers for turns that carry no free text.
const (
	StartInput        = "[INICIO]"
	buttonInputFormat = "[BUTTON: %s]"
)

var (
	ErrEmptyTurn     = errors.New("turn needs text or a button id")
	ErrAmbiguousTurn = errors.New("turn must not carry both text and a button id")
)

// Turn is one scripted user input: free text or a button press, never both.
type Turn struct {
	text     string
	buttonID string
}

func Text(text string) Turn {
	return Turn{text: text}
}

func Button(id string) Turn {
	return Turn{buttonID: id}
}

func (t Turn) Validate() error {
	hasText := strings.TrimSpace(t.text) != ""
	hasButton := strings.TrimSpace(t.buttonID) != ""
	switch {
	case hasText && hasButton:
		return ErrAmbiguousTurn
	case !hasText && !hasButton:
		return ErrEmptyTurn
	}
	return nil
}

func (t Turn) IsButton() bool {
	return strings.TrimSpace(t.buttonID) != ""
}

func (t Turn) TextValue() string { return t.text }

func (t Turn) ButtonID() string { return t.buttonID }

// Label is the literal user input recorded in the transcript.
func (t Turn) Label() string {
	if t.IsButton() {
		return fmt.Sprintf(buttonInputFormat, t.buttonID)
	}
	return t.text
}
