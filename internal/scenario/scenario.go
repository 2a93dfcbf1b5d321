package scenario

import "github.com/soporteti/flowprobe/internal/conversation"

// Scenario is a fixed, ordered list of turns representing one simulated
// end-user conversation.
type Scenario struct {
	Name  string
	Title string
	Turns []conversation.Turn
}

// Summary is the result of one scenario run.
type Summary struct {
	Scenario       string   `json:"scenario"`
	SessionID      string   `json:"session_id"`
	TurnsAttempted int      `json:"turns_attempted"`
	TurnsFailed    int      `json:"turns_failed"`
	Entries        int      `json:"entries"`
	FinalStage     string   `json:"final_stage"`
	StageFlow      []string `json:"stage_flow"`
}

func (s Summary) Failed() bool {
	return s.TurnsFailed > 0
}
