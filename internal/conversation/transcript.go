package conversation

import "time"

// Entry is one append-only transcript record. StageBefore is empty for the
// opening entry; StageOmitted marks turns where the service returned no stage
// and the prior one was kept.
type Entry struct {
	Timestamp    time.Time `json:"timestamp"`
	UserInput    string    `json:"user_input"`
	StageBefore  string    `json:"stage_before,omitempty"`
	StageAfter   string    `json:"stage_after"`
	ReplyPreview string    `json:"reply_preview"`
	StageOmitted bool      `json:"stage_omitted,omitempty"`
}

// Transcript is the ordered record of all turns taken within one session.
type Transcript struct {
	entries []Entry
}

func (t *Transcript) append(e Entry) {
	t.entries = append(t.entries, e)
}

func (t *Transcript) Len() int {
	return len(t.entries)
}

// Entries returns a copy; the transcript itself is never mutated by callers.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Last() (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}

// StageFlow returns the stages visited, deduplicated in first-seen order.
func (t *Transcript) StageFlow() []string {
	seen := make(map[string]bool, len(t.entries))
	var flow []string
	for _, e := range t.entries {
		if e.StageAfter == "" || seen[e.StageAfter] {
			continue
		}
		seen[e.StageAfter] = true
		flow = append(flow, e.StageAfter)
	}
	return flow
}

func previewReply(reply string, max int) string {
	if max <= 0 || len([]rune(reply)) <= max {
		return reply
	}
	return string([]rune(reply)[:max]) + "..."
}
