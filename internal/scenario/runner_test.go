package scenario

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/soporteti/flowprobe/internal/audit"
	"github.com/soporteti/flowprobe/internal/botapi"
	"github.com/soporteti/flowprobe/internal/console"
	"github.com/soporteti/flowprobe/internal/mockbot"
	"github.com/soporteti/flowprobe/internal/observability"
)

func newTestRunner(t *testing.T, baseURL string, store audit.Store) (*Runner, *bytes.Buffer) {
	t.Helper()
	client := botapi.NewClient(botapi.Options{BaseURL: baseURL})
	var buf bytes.Buffer
	out := console.NewFormatter(&buf, false)
	metrics := observability.NewMetrics("test_runner")
	return NewRunner(client, store, metrics, out, 100, 0), &buf
}

func findScript(t *testing.T, name string) Scenario {
	t.Helper()
	for _, sc := range Scripts() {
		if sc.Name == name {
			return sc
		}
	}
	t.Fatalf("no script named %q", name)
	return Scenario{}
}

func TestTicketScenarioRecordsTenEntries(t *testing.T) {
	ts := httptest.NewServer(mockbot.NewServer().Router())
	defer ts.Close()

	store := audit.NewInMemoryStore()
	r, _ := newTestRunner(t, ts.URL, store)

	summary, err := r.Run(context.Background(), findScript(t, "sim-4"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.TurnsAttempted != 9 || summary.TurnsFailed != 0 {
		t.Fatalf("turns = %d attempted / %d failed, want 9/0", summary.TurnsAttempted, summary.TurnsFailed)
	}
	if summary.Entries != 10 {
		t.Fatalf("entries = %d, want 10 (opening + 9 turns)", summary.Entries)
	}
	if summary.FinalStage != mockbot.StageTicket {
		t.Fatalf("final stage = %q, want %q", summary.FinalStage, mockbot.StageTicket)
	}

	records, err := store.BySession(context.Background(), summary.SessionID, 0)
	if err != nil {
		t.Fatalf("BySession() error = %v", err)
	}
	if len(records) != 10 {
		t.Fatalf("audit records = %d, want 10", len(records))
	}
	// Handoff invariant across the whole persisted transcript.
	for i := 1; i < len(records); i++ {
		if records[i].StageBefore != records[i-1].StageAfter {
			t.Fatalf("record %d stage_before = %q, want %q", i, records[i].StageBefore, records[i-1].StageAfter)
		}
	}
}

func TestAllScriptsCompleteAgainstMockBot(t *testing.T) {
	ts := httptest.NewServer(mockbot.NewServer().Router())
	defer ts.Close()

	r, _ := newTestRunner(t, ts.URL, nil)
	for _, sc := range Scripts() {
		summary, err := r.Run(context.Background(), sc)
		if err != nil {
			t.Fatalf("Run(%s) error = %v", sc.Name, err)
		}
		if summary.TurnsAttempted != len(sc.Turns) {
			t.Fatalf("%s attempted %d turns, want %d", sc.Name, summary.TurnsAttempted, len(sc.Turns))
		}
		if summary.TurnsFailed != 0 {
			t.Fatalf("%s had %d failed turns", sc.Name, summary.TurnsFailed)
		}
		if summary.Entries != len(sc.Turns)+1 {
			t.Fatalf("%s entries = %d, want %d", sc.Name, summary.Entries, len(sc.Turns)+1)
		}
	}
}

func TestRunIsDeterministicAgainstStableService(t *testing.T) {
	ts := httptest.NewServer(mockbot.NewServer().Router())
	defer ts.Close()

	r, _ := newTestRunner(t, ts.URL, nil)
	sc := findScript(t, "sim-1")

	first, err := r.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := r.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Join(first.StageFlow, ",") != strings.Join(second.StageFlow, ",") {
		t.Fatalf("stage flow differs: %v vs %v", first.StageFlow, second.StageFlow)
	}
	if first.FinalStage != second.FinalStage {
		t.Fatalf("final stage differs: %q vs %q", first.FinalStage, second.FinalStage)
	}
}

func TestStartFailureAbortsScenario(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer ts.Close()

	r, buf := newTestRunner(t, ts.URL, nil)
	summary, err := r.Run(context.Background(), findScript(t, "sim-1"))
	if err == nil {
		t.Fatalf("Run() expected error when start fails")
	}
	if summary.TurnsAttempted != 0 {
		t.Fatalf("turns attempted = %d, want 0 after failed start", summary.TurnsAttempted)
	}
	if !strings.Contains(buf.String(), "error:") {
		t.Fatalf("failure line missing from output:\n%s", buf.String())
	}
}

func TestFailedTurnDoesNotStopTheScript(t *testing.T) {
	bot := mockbot.NewServer()
	var calls int
	mux := http.NewServeMux()
	mux.Handle("/api/greeting", bot.Router())
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			// Second turn blows up; the runner must keep going.
			http.Error(w, "hiccup", http.StatusBadRequest)
			return
		}
		bot.Router().ServeHTTP(w, r)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	r, _ := newTestRunner(t, ts.URL, nil)
	sc := findScript(t, "sim-2")
	summary, err := r.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("Run() error = %v, failed turns must not abort the scenario", err)
	}
	if summary.TurnsAttempted != len(sc.Turns) {
		t.Fatalf("turns attempted = %d, want all %d", summary.TurnsAttempted, len(sc.Turns))
	}
	if summary.TurnsFailed != 1 {
		t.Fatalf("turns failed = %d, want 1", summary.TurnsFailed)
	}
	if summary.Entries != len(sc.Turns) {
		t.Fatalf("entries = %d, want %d (opening + %d ok turns)", summary.Entries, len(sc.Turns), len(sc.Turns)-1)
	}
}

func TestCancelledContextStopsTheRun(t *testing.T) {
	ts := httptest.NewServer(mockbot.NewServer().Router())
	defer ts.Close()

	client := botapi.NewClient(botapi.Options{BaseURL: ts.URL})
	var buf bytes.Buffer
	r := NewRunner(client, nil, observability.NewMetrics("test_cancel"), console.NewFormatter(&buf, false), 100, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, findScript(t, "sim-1")); err == nil {
		t.Fatalf("Run() expected error with cancelled context")
	}
}

func TestScriptsMatchTheFixedConversations(t *testing.T) {
	scripts := Scripts()
	if len(scripts) != 4 {
		t.Fatalf("Scripts() = %d scenarios, want 4", len(scripts))
	}
	wantTurns := map[string]int{"sim-1": 6, "sim-2": 5, "sim-3": 7, "sim-4": 9}
	for _, sc := range scripts {
		if got := len(sc.Turns); got != wantTurns[sc.Name] {
			t.Fatalf("%s has %d turns, want %d", sc.Name, got, wantTurns[sc.Name])
		}
		for i, turn := range sc.Turns {
			if err := turn.Validate(); err != nil {
				t.Fatalf("%s turn %d invalid: %v", sc.Name, i+1, err)
			}
		}
	}
}
