package mockbot

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type turnInput struct {
	text   string
	button string
}

func open(t *testing.T, baseURL string) (string, string) {
	t.Helper()
	res, err := http.Get(baseURL + "/api/greeting")
	if err != nil {
		t.Fatalf("greeting request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("greeting status = %d, want 200", res.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode greeting: %v", err)
	}
	if body["sessionId"] == "" || body["stage"] != StageGreeting || body["reply"] == "" {
		t.Fatalf("unexpected greeting body: %+v", body)
	}
	return body["sessionId"], body["stage"]
}

func chat(t *testing.T, baseURL, sessionID string, in turnInput) (string, int) {
	t.Helper()
	payload := map[string]string{"sessionId": sessionID}
	if in.button != "" {
		payload["buttonId"] = in.button
	} else if in.text != "" {
		payload["text"] = in.text
	}
	raw, _ := json.Marshal(payload)
	res, err := http.Post(baseURL+"/api/chat", "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("chat request error = %v", err)
	}
	defer res.Body.Close()
	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	return body["stage"], res.StatusCode
}

func walk(t *testing.T, baseURL string, turns []turnInput) string {
	t.Helper()
	sessionID, stage := open(t, baseURL)
	for i, in := range turns {
		next, status := chat(t, baseURL, sessionID, in)
		if status != http.StatusOK {
			t.Fatalf("turn %d status = %d, want 200", i+1, status)
		}
		stage = next
	}
	return stage
}

func TestShortDiagnosticsPathEndsResolved(t *testing.T) {
	ts := httptest.NewServer(NewServer().Router())
	defer ts.Close()

	final := walk(t, ts.URL, []turnInput{
		{button: "BTN_LANG_ES_AR"},
		{button: "BTN_NO_NAME"},
		{button: "BTN_HELP"},
		{text: "mi compu no enciende"},
		{text: "es una notebook HP Pavilion"},
		{button: "BTN_TESTS_DONE"},
	})
	if final != StageResolution {
		t.Fatalf("final stage = %q, want %q", final, StageResolution)
	}
}

func TestSolvedBeforeDiagnosticsEndsResolved(t *testing.T) {
	ts := httptest.NewServer(NewServer().Router())
	defer ts.Close()

	final := walk(t, ts.URL, []turnInput{
		{button: "BTN_LANG_ES_ES"},
		{text: "Roberto"},
		{button: "BTN_TASK"},
		{text: "necesito ayuda para instalar una app en mi stick tv"},
		{button: "BTN_SOLVED"},
	})
	if final != StageResolution {
		t.Fatalf("final stage = %q, want %q", final, StageResolution)
	}
}

func TestEscalationPathReachesTicket(t *testing.T) {
	ts := httptest.NewServer(NewServer().Router())
	defer ts.Close()

	final := walk(t, ts.URL, []turnInput{
		{button: "BTN_LANG_ES_AR"},
		{text: "Valeria"},
		{button: "BTN_HELP"},
		{text: "tu notebook no enciende"},
		{text: "Dell Inspiron 15"},
		{button: "BTN_TESTS_FAIL"},
		{button: "BTN_YES"},
		{text: "valeria@email.com"},
		{text: "+54 9 11 1234-5678"},
	})
	if final != StageTicket {
		t.Fatalf("final stage = %q, want %q", final, StageTicket)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	ts := httptest.NewServer(NewServer().Router())
	defer ts.Close()

	_, status := chat(t, ts.URL, "nope", turnInput{text: "hola"})
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
}

func TestBothInputsRejected(t *testing.T) {
	ts := httptest.NewServer(NewServer().Router())
	defer ts.Close()

	sessionID, _ := open(t, ts.URL)
	raw, _ := json.Marshal(map[string]string{
		"sessionId": sessionID,
		"text":      "hola",
		"buttonId":  "BTN_YES",
	})
	res, err := http.Post(ts.URL+"/api/chat", "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("chat request error = %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.StatusCode)
	}
}

func TestNonsenseInputKeepsStage(t *testing.T) {
	ts := httptest.NewServer(NewServer().Router())
	defer ts.Close()

	sessionID, _ := open(t, ts.URL)
	stage, status := chat(t, ts.URL, sessionID, turnInput{text: "asdf"})
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if stage != StageGreeting {
		t.Fatalf("stage = %q, want unchanged %q", stage, StageGreeting)
	}
}
