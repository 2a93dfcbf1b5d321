package console

import (
	"fmt"
	"io"
	"strings"
)

// ANSI sequences, applied only when color is enabled.
const (
	codeReset   = "\033[0m"
	codeBold    = "\033[1m"
	codeHeader  = "\033[95m"
	codeBlue    = "\033[94m"
	codeCyan    = "\033[96m"
	codeGreen   = "\033[92m"
	codeWarning = "\033[93m"
	codeFail    = "\033[91m"
)

// Formatter renders the human-readable trace. It is injected into the runner
// so presentation stays out of the core.
type Formatter struct {
	w     io.Writer
	color bool
}

func NewFormatter(w io.Writer, color bool) *Formatter {
	return &Formatter{w: w, color: color}
}

func (f *Formatter) paint(code, s string) string {
	if !f.color {
		return s
	}
	return code + s + codeReset
}

// Header prints the run banner shown once at startup.
func (f *Formatter) Header(title string) {
	line := strings.Repeat("=", 80)
	fmt.Fprintln(f.w, f.paint(codeBold+codeHeader, line))
	fmt.Fprintln(f.w, f.paint(codeBold+codeHeader, title))
	fmt.Fprintln(f.w, f.paint(codeBold+codeHeader, line))
	fmt.Fprintln(f.w)
}

// ScenarioBanner announces one scenario.
func (f *Formatter) ScenarioBanner(title string) {
	line := strings.Repeat("=", 80)
	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, f.paint(codeHeader, line))
	fmt.Fprintln(f.w, f.paint(codeHeader, title))
	fmt.Fprintln(f.w, f.paint(codeHeader, line))
	fmt.Fprintln(f.w)
}

// Started reports a successfully opened conversation.
func (f *Formatter) Started(sessionID, stage, replyPreview string) {
	fmt.Fprintln(f.w, f.paint(codeGreen, "conversation started"))
	fmt.Fprintf(f.w, "%s %s\n", f.paint(codeBlue, "session:"), shortID(sessionID))
	fmt.Fprintf(f.w, "%s %s\n", f.paint(codeBlue, "stage:"), stage)
	fmt.Fprintf(f.w, "%s %s\n\n", f.paint(codeCyan, "bot:"), replyPreview)
}

// Turn reports one completed turn with its stage handoff.
func (f *Formatter) Turn(userInput, stageBefore, stageAfter, replyPreview string) {
	fmt.Fprintf(f.w, "%s %s\n", f.paint(codeBlue, "user:"), userInput)
	fmt.Fprintf(f.w, "%s %s -> %s\n", f.paint(codeBlue, "stage:"), stageBefore, stageAfter)
	fmt.Fprintf(f.w, "%s %s\n\n", f.paint(codeCyan, "bot:"), replyPreview)
}

func (f *Formatter) Warn(format string, args ...any) {
	fmt.Fprintln(f.w, f.paint(codeWarning, "warning: "+fmt.Sprintf(format, args...)))
}

func (f *Formatter) Fail(format string, args ...any) {
	fmt.Fprintln(f.w, f.paint(codeFail, "error: "+fmt.Sprintf(format, args...)))
}

func (f *Formatter) OK(format string, args ...any) {
	fmt.Fprintln(f.w, f.paint(codeGreen, fmt.Sprintf(format, args...)))
}

// Summary prints the per-scenario wrap-up.
func (f *Formatter) Summary(sessionID string, entries int, finalStage string, stageFlow []string) {
	fmt.Fprintln(f.w, f.paint(codeBold, "scenario summary"))
	fmt.Fprintf(f.w, "session: %s\n", shortID(sessionID))
	fmt.Fprintf(f.w, "entries: %d\n", entries)
	fmt.Fprintf(f.w, "final stage: %s\n", finalStage)
	fmt.Fprintf(f.w, "stage flow: %s\n", strings.Join(stageFlow, " -> "))
}

// MetricsReport prints the end-of-run metrics block.
func (f *Formatter) MetricsReport(report string) {
	if strings.TrimSpace(report) == "" {
		return
	}
	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, f.paint(codeBold, "run metrics"))
	fmt.Fprintln(f.w, report)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
