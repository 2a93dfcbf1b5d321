package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/soporteti/flowprobe/internal/audit"
	"github.com/soporteti/flowprobe/internal/console"
	"github.com/soporteti/flowprobe/internal/conversation"
	"github.com/soporteti/flowprobe/internal/observability"
)

// Runner executes scenarios sequentially against fresh conversation sessions.
type Runner struct {
	client       conversation.BotClient
	store        audit.Store
	metrics      *observability.Metrics
	out          *console.Formatter
	previewChars int
	turnDelay    time.Duration
}

func NewRunner(
	client conversation.BotClient,
	store audit.Store,
	metrics *observability.Metrics,
	out *console.Formatter,
	previewChars int,
	turnDelay time.Duration,
) *Runner {
	return &Runner{
		client:       client,
		store:        store,
		metrics:      metrics,
		out:          out,
		previewChars: previewChars,
		turnDelay:    turnDelay,
	}
}

// Run replays one scenario. A start failure aborts it with an error; a failed
// turn is reported and the remaining scripted turns are still attempted.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Summary, error) {
	r.out.ScenarioBanner(sc.Title)

	session := conversation.NewSession(r.client, r.previewChars)

	opening, err := session.Start(ctx)
	if err != nil {
		r.metrics.ScenarioFailures.WithLabelValues("start").Inc()
		r.out.Fail("%s: %v", sc.Name, err)
		return Summary{Scenario: sc.Name}, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	r.out.Started(session.ID, opening.StageAfter, opening.ReplyPreview)
	r.record(ctx, sc.Name, session.ID, opening)
	r.metrics.StageTransitions.WithLabelValues(opening.StageAfter).Inc()

	summary := Summary{
		Scenario:  sc.Name,
		SessionID: session.ID,
	}

	for i, turn := range sc.Turns {
		if err := r.pause(ctx); err != nil {
			return r.finish(summary, session), err
		}

		summary.TurnsAttempted++
		started := time.Now()
		entry, err := session.SendTurn(ctx, turn)
		r.metrics.ObserveTurnLatency(time.Since(started))
		if err != nil {
			summary.TurnsFailed++
			r.metrics.TurnsTotal.WithLabelValues(sc.Name, "error").Inc()
			r.out.Fail("%s turn %d/%d (%s): %v", sc.Name, i+1, len(sc.Turns), turn.Label(), err)
			if ctx.Err() != nil {
				return r.finish(summary, session), ctx.Err()
			}
			continue
		}

		r.metrics.TurnsTotal.WithLabelValues(sc.Name, "ok").Inc()
		if entry.StageBefore != entry.StageAfter {
			r.metrics.StageTransitions.WithLabelValues(entry.StageAfter).Inc()
		}
		r.out.Turn(entry.UserInput, entry.StageBefore, entry.StageAfter, entry.ReplyPreview)
		if entry.StageOmitted {
			r.out.Warn("%s turn %d/%d: response omitted stage, keeping %q", sc.Name, i+1, len(sc.Turns), entry.StageAfter)
		}
		r.record(ctx, sc.Name, session.ID, entry)
	}

	return r.finish(summary, session), nil
}

func (r *Runner) finish(summary Summary, session *conversation.Session) Summary {
	summary.Entries = session.Transcript().Len()
	summary.FinalStage = session.CurrentStage
	summary.StageFlow = session.Transcript().StageFlow()
	r.out.Summary(summary.SessionID, summary.Entries, summary.FinalStage, summary.StageFlow)
	return summary
}

// pause applies the cosmetic inter-turn delay while staying interruptible.
func (r *Runner) pause(ctx context.Context) error {
	if r.turnDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.turnDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Runner) record(ctx context.Context, scenarioName, sessionID string, entry conversation.Entry) {
	if r.store == nil {
		return
	}
	err := r.store.SaveEntry(ctx, audit.Record{
		Scenario:     scenarioName,
		SessionID:    sessionID,
		UserInput:    entry.UserInput,
		StageBefore:  entry.StageBefore,
		StageAfter:   entry.StageAfter,
		ReplyPreview: entry.ReplyPreview,
		StageOmitted: entry.StageOmitted,
		CreatedAt:    entry.Timestamp,
	})
	if err != nil {
		r.out.Warn("audit store: %v", err)
	}
}
