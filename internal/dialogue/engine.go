package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bargaj/collectcall/internal/classify"
	"github.com/bargaj/collectcall/internal/domain"
	"github.com/bargaj/collectcall/internal/operator"
	"github.com/bargaj/collectcall/internal/session"
	"github.com/bargaj/collectcall/internal/shared"
	"github.com/bargaj/collectcall/internal/store"
)

// EventSink receives operator-visible events. A nil sink disables the
// stream.
type EventSink interface {
	Publish(evt operator.Event)
}

// Outcome is what a webhook turn hands back to the call adapter: the actions
// to render and whether the dialogue is over.
type Outcome struct {
	Actions  []Action
	Step     domain.Step
	Terminal bool
}

// EngineConfig tunes engine behavior.
type EngineConfig struct {
	// MaxReprompts caps consecutive not-understood turns per step before
	// the call falls to an unable-to-confirm disposition.
	MaxReprompts int
	// WriteTimeout bounds each directory merge attempt.
	WriteTimeout time.Duration
	// WriteAttempts is how many times a failed disposition write is tried.
	WriteAttempts int
}

// DefaultEngineConfig returns the default engine tuning.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxReprompts:  3,
		WriteTimeout:  5 * time.Second,
		WriteAttempts: 3,
	}
}

// Engine drives dialogue sessions: it loads the session for a call, applies
// one state-machine transition per webhook turn, and flushes the disposition
// to the borrower directory when a terminal step is reached.
type Engine struct {
	sessions *session.Registry
	dir      store.Directory
	events   EventSink
	cfg      EngineConfig
}

// NewEngine creates an engine. events may be nil.
func NewEngine(sessions *session.Registry, dir store.Directory, events EventSink, cfg EngineConfig) *Engine {
	if cfg.MaxReprompts <= 0 {
		cfg.MaxReprompts = DefaultEngineConfig().MaxReprompts
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultEngineConfig().WriteTimeout
	}
	if cfg.WriteAttempts <= 0 {
		cfg.WriteAttempts = DefaultEngineConfig().WriteAttempts
	}
	return &Engine{sessions: sessions, dir: dir, events: events, cfg: cfg}
}

// Begin starts a dialogue for a freshly connected call. When no borrower
// matches the dialed number the call ends with an apology and nothing is
// persisted. A duplicate call-started delivery for a live call replays the
// intro without resetting state.
func (e *Engine) Begin(ctx context.Context, callID, phone string) (Outcome, error) {
	borrower, err := e.dir.Lookup(ctx, phone)
	if errors.Is(err, store.ErrNotFound) {
		slog.Info("No borrower record for call", "call_id", callID, "phone", phone)
		return Outcome{
			Actions:  []Action{Speak{Text: PromptNotFound}},
			Terminal: true,
		}, nil
	}
	if err != nil {
		return Outcome{
			Actions:  []Action{Speak{Text: promptDropped}},
			Terminal: true,
		}, fmt.Errorf("lookup borrower: %w", err)
	}

	if err := e.sessions.Create(callID, borrower); err != nil {
		if !errors.Is(err, session.ErrExists) {
			return Outcome{}, fmt.Errorf("create session: %w", err)
		}
		slog.Warn("Duplicate call-started event, replaying intro", "call_id", callID)
	}

	e.publish(operator.Event{
		Type:   operator.EventCallStarted,
		CallID: callID,
		Phone:  phone,
		Step:   string(domain.StepConfirmIdentity),
	})

	return Outcome{
		Actions: IntroActions(borrower),
		Step:    domain.StepConfirmIdentity,
	}, nil
}

// Advance applies one classified caller turn to the session for callID. On a
// terminal transition the accumulated answers are merged into the borrower
// record and the session is retired; a failed write is retried, alerted, and
// never stops the closing message.
func (e *Engine) Advance(ctx context.Context, callID string, in classify.Input) (Outcome, error) {
	var (
		out   Outcome
		flush map[string]string
		phone string
	)

	err := e.sessions.Update(callID, func(s *domain.CallSession) {
		res := Transition(s.Borrower, s.Step, in)

		heard := in.Text
		if in.Kind == classify.Digit {
			heard = in.Digit
		}
		s.RecordTurn(heard, string(in.Kind))

		if res.Reprompt {
			s.Misses++
			if s.Misses >= e.cfg.MaxReprompts {
				res = giveUp(s)
			}
		} else {
			s.Misses = 0
		}

		for k, v := range res.Set {
			s.SetAnswer(k, v)
		}
		s.Step = res.Next

		out = Outcome{
			Actions:  res.Actions,
			Step:     res.Next,
			Terminal: res.Next.IsTerminal(),
		}
		if out.Terminal {
			flush = s.AnswerSnapshot()
			if res.Responded != "" {
				flush[AnswerResponded] = res.Responded
			}
			phone = s.Borrower.PhoneNumber
		}
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("advance call %s: %w", callID, err)
	}

	e.publish(operator.Event{
		Type:   operator.EventTransition,
		CallID: callID,
		Step:   string(out.Step),
	})

	if out.Terminal {
		e.finish(ctx, callID, phone, flush)
	}
	return out, nil
}

// Abort ends a dialogue whose caller input was lost (transcription or audio
// retrieval failure). The borrower gets a graceful goodbye and the record an
// Unknown disposition so the batch can be re-dialed.
func (e *Engine) Abort(ctx context.Context, callID string) Outcome {
	out := Outcome{
		Actions:  []Action{Speak{Text: promptDropped}},
		Step:     domain.StepDoneUnresponsive,
		Terminal: true,
	}

	var (
		flush map[string]string
		phone string
	)
	err := e.sessions.Update(callID, func(s *domain.CallSession) {
		s.Step = domain.StepDoneUnresponsive
		flush = s.AnswerSnapshot()
		flush[AnswerResponded] = "Unknown"
		phone = s.Borrower.PhoneNumber
	})
	if err != nil {
		// No session: nothing to flush, still say goodbye.
		slog.Warn("Abort for unknown call", "call_id", callID, "error", err)
		return out
	}

	e.finish(ctx, callID, phone, flush)
	return out
}

// ExpireIdle is the reaper callback for sessions whose calls went quiet. The
// session is already removed from the registry; only the disposition write
// remains.
func (e *Engine) ExpireIdle(callID string, s *domain.CallSession) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.WriteTimeout*time.Duration(e.cfg.WriteAttempts+1))
	defer cancel()

	flush := s.AnswerSnapshot()
	flush[AnswerResponded] = "Unknown"
	e.writeDisposition(ctx, callID, s.Borrower.PhoneNumber, flush)

	e.publish(operator.Event{
		Type:   operator.EventCallEnded,
		CallID: callID,
		Phone:  s.Borrower.PhoneNumber,
		Step:   string(domain.StepDoneUnresponsive),
		Detail: "idle session expired",
	})
}

// giveUp converts a cap-exhausted reprompt into the unable-to-confirm
// terminal. A caller stuck in the reason menu gets reason=Unknown so the
// record shows a digit was never supplied.
func giveUp(s *domain.CallSession) Result {
	res := Result{
		Next:      domain.StepDoneUnconfirmed,
		Actions:   []Action{Speak{Text: promptGiveUp}},
		Responded: "Unknown",
	}
	if s.Step == domain.StepAwaitReason && s.Answers[AnswerReason] == "" {
		res.Set = map[string]string{AnswerReason: "Unknown"}
	}
	return res
}

// finish flushes a terminal disposition and retires the session.
func (e *Engine) finish(ctx context.Context, callID, phone string, fields map[string]string) {
	e.writeDisposition(ctx, callID, phone, fields)
	e.sessions.Retire(callID)

	e.publish(operator.Event{
		Type:   operator.EventCallEnded,
		CallID: callID,
		Phone:  phone,
	})
}

// writeDisposition merges fields into the borrower record with bounded
// retries. A final failure is logged and alerted but does not surface to the
// caller: the closing message has priority over the write.
func (e *Engine) writeDisposition(ctx context.Context, callID, phone string, fields map[string]string) {
	if len(fields) == 0 {
		return
	}

	err := shared.Retry(ctx, e.cfg.WriteAttempts, 200*time.Millisecond, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.WriteTimeout)
		defer cancel()
		return e.dir.MergeUpdate(attemptCtx, phone, fields)
	})
	if err != nil {
		slog.Error("Disposition write failed",
			"call_id", callID, "phone", phone, "fields", fields, "error", err)
		e.publish(operator.Event{
			Type:   operator.EventAlert,
			CallID: callID,
			Phone:  phone,
			Detail: fmt.Sprintf("disposition write failed: %v", err),
		})
	}
}

func (e *Engine) publish(evt operator.Event) {
	if e.events != nil {
		e.events.Publish(evt)
	}
}
