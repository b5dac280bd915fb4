package domain

import (
	"time"
)

// Step identifies where a dialogue currently is. Terminal steps end the call
// and trigger a directory write; every other step ends its turn by asking the
// telephony side for another capture.
type Step string

const (
	StepConfirmIdentity Step = "confirm_identity"
	StepConfirmLoan     Step = "confirm_loan"
	StepConfirmMistake  Step = "confirm_mistake"
	StepAwaitReason     Step = "await_reason"
	StepFollowup        Step = "followup"

	StepDoneDeclined     Step = "done_declined"
	StepDoneMisuse       Step = "done_misuse"
	StepDoneNoLoan       Step = "done_no_loan"
	StepDoneReminder     Step = "done_reminder"
	StepDoneSettlement   Step = "done_settlement"
	StepDoneNoReminder   Step = "done_no_reminder"
	StepDoneUnconfirmed  Step = "done_unconfirmed"  // reprompt cap exhausted
	StepDoneUnresponsive Step = "done_unresponsive" // transcription lost / call abandoned
)

// IsTerminal reports whether the step ends the dialogue.
func (s Step) IsTerminal() bool {
	switch s {
	case StepDoneDeclined, StepDoneMisuse, StepDoneNoLoan, StepDoneReminder,
		StepDoneSettlement, StepDoneNoReminder, StepDoneUnconfirmed, StepDoneUnresponsive:
		return true
	}
	return false
}

// Turn records one exchange for auditability. It is never consulted by the
// transition logic.
type Turn struct {
	At         time.Time `json:"at"`
	Step       Step      `json:"step"`
	Heard      string    `json:"heard"`
	Classified string    `json:"classified"`
}

// CallSession holds the dialogue state for one active call leg.
type CallSession struct {
	CallID     string
	Step       Step
	Answers    map[string]string
	Borrower   *BorrowerRecord
	History    []Turn
	Misses     int // consecutive not-understood turns at the current step
	StartedAt  time.Time
	LastActive time.Time
}

// NewCallSession creates a session positioned at the identity question.
func NewCallSession(callID string, borrower *BorrowerRecord) *CallSession {
	now := time.Now()
	return &CallSession{
		CallID:     callID,
		Step:       StepConfirmIdentity,
		Answers:    make(map[string]string),
		Borrower:   borrower.Clone(),
		StartedAt:  now,
		LastActive: now,
	}
}

// RecordTurn appends one exchange to the audit history.
func (s *CallSession) RecordTurn(heard, classified string) {
	s.History = append(s.History, Turn{
		At:         time.Now(),
		Step:       s.Step,
		Heard:      heard,
		Classified: classified,
	})
	s.LastActive = time.Now()
}

// SetAnswer records an accumulated answer. Answers are never reset; a later
// write for the same key overwrites the earlier one.
func (s *CallSession) SetAnswer(key, value string) {
	if s.Answers == nil {
		s.Answers = make(map[string]string)
	}
	s.Answers[key] = value
}

// AnswerSnapshot returns a copy of the accumulated answers, safe to use after
// the session lock is released.
func (s *CallSession) AnswerSnapshot() map[string]string {
	out := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		out[k] = v
	}
	return out
}

// IdleFor reports how long the session has gone without a webhook turn.
func (s *CallSession) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActive)
}
