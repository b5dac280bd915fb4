package dialogue

import (
	"github.com/bargaj/collectcall/internal/classify"
	"github.com/bargaj/collectcall/internal/domain"
)

// Answer keys accumulated in the session and merged into the borrower record
// when a terminal step is reached.
const (
	AnswerResponded  = "responded"
	AnswerTookLoan   = "took_loan"
	AnswerReason     = "reason"
	AnswerReminder   = "wants_reminder"
	AnswerSettlement = "settlement_requested"
)

const (
	recordIntroSeconds  = 5
	recordAnswerSeconds = 6
	digitTimeoutSeconds = 5
)

// Result is the outcome of a single transition. Set holds answer-map
// mutations; Responded is the disposition value written alongside the
// accumulated answers when Next is terminal. Reprompt marks a
// not-understood turn that counts toward the reprompt cap.
type Result struct {
	Next      domain.Step
	Actions   []Action
	Set       map[string]string
	Responded string
	Reprompt  bool
}

// IntroActions returns the opening prompt for a freshly created session.
func IntroActions(b *domain.BorrowerRecord) []Action {
	return []Action{
		Speak{Text: promptIntro(b)},
		RequestRecording{MaxSeconds: recordIntroSeconds},
	}
}

// Transition computes the next step for one classified caller turn. It is a
// pure function of (borrower, step, input): no session mutation, no I/O, so
// replaying the same turn always yields the same result.
func Transition(b *domain.BorrowerRecord, step domain.Step, in classify.Input) Result {
	switch step {
	case domain.StepConfirmIdentity:
		switch in.Kind {
		case classify.Affirmative:
			return Result{
				Next: domain.StepConfirmLoan,
				Actions: []Action{
					Speak{Text: promptLoanSummary(b)},
					RequestRecording{MaxSeconds: recordAnswerSeconds},
				},
			}
		case classify.Negative:
			return Result{
				Next:      domain.StepDoneDeclined,
				Actions:   []Action{Speak{Text: promptDeclined}},
				Responded: "No",
			}
		}
		return reprompt(step)

	case domain.StepConfirmLoan:
		switch in.Kind {
		case classify.Affirmative:
			return Result{
				Next: domain.StepAwaitReason,
				Set:  map[string]string{AnswerTookLoan: "Yes"},
				Actions: []Action{
					Speak{Text: promptReasonMenu},
					RequestDigits{Count: 1, TimeoutSeconds: digitTimeoutSeconds},
				},
			}
		case classify.Negative:
			return Result{
				Next: domain.StepConfirmMistake,
				Set: map[string]string{
					AnswerTookLoan: "No",
					AnswerReason:   "Did not take loan",
				},
				Actions: []Action{
					Speak{Text: promptMistake},
					RequestRecording{MaxSeconds: recordAnswerSeconds},
				},
			}
		}
		return reprompt(step)

	case domain.StepConfirmMistake:
		switch in.Kind {
		case classify.Affirmative:
			return Result{
				Next:      domain.StepDoneMisuse,
				Set:       map[string]string{AnswerReason: "Possible identity misuse"},
				Actions:   []Action{Speak{Text: promptMisuseClosing}},
				Responded: "Yes",
			}
		case classify.Negative:
			return Result{
				Next:      domain.StepDoneNoLoan,
				Actions:   []Action{Speak{Text: promptNoLoanClosing}},
				Responded: "Yes",
			}
		}
		return reprompt(step)

	case domain.StepAwaitReason:
		if in.Kind == classify.Digit {
			if reason := reasonForDigit(in.Digit); reason != "" {
				question := promptReminder
				if in.Digit == "3" {
					// No money right now: offer the settlement option.
					question = promptSettlement
				}
				return Result{
					Next: domain.StepFollowup,
					Set:  map[string]string{AnswerReason: reason},
					Actions: []Action{
						Speak{Text: question},
						RequestRecording{MaxSeconds: recordAnswerSeconds},
					},
				}
			}
		}
		// Anything but a valid menu digit re-requests the selection.
		return Result{
			Next: step,
			Actions: []Action{
				Speak{Text: promptReasonMenu},
				RequestDigits{Count: 1, TimeoutSeconds: digitTimeoutSeconds},
			},
			Reprompt: true,
		}

	case domain.StepFollowup:
		// Reminder wins over settlement when an utterance matches both,
		// mirroring the affirmative-first precedence of the classifier.
		switch {
		case classify.WantsReminder(in):
			return Result{
				Next:      domain.StepDoneReminder,
				Set:       map[string]string{AnswerReminder: "Yes"},
				Actions:   []Action{Speak{Text: promptClosing}},
				Responded: "Yes",
			}
		case classify.WantsSettlement(in):
			return Result{
				Next:      domain.StepDoneSettlement,
				Set:       map[string]string{AnswerSettlement: "Yes"},
				Actions:   []Action{Speak{Text: promptClosing}},
				Responded: "Yes",
			}
		default:
			return Result{
				Next:      domain.StepDoneNoReminder,
				Set:       map[string]string{AnswerReminder: "No"},
				Actions:   []Action{Speak{Text: promptClosing}},
				Responded: "Yes",
			}
		}
	}

	// Terminal or unknown step: nothing further to say. Retired sessions
	// should not receive turns; a duplicated webhook lands here.
	return Result{Next: step}
}

func reprompt(step domain.Step) Result {
	return Result{
		Next: step,
		Actions: []Action{
			Speak{Text: promptRetryYesNo},
			RequestRecording{MaxSeconds: recordAnswerSeconds},
		},
		Reprompt: true,
	}
}
