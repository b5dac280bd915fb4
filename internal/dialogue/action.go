// Package dialogue implements the call-flow state machine for loan
// collection calls: which question comes next, what gets asked, and which
// disposition fields each terminal writes back to the borrower directory.
package dialogue

// Action is an abstract instruction for the telephony side. The engine never
// sees how an action renders on the wire.
type Action interface {
	isAction()
}

// Speak plays a spoken prompt to the caller.
type Speak struct {
	Text string
}

// RequestRecording asks the telephony layer to capture a spoken answer.
type RequestRecording struct {
	MaxSeconds int
}

// RequestDigits asks the telephony layer to capture a keypad selection.
type RequestDigits struct {
	Count          int
	TimeoutSeconds int
}

func (Speak) isAction()            {}
func (RequestRecording) isAction() {}
func (RequestDigits) isAction()    {}
