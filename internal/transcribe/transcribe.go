// Package transcribe resolves captured call audio to text via an external
// speech-to-text service.
package transcribe

import (
	"context"
)

// Transcriber converts captured audio to text. Implementations are external
// collaborators; a failure here must end a call gracefully, never crash a
// webhook turn.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}
