package webhook

import "errors"

var (
	errCollaboratorUnavailable = errors.New("transcription collaborator not configured")
	errNoRecordingURL          = errors.New("capture-complete event carried no recording url")
)
