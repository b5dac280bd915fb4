// Package webhook provides the HTTP handlers driven by the telephony
// provider: call-started, capture-complete, digit-capture and
// recording-saved events.
package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bargaj/collectcall/internal/classify"
	"github.com/bargaj/collectcall/internal/dialogue"
	"github.com/bargaj/collectcall/internal/telephony"
	"github.com/go-chi/chi/v5"
)

// RecordingFetcher downloads captured audio from the provider.
type RecordingFetcher interface {
	FetchRecording(ctx context.Context, recordingURL string) ([]byte, error)
}

// Transcriber resolves captured audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// Handler wires provider webhooks into the dialogue engine.
type Handler struct {
	engine      *dialogue.Engine
	renderer    *telephony.Renderer
	fetcher     RecordingFetcher
	transcriber Transcriber
}

// NewHandler creates a webhook handler. fetcher and transcriber may be nil
// when the respective collaborator is not configured; affected calls then
// end on the graceful fallback path.
func NewHandler(engine *dialogue.Engine, renderer *telephony.Renderer, fetcher RecordingFetcher, transcriber Transcriber) *Handler {
	return &Handler{
		engine:      engine,
		renderer:    renderer,
		fetcher:     fetcher,
		transcriber: transcriber,
	}
}

// RegisterRoutes registers the provider-facing webhook routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/voice", h.CallStarted)
	r.Post("/voice", h.CallStarted)
	r.Post("/process", h.CaptureComplete)
	r.Post("/handle_reason", h.DigitsComplete)
	r.Post("/save", h.RecordingSaved)
}

// CallStarted handles the call-started event: look up the borrower for the
// dialed number and open the dialogue, or apologize and hang up.
func (h *Handler) CallStarted(w http.ResponseWriter, r *http.Request) {
	callID := formValue(r, "CallSid")
	to := formValue(r, "To")
	if callID == "" || to == "" {
		slog.Warn("call-started event missing identifiers", "call_id", callID, "to", to)
		h.respondActions(w, []dialogue.Action{dialogue.Speak{Text: dialogue.PromptNotFound}})
		return
	}

	out, err := h.engine.Begin(r.Context(), callID, to)
	if err != nil {
		slog.Error("Failed to begin dialogue", "call_id", callID, "error", err)
	}
	h.respondActions(w, out.Actions)
}

// CaptureComplete handles a finished voice capture: download the recording,
// transcribe it, and advance the dialogue one turn. Any collaborator failure
// ends the call on the graceful fallback path instead of leaving the
// provider without a response.
func (h *Handler) CaptureComplete(w http.ResponseWriter, r *http.Request) {
	callID := formValue(r, "CallSid")
	recordingURL := formValue(r, "RecordingUrl")

	text, err := h.resolveText(r.Context(), recordingURL)
	if err != nil {
		slog.Error("Failed to resolve captured audio",
			"call_id", callID, "recording_url", recordingURL, "error", err)
		out := h.engine.Abort(r.Context(), callID)
		h.respondActions(w, out.Actions)
		return
	}

	h.advance(w, r, callID, classify.Utterance(text))
}

// DigitsComplete handles a finished keypad capture for the reason menu.
func (h *Handler) DigitsComplete(w http.ResponseWriter, r *http.Request) {
	callID := formValue(r, "CallSid")
	h.advance(w, r, callID, classify.FromDigits(formValue(r, "Digits")))
}

// RecordingSaved acknowledges the recording-status callback. No dialogue
// effect.
func (h *Handler) RecordingSaved(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("Saved")); err != nil {
		slog.Debug("Failed to write save acknowledgment", "error", err)
	}
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request, callID string, in classify.Input) {
	out, err := h.engine.Advance(r.Context(), callID, in)
	if err != nil {
		// Unknown or already-retired session, likely a duplicated webhook.
		// The provider still needs a document to play.
		slog.Warn("Dropping turn for unknown session", "call_id", callID, "error", err)
		h.respondActions(w, []dialogue.Action{dialogue.Speak{Text: "Goodbye."}})
		return
	}
	h.respondActions(w, out.Actions)
}

// resolveText turns a capture-complete event into transcribed text.
func (h *Handler) resolveText(ctx context.Context, recordingURL string) (string, error) {
	if h.fetcher == nil || h.transcriber == nil {
		return "", errCollaboratorUnavailable
	}
	if recordingURL == "" {
		return "", errNoRecordingURL
	}

	audio, err := h.fetcher.FetchRecording(ctx, recordingURL)
	if err != nil {
		return "", err
	}
	return h.transcriber.Transcribe(ctx, audio, "audio/mpeg")
}

func (h *Handler) respondActions(w http.ResponseWriter, actions []dialogue.Action) {
	body, err := h.renderer.Render(actions)
	if err != nil {
		slog.Error("Failed to render response document", "error", err)
		http.Error(w, "render failure", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	if _, err := w.Write(body); err != nil {
		slog.Debug("Failed to write webhook response", "error", err)
	}
}

func formValue(r *http.Request, key string) string {
	if err := r.ParseForm(); err != nil {
		return ""
	}
	if v := r.PostForm.Get(key); v != "" {
		return v
	}
	return r.Form.Get(key)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
