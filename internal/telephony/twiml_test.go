package telephony

import (
	"strings"
	"testing"

	"github.com/bargaj/collectcall/internal/dialogue"
)

func testRenderer() *Renderer {
	return NewRenderer("Polly.Aditi", DefaultRoutes())
}

func TestRenderSpeakAndRecord(t *testing.T) {
	out, err := testRenderer().Render([]dialogue.Action{
		dialogue.Speak{Text: "Am I speaking to Asha?"},
		dialogue.RequestRecording{MaxSeconds: 5},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	body := string(out)
	if !strings.HasPrefix(body, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("missing XML header: %s", body)
	}
	for _, want := range []string{
		`<Say voice="Polly.Aditi">Am I speaking to Asha?</Say>`,
		`maxLength="5"`,
		`action="/process"`,
		`recordingStatusCallback="/save"`,
		`playBeep="true"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("rendered TwiML missing %q:\n%s", want, body)
		}
	}
	if strings.Index(body, "<Say") > strings.Index(body, "<Record") {
		t.Errorf("Say must precede Record:\n%s", body)
	}
}

func TestRenderGatherNestsPrompt(t *testing.T) {
	out, err := testRenderer().Render([]dialogue.Action{
		dialogue.Speak{Text: "Press 1 or 2."},
		dialogue.RequestDigits{Count: 1, TimeoutSeconds: 5},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	body := string(out)
	for _, want := range []string{
		`input="dtmf"`,
		`numDigits="1"`,
		`timeout="5"`,
		`action="/handle_reason"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("gather missing %q:\n%s", want, body)
		}
	}
	// The menu prompt must sit inside the gather so digits interrupt it.
	gatherStart := strings.Index(body, "<Gather")
	gatherEnd := strings.Index(body, "</Gather>")
	sayPos := strings.Index(body, "<Say")
	if gatherStart == -1 || gatherEnd == -1 || sayPos < gatherStart || sayPos > gatherEnd {
		t.Errorf("prompt not nested in gather:\n%s", body)
	}
}

func TestRenderTerminalSayOnly(t *testing.T) {
	out, err := testRenderer().Render([]dialogue.Action{
		dialogue.Speak{Text: "Goodbye."},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	body := string(out)
	if strings.Contains(body, "<Record") || strings.Contains(body, "<Gather") {
		t.Errorf("terminal response must not request capture:\n%s", body)
	}
	if !strings.Contains(body, "Goodbye.") {
		t.Errorf("closing message missing:\n%s", body)
	}
}

func TestRenderEscapesText(t *testing.T) {
	out, err := testRenderer().Render([]dialogue.Action{
		dialogue.Speak{Text: "loans < 5000 & fees"},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(string(out), "loans &lt; 5000 &amp; fees") {
		t.Errorf("text not escaped:\n%s", out)
	}
}
