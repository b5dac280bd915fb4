// Package telephony adapts abstract dialogue actions to the telephony
// provider: TwiML rendering for webhook responses, the REST call to place
// outbound calls, and authenticated recording downloads.
package telephony

import (
	"encoding/xml"
	"fmt"

	"github.com/bargaj/collectcall/internal/dialogue"
)

// Routes carries the webhook paths baked into rendered TwiML verbs.
type Routes struct {
	Process string // recorded-answer callback
	Digits  string // keypad gather callback
	Save    string // recording-saved status callback
}

// DefaultRoutes matches the registered webhook handlers.
func DefaultRoutes() Routes {
	return Routes{
		Process: "/process",
		Digits:  "/handle_reason",
		Save:    "/save",
	}
}

// Renderer turns dialogue actions into TwiML documents.
type Renderer struct {
	voice  string
	routes Routes
}

// NewRenderer creates a renderer speaking with the given TTS voice.
func NewRenderer(voice string, routes Routes) *Renderer {
	return &Renderer{voice: voice, routes: routes}
}

type voiceResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type sayVerb struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr"`
	Text    string   `xml:",chardata"`
}

type recordVerb struct {
	XMLName                 xml.Name `xml:"Record"`
	MaxLength               int      `xml:"maxLength,attr"`
	Action                  string   `xml:"action,attr"`
	RecordingStatusCallback string   `xml:"recordingStatusCallback,attr"`
	PlayBeep                bool     `xml:"playBeep,attr"`
}

type gatherVerb struct {
	XMLName   xml.Name `xml:"Gather"`
	Input     string   `xml:"input,attr"`
	NumDigits int      `xml:"numDigits,attr"`
	Action    string   `xml:"action,attr"`
	Timeout   int      `xml:"timeout,attr"`
	Say       *sayVerb `xml:"Say,omitempty"`
}

// Render converts a dialogue action list to a TwiML document. A Speak
// immediately followed by RequestDigits nests inside the gather, so the
// caller can key a digit while the menu is still being read.
func (r *Renderer) Render(actions []dialogue.Action) ([]byte, error) {
	resp := voiceResponse{}

	for i := 0; i < len(actions); i++ {
		switch a := actions[i].(type) {
		case dialogue.Speak:
			if i+1 < len(actions) {
				if g, ok := actions[i+1].(dialogue.RequestDigits); ok {
					resp.Verbs = append(resp.Verbs, gatherVerb{
						Input:     "dtmf",
						NumDigits: g.Count,
						Action:    r.routes.Digits,
						Timeout:   g.TimeoutSeconds,
						Say:       &sayVerb{Voice: r.voice, Text: a.Text},
					})
					i++
					continue
				}
			}
			resp.Verbs = append(resp.Verbs, sayVerb{Voice: r.voice, Text: a.Text})
		case dialogue.RequestRecording:
			resp.Verbs = append(resp.Verbs, recordVerb{
				MaxLength:               a.MaxSeconds,
				Action:                  r.routes.Process,
				RecordingStatusCallback: r.routes.Save,
				PlayBeep:                true,
			})
		case dialogue.RequestDigits:
			resp.Verbs = append(resp.Verbs, gatherVerb{
				Input:     "dtmf",
				NumDigits: a.Count,
				Action:    r.routes.Digits,
				Timeout:   a.TimeoutSeconds,
			})
		default:
			return nil, fmt.Errorf("unknown dialogue action %T", a)
		}
	}

	body, err := xml.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
