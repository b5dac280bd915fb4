package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxRecordingBytes = 10 << 20 // 10 MiB

// Client is a minimal REST client for the telephony provider: placing
// outbound calls and downloading call recordings.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
}

// ClientConfig holds provider credentials and endpoints.
type ClientConfig struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	FromNumber string
	Timeout    time.Duration
}

// NewClient creates a provider client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("telephony credentials not configured")
	}
	if cfg.FromNumber == "" {
		return nil, fmt.Errorf("telephony from-number not configured")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
	}, nil
}

// PlaceCall starts an outbound call to the given number. The provider fetches
// voiceURL to learn what to do when the callee answers. Returns the
// provider-assigned call id.
func (c *Client) PlaceCall(ctx context.Context, to, voiceURL string) (string, error) {
	form := url.Values{
		"To":   {to},
		"From": {c.fromNumber},
		"Url":  {voiceURL},
	}
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, c.accountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("place call to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("place call to %s: provider returned %d: %s",
			to, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode call response: %w", err)
	}
	if out.SID == "" {
		return "", fmt.Errorf("provider returned no call sid")
	}
	return out.SID, nil
}

// FetchRecording downloads captured call audio. recordingURL is the value
// delivered in the capture-complete webhook; the provider serves MP3 at that
// URL with the ".mp3" suffix and requires account credentials.
func (c *Client) FetchRecording(ctx context.Context, recordingURL string) ([]byte, error) {
	if !strings.HasSuffix(recordingURL, ".mp3") {
		recordingURL += ".mp3"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build recording request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch recording: provider returned %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxRecordingBytes))
	if err != nil {
		return nil, fmt.Errorf("read recording body: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("recording is empty")
	}
	return audio, nil
}
