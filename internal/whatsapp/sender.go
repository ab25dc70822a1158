// Package whatsapp is the Twilio transport boundary: an outbound REST sender
// and an inbound webhook server that adapts provider callbacks into the
// bot's message type.
package whatsapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBaseURL = "https://api.twilio.com"

// Sender delivers outbound WhatsApp messages through the Twilio REST API.
// Credentials may be absent in local development; Send then fails cleanly
// instead of panicking.
type Sender struct {
	http       *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
}

type SenderConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	HTTPClient *http.Client
}

func NewSender(cfg SenderConfig) *Sender {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	return &Sender{
		http:       httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: strings.TrimSpace(cfg.AccountSID),
		authToken:  strings.TrimSpace(cfg.AuthToken),
		fromNumber: strings.TrimSpace(cfg.FromNumber),
	}
}

// Configured reports whether credentials and a from-number are present.
func (s *Sender) Configured() bool {
	return s.accountSID != "" && s.authToken != "" && s.fromNumber != ""
}

// Send posts one WhatsApp message to the given recipient. to is the full
// provider identity, e.g. "whatsapp:+595981123456". Failures are not retried.
func (s *Sender) Send(ctx context.Context, to, body string) error {
	if !s.Configured() {
		return fmt.Errorf("twilio sender is not configured")
	}

	form := url.Values{}
	form.Set("From", s.fromNumber)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("twilio send http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}

// DownloadMedia fetches a Twilio media attachment. Media URLs require the
// account credentials as basic auth.
func (s *Sender) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download media http %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
