// Package safebrowsing checks URLs against the Google Safe Browsing v4
// threatMatches:find endpoint.
package safebrowsing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://safebrowsing.googleapis.com"

	clientID      = "guardian-digital-chatbot"
	clientVersion = "1.0.0"
)

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func New(apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
}

// NewWithBaseURL exists for tests against a local server.
func NewWithBaseURL(httpClient *http.Client, baseURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

type threatEntry struct {
	URL string `json:"url"`
}

type findRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo struct {
		ThreatTypes      []string      `json:"threatTypes"`
		PlatformTypes    []string      `json:"platformTypes"`
		ThreatEntryTypes []string      `json:"threatEntryTypes"`
		ThreatEntries    []threatEntry `json:"threatEntries"`
	} `json:"threatInfo"`
}

type findResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
		Threat     struct {
			URL string `json:"url"`
		} `json:"threat"`
	} `json:"matches"`
}

// Lookup reports whether any of the given URLs is a known threat. An empty
// url list returns false without a network call.
func (c *Client) Lookup(ctx context.Context, urls []string) (bool, error) {
	if len(urls) == 0 {
		return false, nil
	}

	var body findRequest
	body.Client.ClientID = clientID
	body.Client.ClientVersion = clientVersion
	body.ThreatInfo.ThreatTypes = []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE", "POTENTIALLY_HARMFUL_APPLICATION"}
	body.ThreatInfo.PlatformTypes = []string{"ANY_PLATFORM"}
	body.ThreatInfo.ThreatEntryTypes = []string{"URL"}
	for _, u := range urls {
		body.ThreatInfo.ThreatEntries = append(body.ThreatInfo.ThreatEntries, threatEntry{URL: u})
	}

	b, err := json.Marshal(body)
	if err != nil {
		return false, err
	}

	endpoint := fmt.Sprintf("%s/v4/threatMatches:find?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("safebrowsing http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out findResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return false, fmt.Errorf("safebrowsing: invalid response json: %w", err)
	}
	return len(out.Matches) > 0, nil
}
