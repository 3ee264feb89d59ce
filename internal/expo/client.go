package expo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultPushURL is Expo's push delivery endpoint.
const DefaultPushURL = "https://exp.host/--/api/v2/push/send"

// IsLikelyExpoToken reports whether token structurally matches one of the two
// Expo token envelopes. Cheap pre-send filter; it does not prove the token is
// live, only that it isn't obviously malformed.
func IsLikelyExpoToken(token string) bool {
	if !strings.HasSuffix(token, "]") {
		return false
	}
	return strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")
}

// PushMessage is one outbound notification for one device.
type PushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient returns a push client. An empty url selects DefaultPushURL.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultPushURL
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one message to the Expo push endpoint. The parsed JSON response
// body is returned whenever the gateway answered, even alongside a non-nil
// error, so callers can log the gateway's receipt for failed sends too.
func (c *Client) Send(ctx context.Context, msg PushMessage) (map[string]interface{}, error) {
	b, err := json.Marshal([]PushMessage{msg})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		parsed = nil
	}

	if resp.StatusCode >= 300 {
		return parsed, fmt.Errorf("expo push failed with status %d", resp.StatusCode)
	}
	return parsed, nil
}
