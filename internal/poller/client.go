// Package poller is the terminal rendition of the browser notification
// poller: it fetches the store on a fixed cadence and alerts once per new
// unread notification.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saransh1220/flow-management/internal/modules/notification/domain"
)

var (
	ErrUnexpectedResponse = errors.New("unexpected response from notification endpoint")
	ErrServer             = errors.New("notification endpoint reported failure")
)

// Snapshot is one successful fetch.
type Snapshot struct {
	Notifications []domain.Notification
	UnreadCount   int
}

type Client interface {
	Fetch(ctx context.Context) (Snapshot, error)
}

// HTTPClient reads get_notifications from the delivery API.
type HTTPClient struct {
	endpoint string
	token    string
	http     *http.Client
}

func NewHTTPClient(baseURL, token string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/notifications",
		token:    token,
		http:     httpClient,
	}
}

type envelope struct {
	Success       bool                  `json:"success"`
	Error         string                `json:"error"`
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

func (c *HTTPClient) Fetch(ctx context.Context) (Snapshot, error) {
	q := url.Values{"action": {"get_notifications"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return Snapshot{}, fmt.Errorf("%w: status %d, content type %q", ErrUnexpectedResponse, resp.StatusCode, mediaType)
	}

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if !body.Success {
		msg := body.Error
		if msg == "" {
			msg = resp.Status
		}
		return Snapshot{}, fmt.Errorf("%w: %s", ErrServer, msg)
	}
	return Snapshot{Notifications: body.Notifications, UnreadCount: body.UnreadCount}, nil
}
