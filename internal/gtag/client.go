// Package gtag sends analytics calls to Google Analytics 4 over the
// Measurement Protocol.
package gtag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/apilon/apilon-landing/internal/analytics"
	"github.com/apilon/apilon-landing/internal/logging"
)

const (
	defaultEndpoint = "https://www.google-analytics.com"
	sendTimeout     = 5 * time.Second
	maxInFlight     = 64
)

// ErrBusy is returned when too many sends are pending and the event was dropped.
var ErrBusy = errors.New("gtag: too many pending sends, event dropped")

// Client delivers Measurement Protocol hits in the background. Tag returns as
// soon as a hit is queued; delivery failures are logged, not returned.
type Client struct {
	endpoint      string
	measurementID string
	apiSecret     string
	httpClient    *http.Client
	log           logrus.FieldLogger

	slots chan struct{}
	wg    sync.WaitGroup
}

// New returns a client for measurementID. An empty endpoint uses Google's.
func New(endpoint, measurementID, apiSecret string) *Client {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Client{
		endpoint:      endpoint,
		measurementID: measurementID,
		apiSecret:     apiSecret,
		httpClient:    &http.Client{Timeout: sendTimeout},
		log:           logging.Null(),
		slots:         make(chan struct{}, maxInFlight),
	}
}

// SetHTTPClient replaces the default http client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// SetLogger sets where delivery failures are reported.
func (c *Client) SetLogger(log logrus.FieldLogger) {
	c.log = log
}

// Flush waits for pending sends to finish or for ctx to end.
func (c *Client) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ForClient returns a Tagger that reports on behalf of a browser client id.
func (c *Client) ForClient(clientID string) analytics.Tagger {
	return &clientTagger{c: c, clientID: clientID}
}

type payload struct {
	ClientID string    `json:"client_id"`
	Events   []mpEvent `json:"events"`
}

type mpEvent struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

type clientTagger struct {
	c        *Client
	clientID string
}

func (t *clientTagger) Tag(ctx context.Context, cmd analytics.Command, target string, params analytics.Params) error {
	switch cmd {
	case analytics.CommandEvent:
		return t.c.dispatch(ctx, t.clientID, mpEvent{Name: target, Params: params})
	case analytics.CommandConfig:
		if target != t.c.measurementID {
			return fmt.Errorf("config for unknown measurement id %q", target)
		}
		path, ok := params[analytics.ParamPagePath]
		if !ok {
			return nil
		}
		return t.c.dispatch(ctx, t.clientID, mpEvent{
			Name:   "page_view",
			Params: map[string]any{"page_location": path, "page_path": path},
		})
	case analytics.CommandSet, analytics.CommandJS:
		// nothing to send server-side
		return nil
	}
	return fmt.Errorf("unknown gtag command %q", cmd)
}

// dispatch sends ev on its own goroutine. The request context only carries
// values; cancellation of the originating request does not abort the send.
func (c *Client) dispatch(ctx context.Context, clientID string, ev mpEvent) error {
	select {
	case c.slots <- struct{}{}:
	default:
		return ErrBusy
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() { <-c.slots }()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		if err := c.send(sendCtx, clientID, ev); err != nil {
			c.log.WithFields(logrus.Fields{
				"event":     ev.Name,
				"client_id": clientID,
			}).WithError(err).Warn("measurement protocol send failed")
		}
	}()
	return nil
}

func (c *Client) send(ctx context.Context, clientID string, ev mpEvent) error {
	body, err := json.Marshal(payload{ClientID: clientID, Events: []mpEvent{ev}})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	q := url.Values{}
	q.Set("measurement_id", c.measurementID)
	q.Set("api_secret", c.apiSecret)
	u := c.endpoint + "/mp/collect?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("measurement protocol returned %s", resp.Status)
	}
	return nil
}
