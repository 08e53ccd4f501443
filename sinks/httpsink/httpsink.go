// Package httpsink is a reference MetricsHandler implementation that POSTs
// each emitted metrics record as JSON to one or more HTTP endpoints,
// discarding the response body (a metrics sink has nothing to parse back).
package httpsink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// closeWithLog closes an io.Closer and logs any error, so a deferred close
// never overrides the function's primary error.
func closeWithLog(closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		slog.Warn("httpsink: failed to close response body", "error", err)
	}
}

// Sink POSTs a JSON-encoded metrics record to one or more endpoints. When
// more than one endpoint is configured, posts fan out concurrently via
// errgroup. The core driver loop itself stays strictly single-threaded;
// concurrency appears only at this output edge.
type Sink struct {
	client    *http.Client
	endpoints []string
	headers   map[string]string
}

// Option configures a Sink.
type Option func(*Sink)

// WithClient overrides the *http.Client used for requests. Default is
// http.DefaultClient.
func WithClient(client *http.Client) Option {
	return func(s *Sink) { s.client = client }
}

// WithHeader sets a header applied to every outgoing request (e.g. an
// API key or content signature).
func WithHeader(key, value string) Option {
	return func(s *Sink) {
		if s.headers == nil {
			s.headers = map[string]string{}
		}
		s.headers[key] = value
	}
}

// New builds a Sink posting to the given endpoints.
func New(endpoints []string, opts ...Option) *Sink {
	s := &Sink{client: http.DefaultClient, endpoints: endpoints}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PostMetricsRecord marshals record to JSON and POSTs it to every
// configured endpoint, returning the first error encountered (if any);
// other posts in flight are still allowed to complete since the zero-value
// errgroup.Group does not cancel siblings when one fails.
func (s *Sink) PostMetricsRecord(ctx context.Context, record any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("httpsink: marshal record: %w", err)
	}

	if len(s.endpoints) == 1 {
		return s.post(ctx, s.endpoints[0], body)
	}

	var g errgroup.Group
	for _, endpoint := range s.endpoints {
		endpoint := endpoint
		g.Go(func() error {
			return s.post(ctx, endpoint, body)
		})
	}
	return g.Wait()
}

func (s *Sink) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("httpsink: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("httpsink: post %s: %w", url, err)
	}
	defer closeWithLog(res.Body)
	duration := time.Since(start)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		respBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("httpsink: %s returned non-2xx status %d after %s: %s", url, res.StatusCode, duration, string(respBody))
	}
	return nil
}
