package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dsjohal14/prepsearch/internal/scope/catalog"
)

// ErrUnexpectedStatus is returned when the Test Repository answers with a non-2xx status
var ErrUnexpectedStatus = errors.New("unexpected status from test repository")

// maxResponseSize bounds the listing body read from the REST API
const maxResponseSize = 64 * 1024 * 1024

// HTTPRepository lists tests from the platform REST API
type HTTPRepository struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRepository creates a client for the REST API at baseURL.
// timeout bounds each request; zero means no client timeout.
func NewHTTPRepository(baseURL string, timeout time.Duration) *HTTPRepository {
	return &HTTPRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the source name
func (r *HTTPRepository) Name() string {
	return "http"
}

// ListTests calls GET {base}/api/tests?limit=N
func (r *HTTPRepository) ListTests(ctx context.Context, limit int) ([]catalog.TestDocument, error) {
	u, err := url.Parse(r.baseURL + "/api/tests")
	if err != nil {
		return nil, fmt.Errorf("invalid test repository url: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tests: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read tests response: %w", err)
	}

	items, err := decodeListing(body)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return catalog.DecodeTests(items), nil
}

// Close releases idle connections
func (r *HTTPRepository) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// decodeListing accepts a bare array or an envelope with "tests" or "data"
func decodeListing(body []byte) ([]json.RawMessage, error) {
	body = bytes.TrimSpace(body)

	var items []json.RawMessage
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("failed to decode tests: %w", err)
		}
		return items, nil
	}

	var envelope struct {
		Tests []json.RawMessage `json:"tests"`
		Data  []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode tests: %w", err)
	}
	if envelope.Tests != nil {
		return envelope.Tests, nil
	}
	return envelope.Data, nil
}
