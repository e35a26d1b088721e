package dnb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"partnersearch/internal/company/models"
	"partnersearch/pkg/platform/circuit"
	"partnersearch/pkg/platform/sentinel"
)

var tracer = otel.Tracer("partnersearch/dnb")

// tokenSkew renews the access token this long before D&B expires it.
const tokenSkew = time.Minute

// HTTPClient calls the D&B Direct Plus REST API with client-credentials auth.
type HTTPClient struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type Option func(*HTTPClient)

func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) { c.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *HTTPClient) { c.breaker = b }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) { c.now = now }
}

func NewHTTPClient(baseURL, apiKey, apiSecret string, timeout time.Duration, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: timeout},
		breaker:   circuit.New("dnb"),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) Search(ctx context.Context, criteria Criteria) ([]models.Company, error) {
	ctx, span := tracer.Start(ctx, "dnb.Search")
	defer span.End()

	body, err := json.Marshal(newSearchRequest(criteria))
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	var resp searchResponse
	if err := c.call(ctx, "search", http.MethodPost, "/v1/search/criteria", body, &resp); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	now := c.now().UTC()
	results := make([]models.Company, 0, len(resp.SearchCandidates))
	for _, cand := range resp.SearchCandidates {
		co := cand.Organization.toCompany()
		co.LastUpdated = now
		results = append(results, co)
	}
	span.SetAttributes(attribute.Int("dnb.results", len(results)))
	return results, nil
}

func (c *HTTPClient) Hierarchy(ctx context.Context, duns string) (*models.Envelope, error) {
	ctx, span := tracer.Start(ctx, "dnb.Hierarchy", trace.WithAttributes(attribute.String("dnb.duns", duns)))
	defer span.End()

	var resp familyTreeResponse
	path := "/v1/familyTree/" + url.PathEscape(duns)
	if err := c.call(ctx, "family_tree", http.MethodGet, path, nil, &resp); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if len(resp.FamilyTreeMembers) == 0 {
		return nil, sentinel.ErrNotFound
	}

	h := BuildHierarchy(duns, resp.FamilyTreeMembers)
	span.SetAttributes(attribute.Int("dnb.members", len(h.FamilyTreeMembers)))
	return &models.Envelope{
		DUNS:        duns,
		Hierarchy:   h,
		DataSource:  models.DefaultDataSource,
		LastUpdated: c.now().UTC(),
	}, nil
}

// call performs an authenticated request guarded by the circuit breaker.
func (c *HTTPClient) call(ctx context.Context, operation, method, path string, body []byte, out any) error {
	if !c.breaker.Allow() {
		c.metrics.incrementBreakerRejection()
		return fmt.Errorf("dnb circuit open: %w", sentinel.ErrUnavailable)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		c.recordFailure(ctx, operation, err)
		return err
	}

	start := c.now()
	status, err := c.do(ctx, method, c.baseURL+path, body, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}, out)
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case status == http.StatusNotFound:
		outcome = "not_found"
		err = sentinel.ErrNotFound
	case status == http.StatusTooManyRequests:
		outcome = "rate_limited"
		err = sentinel.ErrRateLimited
	case status == http.StatusUnauthorized:
		c.invalidateToken()
		outcome = "error"
		err = fmt.Errorf("dnb rejected access token: %w", sentinel.ErrUnavailable)
	case status >= 500:
		outcome = "error"
		err = fmt.Errorf("dnb %s returned %d: %w", operation, status, sentinel.ErrUnavailable)
	case status >= 400:
		outcome = "error"
		err = fmt.Errorf("dnb %s returned %d", operation, status)
	}
	c.metrics.observe(operation, outcome, c.now().Sub(start))

	if outcome == "error" && (status == 0 || status >= 500 || status == http.StatusUnauthorized) {
		c.recordFailure(ctx, operation, err)
	} else if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "dnb circuit closed", "operation", operation)
	}
	return err
}

func (c *HTTPClient) recordFailure(ctx context.Context, operation string, err error) {
	_, change := c.breaker.RecordFailure()
	c.logger.WarnContext(ctx, "dnb call failed", "operation", operation, "error", err)
	if change.Opened {
		c.logger.ErrorContext(ctx, "dnb circuit opened", "operation", operation)
	}
}

// do sends the request and decodes a 2xx JSON body into out. A non-nil error
// means the transport failed; HTTP error statuses are returned as status.
func (c *HTTPClient) do(ctx context.Context, method, target string, body []byte, decorate func(*http.Request), out any) (int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, fmt.Errorf("build dnb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("dnb request: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode dnb response: %w", err)
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body := []byte(`{"grant_type":"client_credentials"}`)
	var tr tokenResponse
	start := c.now()
	status, err := c.do(ctx, http.MethodPost, c.baseURL+"/v2/token", body, func(req *http.Request) {
		req.SetBasicAuth(c.apiKey, c.apiSecret)
	}, &tr)
	if err == nil && status != http.StatusOK {
		err = fmt.Errorf("dnb token endpoint returned %d: %w", status, sentinel.ErrUnavailable)
	}
	if err == nil && tr.AccessToken == "" {
		err = errors.New("dnb token response carried no access token")
	}
	if err != nil {
		c.metrics.observe("token", "error", c.now().Sub(start))
		return "", err
	}
	c.metrics.observe("token", "ok", c.now().Sub(start))

	c.token = tr.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSkew)
	return c.token, nil
}

func (c *HTTPClient) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
}

func recordSpanError(span trace.Span, err error) {
	if errors.Is(err, sentinel.ErrNotFound) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
