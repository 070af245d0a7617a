package marketdata

import (
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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fetcher defines the read-only operations the screener needs from the
// market data service. It is implemented by *Client and faked in tests.
type Fetcher interface {
	FetchSectors(ctx context.Context) ([]string, error)
	FetchIndustries(ctx context.Context, sector string) ([]string, error)
	FetchScreener(ctx context.Context, query ScreenerQuery) (ScreenerPage, error)
	FetchCompanyProfile(ctx context.Context, symbol string) (Profile, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the market data HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *zap.Logger
	requestID func() string
}

const (
	defaultAPIURL    = "127.0.0.1:8080"
	defaultUserAgent = "screener/0.1"
	requestTimeout   = 10 * time.Second
	maxErrorBody     = 512
)

// Option customises a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient swaps the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient builds a Client for the service at apiURL (host:port or full URL).
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		logger:    zap.NewNop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root the client resolves paths against.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// FetchSectors lists every sector the service knows about.
func (c *Client) FetchSectors(ctx context.Context) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var raw json.RawMessage
	if err := c.do(ctx, &url.URL{Path: "/api/sectors"}, &raw); err != nil {
		return nil, err
	}
	return decodeNameList(raw, "sectors")
}

// FetchIndustries lists industries, scoped to sector when it is non-empty.
func (c *Client) FetchIndustries(ctx context.Context, sector string) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if s := strings.TrimSpace(sector); s != "" {
		values.Set("sector", s)
	}
	var raw json.RawMessage
	if err := c.do(ctx, &url.URL{Path: "/api/industries", RawQuery: values.Encode()}, &raw); err != nil {
		return nil, err
	}
	return decodeNameList(raw, "industries")
}

// ScreenerQuery configures /api/screener requests. Empty strings and nil caps
// are omitted from the query string.
type ScreenerQuery struct {
	Sector   string
	Industry string
	MinCap   *int64
	MaxCap   *int64
	Page     int
	PageSize int
}

// Values encodes the query as URL parameters.
func (q ScreenerQuery) Values() url.Values {
	values := url.Values{}
	if sector := strings.TrimSpace(q.Sector); sector != "" {
		values.Set("sector", sector)
	}
	if industry := strings.TrimSpace(q.Industry); industry != "" {
		values.Set("industry", industry)
	}
	if q.MinCap != nil {
		values.Set("min_cap", strconv.FormatInt(*q.MinCap, 10))
	}
	if q.MaxCap != nil {
		values.Set("max_cap", strconv.FormatInt(*q.MaxCap, 10))
	}
	values.Set("page", strconv.Itoa(max(q.Page, 0)))
	if q.PageSize > 0 {
		values.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return values
}

// FetchScreener runs a filtered, paginated query.
func (c *Client) FetchScreener(ctx context.Context, query ScreenerQuery) (ScreenerPage, error) {
	if c == nil {
		return ScreenerPage{}, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: "/api/screener", RawQuery: query.Values().Encode()}
	var payload ScreenerPage
	if err := c.do(ctx, rel, &payload); err != nil {
		return ScreenerPage{}, err
	}
	return payload, nil
}

// FetchCompanyProfile retrieves the extended profile for symbol.
func (c *Client) FetchCompanyProfile(ctx context.Context, symbol string) (Profile, error) {
	if c == nil {
		return Profile{}, fmt.Errorf("client is nil")
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Profile{}, fmt.Errorf("symbol required")
	}
	rel := &url.URL{
		Path:    "/api/companies/" + symbol + "/profile",
		RawPath: "/api/companies/" + url.PathEscape(symbol) + "/profile",
	}
	var payload Profile
	if err := c.do(ctx, rel, &payload); err != nil {
		return Profile{}, err
	}
	if payload.Symbol == "" {
		payload.Symbol = symbol
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("path", rel.Path),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return &NetworkError{Path: rel.Path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api request",
		zap.String("path", rel.Path),
		zap.String("query", rel.RawQuery),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ServiceError{
			Path:       rel.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return &NetworkError{Path: rel.Path, Err: err}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// classifyTransport returns a short description of a transport failure.
func classifyTransport(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "Cancelled"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Service offline"
	case strings.Contains(msg, "no such host"):
		return "Host not found"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "Timeout"):
		return "Timed out"
	default:
		return "Network error"
	}
}
