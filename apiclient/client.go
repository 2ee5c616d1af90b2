// Package apiclient is the HTTP client of the upstream drugstore REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/giygas/drugstore/entities"
	"github.com/giygas/drugstore/interfaces"
	"github.com/giygas/drugstore/logging"
	"github.com/juju/ratelimit"
	"golang.org/x/sync/errgroup"
)

// Compile-time check to ensure Client implements CatalogAPI
var _ interfaces.CatalogAPI = (*Client)(nil)

const (
	defaultTimeout    = 30 * time.Second
	defaultBatchLimit = 8
	maxErrorBody      = 64 * 1024
)

// Error is a non-2xx answer from upstream.
type Error struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// envelope is the upstream response wrapper: {"data": ...}.
type envelope[T any] struct {
	Data T `json:"data"`
}

// Client calls the upstream API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	bucket     *ratelimit.Bucket
	batchLimit int
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every upstream request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRate throttles outbound requests to perSecond with the given burst.
// A non-positive rate disables throttling.
func WithRate(perSecond float64, burst int64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.bucket = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.bucket = ratelimit.NewBucketWithRate(perSecond, burst)
	}
}

// WithBatchLimit bounds the concurrency of batch-by-id fetches.
func WithBatchLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchLimit = n
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base URL must be http or https, got %q", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		batchLimit: defaultBatchLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetDrugs lists every drug.
func (c *Client) GetDrugs(ctx context.Context) ([]entities.Drug, error) {
	return getList[entities.Drug](ctx, c, "/drugs", nil)
}

// GetDrug fetches one drug.
func (c *Client) GetDrug(ctx context.Context, id string) (entities.Drug, error) {
	var out envelope[entities.Drug]
	err := c.do(ctx, http.MethodGet, "/drugs/"+url.PathEscape(id), nil, nil, &out)
	return out.Data, err
}

// GetDrugsByCountry lists the drugs of one country.
func (c *Client) GetDrugsByCountry(ctx context.Context, countryID string) ([]entities.Drug, error) {
	return getList[entities.Drug](ctx, c, "/"+url.PathEscape(countryID)+"/drugs", nil)
}

// GetDrugsBySubstance lists drugs whose active substance is substance.
func (c *Client) GetDrugsBySubstance(ctx context.Context, substance string) ([]entities.Drug, error) {
	return getList[entities.Drug](ctx, c, "/drugs", url.Values{"activeSubstance": {substance}})
}

// GetDrugsByIDs fetches drugs one by one with bounded concurrency and returns
// them in the order of ids. Ids unknown upstream are skipped; any other
// failure fails the whole batch.
func (c *Client) GetDrugsByIDs(ctx context.Context, ids []string) ([]entities.Drug, error) {
	found := make([]*entities.Drug, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.batchLimit)
	for i, id := range ids {
		g.Go(func() error {
			drug, err := c.GetDrug(gctx, id)
			if IsNotFound(err) {
				logging.Debug("Drug missing from batch fetch", "drug_id", id)
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = &drug
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	drugs := make([]entities.Drug, 0, len(ids))
	for _, d := range found {
		if d != nil {
			drugs = append(drugs, *d)
		}
	}
	return drugs, nil
}

// CreateDrug posts a new drug and returns the stored record.
func (c *Client) CreateDrug(ctx context.Context, drug entities.Drug) (entities.Drug, error) {
	var out envelope[entities.Drug]
	err := c.do(ctx, http.MethodPost, "/drugs", nil, drug, &out)
	return out.Data, err
}

// UpdateDrug replaces a drug.
func (c *Client) UpdateDrug(ctx context.Context, id string, drug entities.Drug) (entities.Drug, error) {
	var out envelope[entities.Drug]
	err := c.do(ctx, http.MethodPut, "/drugs/"+url.PathEscape(id), nil, drug, &out)
	return out.Data, err
}

// DeleteDrug removes a drug and returns the deleted record.
func (c *Client) DeleteDrug(ctx context.Context, id string) (entities.Drug, error) {
	var out envelope[entities.Drug]
	err := c.do(ctx, http.MethodDelete, "/drugs/"+url.PathEscape(id), nil, nil, &out)
	return out.Data, err
}

// GetCountries lists every country.
func (c *Client) GetCountries(ctx context.Context) ([]entities.Country, error) {
	return getList[entities.Country](ctx, c, "/countries", nil)
}

// GetCountry fetches one country.
func (c *Client) GetCountry(ctx context.Context, id string) (entities.Country, error) {
	var out envelope[entities.Country]
	err := c.do(ctx, http.MethodGet, "/countries/"+url.PathEscape(id), nil, nil, &out)
	return out.Data, err
}

// CreateCountry posts a new country.
func (c *Client) CreateCountry(ctx context.Context, country entities.Country) (entities.Country, error) {
	var out envelope[entities.Country]
	err := c.do(ctx, http.MethodPost, "/countries", nil, country, &out)
	return out.Data, err
}

// UpdateCountry renames a country.
func (c *Client) UpdateCountry(ctx context.Context, id string, country entities.Country) (entities.Country, error) {
	var out envelope[entities.Country]
	err := c.do(ctx, http.MethodPut, "/countries/"+url.PathEscape(id), nil, country, &out)
	return out.Data, err
}

// DeleteCountry removes a country.
func (c *Client) DeleteCountry(ctx context.Context, id string) (entities.Country, error) {
	var out envelope[entities.Country]
	err := c.do(ctx, http.MethodDelete, "/countries/"+url.PathEscape(id), nil, nil, &out)
	return out.Data, err
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var out envelope[[]T]
	if err := c.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return []T{}, nil
	}
	return out.Data, nil
}

// do performs one request. body is JSON-encoded when non-nil and the response
// is decoded into out on success.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Warn("Failed to close response body", "error", cerr)
		}
	}()

	logging.Debug("Upstream request",
		"method", method,
		"path", path,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp, method, path)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) throttle(ctx context.Context) error {
	if c.bucket == nil {
		return nil
	}
	wait := c.bucket.Take(1)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newError(resp *http.Response, method, path string) *Error {
	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Method:     method,
		Path:       path,
		Message:    fmt.Sprintf("%s %s: %s", method, path, http.StatusText(resp.StatusCode)),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Message != "":
			apiErr.Message = body.Message
		case body.Error != "":
			apiErr.Message = body.Error
		}
	}
	return apiErr
}
