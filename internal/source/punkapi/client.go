// Package punkapi reads pages of beer recipes from a Punk API compatible
// HTTP service.
package punkapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/colonyops/taproom/internal/core/recipe"
	"github.com/colonyops/taproom/internal/core/window"
)

// ErrStatus is matched by every *StatusError.
var ErrStatus = errors.New("unexpected status")

// StatusError is returned when the service answers with a non-2xx status.
// Client errors other than 429 mean the page does not exist and also match
// window.ErrNoPage; anything else is an ambiguous failure.
type StatusError struct {
	Page int
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("page %d: %s: %d %s", e.Page, ErrStatus, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() []error {
	if e.Missing() {
		return []error{ErrStatus, window.ErrNoPage}
	}
	return []error{ErrStatus}
}

// Missing reports whether the status says the page does not exist.
func (e *StatusError) Missing() bool {
	return e.Code >= 400 && e.Code < 500 && e.Code != http.StatusTooManyRequests
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	PerPage  int
	Timeout  time.Duration
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	// Zero values keep the retryablehttp defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       zerolog.Logger
}

// Client fetches recipe pages. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	perPage int
	log     zerolog.Logger
}

var _ window.PageSource[recipe.Recipe] = (*Client)(nil)

// New creates a client with retries for transient failures.
func New(opts Options) *Client {
	log := opts.Logger.With().Str("cmp", "punkapi").Logger()

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = opts.Timeout
	retryClient.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = opts.RetryWaitMax
	}
	retryClient.Logger = &retryLogger{log: log}
	// Hand the last response back once retries are exhausted so the status
	// can be classified.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:    retryClient.StandardClient(),
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		perPage: opts.PerPage,
		log:     log,
	}
}

// PageURL returns the address of a page of recipes.
func (c *Client) PageURL(page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if c.perPage > 0 {
		q.Set("per_page", strconv.Itoa(c.perPage))
	}
	return c.baseURL + "/beers?" + q.Encode()
}

// FetchPage returns the recipes on a page. Pages below 1, client error
// statuses and empty pages report window.ErrNoPage.
func (c *Client) FetchPage(ctx context.Context, page int) ([]recipe.Recipe, error) {
	if page < 1 {
		return nil, fmt.Errorf("page %d: %w", page, window.ErrNoPage)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PageURL(page), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", page, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Int("page", page).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("page requested")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Page: page, Code: resp.StatusCode}
	}

	var recipes []recipe.Recipe
	if err := json.NewDecoder(resp.Body).Decode(&recipes); err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("page %d is empty: %w", page, window.ErrNoPage)
	}

	return recipes, nil
}

// retryLogger implements the retryablehttp.LeveledLogger interface on top of
// zerolog.
type retryLogger struct {
	log zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...any) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Trace().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...any) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
