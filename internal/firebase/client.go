package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrNullSnapshot is returned when the queried path holds no data.
	// The store answers 200 with a literal "null" body in that case.
	ErrNullSnapshot = errors.New("null snapshot at path")

	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// BackoffConfig controls optional retry behaviour on transport failures.
// MaxRetries defaults to zero: the viewer surfaces a failed fetch as empty
// data and leaves retrying to the user.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client talks to a Firebase Realtime Database over its REST surface.
// Collections are JSON objects keyed by push id; queries are expressed as
// orderBy / limitToLast / limitToFirst / startAt parameters.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	backoff    BackoffConfig
	circuit    *gobreaker.CircuitBreaker
}

// NewClient creates a Client for the database rooted at baseURL.
// authToken may be empty for databases with public read rules.
func NewClient(httpClient *http.Client, baseURL, authToken string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "realtime-db",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		backoff: BackoffConfig{
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: cb,
	}
}

// Get performs a point lookup of the document at path and decodes it into out.
// Returns ErrNullSnapshot when the path holds no data.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, path, nil)
	if err != nil {
		return err
	}
	if isNull(body) {
		return ErrNullSnapshot
	}
	return json.Unmarshal(body, out)
}

// QueryLatest fetches up to limit documents from the collection at path with
// the largest timestamp values. The store returns an unordered JSON object;
// ordering the documents is the caller's job.
func (c *Client) QueryLatest(ctx context.Context, path string, limit int) (map[string]json.RawMessage, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit must be at least 1, got %d", limit)
	}

	params := url.Values{}
	params.Set("orderBy", `"timestamp"`)
	params.Set("limitToLast", strconv.Itoa(limit))
	return c.query(ctx, path, params)
}

// QuerySince fetches up to limit documents from the collection at path whose
// timestamp is greater than or equal to fromUnix, ascending.
func (c *Client) QuerySince(ctx context.Context, path string, fromUnix int64, limit int) (map[string]json.RawMessage, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit must be at least 1, got %d", limit)
	}

	params := url.Values{}
	params.Set("orderBy", `"timestamp"`)
	params.Set("startAt", strconv.FormatInt(fromUnix, 10))
	params.Set("limitToFirst", strconv.Itoa(limit))
	return c.query(ctx, path, params)
}

func (c *Client) query(ctx context.Context, path string, params url.Values) (map[string]json.RawMessage, error) {
	body, err := c.do(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if isNull(body) {
		return map[string]json.RawMessage{}, nil
	}

	var docs map[string]json.RawMessage
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, fmt.Errorf("decoding collection at %q: %w", path, err)
	}
	return docs, nil
}

// do executes one REST read with circuit breaking and optional backoff.
func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.httpClient == nil {
		return nil, errNoHTTPClient
	}

	if params == nil {
		params = url.Values{}
	}
	if c.authToken != "" {
		params.Set("auth", c.authToken)
	}

	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(path))
	if len(params) > 0 {
		u = fmt.Sprintf("%s?%s", u, params.Encode())
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.httpClient.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return io.ReadAll(resp.Body)
		})

		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return body, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

func isNull(body []byte) bool {
	s := strings.TrimSpace(string(body))
	return s == "" || s == "null"
}
