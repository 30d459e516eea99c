package integrations

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/muchdogesec/location2stix/pkg/errors"
	"github.com/muchdogesec/location2stix/pkg/stix"
)

// Default locations of the auxiliary objects.
const (
	DefaultIdentityURL          = "https://raw.githubusercontent.com/muchdogesec/stix4doge/main/objects/identity/location2stix.json"
	DefaultMarkingDefinitionURL = "https://raw.githubusercontent.com/muchdogesec/stix4doge/main/objects/marking-definition/location2stix.json"
)

// DefaultTimeout bounds each fetch.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response is read.
const maxBodySize = 1 << 20

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = stderrors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-2xx responses).
	ErrNetwork = stderrors.New("network error")
)

// Client performs single-attempt GET requests for STIX objects.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with the given timeout and default headers.
// Pass nil for headers if no default headers are needed.
func NewClient(timeout time.Duration, headers map[string]string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		headers: headers,
	}
}

// FetchObject GETs url and parses the body as one STIX object.
func (c *Client) FetchObject(ctx context.Context, url string) (*stix.RawObject, error) {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	obj, err := stix.ParseObject(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidObject, err, "parse %s", url)
	}
	return obj, nil
}

// FetchTyped is FetchObject restricted to one object type.
func (c *Client) FetchTyped(ctx context.Context, url, objType string) (*stix.RawObject, error) {
	obj, err := c.FetchObject(ctx, url)
	if err != nil {
		return nil, err
	}
	if obj.Type != objType {
		return nil, errors.New(errors.ErrCodeInvalidObject, "%s: expected %s, got %s", url, objType, obj.Type)
	}
	return obj, nil
}

// GetBytes performs an HTTP GET and returns the response body.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "build request for %s", url)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "GET %s", url)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		code := errors.ErrCodeNetwork
		if stderrors.Is(err, ErrNotFound) {
			code = errors.ErrCodeNotFound
		}
		return nil, errors.Wrap(code, err, "GET %s", url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "read %s", url)
	}
	return data, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
