package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"

	"github.com/nide-gg/mapsync/internal/ports"
)

// MaxIndexBytes caps how much of a directory listing is read.
const MaxIndexBytes = 32 << 20

// Status errors. Every non-2xx response is a *StatusError that unwraps to
// one of these when the code has a dedicated sentinel.
var (
	ErrNotFound     = errors.New("http: resource not found")
	ErrForbidden    = errors.New("http: access forbidden")
	ErrUnauthorized = errors.New("http: unauthorized")
	ErrServerError  = errors.New("http: server error")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Unwrap maps the status code to its sentinel, if any.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusNotFound:
		return ErrNotFound
	case e.Code == http.StatusForbidden:
		return ErrForbidden
	case e.Code == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Code >= 500:
		return ErrServerError
	default:
		return nil
	}
}

// Temporary reports whether repeating the request might succeed.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests || e.Code == http.StatusRequestTimeout
}

// Remote implements ports.Remote over plain HTTP GETs.
type Remote struct {
	client    ports.HTTPClient
	userAgent string
}

// NewRemote creates a remote using client for every request.
func NewRemote(client ports.HTTPClient, version string) *Remote {
	if version == "" {
		version = "dev"
	}
	return &Remote{
		client:    client,
		userAgent: fmt.Sprintf("mapsync/%s (%s/%s)", version, runtime.GOOS, runtime.GOARCH),
	}
}

// FetchIndex returns the body served at baseURL, capped at MaxIndexBytes.
func (r *Remote) FetchIndex(ctx context.Context, baseURL string) (string, error) {
	body, err := r.get(ctx, baseURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, MaxIndexBytes))
	if err != nil {
		return "", fmt.Errorf("read index: %w", err)
	}
	return string(data), nil
}

// OpenArtifact starts a streaming GET of url.
func (r *Remote) OpenArtifact(ctx context.Context, url string) (io.ReadCloser, error) {
	return r.get(ctx, url)
}

func (r *Remote) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}
	return resp.Body, nil
}
