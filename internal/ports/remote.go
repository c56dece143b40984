package ports

import (
	"context"
	"io"
)

// Remote provides access to a FastDL host.
type Remote interface {
	// FetchIndex returns the raw directory listing served at baseURL.
	// Any non-2xx response is an error.
	FetchIndex(ctx context.Context, baseURL string) (string, error)

	// OpenArtifact starts a streaming GET of url. The caller closes the body.
	// Any non-2xx response is an error.
	OpenArtifact(ctx context.Context, url string) (io.ReadCloser, error)
}
