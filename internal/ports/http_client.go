package ports

import "net/http"

// HTTPClient is the subset of *http.Client used by the remote adapter and
// the server catalog. Tests substitute canned responses through it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
