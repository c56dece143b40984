// Package catalog loads the list of known game servers and their FastDL
// hosts.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nide-gg/mapsync/internal/ports"
)

// DefaultURL is the community-maintained server list.
const DefaultURL = "https://raw.githubusercontent.com/NiDE-gg/MapDownloader/master/servers.json"

const maxCatalogBytes = 1 << 20

var (
	// ErrServerNotFound is returned by Lookup for an unknown name.
	ErrServerNotFound = errors.New("catalog: server not found")

	// ErrInvalidCatalog is returned when the document has no server list.
	ErrInvalidCatalog = errors.New("catalog: invalid document")
)

// Server is one entry of the catalog.
type Server struct {
	Name   string `json:"name"`
	FastDL string `json:"fastDL"`
	AppID  string `json:"appID"`

	// MapsDirectory is relative to the Steam library root, for example
	// "steamapps/common/Counter-Strike Source/cstrike/download/maps".
	MapsDirectory string `json:"mapsDirectory"`
}

// Catalog is the parsed server list.
type Catalog struct {
	Servers []Server `json:"servers"`
}

// Parse decodes a catalog document. Entries without a name or FastDL URL
// are dropped.
func Parse(data []byte) (*Catalog, error) {
	var raw struct {
		Servers *[]Server `json:"servers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if raw.Servers == nil {
		return nil, fmt.Errorf("%w: missing servers", ErrInvalidCatalog)
	}

	c := &Catalog{Servers: make([]Server, 0, len(*raw.Servers))}
	for _, s := range *raw.Servers {
		s.Name = strings.TrimSpace(s.Name)
		s.FastDL = strings.TrimSpace(s.FastDL)
		if s.Name == "" || s.FastDL == "" {
			continue
		}
		c.Servers = append(c.Servers, s)
	}
	return c, nil
}

// Lookup finds a server by name, ignoring case.
func (c *Catalog) Lookup(name string) (Server, error) {
	name = strings.TrimSpace(name)
	for _, s := range c.Servers {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return Server{}, fmt.Errorf("%w: %q", ErrServerNotFound, name)
}

// Names returns the server names in document order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Servers))
	for i, s := range c.Servers {
		names[i] = s.Name
	}
	return names
}

// Client fetches the catalog over HTTP.
type Client struct {
	http ports.HTTPClient
	url  string
}

// NewClient creates a client for url, or DefaultURL when url is empty.
func NewClient(client ports.HTTPClient, url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{http: client, url: url}
}

// URL returns the catalog location.
func (c *Client) URL() string { return c.url }

// Fetch downloads and parses the catalog.
func (c *Client) Fetch(ctx context.Context) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch catalog: %s returned %d", c.url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}
