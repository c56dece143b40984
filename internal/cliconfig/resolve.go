package cliconfig

import (
	"context"
	"fmt"

	"github.com/nide-gg/mapsync/internal/catalog"
)

// CatalogSource fetches the server catalog.
type CatalogSource interface {
	Fetch(ctx context.Context) (*catalog.Catalog, error)
}

// Resolve fills FastDLURL and MapsDir from the catalog entry named by
// Server. Values already set are kept. It is a no-op without Server.
func Resolve(ctx context.Context, cfg *Config, src CatalogSource) error {
	if cfg.Server == "" || (cfg.FastDLURL != "" && cfg.MapsDir != "") {
		return nil
	}

	cat, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	srv, err := cat.Lookup(cfg.Server)
	if err != nil {
		return err
	}

	if cfg.FastDLURL == "" {
		if err := checkHTTPURL(srv.FastDL); err != nil {
			return fmt.Errorf("catalog entry %q: fastDL: %w", srv.Name, err)
		}
		cfg.FastDLURL = srv.FastDL
	}
	if cfg.MapsDir == "" {
		dir, err := FindMapsDir(SteamRoots(cfg.SteamDir), srv.MapsDirectory)
		if err != nil {
			return fmt.Errorf("%w (set maps-dir)", err)
		}
		cfg.MapsDir = dir
	}
	return nil
}
