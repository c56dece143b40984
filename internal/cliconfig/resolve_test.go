package cliconfig

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nide-gg/mapsync/internal/catalog"
)

type fakeCatalog struct {
	cat   *catalog.Catalog
	err   error
	calls int
}

func (f *fakeCatalog) Fetch(ctx context.Context) (*catalog.Catalog, error) {
	f.calls++
	return f.cat, f.err
}

func TestResolve(t *testing.T) {
	steam := t.TempDir()
	rel := "steamapps/common/Counter-Strike Source/cstrike/download/maps"
	mapsDir := filepath.Join(steam, filepath.FromSlash(rel))
	if err := os.MkdirAll(mapsDir, 0o755); err != nil {
		t.Fatal(err)
	}

	src := &fakeCatalog{cat: &catalog.Catalog{Servers: []catalog.Server{{
		Name:          "NiDE ZE",
		FastDL:        "https://fastdl.example.com/ze/maps/",
		AppID:         "240",
		MapsDirectory: rel,
	}}}}

	cfg := Config{Server: "nide ze", SteamDir: steam}
	if err := Resolve(context.Background(), &cfg, src); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.FastDLURL != "https://fastdl.example.com/ze/maps/" {
		t.Errorf("FastDLURL = %q", cfg.FastDLURL)
	}
	if cfg.MapsDir != mapsDir {
		t.Errorf("MapsDir = %q, want %q", cfg.MapsDir, mapsDir)
	}

	// Explicit values win and skip the fetch entirely.
	src.calls = 0
	cfg = Config{Server: "nide ze", FastDLURL: "http://mine/", MapsDir: "/mine"}
	if err := Resolve(context.Background(), &cfg, src); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if src.calls != 0 || cfg.FastDLURL != "http://mine/" || cfg.MapsDir != "/mine" {
		t.Errorf("explicit config changed: %+v (calls %d)", cfg, src.calls)
	}
}

func TestResolve_Errors(t *testing.T) {
	good := &catalog.Catalog{Servers: []catalog.Server{{Name: "a", FastDL: "http://a/", MapsDirectory: "nowhere/maps"}}}

	tests := []struct {
		name    string
		src     *fakeCatalog
		cfg     Config
		wantErr error
	}{
		{"fetch failure", &fakeCatalog{err: errors.New("offline")}, Config{Server: "a"}, nil},
		{"unknown server", &fakeCatalog{cat: good}, Config{Server: "b"}, catalog.ErrServerNotFound},
		{"maps dir missing", &fakeCatalog{cat: good}, Config{Server: "a", SteamDir: t.TempDir()}, ErrMapsDirNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := Resolve(context.Background(), &cfg, tt.src)
			if err == nil {
				t.Fatal("Resolve() succeeded")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolve_NoServer(t *testing.T) {
	src := &fakeCatalog{}
	cfg := Config{FastDLURL: "http://x/"}
	if err := Resolve(context.Background(), &cfg, src); err != nil || src.calls != 0 {
		t.Errorf("Resolve() = %v, calls = %d", err, src.calls)
	}
}
