package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nide-gg/mapsync/internal/cliconfig"
	"github.com/nide-gg/mapsync/internal/testutil"
)

func newTestApp(out *bytes.Buffer) *app {
	return &app{
		cfg:    cliconfig.DefaultConfig(),
		log:    zerolog.Nop(),
		stdout: out,
	}
}

func TestRunSync_PrintsProgress(t *testing.T) {
	srv := testutil.StartFastDL(t, map[string][]byte{
		"de_dust2.bsp.bz2": testutil.SourceMapBZ2,
		"de_nuke.bsp.bz2":  testutil.GoldSrcMapBZ2,
	}, "")
	dir := t.TempDir()

	var out bytes.Buffer
	a := newTestApp(&out)
	a.cfg.FastDLURL = srv.BaseURL()
	a.cfg.MapsDir = dir

	if err := a.runSync(context.Background()); err != nil {
		t.Fatalf("runSync() error = %v", err)
	}

	want := []string{
		"Total maps found in FastDL: 2",
		"Maps directory missing 2 maps from the FastDL, marking them for download...",
		"Downloading de_dust2",
		"Extracting de_dust2",
		"Downloading de_nuke",
		"Extracting de_nuke",
		"Successfully downloaded/extracted 2 maps",
	}
	got := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("output = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	for _, name := range []string{"de_dust2.bsp", "de_nuke.bsp"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestRunSync_MissingDirectory(t *testing.T) {
	srv := testutil.StartFastDL(t, map[string][]byte{"de_dust2.bsp.bz2": testutil.SourceMapBZ2}, "")

	var out bytes.Buffer
	a := newTestApp(&out)
	a.cfg.FastDLURL = srv.BaseURL()
	a.cfg.MapsDir = filepath.Join(t.TempDir(), "missing")

	if err := a.runSync(context.Background()); err == nil {
		t.Fatal("runSync() error = nil, want error")
	}
	if !strings.HasPrefix(out.String(), "ERROR: ") {
		t.Errorf("output = %q, want ERROR line", out.String())
	}
}

func TestListServers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"servers":[
			{"name":"NiDE ZE","fastDL":"https://fastdl.example.com/cstrike/maps/","appID":"240","mapsDirectory":"steamapps/common/Counter-Strike Source/cstrike/maps"}
		]}`))
	}))
	defer ts.Close()

	var out bytes.Buffer
	a := newTestApp(&out)
	a.cfg.CatalogURL = ts.URL

	if err := a.listServers(context.Background()); err != nil {
		t.Fatalf("listServers() error = %v", err)
	}
	for _, want := range []string{"NAME", "NiDE ZE", "https://fastdl.example.com/cstrike/maps/"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
