package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logAdapter "github.com/nide-gg/mapsync/internal/adapters/log"
	"github.com/nide-gg/mapsync/internal/domain"
)

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func openStore(t *testing.T, dir string) *MapStore {
	t.Helper()
	s, err := OpenMapStore(dir, logAdapter.NewNoopLogger())
	if err != nil {
		t.Fatalf("OpenMapStore() error = %v", err)
	}
	return s
}

func TestOpenMapStore_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.txt", "x")

	tests := []struct {
		name string
		dir  string
	}{
		{"empty", ""},
		{"missing", filepath.Join(dir, "nope")},
		{"not a directory", filepath.Join(dir, "file.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenMapStore(tt.dir, logAdapter.NewNoopLogger())
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
			var ce *domain.ConfigError
			if !errors.As(err, &ce) || ce.Field != "target directory" {
				t.Errorf("err = %#v, want *ConfigError for target directory", err)
			}
		})
	}
}

func TestMapStore_Inventory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "de_dust2.bsp", "x")
	writeFile(t, dir, "CS_Office.BSP", "x")
	writeFile(t, dir, "ze_v1.1.bsp", "x")
	writeFile(t, dir, "de_nuke.bsp.bz2", "x")
	writeFile(t, dir, "de_train.bsp.part", "x")
	writeFile(t, dir, "readme.txt", "x")
	if err := os.Mkdir(filepath.Join(dir, "folder.bsp"), 0o755); err != nil {
		t.Fatal(err)
	}

	inv, err := openStore(t, dir).Inventory(context.Background())
	if err != nil {
		t.Fatalf("Inventory() error = %v", err)
	}

	for _, id := range []string{"de_dust2", "cs_office", "ze_v1.1"} {
		if !inv.Contains(id) {
			t.Errorf("inventory missing %q", id)
		}
	}
	for _, id := range []string{"de_nuke", "de_train", "readme", "folder"} {
		if inv.Contains(id) {
			t.Errorf("inventory has %q", id)
		}
	}
	if inv.Len() != 3 {
		t.Errorf("Len() = %d, want 3", inv.Len())
	}
}

func TestMapStore_CreateCommit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "m.bsp.bz2", "old contents that are longer")
	s := openStore(t, dir)

	pf, err := s.Create("m.bsp.bz2")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := io.WriteString(pf, "new"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Nothing replaces the final name before Commit.
	if data, _ := os.ReadFile(filepath.Join(dir, "m.bsp.bz2")); string(data) != "old contents that are longer" {
		t.Errorf("final file changed before Commit: %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "m.bsp.bz2"+PartialSuffix)); err != nil {
		t.Errorf("partial file missing: %v", err)
	}

	if err := pf.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if data, _ := os.ReadFile(filepath.Join(dir, "m.bsp.bz2")); string(data) != "new" {
		t.Errorf("after Commit = %q, want new", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "m.bsp.bz2"+PartialSuffix)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial file left behind: %v", err)
	}
	if err := pf.Abort(); err != nil {
		t.Errorf("Abort() after Commit = %v", err)
	}

	r, err := s.Open("m.bsp.bz2")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()
	if data, _ := io.ReadAll(r); string(data) != "new" {
		t.Errorf("Open() read %q", data)
	}
}

func TestMapStore_Abort(t *testing.T) {
	dir := t.TempDir()
	s := openStore(t, dir)

	pf, err := s.Create("m.bsp")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	io.WriteString(pf, "half")
	if err := pf.Abort(); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}

	ents, _ := os.ReadDir(dir)
	if len(ents) != 0 {
		t.Errorf("directory not empty after Abort: %v", ents)
	}
}

func TestMapStore_Remove(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "m.bsp.bz2", "x")
	s := openStore(t, dir)

	if err := s.Remove("m.bsp.bz2"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove("m.bsp.bz2"); err != nil {
		t.Errorf("Remove() of missing file = %v", err)
	}
}

func TestMapStore_RejectsPaths(t *testing.T) {
	s := openStore(t, t.TempDir())

	for _, name := range []string{"", "..", "../escape.bsp", "sub/m.bsp", `sub\m.bsp`} {
		if _, err := s.Create(name); err == nil {
			t.Errorf("Create(%q) succeeded", name)
		}
		if err := s.Remove(name); err == nil {
			t.Errorf("Remove(%q) succeeded", name)
		}
	}
}

func TestMapStore_SweepPartials(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.bsp.bz2.part", "xx")
	writeFile(t, dir, "b.bsp.part", "xxxx")
	writeFile(t, dir, "c.bsp", "keep")
	writeFile(t, dir, "d.bsp.bz2", "keep")
	writeFile(t, dir, "workshop_download.vpk.part", "foreign")

	n, err := openStore(t, dir).SweepPartials(context.Background())
	if err != nil {
		t.Fatalf("SweepPartials() error = %v", err)
	}
	if n != 2 {
		t.Errorf("SweepPartials() = %d, want 2", n)
	}

	ents, _ := os.ReadDir(dir)
	var got []string
	for _, e := range ents {
		got = append(got, e.Name())
	}
	want := []string{"c.bsp", "d.bsp.bz2", "workshop_download.vpk.part"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("remaining = %v, want %v", got, want)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{2048, "2.00KiB"},
		{3 << 20, "3.00MiB"},
		{5 << 30, "5.00GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
