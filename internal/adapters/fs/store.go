package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nide-gg/mapsync/internal/domain"
	"github.com/nide-gg/mapsync/internal/ports"
)

// PartialSuffix marks a file that is still being written.
const PartialSuffix = ".part"

func isOwnPartial(name string) bool {
	return strings.HasSuffix(name, domain.MapExtension+PartialSuffix) ||
		strings.HasSuffix(name, domain.ArchiveSuffix+PartialSuffix)
}

// MapStore implements ports.MapStore on a local directory.
type MapStore struct {
	dir    string
	logger ports.Logger
}

// OpenMapStore checks that dir is an existing, listable directory.
// Any problem is returned as a *domain.ConfigError.
func OpenMapStore(dir string, logger ports.Logger) (*MapStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, &domain.ConfigError{Field: "target directory", Reason: "must not be empty"}
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &domain.ConfigError{Field: "target directory", Reason: "does not exist", Err: err}
	case err != nil:
		return nil, &domain.ConfigError{Field: "target directory", Reason: "unreadable", Err: err}
	case !info.IsDir():
		return nil, &domain.ConfigError{Field: "target directory", Reason: dir + " is not a directory"}
	}

	f, err := os.Open(dir)
	if err != nil {
		return nil, &domain.ConfigError{Field: "target directory", Reason: "unreadable", Err: err}
	}
	_, err = f.ReadDir(1)
	f.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &domain.ConfigError{Field: "target directory", Reason: "unreadable", Err: err}
	}

	return &MapStore{dir: dir, logger: logger}, nil
}

// Opener adapts OpenMapStore to the shape the controller expects.
func Opener(logger ports.Logger) func(dir string) (ports.MapStore, error) {
	return func(dir string) (ports.MapStore, error) {
		s, err := OpenMapStore(dir, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Dir returns the maps directory.
func (s *MapStore) Dir() string { return s.dir }

// Inventory lists the identifiers of every regular *.bsp file.
func (s *MapStore) Inventory(ctx context.Context) (domain.Inventory, error) {
	ents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	inv := domain.NewInventory()
	for _, e := range ents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		if id, ok := domain.IdentifierFromMap(e.Name()); ok {
			inv.Add(id)
		}
	}
	return inv, nil
}

// SweepPartials removes the .bsp.part and .bsp.bz2.part files left behind
// by an interrupted run. Other *.part files in the directory belong to
// someone else and are left alone.
func (s *MapStore) SweepPartials(ctx context.Context) (int, error) {
	ents, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	freed := int64(0)
	for _, e := range ents {
		if ctx.Err() != nil {
			break
		}
		if !e.Type().IsRegular() || !isOwnPartial(e.Name()) {
			continue
		}

		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		path := filepath.Join(s.dir, e.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("partial sweep: remove failed", ports.String("file", path), ports.Err(err))
			continue
		}
		removed++
		freed += size
	}

	if removed > 0 {
		s.logger.Info("partial sweep completed",
			ports.Int("files", removed),
			ports.String("freed", formatBytes(freed)),
		)
	}
	return removed, ctx.Err()
}

// Create opens name.part for writing. Commit renames it over name.
func (s *MapStore) Create(name string) (ports.PendingFile, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	tmp := path + PartialSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return &pendingFile{f: f, tmp: tmp, final: path}, nil
}

// Open opens a committed file.
func (s *MapStore) Open(name string) (io.ReadCloser, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes a committed file. Missing files are ignored.
func (s *MapStore) Remove(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// path joins name to the directory, refusing anything that is not a plain
// file name.
func (s *MapStore) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// pendingFile writes to a temp file and renames it into place on Commit.
type pendingFile struct {
	f      *os.File
	tmp    string
	final  string
	closed bool
	done   bool
}

func (p *pendingFile) Write(b []byte) (int, error) { return p.f.Write(b) }

func (p *pendingFile) Commit() error {
	if p.done {
		return errors.New("pending file already finished")
	}
	if err := p.f.Sync(); err != nil {
		return err
	}
	p.closed = true
	if err := p.f.Close(); err != nil {
		return err
	}
	// Atomic rename
	if err := os.Rename(p.tmp, p.final); err != nil {
		return err
	}
	p.done = true
	return nil
}

func (p *pendingFile) Abort() error {
	if p.done {
		return nil
	}
	p.done = true
	if !p.closed {
		p.closed = true
		_ = p.f.Close()
	}
	if err := os.Remove(p.tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func formatBytes(b int64) string {
	const (
		_          = iota
		KB float64 = 1 << (10 * iota)
		MB
		GB
	)

	fb := float64(b)
	switch {
	case fb >= GB:
		return fmt.Sprintf("%.2fGiB", fb/GB)
	case fb >= MB:
		return fmt.Sprintf("%.2fMiB", fb/MB)
	case fb >= KB:
		return fmt.Sprintf("%.2fKiB", fb/KB)
	default:
		return fmt.Sprintf("%dB", b)
	}
}
