package ports

import (
	"context"
	"io"

	"github.com/nide-gg/mapsync/internal/domain"
)

// MapStore manages files in a single maps directory.
// Names passed to it are bare file names, never paths.
type MapStore interface {
	// Dir returns the directory the store is rooted at.
	Dir() string

	// Inventory lists the identifiers of maps already present.
	Inventory(ctx context.Context) (domain.Inventory, error)

	// SweepPartials removes temp files left behind by an interrupted run.
	// Returns the number of files removed.
	SweepPartials(ctx context.Context) (int, error)

	// Create opens an exclusive write for name. Nothing is visible under
	// name until Commit, which replaces any existing file.
	Create(name string) (PendingFile, error)

	// Open opens a committed file for reading.
	Open(name string) (io.ReadCloser, error)

	// Remove deletes a committed file. Missing files are not an error.
	Remove(name string) error
}

// PendingFile is an in-progress exclusive write.
type PendingFile interface {
	io.Writer

	// Commit flushes and atomically publishes the file.
	Commit() error

	// Abort discards everything written. Safe to call after Commit.
	Abort() error
}

// Extractor decompresses an archive stream.
type Extractor interface {
	// Extract copies the decompressed form of src into dst and returns the
	// number of bytes written. It stops early if ctx is canceled.
	Extract(ctx context.Context, src io.Reader, dst io.Writer) (int64, error)
}
