package domain

import "strings"

const (
	// MapExtension is the suffix of a decompressed map file.
	MapExtension = ".bsp"

	// CompressedExtension is appended to MapExtension for remote archives.
	CompressedExtension = ".bz2"

	// ArchiveSuffix is the full suffix of a compressed map archive.
	ArchiveSuffix = MapExtension + CompressedExtension
)

// WorkItem is a map queued for download.
type WorkItem struct {
	// Identifier keeps the casing of the remote index entry.
	Identifier string

	// Compressed is always true: FastDL archives are served as .bsp.bz2.
	Compressed bool
}

// NewWorkItem creates a compressed work item for the given identifier.
func NewWorkItem(identifier string) WorkItem {
	return WorkItem{Identifier: identifier, Compressed: true}
}

// Key returns the case-insensitive comparison key.
func (w WorkItem) Key() string { return NormalizeIdentifier(w.Identifier) }

// ArchiveName returns the remote file name, e.g. "de_dust2.bsp.bz2".
func (w WorkItem) ArchiveName() string {
	return w.Identifier + ArchiveSuffix
}

// MapName returns the decompressed file name, e.g. "de_dust2.bsp".
func (w WorkItem) MapName() string { return w.Identifier + MapExtension }

// NormalizeIdentifier lowercases an identifier for comparison.
func NormalizeIdentifier(id string) string { return strings.ToLower(id) }

// IdentifierFromArchive strips ArchiveSuffix from a remote file name.
// The second result is false if name does not end with the suffix or the
// remaining identifier is empty.
func IdentifierFromArchive(name string) (string, bool) {
	return stripSuffix(name, ArchiveSuffix, false)
}

// IdentifierFromMap strips MapExtension from a local file name, ignoring case
// so that "DE_DUST2.BSP" still counts as present.
func IdentifierFromMap(name string) (string, bool) {
	return stripSuffix(name, MapExtension, true)
}

func stripSuffix(name, suffix string, foldCase bool) (string, bool) {
	if len(name) <= len(suffix) {
		return "", false
	}
	tail := name[len(name)-len(suffix):]
	if foldCase {
		if !strings.EqualFold(tail, suffix) {
			return "", false
		}
	} else if tail != suffix {
		return "", false
	}
	return name[:len(name)-len(suffix)], true
}

// Inventory is the set of map identifiers present in the target directory.
// Keys are normalized; it is rebuilt on every run and never persisted.
type Inventory map[string]struct{}

// NewInventory builds an inventory from raw identifiers.
func NewInventory(ids ...string) Inventory {
	inv := make(Inventory, len(ids))
	for _, id := range ids {
		inv.Add(id)
	}
	return inv
}

// Add records an identifier.
func (inv Inventory) Add(id string) { inv[NormalizeIdentifier(id)] = struct{}{} }

// Contains reports whether id is present, ignoring case.
func (inv Inventory) Contains(id string) bool {
	_, ok := inv[NormalizeIdentifier(id)]
	return ok
}

// Len returns the number of identifiers.
func (inv Inventory) Len() int { return len(inv) }
