package app

import (
	"github.com/nide-gg/mapsync/internal/domain"
)

// Delta returns a work item for every remote archive whose map is missing
// locally. Items keep the order of remote and the casing the remote used;
// case-insensitive repeats in remote are dropped. Names that do not carry
// the archive suffix are ignored.
func Delta(local domain.Inventory, remote []string) []domain.WorkItem {
	seen := make(map[string]struct{}, len(remote))
	items := make([]domain.WorkItem, 0, len(remote))

	for _, name := range remote {
		id, ok := domain.IdentifierFromArchive(name)
		if !ok {
			continue
		}
		key := domain.NormalizeIdentifier(id)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if local.Contains(id) {
			continue
		}
		items = append(items, domain.NewWorkItem(id))
	}

	return items
}
