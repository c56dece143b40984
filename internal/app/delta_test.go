package app

import (
	"reflect"
	"testing"

	"github.com/nide-gg/mapsync/internal/domain"
)

func identifiers(items []domain.WorkItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Identifier
	}
	return ids
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name   string
		local  []string
		remote []string
		want   []string
	}{
		{
			name:   "missing map only",
			local:  []string{"de_dust2"},
			remote: []string{"de_dust2.bsp.bz2", "de_inferno.bsp.bz2"},
			want:   []string{"de_inferno"},
		},
		{
			name:   "local match ignores case",
			local:  []string{"DE_DUST2"},
			remote: []string{"de_dust2.bsp.bz2"},
			want:   []string{},
		},
		{
			name:   "remote casing preserved",
			remote: []string{"ZE_Sync_V2.bsp.bz2"},
			want:   []string{"ZE_Sync_V2"},
		},
		{
			name:   "case-insensitive duplicates collapse to first",
			remote: []string{"FOO.bsp.bz2", "foo.bsp.bz2", "bar.bsp.bz2"},
			want:   []string{"FOO", "bar"},
		},
		{
			name:   "remote order kept",
			remote: []string{"c.bsp.bz2", "a.bsp.bz2", "b.bsp.bz2"},
			want:   []string{"c", "a", "b"},
		},
		{
			name:   "names without the suffix ignored",
			remote: []string{"readme.txt", "x.bsp", ".bsp.bz2", "y.bsp.bz2"},
			want:   []string{"y"},
		},
		{
			name:   "empty remote",
			local:  []string{"a"},
			remote: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := identifiers(Delta(domain.NewInventory(tt.local...), tt.remote))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Delta() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDelta_NeverIncludesLocal(t *testing.T) {
	local := domain.NewInventory("a", "B", "c.d")
	remote := []string{"A.bsp.bz2", "b.bsp.bz2", "C.D.bsp.bz2", "e.bsp.bz2"}

	for _, item := range Delta(local, remote) {
		if local.Contains(item.Identifier) {
			t.Errorf("Delta() included local map %q", item.Identifier)
		}
		if !item.Compressed {
			t.Errorf("item %q not marked compressed", item.Identifier)
		}
	}
}
