package domain

import "testing"

func TestWorkItem_Names(t *testing.T) {
	tests := []struct {
		id          string
		wantArchive string
		wantMap     string
	}{
		{"de_dust2", "de_dust2.bsp.bz2", "de_dust2.bsp"},
		{"ZE_Mixed", "ZE_Mixed.bsp.bz2", "ZE_Mixed.bsp"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			w := NewWorkItem(tt.id)
			if !w.Compressed {
				t.Error("Compressed = false")
			}
			if got := w.ArchiveName(); got != tt.wantArchive {
				t.Errorf("ArchiveName() = %q, want %q", got, tt.wantArchive)
			}
			if got := w.MapName(); got != tt.wantMap {
				t.Errorf("MapName() = %q, want %q", got, tt.wantMap)
			}
			if id, ok := IdentifierFromArchive(w.ArchiveName()); !ok || id != tt.id {
				t.Errorf("IdentifierFromArchive() = %q, %v", id, ok)
			}
		})
	}
}
