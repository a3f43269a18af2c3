package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names []string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestDiscover(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  []string // expected destination base names, in order
	}{
		{
			name:  "mixed files",
			files: []string{"b.jpg", "a.png", "note.txt", "c.JPEG", "d.gif", "e.bmp"},
			want: []string{
				"processed_a.png",
				"processed_b.jpg",
				"processed_c.JPEG",
				"processed_d.gif",
				"processed_e.bmp",
			},
		},
		{
			name:  "no matching files",
			files: []string{"readme.md", "data.csv"},
			want:  nil,
		},
		{
			name:  "empty directory",
			files: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputDir := t.TempDir()
			outputDir := t.TempDir()
			writeFiles(t, inputDir, tt.files)

			items, err := Discover(inputDir, outputDir)
			if err != nil {
				t.Fatalf("Discover: %v", err)
			}
			if len(items) != len(tt.want) {
				t.Fatalf("got %d items, want %d", len(items), len(tt.want))
			}
			for i, item := range items {
				if got := filepath.Base(item.DestPath); got != tt.want[i] {
					t.Errorf("item %d: dest %q, want %q", i, got, tt.want[i])
				}
				if filepath.Dir(item.DestPath) != outputDir {
					t.Errorf("item %d: dest dir %q, want %q", i, filepath.Dir(item.DestPath), outputDir)
				}
			}
		})
	}
}

func TestDiscoverSkipsSubdirectories(t *testing.T) {
	inputDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(inputDir, "nested.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, inputDir, []string{"real.jpg"})

	items, err := Discover(inputDir, t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if base := filepath.Base(items[0].SourcePath); base != "real.jpg" {
		t.Errorf("source %q, want real.jpg", base)
	}
}

func TestDiscoverMissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "does-not-exist"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
