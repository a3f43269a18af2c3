package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/batchpix/image-pipeline/internal/model"
)

// OutputPrefix is prepended to the original base filename when building an
// item's destination path.
const OutputPrefix = "processed_"

// Recognized image file extensions (lowercase, with leading dot).
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
}

// Discover lists inputDir once and returns an item for every file with a
// recognized image extension, sorted by source path for deterministic
// queueing order. A directory with no matching files yields an empty slice
// and no error; a directory that cannot be read yields an error.
func Discover(inputDir, outputDir string) ([]model.Item, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", inputDir, err)
	}

	var items []model.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !imageExtensions[ext] {
			continue
		}

		items = append(items, model.Item{
			ID:         uuid.New(),
			SourcePath: filepath.Join(inputDir, e.Name()),
			DestPath:   filepath.Join(outputDir, OutputPrefix+e.Name()),
			Status:     model.StatusDiscovered,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].SourcePath < items[j].SourcePath
	})

	return items, nil
}
