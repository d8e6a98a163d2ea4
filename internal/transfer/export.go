package transfer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hectorm/xstreamify/internal/models"
)

// Export serializes the collection as a pretty-printed JSON array. The
// document is self-describing; importing it back needs no other context.
func Export(movies []*models.MovieRecord) ([]byte, error) {
	if movies == nil {
		movies = []*models.MovieRecord{}
	}
	data, err := json.MarshalIndent(movies, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize collection: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportFilename builds the download filename for an export taken at ts.
func ExportFilename(ts time.Time) string {
	return fmt.Sprintf("xstreamify-library-%s.json", ts.Format("20060102-150405"))
}

// WriteFileAtomic stages the data in a temp file and renames it into place,
// so a failed write never clobbers a previously valid file.
func WriteFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
