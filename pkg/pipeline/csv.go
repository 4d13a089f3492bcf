// pkg/pipeline/csv.go
package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/feedbackops/cleanse/pkg/converter"
	"github.com/feedbackops/cleanse/pkg/model"
)

// writeDatasetCSV writes a dataset to path, creating parent directories.
// The header row follows the dataset's column order; nil cells become
// empty fields.
func writeDatasetCSV(ds *model.Dataset, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(ds.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			v := row.Values[col]
			if v == nil {
				record[i] = ""
				continue
			}
			record[i] = converter.ToString(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush output file: %w", err)
	}
	return nil
}
