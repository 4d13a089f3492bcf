// pkg/report/sample.go
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/feedbackops/cleanse/pkg/model"
)

// sampleLimit caps the number of rows written to the quick-look CSV.
const sampleLimit = 1000

var sampleHeader = []string{"column", "operation", "original_value", "new_value", "row_index", "timestamp"}

// writeSampleCSV writes up to limit change records as a flat CSV for
// spreadsheet inspection. Nil values are rendered as empty cells.
func writeSampleCSV(records []model.ChangeRecord, path string, limit int) error {
	if len(records) > limit {
		records = records[:limit]
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sample file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(sampleHeader); err != nil {
		return fmt.Errorf("write sample header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Column,
			r.Operation,
			derefString(r.OriginalValue),
			derefString(r.NewValue),
			derefIndex(r.RowIndex),
			r.Timestamp,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write sample row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush sample file: %w", err)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefIndex(i *int64) string {
	if i == nil {
		return ""
	}
	return strconv.FormatInt(*i, 10)
}
