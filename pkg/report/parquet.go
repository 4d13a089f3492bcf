// pkg/report/parquet.go
package report

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/feedbackops/cleanse/pkg/model"
)

// writeParquet writes the full change log to a snappy-compressed Parquet
// file, one row per change record.
func writeParquet(records []model.ChangeRecord, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[model.ChangeRecord](file)
	if _, err := writer.Write(records); err != nil {
		file.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}

	return file.Close()
}
