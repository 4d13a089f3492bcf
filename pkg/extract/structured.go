// pkg/extract/structured.go
package extract

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/model"
)

// StructuredExtractor reads tabular sources (CSV, Excel) into datasets.
// Input errors are recovered at this boundary: a missing or unreadable
// source is logged as a warning and yields an empty dataset so the pipeline
// can continue with whatever other sources succeeded.
type StructuredExtractor struct {
	logger *zap.Logger
}

// NewStructuredExtractor creates a structured extractor.
func NewStructuredExtractor(logger *zap.Logger) *StructuredExtractor {
	return &StructuredExtractor{logger: logger}
}

// FromCSV reads a CSV file with a header row. Blank cells become nil.
func (e *StructuredExtractor) FromCSV(path string) *model.Dataset {
	file, err := os.Open(path)
	if err != nil {
		e.logger.Warn("Failed to open CSV file", zap.String("path", path), zap.Error(err))
		return model.NewDataset(nil)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		e.logger.Warn("Failed to parse CSV file", zap.String("path", path), zap.Error(err))
		return model.NewDataset(nil)
	}

	ds := tabularToDataset(rows)
	e.logger.Info("Loaded structured data",
		zap.String("path", path),
		zap.Int("rows", ds.Len()),
		zap.Int("columns", len(ds.Columns)))
	return ds
}

// FromExcel reads the first sheet of an Excel workbook, treating the first
// row as the header.
func (e *StructuredExtractor) FromExcel(path string) *model.Dataset {
	f, err := excelize.OpenFile(path)
	if err != nil {
		e.logger.Warn("Failed to open Excel file", zap.String("path", path), zap.Error(err))
		return model.NewDataset(nil)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		e.logger.Warn("Excel workbook has no sheets", zap.String("path", path))
		return model.NewDataset(nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		e.logger.Warn("Failed to read Excel sheet",
			zap.String("path", path),
			zap.String("sheet", sheets[0]),
			zap.Error(err))
		return model.NewDataset(nil)
	}

	ds := tabularToDataset(rows)
	e.logger.Info("Loaded structured data",
		zap.String("path", path),
		zap.String("sheet", sheets[0]),
		zap.Int("rows", ds.Len()),
		zap.Int("columns", len(ds.Columns)))
	return ds
}

// tabularToDataset converts header-plus-rows string records into a dataset.
func tabularToDataset(records [][]string) *model.Dataset {
	if len(records) == 0 {
		return model.NewDataset(nil)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}

	ds := model.NewDataset(header)
	for _, record := range records[1:] {
		values := make(map[string]interface{}, len(header))
		for i, col := range header {
			if i < len(record) && strings.TrimSpace(record[i]) != "" {
				values[col] = record[i]
			} else {
				values[col] = nil
			}
		}
		ds.AppendRow(values)
	}
	return ds
}
