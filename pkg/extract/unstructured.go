// pkg/extract/unstructured.go
package extract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/model"
)

// Columns produced by the unstructured extractor before schema mapping.
const (
	ColumnFilename   = "filename"
	ColumnContent    = "content"
	ColumnSourceType = "source_type"
)

// UnstructuredExtractor reads free-text sources into the normalized
// filename/content/source_type table. Like the structured extractor, input
// errors are recovered here with a warning and an empty dataset.
type UnstructuredExtractor struct {
	logger *zap.Logger
}

// NewUnstructuredExtractor creates an unstructured extractor.
func NewUnstructuredExtractor(logger *zap.Logger) *UnstructuredExtractor {
	return &UnstructuredExtractor{logger: logger}
}

// FromTextFiles reads every .txt and .log file directly inside dir, one row
// per file.
func (e *UnstructuredExtractor) FromTextFiles(dir string) *model.Dataset {
	ds := model.NewDataset([]string{ColumnFilename, ColumnContent, ColumnSourceType})

	entries, err := os.ReadDir(dir)
	if err != nil {
		e.logger.Warn("Failed to read text directory", zap.String("path", dir), zap.Error(err))
		return ds
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".log" {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			e.logger.Warn("Failed to read text file",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}

		ds.AppendRow(map[string]interface{}{
			ColumnFilename:   entry.Name(),
			ColumnContent:    string(content),
			ColumnSourceType: "text_file",
		})
	}

	e.logger.Info("Loaded unstructured data", zap.String("path", dir), zap.Int("files", ds.Len()))
	return ds
}

// FromJSON reads a JSON file holding either an array of flat objects or a
// single object. Column order is the sorted union of keys.
func (e *UnstructuredExtractor) FromJSON(path string) *model.Dataset {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("Failed to read JSON file", zap.String("path", path), zap.Error(err))
		return model.NewDataset(nil)
	}

	var objects []map[string]interface{}
	if err := json.Unmarshal(data, &objects); err != nil {
		var single map[string]interface{}
		if err := json.Unmarshal(data, &single); err != nil {
			e.logger.Warn("Failed to parse JSON file", zap.String("path", path), zap.Error(err))
			return model.NewDataset(nil)
		}
		objects = []map[string]interface{}{single}
	}

	columnSet := make(map[string]struct{})
	for _, obj := range objects {
		for k := range obj {
			columnSet[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(columnSet))
	for k := range columnSet {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	ds := model.NewDataset(columns)
	for _, obj := range objects {
		values := make(map[string]interface{}, len(columns))
		for _, col := range columns {
			values[col] = obj[col]
		}
		ds.AppendRow(values)
	}

	e.logger.Info("Loaded JSON data", zap.String("path", path), zap.Int("rows", ds.Len()))
	return ds
}
