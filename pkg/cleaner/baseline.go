// pkg/cleaner/baseline.go
package cleaner

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/config"
	"github.com/feedbackops/cleanse/pkg/converter"
	"github.com/feedbackops/cleanse/pkg/model"
)

// Operation tags recorded by the baseline strategy.
const (
	OpFillCategorical = "fillna_categorical"
	OpFillNumeric     = "fillna_numeric"
	OpConvertDatetime = "convert_datetime"
)

// Baseline is the rule-based strategy. It drops fully-empty rows, drops
// exact-duplicate rows, and fills missing values: categorical columns with
// the configured placeholder, numeric columns with the column median
// computed after the drops. One change record is logged per filled cell.
type Baseline struct {
	cfg    *config.Config
	logger *zap.Logger
	log    *model.ChangeLog
}

// NewBaseline creates the rule-based strategy.
func NewBaseline(cfg *config.Config, logger *zap.Logger) *Baseline {
	return &Baseline{
		cfg:    cfg,
		logger: logger.Named("baseline-cleaner"),
		log:    model.NewChangeLog(),
	}
}

// Name returns the strategy identifier.
func (b *Baseline) Name() string {
	return NameBaseline
}

// Clean applies the baseline cleaning steps.
func (b *Baseline) Clean(ds *model.Dataset) (*model.Dataset, *model.ChangeLog, error) {
	if ds == nil {
		return nil, nil, errors.New("dataset cannot be nil")
	}

	b.log.Clear()

	cleaned := ds.Clone()
	cleaned = b.dropEmptyRows(cleaned)
	cleaned = b.dropDuplicateRows(cleaned)
	b.fillMissingValues(cleaned)
	b.standardizeDates(cleaned)

	b.logger.Info("Baseline cleaning completed",
		zap.Int("rows_in", ds.Len()),
		zap.Int("rows_out", cleaned.Len()),
		zap.Int("changes", b.log.Len()))

	return cleaned, b.log, nil
}

// dropEmptyRows removes rows where every cell is missing.
func (b *Baseline) dropEmptyRows(ds *model.Dataset) *model.Dataset {
	kept := ds.Rows[:0]
	for _, row := range ds.Rows {
		empty := true
		for _, col := range ds.Columns {
			if !model.IsMissing(row.Values[col]) {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, row)
		}
	}

	if removed := len(ds.Rows) - len(kept); removed > 0 {
		b.logger.Info("Removed completely empty rows", zap.Int("count", removed))
	}
	ds.Rows = kept
	return ds
}

// dropDuplicateRows removes exact duplicates, keeping the first occurrence.
func (b *Baseline) dropDuplicateRows(ds *model.Dataset) *model.Dataset {
	seen := make(map[string]struct{}, len(ds.Rows))
	kept := ds.Rows[:0]
	for _, row := range ds.Rows {
		fp := row.Fingerprint(ds.Columns)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		kept = append(kept, row)
	}

	if removed := len(ds.Rows) - len(kept); removed > 0 {
		b.logger.Info("Removed duplicate rows", zap.Int("count", removed))
	}
	ds.Rows = kept
	return ds
}

// fillMissingValues fills remaining gaps column by column. The fill value
// for a numeric column is the median of its surviving non-missing values.
func (b *Baseline) fillMissingValues(ds *model.Dataset) {
	for _, col := range ds.Columns {
		numeric := ds.IsNumericColumn(col)

		var fill interface{}
		if numeric {
			values, _ := ds.NumericValues(col)
			fill = median(values)
		} else {
			fill = b.cfg.UnknownValue
		}

		filled := 0
		for i := range ds.Rows {
			row := &ds.Rows[i]
			if !model.IsMissing(row.Values[col]) {
				continue
			}
			row.Values[col] = fill
			filled++

			if numeric {
				b.log.Append(col, OpFillNumeric, nil, fill, model.Index(row.Index))
			} else {
				b.log.Append(col, OpFillCategorical, nil, fill, model.Index(row.Index))
			}
		}

		if filled > 0 {
			b.logger.Info("Filled missing values",
				zap.String("column", col),
				zap.Int("count", filled),
				zap.Bool("numeric", numeric))
		}
	}
}

// standardizeDates rewrites parseable values in date-named columns using the
// configured layout. Unparseable cells are left as they are.
func (b *Baseline) standardizeDates(ds *model.Dataset) {
	if b.cfg.DateFormat == "" {
		return
	}

	for _, col := range ds.Columns {
		if !strings.Contains(strings.ToLower(col), "date") {
			continue
		}

		converted := 0
		for i := range ds.Rows {
			row := &ds.Rows[i]
			value := row.Values[col]
			if model.IsMissing(value) {
				continue
			}

			parsed, err := converter.ToTime(value)
			if err != nil {
				continue
			}

			formatted := parsed.Format(b.cfg.DateFormat)
			if converter.ToString(value) == formatted {
				continue
			}

			b.log.Append(col, OpConvertDatetime, value, formatted, model.Index(row.Index))
			row.Values[col] = formatted
			converted++
		}

		if converted > 0 {
			b.logger.Info("Standardized date formats",
				zap.String("column", col),
				zap.Int("count", converted))
		}
	}
}
