// pkg/cleaner/statistical.go
package cleaner

import (
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/feedbackops/cleanse/pkg/config"
	"github.com/feedbackops/cleanse/pkg/model"
)

// Operation tags recorded by the statistical strategy.
const (
	OpOutlierCorrection   = "ml_outlier_correction"
	OpTextStandardization = "text_standardization"
)

// Statistical is the statistical strategy. It delegates the baseline steps,
// then clamps numeric outliers to their interquartile-range bounds and
// normalizes text columns (whitespace trim plus title case).
type Statistical struct {
	cfg      *config.Config
	logger   *zap.Logger
	baseline *Baseline
	log      *model.ChangeLog
	titler   cases.Caser
}

// NewStatistical creates the statistical strategy.
func NewStatistical(cfg *config.Config, logger *zap.Logger) *Statistical {
	return &Statistical{
		cfg:      cfg,
		logger:   logger.Named("statistical-cleaner"),
		baseline: NewBaseline(cfg, logger),
		log:      model.NewChangeLog(),
		titler:   cases.Title(language.Und),
	}
}

// Name returns the strategy identifier.
func (s *Statistical) Name() string {
	return NameStatistical
}

// Clean runs baseline cleaning, absorbs its log, then applies outlier
// clamping and text standardization. A failure in a statistical step is
// recovered: the baseline-cleaned result is still returned.
func (s *Statistical) Clean(ds *model.Dataset) (*model.Dataset, *model.ChangeLog, error) {
	s.log.Clear()

	cleaned, baseLog, err := s.baseline.Clean(ds)
	if err != nil {
		return nil, nil, err
	}
	s.log.Absorb(baseLog)

	if err := s.clampOutliers(cleaned); err != nil {
		s.logger.Warn("Outlier correction failed, keeping baseline result", zap.Error(err))
	}
	s.standardizeText(cleaned)

	s.logger.Info("Statistical cleaning completed",
		zap.Int("rows", cleaned.Len()),
		zap.Int("changes", s.log.Len()))

	return cleaned, s.log, nil
}

// clampOutliers caps every numeric value outside [Q1-1.5*IQR, Q3+1.5*IQR]
// to the nearest bound, one change record per corrected cell.
func (s *Statistical) clampOutliers(ds *model.Dataset) error {
	if ds.Empty() {
		return errors.New("no rows to analyze")
	}

	for _, col := range ds.Columns {
		if !ds.IsNumericColumn(col) {
			continue
		}

		values, positions := ds.NumericValues(col)
		if len(values) < 2 {
			continue
		}
		lower, upper := iqrBounds(values)

		corrected := 0
		for i, v := range values {
			if v >= lower && v <= upper {
				continue
			}
			bound := lower
			if v > upper {
				bound = upper
			}

			row := &ds.Rows[positions[i]]
			original := row.Values[col]
			row.Values[col] = bound
			s.log.Append(col, OpOutlierCorrection, original, bound, model.Index(row.Index))
			corrected++
		}

		if corrected > 0 {
			s.logger.Info("Clamped outliers",
				zap.String("column", col),
				zap.Int("count", corrected),
				zap.Float64("lower_bound", lower),
				zap.Float64("upper_bound", upper))
		}
	}
	return nil
}

// standardizeText trims whitespace and title-cases every text column cell,
// logging only the cells whose value actually changed.
func (s *Statistical) standardizeText(ds *model.Dataset) {
	for _, col := range ds.Columns {
		if ds.IsNumericColumn(col) {
			continue
		}

		changed := 0
		for i := range ds.Rows {
			row := &ds.Rows[i]
			original, ok := row.Values[col].(string)
			if !ok || model.IsMissing(original) {
				continue
			}

			normalized := s.titler.String(strings.TrimSpace(original))
			if normalized == original {
				continue
			}

			row.Values[col] = normalized
			s.log.Append(col, OpTextStandardization, original, normalized, model.Index(row.Index))
			changed++
		}

		if changed > 0 {
			s.logger.Info("Standardized text values",
				zap.String("column", col),
				zap.Int("count", changed))
		}
	}
}
