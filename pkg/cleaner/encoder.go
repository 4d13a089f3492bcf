// pkg/cleaner/encoder.go
package cleaner

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/config"
	"github.com/feedbackops/cleanse/pkg/converter"
	"github.com/feedbackops/cleanse/pkg/model"
)

// Operation tags recorded by the encoder strategy.
const (
	OpAnomalyDetection   = "encoder_anomaly_detection"
	OpEncoderImputation  = "encoder_imputation"
	OpFallbackImputation = "fallback_imputation"
)

// Encoder is the model-based strategy. It delegates the baseline steps,
// encodes categorical columns to numeric indices, scores each row with a
// reconstruction-error proxy over the standardized feature matrix, flags
// rows above the configured threshold as anomalies (detection only, no
// correction), and runs a secondary mode/median imputation pass.
type Encoder struct {
	cfg      *config.Config
	logger   *zap.Logger
	baseline *Baseline
	log      *model.ChangeLog
}

// NewEncoder creates the model-based strategy.
func NewEncoder(cfg *config.Config, logger *zap.Logger) *Encoder {
	return &Encoder{
		cfg:      cfg,
		logger:   logger.Named("encoder-cleaner"),
		baseline: NewBaseline(cfg, logger),
		log:      model.NewChangeLog(),
	}
}

// Name returns the strategy identifier.
func (e *Encoder) Name() string {
	return NameEncoder
}

// Clean runs baseline cleaning, anomaly scoring and secondary imputation.
// If the baseline delegate fails the strategy degrades to a plain
// missing-value fallback; if scoring fails the baseline result is kept.
func (e *Encoder) Clean(ds *model.Dataset) (*model.Dataset, *model.ChangeLog, error) {
	if ds == nil {
		return nil, nil, errors.New("dataset cannot be nil")
	}

	e.log.Clear()

	cleaned, baseLog, err := e.baseline.Clean(ds)
	if err != nil {
		e.logger.Warn("Baseline cleaning failed, using fallback imputation", zap.Error(err))
		cleaned = ds.Clone()
		e.fallbackImputation(cleaned)
	} else {
		e.log.Absorb(baseLog)
	}

	if err := e.flagAnomalies(cleaned); err != nil {
		e.logger.Warn("Anomaly scoring failed, keeping baseline result", zap.Error(err))
	}
	e.secondaryImputation(cleaned)

	e.logger.Info("Encoder cleaning completed",
		zap.Int("rows", cleaned.Len()),
		zap.Int("changes", e.log.Len()))

	return cleaned, e.log, nil
}

// flagAnomalies scores every row and logs a detection-only record for rows
// whose reconstruction error exceeds the threshold. The number of flagged
// rows is capped by the contamination fraction.
func (e *Encoder) flagAnomalies(ds *model.Dataset) error {
	scores, err := e.reconstructionErrors(ds)
	if err != nil {
		return err
	}

	type flagged struct {
		position int
		score    float64
	}
	var candidates []flagged
	for i, score := range scores {
		if score > e.cfg.AnomalyThreshold {
			candidates = append(candidates, flagged{position: i, score: score})
		}
	}

	// Highest scores first, bounded by the contamination budget.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	budget := int(math.Ceil(e.cfg.Contamination * float64(ds.Len())))
	if len(candidates) > budget {
		candidates = candidates[:budget]
	}

	for _, c := range candidates {
		row := ds.Rows[c.position]
		e.log.Append(model.ColumnAll, OpAnomalyDetection,
			"anomaly_detected",
			fmt.Sprintf("score_%.3f", c.score),
			model.Index(row.Index))
	}

	e.logger.Info("Scored rows for anomalies",
		zap.Int("rows", ds.Len()),
		zap.Int("flagged", len(candidates)),
		zap.Float64("threshold", e.cfg.AnomalyThreshold))
	return nil
}

// reconstructionErrors builds the encoded feature matrix and returns one
// error score per row: the weighted mean of squared z-scores across
// features, with per-feature weights drawn from the seeded generator.
func (e *Encoder) reconstructionErrors(ds *model.Dataset) ([]float64, error) {
	if ds.Len() < 2 {
		return nil, errors.New("not enough rows to score")
	}

	features := e.encodeFeatures(ds)
	if len(features) == 0 {
		return nil, errors.New("no encodable features")
	}

	rng := rand.New(rand.NewSource(e.cfg.RandomSeed))
	scores := make([]float64, ds.Len())
	var totalWeight float64

	for _, feature := range features {
		mean, std := meanStd(feature)
		if std == 0 {
			continue
		}
		weight := 0.5 + rng.Float64()
		totalWeight += weight

		for i, v := range feature {
			z := (v - mean) / std
			scores[i] += weight * z * z
		}
	}
	if totalWeight == 0 {
		return nil, errors.New("no feature variance")
	}

	for i := range scores {
		scores[i] /= totalWeight
	}
	return scores, nil
}

// encodeFeatures converts each column into a float vector: numeric columns
// keep their values with median-imputed gaps, categorical columns become
// indices into the sorted set of distinct values.
func (e *Encoder) encodeFeatures(ds *model.Dataset) [][]float64 {
	var features [][]float64
	for _, col := range ds.Columns {
		if ds.IsNumericColumn(col) {
			values, _ := ds.NumericValues(col)
			fill := median(values)

			feature := make([]float64, ds.Len())
			for i, row := range ds.Rows {
				v := row.Values[col]
				if model.IsMissing(v) {
					feature[i] = fill
					continue
				}
				f, err := converter.ToFloat(v)
				if err != nil {
					f = fill
				}
				feature[i] = f
			}
			features = append(features, feature)
			continue
		}

		// Categorical: index encoding over the sorted distinct values,
		// missing cells mapped to the placeholder.
		distinct := make(map[string]struct{})
		for _, row := range ds.Rows {
			distinct[e.categoryKey(row.Values[col])] = struct{}{}
		}
		keys := make([]string, 0, len(distinct))
		for k := range distinct {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		index := make(map[string]float64, len(keys))
		for i, k := range keys {
			index[k] = float64(i)
		}

		feature := make([]float64, ds.Len())
		for i, row := range ds.Rows {
			feature[i] = index[e.categoryKey(row.Values[col])]
		}
		features = append(features, feature)
	}
	return features
}

func (e *Encoder) categoryKey(v interface{}) string {
	if model.IsMissing(v) {
		return e.cfg.UnknownValue
	}
	return converter.ToString(v)
}

// secondaryImputation fills any cells still missing after the earlier
// passes: column mode for categorical values, median for numeric ones.
func (e *Encoder) secondaryImputation(ds *model.Dataset) {
	e.imputeMissing(ds, OpEncoderImputation)
}

// fallbackImputation is the degraded path used when baseline cleaning
// fails outright: fill gaps so the call still returns a usable dataset.
func (e *Encoder) fallbackImputation(ds *model.Dataset) {
	e.imputeMissing(ds, OpFallbackImputation)
}

func (e *Encoder) imputeMissing(ds *model.Dataset, operation string) {
	for _, col := range ds.Columns {
		numeric := ds.IsNumericColumn(col)

		var fill interface{}
		if numeric {
			values, _ := ds.NumericValues(col)
			fill = median(values)
		} else {
			fill = e.modeValue(ds, col)
		}

		filled := 0
		for i := range ds.Rows {
			row := &ds.Rows[i]
			if !model.IsMissing(row.Values[col]) {
				continue
			}
			row.Values[col] = fill
			e.log.Append(col, operation, nil, fill, model.Index(row.Index))
			filled++
		}

		if filled > 0 {
			e.logger.Info("Imputed missing values",
				zap.String("column", col),
				zap.String("operation", operation),
				zap.Int("count", filled))
		}
	}
}

// modeValue returns the most frequent non-missing value of a column,
// breaking frequency ties lexically for determinism. Falls back to the
// configured placeholder for all-missing columns.
func (e *Encoder) modeValue(ds *model.Dataset, col string) string {
	counts := make(map[string]int)
	for _, row := range ds.Rows {
		v := row.Values[col]
		if model.IsMissing(v) {
			continue
		}
		counts[converter.ToString(v)]++
	}
	if len(counts) == 0 {
		return e.cfg.UnknownValue
	}

	best := ""
	bestCount := -1
	for v, n := range counts {
		if n > bestCount || (n == bestCount && v < best) {
			best = v
			bestCount = n
		}
	}
	return best
}
