// pkg/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feedbackops/cleanse/pkg/cleaner"
	"github.com/feedbackops/cleanse/pkg/config"
	"github.com/feedbackops/cleanse/pkg/extract"
	"github.com/feedbackops/cleanse/pkg/model"
	"github.com/feedbackops/cleanse/pkg/registry"
	"github.com/feedbackops/cleanse/pkg/report"
)

// Pipeline runs the full ingestion and cleaning flow for one invocation:
// extract each source, clean it, accumulate rows and changes, save the
// cleaned dataset, export the change report and optionally record the run.
type Pipeline struct {
	cfg      *config.Config
	logger   *zap.Logger
	strategy cleaner.Strategy

	structured   *extract.StructuredExtractor
	unstructured *extract.UnstructuredExtractor
	mapper       *extract.SchemaMapper
	exporter     *report.Exporter

	jobs      []SourceJob
	dataset   *model.Dataset
	changeLog *model.ChangeLog
	metrics   *RunMetrics
	errors    *ErrorCollector
	inputs    []string
}

// New creates a pipeline for the named cleaning strategy.
func New(strategyName string, cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	strategy, err := cleaner.New(strategyName, cfg, logger)
	if err != nil {
		return nil, err
	}

	log := logger.Named("pipeline")
	return &Pipeline{
		cfg:          cfg,
		logger:       log,
		strategy:     strategy,
		structured:   extract.NewStructuredExtractor(logger),
		unstructured: extract.NewUnstructuredExtractor(logger),
		mapper:       extract.NewSchemaMapper(cfg.UnknownValue, cfg.MaxTextLength, cfg.DefaultRating, logger),
		exporter:     report.NewExporter(logger),
		dataset:      model.NewDataset(nil),
		changeLog:    model.NewChangeLog(),
		metrics:      NewRunMetrics(log),
		errors:       NewErrorCollector(log),
	}, nil
}

// AddStructured queues a tabular source file (CSV or Excel).
func (p *Pipeline) AddStructured(path string) {
	p.jobs = append(p.jobs, NewSourceJob(path, SourceStructured))
}

// AddUnstructured queues a free-text directory or JSON file.
func (p *Pipeline) AddUnstructured(path string) {
	p.jobs = append(p.jobs, NewSourceJob(path, SourceUnstructured))
}

// Run executes every queued source, cleans the accumulated dataset and
// returns the cleaned result. Individual source failures are recovered;
// only an empty accumulated dataset is fatal.
func (p *Pipeline) Run(ctx context.Context) (*model.Dataset, error) {
	p.logger.Info("Starting pipeline run",
		zap.String("strategy", p.strategy.Name()),
		zap.Int("sources", len(p.jobs)))

	for _, job := range p.jobs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline run cancelled: %w", err)
		}
		p.processSource(job)
	}

	if p.dataset.Empty() {
		p.errors.Record(NewErrorRecord(ErrNoData, ErrorCategoryFatal))
		return nil, ErrNoData
	}

	p.metrics.Complete()
	p.logger.Info("Pipeline run finished",
		zap.Int("rows", p.dataset.Len()),
		zap.Int("changes", p.changeLog.Len()),
		zap.Int("recoveredErrors", p.errors.Count()))

	return p.dataset, nil
}

// processSource extracts one source, cleans it in isolation and merges the
// surviving rows and change records into the run accumulators.
func (p *Pipeline) processSource(job SourceJob) {
	result := NewSourceResult(job)
	p.inputs = append(p.inputs, job.Path)

	raw := p.extractSource(job)
	result.RowsRead = raw.Len()

	if raw.Empty() {
		result.AddError(NewErrorRecord(
			fmt.Errorf("source yielded no rows"), ErrorCategoryInput).WithSource(job.Path))
		p.errors.Record(result.Errors[len(result.Errors)-1])
		result.Complete(false)
		p.metrics.RecordSource(*result)
		return
	}

	cleaned, changes, err := p.strategy.Clean(raw)
	if err != nil {
		record := NewErrorRecord(err, ErrorCategoryCleaning).WithSource(job.Path)
		p.errors.Record(record)
		result.AddError(record)
		result.Complete(false)
		p.metrics.RecordSource(*result)
		return
	}

	p.dataset.Merge(cleaned)
	p.changeLog.Absorb(changes)

	result.RowsKept = cleaned.Len()
	result.Changes = changes.Len()
	result.Complete(true)
	p.metrics.RecordSource(*result)
}

// extractSource dispatches on source kind and file extension. Extractors
// never fail hard; an unreadable source comes back empty.
func (p *Pipeline) extractSource(job SourceJob) *model.Dataset {
	switch job.Kind {
	case SourceStructured:
		switch strings.ToLower(filepath.Ext(job.Path)) {
		case ".xlsx", ".xls":
			return p.structured.FromExcel(job.Path)
		default:
			return p.structured.FromCSV(job.Path)
		}

	case SourceUnstructured:
		if strings.EqualFold(filepath.Ext(job.Path), ".json") {
			raw := p.unstructured.FromJSON(job.Path)
			return p.mapper.MapToFeedbackSchema(raw, p.dataset.Len()+1)
		}
		raw := p.unstructured.FromTextFiles(job.Path)
		return p.mapper.MapToFeedbackSchema(raw, p.dataset.Len()+1)

	default:
		p.errors.Record(NewErrorRecord(
			fmt.Errorf("%w: %s", ErrUnsupportedFormat, job.Kind), ErrorCategoryInput).WithSource(job.Path))
		return model.NewDataset(nil)
	}
}

// Save writes the cleaned dataset to a uniquely named CSV under the
// configured output directory and returns the path.
func (p *Pipeline) Save(ds *model.Dataset) (string, error) {
	name := fmt.Sprintf("cleaned_feedback_%s_%s.csv",
		p.strategy.Name(), time.Now().Format("20060102_150405"))
	path := filepath.Join(p.cfg.OutputPath, name)

	if err := writeDatasetCSV(ds, path); err != nil {
		p.errors.Record(NewErrorRecord(err, ErrorCategoryExport).WithSource(path))
		return "", fmt.Errorf("failed to save cleaned dataset: %w", err)
	}

	p.logger.Info("Saved cleaned dataset",
		zap.String("path", path),
		zap.Int("rows", ds.Len()))
	return path, nil
}

// ExportChangeReport writes the four change report artifacts next to the
// saved dataset. Sink failures are recovered and reported in the result.
func (p *Pipeline) ExportChangeReport(outputPath string) report.Result {
	stem := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	result := p.exporter.Export(p.changeLog, stem)

	for _, err := range result.Errors {
		p.errors.Record(NewErrorRecord(err, ErrorCategoryExport).WithSource(stem))
	}
	return result
}

// RecordRun persists the run and its full change detail in the registry.
func (p *Pipeline) RecordRun(ctx context.Context, reg *registry.Registry, outputPath string) (int64, error) {
	meta := registry.RunMetadata{
		Timestamp:       time.Now().UTC().Format(model.TimestampLayout),
		CleanerType:     p.strategy.Name(),
		InputFile:       strings.Join(p.inputs, ";"),
		OutputFile:      outputPath,
		TotalRecords:    p.dataset.Len(),
		TotalChanges:    p.changeLog.Len(),
		DurationSeconds: p.metrics.Duration().Seconds(),
		Status:          "completed",
	}

	runID, err := reg.StoreRun(ctx, meta, p.changeLog.Records())
	if err != nil {
		p.errors.Record(NewErrorRecord(err, ErrorCategoryRegistry))
		return 0, err
	}
	return runID, nil
}

// ChangeLog exposes the accumulated change log.
func (p *Pipeline) ChangeLog() *model.ChangeLog {
	return p.changeLog
}

// Metrics exposes the run metrics.
func (p *Pipeline) Metrics() *RunMetrics {
	return p.metrics
}

// Errors exposes the recovered-error collector.
func (p *Pipeline) Errors() *ErrorCollector {
	return p.errors
}
