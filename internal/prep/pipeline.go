package prep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smartsales/internal/dataset"
	"smartsales/internal/scrub"
)

// Step is a single named cleaning step of a prep pipeline. Run mutates the
// dataset in place and reports how many records or values it affected.
type Step struct {
	Name string
	Run  func(ds *dataset.Dataset) (int, error)
}

// StepResult records the outcome of one executed step.
type StepResult struct {
	Name     string        `json:"name"`
	Affected int           `json:"affected"`
	Duration time.Duration `json:"duration"`
}

// Report summarizes one pipeline run: the dataset's shape and null content
// before and after cleaning, plus per-step affected counts.
type Report struct {
	Pipeline string           `json:"pipeline"`
	Before   scrub.Inspection `json:"before"`
	After    scrub.Inspection `json:"after"`
	Steps    []StepResult     `json:"steps"`
}

// Pipeline sequences scrub steps for one source table. Pipelines for
// different source tables share no mutable state and may run in parallel,
// but all must finish before the warehouse load begins.
type Pipeline struct {
	name   string
	logger *slog.Logger
	steps  []Step
}

// NewPipeline creates a pipeline with the given name and steps.
func NewPipeline(name string, logger *slog.Logger, steps ...Step) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{name: name, logger: logger, steps: steps}
}

// Name returns the pipeline's name.
func (p *Pipeline) Name() string { return p.name }

// Run executes every step in order against the dataset. The first structural
// error aborts the run; value-level anomalies are absorbed by the steps
// themselves and show up in the report's affected counts.
func (p *Pipeline) Run(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	report := &Report{
		Pipeline: p.name,
		Before:   scrub.Inspect(ds),
		Steps:    make([]StepResult, 0, len(p.steps)),
	}

	p.logger.InfoContext(ctx, "prep pipeline starting",
		slog.String("pipeline", p.name),
		slog.Int("rows", report.Before.Rows),
		slog.Int("columns", report.Before.Columns))

	for _, step := range p.steps {
		started := time.Now()
		affected, err := step.Run(ds)
		if err != nil {
			p.logger.ErrorContext(ctx, "prep step failed",
				slog.String("pipeline", p.name),
				slog.String("step", step.Name),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("pipeline %s, step %s: %w", p.name, step.Name, err)
		}
		result := StepResult{Name: step.Name, Affected: affected, Duration: time.Since(started)}
		report.Steps = append(report.Steps, result)
		p.logger.InfoContext(ctx, "prep step completed",
			slog.String("pipeline", p.name),
			slog.String("step", step.Name),
			slog.Int("affected", affected))
	}

	report.After = scrub.Inspect(ds)
	p.logger.InfoContext(ctx, "prep pipeline completed",
		slog.String("pipeline", p.name),
		slog.Int("rows_before", report.Before.Rows),
		slog.Int("rows_after", report.After.Rows))

	return report, nil
}
