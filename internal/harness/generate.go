package harness

import (
	"context"
	"wireshairk/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GenerationSummary counts the outcome of a generation run.
type GenerationSummary struct {
	Written  int
	Failed   int
	Attempts int
}

// Generator collects the evaluated model's answers to a dataset.
type Generator struct {
	backend   Backend
	confirmer Confirmer
	model     string
	log       logrus.FieldLogger
}

func NewGenerator(backend Backend, confirmer Confirmer, model string, log logrus.FieldLogger) *Generator {
	return &Generator{backend: backend, confirmer: confirmer, model: model, log: log}
}

// Run answers every dataset record in order and writes one GeneratedRecord
// per answered record. Each record is retried without limit until the model
// returns a non-empty answer; only ctx ends such a loop early.
func (g *Generator) Run(ctx context.Context, dataset []models.DatasetRecord, w RecordWriter) (GenerationSummary, error) {
	var sum GenerationSummary
	runLog := g.log.WithFields(logrus.Fields{"run_id": uuid.NewString(), "model": g.model})

	if err := preflight(ctx, g.backend, g.confirmer, runLog); err != nil {
		return sum, err
	}

	for i, rec := range dataset {
		log := runLog.WithField("record", i)

		output, attempts, err := g.answer(ctx, rec, log)
		sum.Attempts += attempts
		if err != nil {
			return sum, err
		}

		if err := w.Write(models.GeneratedRecord{Prompt: rec.Prompt, GeneratedOutput: output}); err != nil {
			log.WithError(err).Warn("Failed to write generated answer")
			sum.Failed++
			continue
		}
		sum.Written++
		log.WithField("attempts", attempts).Debug("Generated answer")
	}

	runLog.WithFields(logrus.Fields{"written": sum.Written, "failed": sum.Failed}).Info("Generation finished")
	return sum, nil
}

func (g *Generator) answer(ctx context.Context, rec models.DatasetRecord, log logrus.FieldLogger) (string, int, error) {
	req := models.GenerateRequest{Model: g.model, System: rec.Context, Prompt: rec.Prompt}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", attempt - 1, err
		}

		output, err := g.backend.Generate(ctx, req)
		if err != nil {
			log.WithError(err).WithField("attempt", attempt).Warn("Generation failed, retrying")
			continue
		}
		if output != "" {
			return output, attempt, nil
		}
		log.WithField("attempt", attempt).Debug("Empty generation, retrying")
	}
}

// preflight asks the operator to intervene when the backend is unreachable.
func preflight(ctx context.Context, backend Backend, confirmer Confirmer, log logrus.FieldLogger) error {
	err := backend.Ping(ctx)
	if err == nil {
		return nil
	}
	log.WithError(err).Warn("Backend is not running, please start it to continue")
	return confirmer.Confirm(ctx, "The generative backend is not reachable. Start it, then continue.")
}
