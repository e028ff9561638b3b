package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"wireshairk/internal/analysis"
	"wireshairk/internal/capture"
	"wireshairk/internal/models"
	"wireshairk/internal/records"

	"github.com/sirupsen/logrus"
)

// Config locates the input captures and the dataset output.
type Config struct {
	DataPath  string
	OutputDir string
	Answers   analysis.AnswerOptions
}

// Builder turns every capture of a directory into NumQuestions dataset records.
type Builder struct {
	cfg       Config
	decoder   capture.Decoder
	renderer  capture.Renderer
	questions models.QuestionSet
	log       logrus.FieldLogger
}

func NewBuilder(cfg Config, decoder capture.Decoder, renderer capture.Renderer, questions models.QuestionSet, log logrus.FieldLogger) *Builder {
	return &Builder{cfg: cfg, decoder: decoder, renderer: renderer, questions: questions, log: log}
}

// OutputPath is where Build writes the dataset for shot.
func (b *Builder) OutputPath(shot Shot) string {
	return filepath.Join(b.cfg.OutputDir, string(shot), "dataset.jsonl")
}

// Build writes the dataset for shot and returns its path. A failure on any
// capture aborts the build and leaves no dataset behind: a dataset missing a
// capture would shift the question slots of every record after it.
func (b *Builder) Build(ctx context.Context, shot Shot) (string, error) {
	contexts, err := shot.Contexts(b.questions)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(b.cfg.DataPath); err != nil || !info.IsDir() {
		return "", fmt.Errorf("the path is not valid: %s", b.cfg.DataPath)
	}
	files, err := capture.ListCaptures(b.cfg.DataPath)
	if err != nil {
		return "", err
	}

	path := b.OutputPath(shot)
	tmp := path + ".partial"
	w, err := records.Create(tmp)
	if err != nil {
		return "", err
	}

	if err := b.writeAll(ctx, w, files, contexts); err != nil {
		w.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close dataset %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("move dataset into place: %w", err)
	}
	return path, nil
}

func (b *Builder) writeAll(ctx context.Context, w *records.Writer, files []string, contexts [models.NumQuestions]string) error {
	for _, file := range files {
		b.log.WithField("file", filepath.Base(file)).Info("Answering questions for capture")

		recs, err := b.Records(ctx, file, contexts)
		if err != nil {
			return fmt.Errorf("error generating dataset for %s: %w", filepath.Base(file), err)
		}
		for _, rec := range recs {
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Records builds the dataset records of one capture in question order.
func (b *Builder) Records(ctx context.Context, file string, contexts [models.NumQuestions]string) ([]models.DatasetRecord, error) {
	src, err := b.decoder.Open(ctx, file)
	if err != nil {
		return nil, err
	}
	stats, err := analysis.Aggregate(ctx, src, b.log.WithField("file", filepath.Base(file)))
	src.Close()
	if err != nil {
		return nil, err
	}

	answers, err := analysis.Answers(stats, b.cfg.Answers)
	if err != nil {
		return nil, err
	}

	table, err := b.renderer.Render(ctx, file)
	if err != nil {
		return nil, err
	}

	out := make([]models.DatasetRecord, 0, models.NumQuestions)
	for i, question := range b.questions {
		out = append(out, models.DatasetRecord{
			Context: SystemContext,
			Prompt:  Prompt(contexts[i], table, question),
			Answer:  answers[i],
		})
	}
	return out, nil
}
