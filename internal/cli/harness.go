package cli

import (
	"fmt"
	"wireshairk/internal/harness"
	"wireshairk/internal/ollama"
	"wireshairk/internal/records"
	"wireshairk/internal/tui"

	"github.com/spf13/cobra"
)

func (a *app) backend() (*ollama.Client, error) {
	return ollama.New(a.cfg.Ollama.URL, a.cfg.Ollama.Timeout)
}

func newAnswerQuestionsCommand(a *app) *cobra.Command {
	var model, datasetPath, outputPath string

	cmd := &cobra.Command{
		Use:   "answer-questions",
		Short: "Collect a model's answers to every dataset prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if model == "" {
				model = a.cfg.Models.Evaluate
			}
			if datasetPath == "" {
				datasetPath = a.defaultDatasetPath()
			}
			if outputPath == "" {
				outputPath = a.generatedPath(model)
			}

			ds, err := records.ReadDataset(datasetPath)
			if err != nil {
				return err
			}
			backend, err := a.backend()
			if err != nil {
				return err
			}

			w, err := records.Append(outputPath)
			if err != nil {
				return err
			}
			defer w.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Answering questions for model: %s\n", model)
			g := harness.NewGenerator(backend, tui.NewHuhConfirmer(), model, a.log)
			sum, err := g.Run(cmd.Context(), ds, w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d answers to %s (%d failed)\n", sum.Written, outputPath, sum.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model to evaluate (default from config)")
	cmd.Flags().StringVar(&datasetPath, "dataset-path", "", "Dataset to answer (default <dataset output>/zero_shot/dataset.jsonl)")
	cmd.Flags().StringVar(&outputPath, "output-path", "", "Generated output file (default <evaluation output>/generated_output_<model>.jsonl)")

	return cmd
}

func newEvaluateCommand(a *app) *cobra.Command {
	var generatedPath, datasetPath, evaluatorModel string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Grade generated answers against the dataset with an evaluator model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if generatedPath == "" {
				generatedPath = a.generatedPath(a.cfg.Models.Evaluate)
			}
			if datasetPath == "" {
				datasetPath = a.defaultDatasetPath()
			}
			if evaluatorModel == "" {
				evaluatorModel = a.cfg.Models.Evaluator
			}

			generated, err := records.ReadGenerated(generatedPath)
			if err != nil {
				return err
			}
			refs, err := records.ReadDataset(datasetPath)
			if err != nil {
				return err
			}
			if len(generated) != len(refs) {
				a.log.WithField("generated", len(generated)).WithField("dataset", len(refs)).
					Warn("Generated output and dataset differ in length")
			}

			backend, err := a.backend()
			if err != nil {
				return err
			}

			outputPath := a.evaluationPath(generatedPath)
			w, err := records.Append(outputPath)
			if err != nil {
				return err
			}
			defer w.Close()

			e := harness.NewEvaluator(backend, tui.NewHuhConfirmer(), harness.EvaluatorConfig{
				Model:           evaluatorModel,
				MaxRetries:      a.cfg.Evaluation.MaxRetries,
				StrictAlignment: a.cfg.Evaluation.StrictAlignment,
			}, a.log)

			sum, err := e.Run(cmd.Context(), generated, refs, w)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Evaluated %d answers into %s (%d degraded, %d dropped)\n",
				sum.Evaluated, outputPath, sum.Degraded, sum.Dropped)
			return nil
		},
	}

	cmd.Flags().StringVar(&generatedPath, "generated-output", "", "Generated output file to grade")
	cmd.Flags().StringVar(&datasetPath, "dataset-path", "", "Dataset holding the reference answers")
	cmd.Flags().StringVar(&evaluatorModel, "evaluator-model", "", "Evaluator model (default from config)")

	return cmd
}
