package cli

import (
	"fmt"
	"wireshairk/internal/analysis"
	"wireshairk/internal/dataset"
	"wireshairk/internal/models"

	"github.com/spf13/cobra"
)

type datasetOptions struct {
	dataPath       string
	zeroShot       bool
	oneShot        bool
	chainOfThought bool
}

// shot picks the template; one-shot wins over chain-of-thought, which wins over zero-shot.
func (o datasetOptions) shot() dataset.Shot {
	switch {
	case o.oneShot:
		return dataset.OneShot
	case o.chainOfThought:
		return dataset.ChainOfThought
	default:
		return dataset.ZeroShot
	}
}

func newGenerateDatasetCommand(a *app) *cobra.Command {
	opts := &datasetOptions{}

	cmd := &cobra.Command{
		Use:   "generate-dataset",
		Short: "Build the question/answer dataset from the cleaned captures",
		Long: `Build one dataset record per capture and question.

Every capture in --data-path yields nine records in a fixed question order.
Any capture that cannot be processed aborts the build and no dataset is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dataPath := opts.dataPath
			if dataPath == "" {
				dataPath = a.cfg.Dataset.DataPath
			}

			b := dataset.NewBuilder(dataset.Config{
				DataPath:  dataPath,
				OutputDir: a.cfg.Dataset.OutputDir,
				Answers:   analysis.AnswerOptions{LegacyPacketRate: a.cfg.Dataset.LegacyPacketRate},
			}, a.decoder(), a.renderer(), models.DefaultQuestions(), a.log)

			shot := opts.shot()
			fmt.Fprintf(cmd.OutOrStdout(), "Generating %s dataset\n", shot)

			path, err := b.Build(cmd.Context(), shot)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dataset written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.dataPath, "data-path", "", "Directory of cleaned captures (default from config)")
	cmd.Flags().BoolVar(&opts.zeroShot, "zero-shot", true, "Generate the zero-shot dataset")
	cmd.Flags().BoolVar(&opts.oneShot, "one-shot", false, "Generate the one-shot dataset")
	cmd.Flags().BoolVar(&opts.chainOfThought, "chain-of-thought", false, "Generate the chain-of-thought dataset")

	return cmd
}
