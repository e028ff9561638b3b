package cli

import (
	"fmt"
	"path/filepath"
	"wireshairk/internal/models"
	"wireshairk/internal/records"
	"wireshairk/internal/reporting"
	"wireshairk/internal/tui"

	"github.com/spf13/cobra"
)

type reportOptions struct {
	input       string
	html        bool
	styled      bool
	interactive bool
}

func newGenerateReportCommand(a *app) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "generate-report",
		Short: "Summarize an evaluation file per question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := opts.input
			if input == "" {
				input = a.evaluationPath(a.generatedPath(a.cfg.Models.Evaluate))
			}

			entries, err := records.ReadEvaluations(input)
			if err != nil {
				return err
			}
			report := reporting.Aggregate(entries, a.log)
			questions := models.DefaultQuestions()

			fmt.Fprintf(cmd.OutOrStdout(), "Generating report for: %s\n", input)

			if opts.html {
				name, err := reporting.GenerateHTMLReport(report, questions, input, filepath.Dir(input))
				if err != nil {
					return fmt.Errorf("write html report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "HTML report written to %s\n", name)
			}

			switch {
			case opts.interactive:
				return tui.Run(report, questions, input)
			case opts.styled:
				_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Render(questions))
				return err
			default:
				return report.WriteText(cmd.OutOrStdout())
			}
		},
	}

	cmd.Flags().StringVar(&opts.input, "evaluation-input", "", "Evaluation file to summarize")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Also write an HTML report next to the evaluation file")
	cmd.Flags().BoolVar(&opts.styled, "styled", false, "Print the report with terminal styling")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "Browse the report in an interactive table")

	return cmd
}
