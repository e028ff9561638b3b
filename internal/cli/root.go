// Package cli wires the wireshairk commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"wireshairk/internal/capture"
	"wireshairk/internal/config"
	"wireshairk/internal/logging"
	"wireshairk/internal/tshark"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the state shared by every command once the root has loaded it.
type app struct {
	configPath string
	debug      bool

	cfg *config.Config
	log *logrus.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "wireshairk",
		Short: "Wireshairk - network capture Q/A datasets for LLM evaluation",
		Long: `Wireshairk builds question/answer datasets from network captures and
uses them to evaluate generative models.

Typical flow: scrape-and-clean, generate-dataset, answer-questions,
evaluate, generate-report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to the YAML config file (default wireshairk.yaml)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newScrapeCommand(a))
	cmd.AddCommand(newCleanRawCommand(a))
	cmd.AddCommand(newScrapeAndCleanCommand(a))
	cmd.AddCommand(newGenerateDatasetCommand(a))
	cmd.AddCommand(newAnswerQuestionsCommand(a))
	cmd.AddCommand(newEvaluateCommand(a))
	cmd.AddCommand(newGenerateReportCommand(a))
	cmd.AddCommand(newShowConfigCommand(a))

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, a.debug)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) decoder() capture.Decoder {
	if a.cfg.Capture.Decoder == config.DecoderTshark {
		return tshark.Decoder{Binary: a.cfg.Capture.TsharkPath, Log: a.log}
	}
	return capture.GopacketDecoder{}
}

func (a *app) renderer() capture.Renderer {
	return capture.TsharkRenderer{Binary: a.cfg.Capture.TsharkPath}
}

func (a *app) generatedPath(model string) string {
	return filepath.Join(a.cfg.Evaluation.OutputDir, fmt.Sprintf("generated_output_%s.jsonl", model))
}

// evaluationPath derives the evaluation file name from the generated output it grades.
func (a *app) evaluationPath(generated string) string {
	stem := strings.TrimSuffix(filepath.Base(generated), filepath.Ext(generated))
	return filepath.Join(a.cfg.Evaluation.OutputDir, fmt.Sprintf("evaluation_%s.jsonl", stem))
}

func (a *app) defaultDatasetPath() string {
	return filepath.Join(a.cfg.Dataset.OutputDir, "zero_shot", "dataset.jsonl")
}
