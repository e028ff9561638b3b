package cli

import (
	"context"
	"fmt"
	"wireshairk/internal/capture"
	"wireshairk/internal/scraper"

	"github.com/spf13/cobra"
)

func newScrapeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Download the public sample captures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.scrape(cmd.Context(), cmd)
		},
	}
}

func newCleanRawCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean-raw",
		Short: "Copy the raw captures that fit the packet and IP filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cleanRaw(cmd.Context(), cmd)
		},
	}
}

func newScrapeAndCleanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape-and-clean",
		Short: "Download the sample captures, then filter them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.scrape(cmd.Context(), cmd); err != nil {
				return err
			}
			return a.cleanRaw(cmd.Context(), cmd)
		},
	}
}

func (a *app) scrape(ctx context.Context, cmd *cobra.Command) error {
	sc := a.cfg.Scraper
	s, err := scraper.New(sc.IndexURL, sc.BaseURL, sc.RawDir, a.log, scraper.WithRate(sc.RequestsPerSecond, 1))
	if err != nil {
		return err
	}

	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Found %d captures: %d downloaded, %d failed\n", res.Found, res.Downloaded, res.Failed)
	return nil
}

func (a *app) cleanRaw(ctx context.Context, cmd *cobra.Command) error {
	fc := a.cfg.Filter
	f := capture.NewFilter(capture.FilterConfig{
		RawDir:     fc.RawDir,
		CleanedDir: fc.CleanedDir,
		MinPackets: fc.MinPackets,
		MaxPackets: fc.MaxPackets,
		RequireIP:  fc.RequireIP,
	}, a.decoder(), a.log)

	res, err := f.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Kept %d captures, skipped %d, failed %d\n", res.Kept, res.Skipped, res.Failed)
	return nil
}
