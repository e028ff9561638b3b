package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FilterConfig bounds which raw captures are kept for dataset generation.
type FilterConfig struct {
	RawDir     string
	CleanedDir string
	MinPackets int
	MaxPackets int
	// RequireIP drops captures in which no frame carries an IPv4 or IPv6 layer.
	RequireIP bool
}

// FilterResult counts what happened to each file of the raw directory.
type FilterResult struct {
	Kept    int
	Skipped int
	Failed  int
}

// Filter copies acceptable captures from the raw directory into the cleaned directory.
type Filter struct {
	cfg     FilterConfig
	decoder Decoder
	log     logrus.FieldLogger
}

func NewFilter(cfg FilterConfig, decoder Decoder, log logrus.FieldLogger) *Filter {
	return &Filter{cfg: cfg, decoder: decoder, log: log}
}

// Run inspects every file of the raw directory. Per-file problems are logged
// and counted; only an unreadable directory is returned as an error.
func (f *Filter) Run(ctx context.Context) (FilterResult, error) {
	var res FilterResult

	if err := os.MkdirAll(f.cfg.CleanedDir, 0o755); err != nil {
		return res, fmt.Errorf("create cleaned dir: %w", err)
	}

	entries, err := os.ReadDir(f.cfg.RawDir)
	if err != nil {
		return res, fmt.Errorf("read raw dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		log := f.log.WithField("file", e.Name())
		if !IsCaptureFile(e.Name()) {
			log.Info("Not a capture file, skipping")
			res.Skipped++
			continue
		}

		path := filepath.Join(f.cfg.RawDir, e.Name())
		keep, reason, err := f.accept(ctx, path)
		if err != nil {
			log.WithError(err).Warn("Failed to inspect capture")
			res.Failed++
			continue
		}
		if !keep {
			log.Info(reason)
			res.Skipped++
			continue
		}

		if err := copyFile(path, filepath.Join(f.cfg.CleanedDir, e.Name())); err != nil {
			log.WithError(err).Warn("Failed to copy capture")
			res.Failed++
			continue
		}
		res.Kept++
	}

	return res, nil
}

func (f *Filter) accept(ctx context.Context, path string) (bool, string, error) {
	src, err := f.decoder.Open(ctx, path)
	if err != nil {
		return false, "", err
	}
	defer src.Close()

	packets := 0
	hasIP := false
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false, "", err
		}
		packets++
		if rec.IPv4 != nil || rec.IPv6 != nil {
			hasIP = true
		}
		// No need to read further once the upper bound is crossed.
		if f.cfg.MaxPackets > 0 && packets > f.cfg.MaxPackets {
			return false, fmt.Sprintf("Capture has more than %d packets, skipping", f.cfg.MaxPackets), nil
		}
	}

	if packets < f.cfg.MinPackets {
		return false, fmt.Sprintf("Capture has less than %d packets, skipping", f.cfg.MinPackets), nil
	}
	if f.cfg.RequireIP && !hasIP {
		return false, "Capture has no IP traffic, skipping", nil
	}
	return true, "", nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
