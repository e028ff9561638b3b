package capture

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Renderer produces the printable packet table of a capture.
type Renderer interface {
	Render(ctx context.Context, path string) (string, error)
}

// TsharkRenderer renders captures with `tshark -r`.
type TsharkRenderer struct {
	Binary string // Defaults to "tshark"
}

func (r TsharkRenderer) Render(ctx context.Context, path string) (string, error) {
	bin := r.Binary
	if bin == "" {
		bin = "tshark"
	}

	out, err := exec.CommandContext(ctx, bin, "-r", path).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("fail reading the file %s: %v (%s)", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("fail reading the file %s: %w", path, err)
	}

	return CleanTable(string(out)), nil
}

// CleanTable normalizes tshark output for embedding in a JSON prompt.
// Replacements are applied one after another, so a tab next to a space collapses too.
func CleanTable(table string) string {
	table = strings.ReplaceAll(table, "\t", " ")
	table = strings.ReplaceAll(table, "  ", " ")
	table = strings.ReplaceAll(table, `"`, "'")
	table = strings.ReplaceAll(table, "→", "->")
	return table
}
