package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var captureExts = []string{".cap", ".pcap", ".pcapng"}

// IsCaptureFile reports whether name looks like a capture file.
// A trailing ".gz" is accepted on top of the capture extension.
func IsCaptureFile(name string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), ".gz")
	for _, ext := range captureExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ListCaptures returns the capture files directly under dir, sorted by name.
func ListCaptures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list captures in %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsCaptureFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
