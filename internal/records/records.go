// Package records reads and writes the JSONL files exchanged between the
// dataset, generation, evaluation and report stages.
package records

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"wireshairk/internal/models"
)

const maxLineSize = 64 << 20

// Writer appends one JSON document per line.
type Writer struct {
	f   *os.File
	enc *json.Encoder
}

// Create truncates path, creating parent directories as needed.
func Create(path string) (*Writer, error) {
	return open(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

// Append opens path for appending, creating it and its parents as needed.
func Append(path string) (*Writer, error) {
	return open(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

func open(path string, flag int) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("records: create dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("records: open %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &Writer{f: f, enc: enc}, nil
}

// Write encodes v as a single line.
func (w *Writer) Write(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return fmt.Errorf("records: write %s: %w", w.f.Name(), err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.f.Close()
}

// ReadDataset loads a dataset file, failing on the first invalid line.
func ReadDataset(path string) ([]models.DatasetRecord, error) {
	var out []models.DatasetRecord
	err := scan(path, func(n int, line []byte) error {
		var rec models.DatasetRecord
		if err := decode(line, datasetValidator, &rec); err != nil {
			return fmt.Errorf("records: %s line %d: %w", path, n, err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// ReadGenerated loads a generation output file, failing on the first invalid line.
func ReadGenerated(path string) ([]models.GeneratedRecord, error) {
	var out []models.GeneratedRecord
	err := scan(path, func(n int, line []byte) error {
		var rec models.GeneratedRecord
		if err := decode(line, generatedValidator, &rec); err != nil {
			return fmt.Errorf("records: %s line %d: %w", path, n, err)
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// EvaluationEntry is one line of an evaluation file. Err is set when the line
// is not a valid evaluation record; the entry still holds its place in the stream.
type EvaluationEntry struct {
	Line   int
	Record models.EvaluationRecord
	Err    error
}

// ReadEvaluations loads every non-blank line of an evaluation file. Invalid
// lines are returned as failed entries instead of aborting the read.
func ReadEvaluations(path string) ([]EvaluationEntry, error) {
	var out []EvaluationEntry
	err := scan(path, func(n int, line []byte) error {
		e := EvaluationEntry{Line: n}
		e.Err = decode(line, evaluationValidator, &e.Record)
		out = append(out, e)
		return nil
	})
	return out, err
}

func scan(path string, fn func(n int, line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("records: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(n, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("records: read %s: %w", path, err)
	}
	return nil
}
