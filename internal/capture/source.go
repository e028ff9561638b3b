// Package capture reads offline capture files into PacketRecords and renders
// them as the packet tables embedded in dataset prompts.
package capture

import (
	"context"
	"errors"
	"io"
	"wireshairk/internal/models"
)

// ErrUnknownFormat is returned when a file is neither pcap nor pcapng.
var ErrUnknownFormat = errors.New("unknown capture format")

// Source yields the records of one capture in capture order.
// Next returns io.EOF after the last record. Any other error ends the stream.
type Source interface {
	Next() (models.PacketRecord, error)
	Close() error
}

// Decoder opens capture files as record sources.
type Decoder interface {
	Open(ctx context.Context, path string) (Source, error)
}

// SliceSource serves records from memory. If Fail is set it is returned
// once the records are exhausted instead of io.EOF.
type SliceSource struct {
	Records []models.PacketRecord
	Fail    error

	pos int
}

func (s *SliceSource) Next() (models.PacketRecord, error) {
	if s.pos >= len(s.Records) {
		if s.Fail != nil {
			return models.PacketRecord{}, s.Fail
		}
		return models.PacketRecord{}, io.EOF
	}
	rec := s.Records[s.pos]
	s.pos++
	return rec, nil
}

func (s *SliceSource) Close() error { return nil }

// StaticDecoder maps paths to fixed record lists.
type StaticDecoder map[string][]models.PacketRecord

func (d StaticDecoder) Open(_ context.Context, path string) (Source, error) {
	recs, ok := d[path]
	if !ok {
		return nil, &NotFoundError{Path: path}
	}
	return &SliceSource{Records: recs}, nil
}

// NotFoundError reports a capture missing from a StaticDecoder.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return "capture not found: " + e.Path }
