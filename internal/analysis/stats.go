// Package analysis aggregates one capture's packet records into the
// statistics behind the dataset answers.
package analysis

import (
	"context"
	"errors"
	"io"
	"math"
	"wireshairk/internal/capture"
	"wireshairk/internal/models"

	"github.com/sirupsen/logrus"
)

// ErrNoPackets is returned for statistics that are undefined on an empty capture.
var ErrNoPackets = errors.New("capture has no packets")

// CaptureStats holds the totals of one capture pass. It is not modified once
// the pass that produced it has finished.
type CaptureStats struct {
	TotalPackets   int
	TotalBytes     int
	IPCounts       *OrderedCounter
	ProtocolCounts *OrderedCounter
	StartTimestamp float64
	EndTimestamp   float64
	HasIPLayer     bool

	// FailedRecords counts records whose fields could not be fully decoded.
	FailedRecords int
	// Truncated is set when the record stream ended with an error.
	Truncated bool
}

// Aggregator accumulates CaptureStats from records in arrival order.
type Aggregator struct {
	stats CaptureStats
	log   logrus.FieldLogger
}

func NewAggregator(log logrus.FieldLogger) *Aggregator {
	return &Aggregator{
		stats: CaptureStats{
			IPCounts:       NewOrderedCounter(),
			ProtocolCounts: NewOrderedCounter(),
		},
		log: log,
	}
}

// Add folds one record into the statistics.
func (a *Aggregator) Add(rec models.PacketRecord) {
	s := &a.stats

	if s.TotalPackets == 0 {
		s.StartTimestamp = rec.Timestamp
	}
	// End is the last record reached, whatever its timestamp.
	s.EndTimestamp = rec.Timestamp
	s.TotalPackets++
	s.TotalBytes += rec.Length

	if rec.Err != nil {
		s.FailedRecords++
		a.log.WithError(rec.Err).WithField("record", s.TotalPackets).Warn("Frame failed to decode, excluding it from protocol and IP counts")
		return
	}

	for _, name := range rec.Layers {
		s.ProtocolCounts.Inc(name)
	}

	pair, ok := rec.Endpoints()
	if !ok {
		return
	}
	s.HasIPLayer = true
	s.IPCounts.Inc(pair.Src)
	if pair.Dst != pair.Src {
		s.IPCounts.Inc(pair.Dst)
	}
}

// Stats returns the statistics accumulated so far.
func (a *Aggregator) Stats() CaptureStats {
	return a.stats
}

// Aggregate drains src into a new CaptureStats. A stream error ends the pass
// early and the statistics describe the records read until then; only
// context cancellation is returned as an error.
func Aggregate(ctx context.Context, src capture.Source, log logrus.FieldLogger) (CaptureStats, error) {
	agg := NewAggregator(log)
	for {
		if err := ctx.Err(); err != nil {
			return agg.Stats(), err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return agg.Stats(), ctxErr
			}
			log.WithError(err).WithField("records", agg.stats.TotalPackets).Warn("Capture stream ended early")
			agg.stats.Truncated = true
			break
		}
		agg.Add(rec)
	}
	return agg.Stats(), nil
}

// Duration is the time between the first and last record, rounded to
// microseconds. It is negative when the capture timestamps go backwards.
func (s CaptureStats) Duration() float64 {
	return round(s.EndTimestamp-s.StartTimestamp, 6)
}

// AvgPacketSize is the truncated mean frame length.
func (s CaptureStats) AvgPacketSize() (int, error) {
	if s.TotalPackets == 0 {
		return 0, ErrNoPackets
	}
	return s.TotalBytes / s.TotalPackets, nil
}

// BytesPerSecond is zero unless the capture has a positive duration.
func (s CaptureStats) BytesPerSecond() float64 {
	d := s.Duration()
	if d <= 0 {
		return 0
	}
	return float64(s.TotalBytes) / d
}

// PacketsPerSecond is zero unless the capture has a positive duration.
func (s CaptureStats) PacketsPerSecond() float64 {
	d := s.Duration()
	if d <= 0 {
		return 0
	}
	return float64(s.TotalPackets) / d
}

// ProtocolBucket is one of the protocols compared for the dominant protocol question.
type ProtocolBucket struct {
	Layer string
	Name  string
}

var dominantBuckets = []ProtocolBucket{
	{Layer: "icmp", Name: "ICMP"},
	{Layer: "icmpv6", Name: "ICMPv6"},
	{Layer: "tcp", Name: "TCP"},
	{Layer: "udp", Name: "UDP"},
}

// DominantProtocol returns the bucket whose layer count is strictly greater
// than every other bucket's. All other layer names are ignored.
func (s CaptureStats) DominantProtocol() (ProtocolBucket, bool) {
	var (
		best    ProtocolBucket
		top     int
		leaders int
	)
	for _, b := range dominantBuckets {
		n := s.ProtocolCounts.Get(b.Layer)
		switch {
		case n > top:
			best, top, leaders = b, n, 1
		case n == top:
			leaders++
		}
	}
	if top == 0 || leaders != 1 {
		return ProtocolBucket{}, false
	}
	return best, true
}

func round(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}
