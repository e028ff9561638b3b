package tshark

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"wireshairk/internal/capture"
	"wireshairk/internal/models"

	"github.com/sirupsen/logrus"
)

const maxLineSize = 4 << 20

// Decoder reads capture files through `tshark -T ek`, which understands
// every format Wireshark does.
type Decoder struct {
	Binary string // Defaults to "tshark"
	Log    logrus.FieldLogger
}

func (d Decoder) Open(ctx context.Context, path string) (capture.Source, error) {
	bin := d.Binary
	if bin == "" {
		bin = "tshark"
	}

	// -n: disable name resolution
	// -T ek: one JSON document per packet
	args := []string{"-r", path, "-n", "-T", "ek"}
	for _, f := range ekFields {
		args = append(args, "-e", f)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start tshark: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &source{cmd: cmd, stderr: &stderr, scanner: scanner, log: log.WithField("file", path)}, nil
}

type source struct {
	cmd     *exec.Cmd
	stderr  *strings.Builder
	scanner *bufio.Scanner
	log     logrus.FieldLogger
	line    int
	done    bool
}

func (s *source) Next() (models.PacketRecord, error) {
	for s.scanner.Scan() {
		s.line++
		line := s.scanner.Text()

		if strings.TrimSpace(line) == "" {
			continue
		}

		// Tshark -T ek emits an index line before each packet.
		// We look for lines containing "layers".
		if !strings.Contains(line, "\"layers\"") {
			continue
		}

		var ekPkt EkPacket
		if err := json.Unmarshal([]byte(line), &ekPkt); err != nil {
			s.log.WithError(err).WithField("line", s.line).Warn("Skipping malformed tshark line")
			continue
		}

		rec, err := ConvertToRecord(ekPkt)
		if err != nil {
			s.log.WithError(err).WithField("line", s.line).Warn("Skipping undecodable frame")
			continue
		}
		return rec, nil
	}

	if err := s.scanner.Err(); err != nil {
		return models.PacketRecord{}, fmt.Errorf("read tshark output: %w", err)
	}
	if err := s.wait(); err != nil {
		return models.PacketRecord{}, err
	}
	return models.PacketRecord{}, io.EOF
}

func (s *source) wait() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("tshark: %w (%s)", err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}

func (s *source) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}

// ConvertToRecord maps one EK packet to a PacketRecord. Frames with a missing
// or unparsable timestamp or length cannot be placed in the capture and are rejected.
func ConvertToRecord(ek EkPacket) (models.PacketRecord, error) {
	var rec models.PacketRecord

	v := first(ek.Layers.FrameTimeEpoch)
	if v == "" {
		return rec, errors.New("frame.time_epoch missing")
	}
	ts, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return rec, fmt.Errorf("frame.time_epoch %q: %w", v, err)
	}
	rec.Timestamp = ts

	v = first(ek.Layers.FrameLen)
	if v == "" {
		return rec, errors.New("frame.len missing")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return rec, fmt.Errorf("frame.len %q: %w", v, err)
	}
	rec.Length = n

	if v := first(ek.Layers.FrameProtocols); v != "" {
		rec.Layers = strings.Split(v, ":")
	}

	if src, dst := first(ek.Layers.IPSrc), first(ek.Layers.IPDst); src != "" || dst != "" {
		rec.IPv4 = &models.IPPair{Src: src, Dst: dst}
	}
	if src, dst := first(ek.Layers.IPv6Src), first(ek.Layers.IPv6Dst); src != "" || dst != "" {
		rec.IPv6 = &models.IPPair{Src: src, Dst: dst}
	}

	return rec, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
