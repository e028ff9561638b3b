package tshark

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"wireshairk/internal/models"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ekOutput = `{"index":{"_index":"packets-2004-05-13","_type":"doc"}}
{"timestamp":"1084443427311","layers":{"frame_time_epoch":["1084443427.311224000"],"frame_len":["62"],"frame_protocols":["eth:ethertype:ip:tcp"],"ip_src":["145.254.160.237"],"ip_dst":["65.208.228.223"]}}

{"timestamp":"1","layers": broken
{"index":{"_index":"packets-2004-05-13","_type":"doc"}}
{"timestamp":"1","layers":{"frame_time_epoch":["soon"],"frame_len":["1"]}}
{"timestamp":"1084443428222","layers":{"frame_time_epoch":["1084443428.222534000"],"frame_len":["42"],"frame_protocols":["eth:ethertype:arp"]}}
`

func fakeTshark(t *testing.T, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "ek.json")
	require.NoError(t, os.WriteFile(out, []byte(output), 0o644))
	bin := filepath.Join(dir, "tshark")
	script := "#!/bin/sh\ncat '" + out + "'\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin
}

func TestDecoderStreamsRecords(t *testing.T) {
	log, hook := test.NewNullLogger()
	d := Decoder{Binary: fakeTshark(t, ekOutput), Log: log}

	src, err := d.Open(context.Background(), "http.cap")
	require.NoError(t, err)
	defer src.Close()

	var recs []models.PacketRecord
	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		recs = append(recs, rec)
	}

	require.Len(t, recs, 2)
	assert.Equal(t, []string{"eth", "ethertype", "ip", "tcp"}, recs[0].Layers)
	assert.Equal(t, 62, recs[0].Length)
	assert.InDelta(t, 1084443427.311224, recs[0].Timestamp, 1e-6)
	assert.Equal(t, &models.IPPair{Src: "145.254.160.237", Dst: "65.208.228.223"}, recs[0].IPv4)
	assert.Nil(t, recs[1].IPv4)
	assert.Len(t, hook.AllEntries(), 2)
}

func TestDecoderMissingBinary(t *testing.T) {
	_, err := Decoder{Binary: filepath.Join(t.TempDir(), "missing")}.Open(context.Background(), "x.pcap")
	assert.Error(t, err)
}

func TestConvertToRecord(t *testing.T) {
	rec, err := ConvertToRecord(EkPacket{Layers: EkLayers{
		FrameTimeEpoch: []string{"2.5"},
		FrameLen:       []string{"90"},
		FrameProtocols: []string{"eth:ethertype:ipv6:udp:dns"},
		IPv6Src:        []string{"fe80::1"},
		IPv6Dst:        []string{"ff02::fb"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2.5, rec.Timestamp)
	assert.Equal(t, 90, rec.Length)
	pair, ok := rec.Endpoints()
	assert.True(t, ok)
	assert.Equal(t, models.IPPair{Src: "fe80::1", Dst: "ff02::fb"}, pair)

	_, err = ConvertToRecord(EkPacket{Layers: EkLayers{FrameTimeEpoch: []string{"1"}, FrameLen: []string{"many"}}})
	assert.ErrorContains(t, err, "frame.len")
}

func TestConvertToRecordRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		layers EkLayers
		want   string
	}{
		{name: "no timestamp", layers: EkLayers{FrameLen: []string{"60"}}, want: "frame.time_epoch missing"},
		{name: "empty timestamp", layers: EkLayers{FrameTimeEpoch: []string{""}, FrameLen: []string{"60"}}, want: "frame.time_epoch missing"},
		{name: "no length", layers: EkLayers{FrameTimeEpoch: []string{"1.5"}}, want: "frame.len missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertToRecord(EkPacket{Layers: tt.layers})
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDecoderSkipsFramesWithoutTimestamp(t *testing.T) {
	const output = `{"timestamp":"1","layers":{"frame_len":["60"],"frame_protocols":["eth:ip:udp"]}}
{"timestamp":"2","layers":{"frame_time_epoch":["2.0"],"frame_len":["60"],"frame_protocols":["eth:ip:udp"]}}
`
	log, hook := test.NewNullLogger()
	src, err := Decoder{Binary: fakeTshark(t, output), Log: log}.Open(context.Background(), "x.pcap")
	require.NoError(t, err)
	defer src.Close()

	rec, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, 2.0, rec.Timestamp)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Len(t, hook.AllEntries(), 1)
}
