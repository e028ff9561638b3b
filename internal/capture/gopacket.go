package capture

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
	"wireshairk/internal/models"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/klauspost/compress/gzip"
)

const pcapngBlockMagic = 0x0A0D0D0A

var pcapMagics = map[uint32]bool{
	0xa1b2c3d4: true, // microseconds
	0xd4c3b2a1: true,
	0xa1b23c4d: true, // nanoseconds
	0x4d3cb2a1: true,
}

var layerNames = map[gopacket.LayerType]string{
	layers.LayerTypeEthernet:  "eth",
	layers.LayerTypeLinuxSLL:  "sll",
	layers.LayerTypeDot1Q:     "vlan",
	layers.LayerTypeLLC:       "llc",
	layers.LayerTypeIPv4:      "ip",
	layers.LayerTypeIPv6:      "ipv6",
	layers.LayerTypeICMPv4:    "icmp",
	layers.LayerTypeICMPv6:    "icmpv6",
	layers.LayerTypeTCP:       "tcp",
	layers.LayerTypeUDP:       "udp",
	layers.LayerTypeARP:       "arp",
	layers.LayerTypeDNS:       "dns",
	gopacket.LayerTypePayload: "data",
}

// LayerName returns the tshark-style name for a gopacket layer type.
func LayerName(t gopacket.LayerType) string {
	if name, ok := layerNames[t]; ok {
		return name
	}
	return strings.ToLower(t.String())
}

type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// GopacketDecoder decodes pcap and pcapng files (optionally gzip compressed) in process.
type GopacketDecoder struct{}

func (GopacketDecoder) Open(ctx context.Context, path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture %s: %w", path, err)
	}

	src := &packetSource{ctx: ctx, closers: []io.Closer{f}}
	br := bufio.NewReader(f)

	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("open gzip capture %s: %w", path, err)
		}
		src.closers = append(src.closers, zr)
		br = bufio.NewReader(zr)
	}

	head, err := br.Peek(4)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("read capture header %s: %w", path, err)
	}

	switch {
	case binary.LittleEndian.Uint32(head) == pcapngBlockMagic:
		src.reader, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	case pcapMagics[binary.LittleEndian.Uint32(head)]:
		src.reader, err = pcapgo.NewReader(br)
	default:
		src.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("open capture %s: %w", path, err)
	}

	return src, nil
}

type packetSource struct {
	ctx     context.Context
	reader  packetReader
	closers []io.Closer
	index   int
}

func (s *packetSource) Next() (models.PacketRecord, error) {
	if err := s.ctx.Err(); err != nil {
		return models.PacketRecord{}, err
	}

	data, ci, err := s.reader.ReadPacketData()
	if err == io.EOF {
		return models.PacketRecord{}, io.EOF
	}
	if err != nil {
		return models.PacketRecord{}, fmt.Errorf("read frame %d: %w", s.index+1, err)
	}
	s.index++

	return toRecord(gopacket.NewPacket(data, s.reader.LinkType(), gopacket.Default), ci), nil
}

func (s *packetSource) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func toRecord(pkt gopacket.Packet, ci gopacket.CaptureInfo) models.PacketRecord {
	rec := models.PacketRecord{
		Timestamp: float64(ci.Timestamp.Unix()) + float64(ci.Timestamp.Nanosecond())/1e9,
		Length:    ci.Length,
	}
	if rec.Length == 0 {
		rec.Length = ci.CaptureLength
	}

	for _, l := range pkt.Layers() {
		if l.LayerType() == gopacket.LayerTypeDecodeFailure {
			continue
		}
		rec.Layers = append(rec.Layers, LayerName(l.LayerType()))
	}

	if l, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4); ok {
		rec.IPv4 = &models.IPPair{Src: l.SrcIP.String(), Dst: l.DstIP.String()}
	}
	if l, ok := pkt.Layer(layers.LayerTypeIPv6).(*layers.IPv6); ok {
		rec.IPv6 = &models.IPPair{Src: l.SrcIP.String(), Dst: l.DstIP.String()}
	}

	// A failure past the network layer (a short DNS payload, say) leaves
	// everything the record carries intact.
	if errLayer := pkt.ErrorLayer(); errLayer != nil && !hasNetworkLayer(pkt) {
		rec.Err = errLayer.Error()
	}

	return rec
}

func hasNetworkLayer(pkt gopacket.Packet) bool {
	return pkt.NetworkLayer() != nil || pkt.Layer(layers.LayerTypeARP) != nil
}
