package models

// IPPair is the source/destination pair of one IP-family layer.
type IPPair struct {
	Src string
	Dst string
}

// PacketRecord holds the decoded fields of one captured frame.
type PacketRecord struct {
	Timestamp float64 // Sniff time in seconds since the epoch
	Length    int     // Frame length in bytes
	Layers    []string

	IPv4 *IPPair
	IPv6 *IPPair

	// Err is set when the frame's link or network layer failed to decode.
	// Failures in higher layers leave Err nil.
	// Timestamp and Length come from the capture record header and are always valid.
	Err error
}

// Endpoints returns the IP pair used for communicator statistics.
// An IPv4 pair wins over an IPv6 pair; a pair needs both endpoints.
func (p PacketRecord) Endpoints() (IPPair, bool) {
	if p.IPv4 != nil && p.IPv4.Src != "" && p.IPv4.Dst != "" {
		return *p.IPv4, true
	}
	if p.IPv6 != nil && p.IPv6.Src != "" && p.IPv6.Dst != "" {
		return *p.IPv6, true
	}
	return IPPair{}, false
}
