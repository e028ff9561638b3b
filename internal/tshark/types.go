package tshark

// EkPacket represents the top-level structure of a tshark -T ek output line.
type EkPacket struct {
	Timestamp string   `json:"timestamp"`
	Layers    EkLayers `json:"layers"`
}

// EkLayers holds the fields requested with -e flags.
// With -T ek, tshark flattens the structure and replaces dots with underscores.
type EkLayers struct {
	FrameTimeEpoch []string `json:"frame_time_epoch,omitempty"`
	FrameLen       []string `json:"frame_len,omitempty"`
	FrameProtocols []string `json:"frame_protocols,omitempty"`
	IPSrc          []string `json:"ip_src,omitempty"`
	IPDst          []string `json:"ip_dst,omitempty"`
	IPv6Src        []string `json:"ipv6_src,omitempty"`
	IPv6Dst        []string `json:"ipv6_dst,omitempty"`
}

// Fields passed to tshark, in the same order as EkLayers.
var ekFields = []string{
	"frame.time_epoch",
	"frame.len",
	"frame.protocols",
	"ip.src", "ip.dst",
	"ipv6.src", "ipv6.dst",
}
