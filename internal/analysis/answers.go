package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"wireshairk/internal/models"
)

// NoIPAnswer replaces the communicator answers of captures without IP traffic.
const NoIPAnswer = "This question cannot be answered because the capture has no IP communications."

const noDominantAnswer = "In the capture none of ICMP, ICMPv6, TCP or UDP predominates."

// AnswerSet holds one answer per question, indexed by question slot.
type AnswerSet [models.NumQuestions]string

func (a AnswerSet) Answer(q models.Question) string {
	return a[q]
}

// AnswerOptions tunes answer wording for compatibility with older datasets.
type AnswerOptions struct {
	// LegacyPacketRate answers the packets per second question with the
	// bytes per second value, as datasets built before the fix did.
	LegacyPacketRate bool
}

// Answers derives the natural-language answer of every question from stats.
func Answers(stats CaptureStats, opts AnswerOptions) (AnswerSet, error) {
	var a AnswerSet

	avgSize, err := stats.AvgPacketSize()
	if err != nil {
		return a, err
	}

	a[models.QuestionTotalPackets] = fmt.Sprintf("In the capture there are a total of %d packets", stats.TotalPackets)

	if stats.HasIPLayer {
		a[models.QuestionUniqueCommunicators] = fmt.Sprintf(
			"There are a total of %d unique communicators in the trace. These are the IPs: %s",
			stats.IPCounts.Len(), strings.Join(stats.IPCounts.Keys(), ", "))

		ip, count, _ := stats.IPCounts.Max()
		a[models.QuestionTopCommunicator] = fmt.Sprintf(
			"The IP that participates the most in the communication is the IP %s this appears in a total of %d communications.",
			ip, count)
	} else {
		a[models.QuestionUniqueCommunicators] = NoIPAnswer
		a[models.QuestionTopCommunicator] = NoIPAnswer
	}

	a[models.QuestionTotalBytes] = fmt.Sprintf("The total size of transmitted bytes is %d.", stats.TotalBytes)
	a[models.QuestionAvgPacketSize] = fmt.Sprintf("The average size of packets in bytes is %d bytes.", avgSize)

	if b, ok := stats.DominantProtocol(); ok {
		a[models.QuestionDominantProtocol] = fmt.Sprintf("In the capture predominates the use of %s.", b.Name)
	} else {
		a[models.QuestionDominantProtocol] = noDominantAnswer
	}

	a[models.QuestionDuration] = fmt.Sprintf("The communication lasts %s seconds.", formatFloat(stats.Duration()))

	packetRate := stats.PacketsPerSecond()
	if opts.LegacyPacketRate {
		packetRate = stats.BytesPerSecond()
	}
	a[models.QuestionPacketRate] = fmt.Sprintf("The average of packets sent per second is %s.", formatRate(stats, packetRate))
	a[models.QuestionByteRate] = fmt.Sprintf("The average bytes/s sent in the communication is %s.", formatRate(stats, stats.BytesPerSecond()))

	return a, nil
}

// formatRate prints a rounded rate, or a bare 0 when the capture has no positive duration.
func formatRate(stats CaptureStats, rate float64) string {
	if stats.Duration() <= 0 {
		return "0"
	}
	return formatFloat(round(rate, 2))
}

// formatFloat prints the shortest representation, always with a fractional part.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
