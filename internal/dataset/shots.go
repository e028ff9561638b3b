// Package dataset assembles the question/answer prompt dataset from a
// directory of captures.
package dataset

import (
	"fmt"
	"wireshairk/internal/models"
)

// Shot selects how many worked examples precede each question.
type Shot string

const (
	ZeroShot       Shot = "zero_shot"
	OneShot        Shot = "one_shot"
	ChainOfThought Shot = "chain_of_thought"
)

// ParseShot accepts the dataset names used on disk.
func ParseShot(s string) (Shot, error) {
	switch Shot(s) {
	case ZeroShot, OneShot, ChainOfThought:
		return Shot(s), nil
	}
	return "", fmt.Errorf("unknown shot template %q", s)
}

// SystemContext is the system text stored with every dataset record.
const SystemContext = "You are a network analyst and you have to help answering questions about a network trace."

const tableHeader = "No.|Time|Source|Destination|Protocol|Length|Port src.|Port dst.|Info"

const captureExample = `
    No.|Time|Source|Destination|Protocol|Length|Port src.|Port dst.|Info
    1 0.000000 145.254.160.237 -> 65.208.228.223 TCP 62 3372 -> 80 [SYN] Seq=0 Win=8760 Len=0 MSS=1460 SACK_PERM
    2 0.911310 65.208.228.223 -> 145.254.160.237 TCP 62 80 -> 3372 [SYN, ACK] Seq=0 Ack=1 Win=5840 Len=0 MSS=1380 SACK_PERM
    3 0.911310 145.254.160.237 -> 65.208.228.223 TCP 54 3372 -> 80 [ACK] Seq=1 Ack=1 Win=9660 Len=0
    4 0.911310 145.254.160.237 -> 65.208.228.223 HTTP 533 GET /download.html HTTP/1.1`

var oneShotAnswers = [models.NumQuestions]string{
	"In the capture there are a total of 4 packets",
	"There are a total of 2 unique communicators in the trace. These are the IPs: 145.254.160.237, 65.208.228.223",
	"The IP that participates the most in the communication is the IP 145.254.160.237",
	"The total size of transmitted bytes is 711 bytes",
	"The average size of packets in bytes is 177.75 bytes",
	"In the capture predominates the use of TCP",
	"The communication lasts 0.91131 seconds",
	"The average of packets sent per second is 4.39",
	"The average bytes/s sent in the communication is 779.03",
}

var chainOfThoughtAnswers = [models.NumQuestions]string{
	"The last row of the capture No column is 4. So the total number of packets in the trace is 4",
	"In the first row, the Source and Destination columns show the IPs 145.254.160.237 and 65.208.228.223, this IPs never appear before so there are 2 unique communicators for now. In the second row, 65.208.228.223 and 145.254.160.237 appear again, so we don't add new communicators. In the row three and four the IPs 65.208.228.223 and 145.254.160.237 repeat again so we can not add new communicators. So there is not more rows, we can conclude that there are a total of 2 unique communicators in the trace. These are the IPs: 145.254.160.237 and 65.208.228.223",
	"Aparition IP counter: First row: 145.254.160.237: 1 occurrence, 65.208.228.223: 1 occurrence // Second row: 145.254.160.237: 2 occurrence, 65.208.228.223 2 occurrences // Third row: 145.254.160.237: 3 occurrence, 65.208.228.223 3 occurrences // Fourth row: 145.254.160.237: 4 occurrence, 65.208.228.223 4 occurrences. So the IP that participates the most in the communication is the IP 145.254.160.237",
	"The first packet has a length of 62 bytes, the second packet has a length of 62 bytes, the third packet has a length of 54 bytes and the fourth packet has a length of 533 bytes. So the total size of transmitted bytes is 62+62+54+533=711 bytes",
	"The first packet has a length of 62 bytes, the second packet has a length of 62 bytes, the third packet has a length of 54 bytes and the fourth packet has a length of 533 bytes. So the average size of packets in bytes is (62+62+54+533)bytes/(4)packets=(177.75)bytes/packet",
	"The first packet has a protocol of TCP, the second packet has a protocol of TCP, the third packet has a protocol of TCP and the fourth packet has a protocol of HTTP. So in the capture predominates the use of TCP",
	"The last packet has a time of 0.911310 seconds and the first packet has a time of 0.000000 seconds. So the communication lasts 0.91131-0.000000=0.91131 seconds",
	"The last packet has a time of 0.911310 seconds and the first packet has a time of 0.000000 seconds. So the communication lasts 0.91131-0.000000=0.91131 seconds. The total number of packets in the trace is 4. So the average of packets sent per second is (4)packets/(0.91131)seconds=(4.39)packets/second",
	"The last packet has a time of 0.911310 seconds and the first packet has a time of 0.000000 seconds. So the communication lasts 0.91131-0.000000=0.91131 seconds. The total size of transmitted bytes is 62+62+54+533=711 bytes. So the average bytes/s sent in the communication is (711)bytes/(0.91131)seconds=(779.03)bytes/second",
}

// Contexts returns the worked example placed before each question of the
// given question set. Zero-shot contexts are empty.
func (s Shot) Contexts(questions models.QuestionSet) ([models.NumQuestions]string, error) {
	var out [models.NumQuestions]string

	var answers *[models.NumQuestions]string
	switch s {
	case ZeroShot:
		return out, nil
	case OneShot:
		answers = &oneShotAnswers
	case ChainOfThought:
		answers = &chainOfThoughtAnswers
	default:
		return out, fmt.Errorf("unknown shot template %q", s)
	}

	for i, q := range questions {
		out[i] = fmt.Sprintf("%s\nQ: %s\nA: %s", captureExample, q, answers[i])
	}
	return out, nil
}

// Prompt combines a shot context, the rendered packet table and a question.
func Prompt(context, table, question string) string {
	return fmt.Sprintf("%s\n%s %s\nQ: %s", context, tableHeader, table, question)
}
