package models

// Question identifies one of the fixed dataset questions. Its value is the
// question's slot: the position within each capture's block of records.
type Question int

const (
	QuestionTotalPackets Question = iota
	QuestionUniqueCommunicators
	QuestionTopCommunicator
	QuestionTotalBytes
	QuestionAvgPacketSize
	QuestionDominantProtocol
	QuestionDuration
	QuestionPacketRate
	QuestionByteRate
)

// NumQuestions is the number of records emitted per capture.
const NumQuestions = 9

// QuestionSet holds the question texts in slot order.
type QuestionSet [NumQuestions]string

// DefaultQuestions returns the question texts used for every capture.
func DefaultQuestions() QuestionSet {
	return QuestionSet{
		QuestionTotalPackets:        "What is the total number of packets in the trace?",
		QuestionUniqueCommunicators: "How many unique communicators are present in the trace?",
		QuestionTopCommunicator:     "What is the IP that participates the most in communications in the trace?",
		QuestionTotalBytes:          "What is the total size of transmitted bytes?",
		QuestionAvgPacketSize:       "What is the average size of packets in bytes?",
		QuestionDominantProtocol:    "What predominates in the capture the use of ICMP, TCP or UDP?",
		QuestionDuration:            "How long in seconds does the communication last?",
		QuestionPacketRate:          "What is the average of packets sent per second?",
		QuestionByteRate:            "What is the average bytes/s sent in the communication?",
	}
}

// Slot returns the question slot of the k-th record of a dataset-ordered stream.
func Slot(k int) Question {
	return Question(k % NumQuestions)
}
