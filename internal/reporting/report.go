package reporting

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"wireshairk/internal/models"
	"wireshairk/internal/records"

	"github.com/sirupsen/logrus"
)

// SlotStats accumulates the evaluations of one question slot.
type SlotStats struct {
	Correct         int
	Total           int
	TotalPunct      int
	ProblematicEval int
}

func (s *SlotStats) add(e models.Evaluation) {
	s.Total++
	if e.IsCorrect == models.VerdictYes {
		s.Correct++
	}
	s.TotalPunct += e.Punctuation
	if e.Degraded() {
		s.ProblematicEval++
	}
}

// Accuracy is the percentage of correct answers, rounded to 2 decimals.
func (s SlotStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return round2(float64(s.Correct) / float64(s.Total) * 100)
}

// AvgPunctuation is the mean punctuation, rounded to 2 decimals.
func (s SlotStats) AvgPunctuation() float64 {
	if s.Total == 0 {
		return 0
	}
	return round2(float64(s.TotalPunct) / float64(s.Total))
}

// Report is the per-slot summary of an evaluation file.
type Report struct {
	Slots [models.NumQuestions]SlotStats
	// Invalid counts entries that could not be decoded. They still consume a slot ordinal.
	Invalid int
}

// Aggregate assigns the k-th entry to slot k mod 9 and accumulates it.
func Aggregate(entries []records.EvaluationEntry, log logrus.FieldLogger) Report {
	var r Report
	for k, e := range entries {
		if e.Err != nil {
			log.WithError(e.Err).WithField("line", e.Line).Warn("Skipping invalid evaluation")
			r.Invalid++
			continue
		}
		r.Slots[models.Slot(k)].add(e.Record.Evaluation)
	}
	return r
}

// Totals sums every slot.
func (r Report) Totals() SlotStats {
	var t SlotStats
	for _, s := range r.Slots {
		t.Correct += s.Correct
		t.Total += s.Total
		t.TotalPunct += s.TotalPunct
		t.ProblematicEval += s.ProblematicEval
	}
	return t
}

// AvgPunctuation is the unrounded mean punctuation over all records.
func (r Report) AvgPunctuation() float64 {
	t := r.Totals()
	if t.Total == 0 {
		return 0
	}
	return float64(t.TotalPunct) / float64(t.Total)
}

const rule = "----------------"

// WriteText prints the report in the plain layout used on the console.
func (r Report) WriteText(w io.Writer) error {
	t := r.Totals()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nGeneral report\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Total correct answers: %d\n", t.Correct)
	fmt.Fprintf(&b, "Total problematic evaluations: %d\n", t.ProblematicEval)
	fmt.Fprintf(&b, "Total questions: %d\n", t.Total)
	fmt.Fprintf(&b, "Average punctuation: %s\n", formatMetric(r.AvgPunctuation(), t.Total))

	fmt.Fprintf(&b, "%s\nReport by question\n%s\n", rule, rule)
	for i, s := range r.Slots {
		fmt.Fprintf(&b, "Question %d: Correct: %d/%d (%s%%), Average punctuation: %s, Problematic evaluations: %d\n",
			i, s.Correct, s.Total, formatMetric(s.Accuracy(), s.Total), formatMetric(s.AvgPunctuation(), s.Total), s.ProblematicEval)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// formatMetric prints an integral 0 for empty groups and a float otherwise.
func formatMetric(v float64, total int) string {
	if total == 0 {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
