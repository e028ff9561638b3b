package reporting

import (
	"fmt"
	"strings"
	"wireshairk/internal/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF7DB")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Margin(0, 1)

	alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#D9534F")).Bold(true)
)

// Summary is the global block of the report as plain lines.
func (r Report) Summary() string {
	t := r.Totals()
	lines := []string{
		fmt.Sprintf("Total correct answers: %d", t.Correct),
		fmt.Sprintf("Total problematic evaluations: %d", t.ProblematicEval),
		fmt.Sprintf("Total questions: %d", t.Total),
		fmt.Sprintf("Average punctuation: %s", formatMetric(r.AvgPunctuation(), t.Total)),
	}
	if r.Invalid > 0 {
		lines = append(lines, alertStyle.Render(fmt.Sprintf("Invalid lines skipped: %d", r.Invalid)))
	}
	return strings.Join(lines, "\n")
}

// Render lays the report out in bordered boxes for a terminal.
func (r Report) Render(questions models.QuestionSet) string {
	title := TitleStyle.Render("Wireshairk - Evaluation report")
	summary := InfoStyle.Render("General report\n" + r.Summary())

	var rows []string
	for i, s := range r.Slots {
		line := fmt.Sprintf("%d. %s\n   %d/%d correct (%s%%), punctuation %s",
			i, questions[i], s.Correct, s.Total,
			formatMetric(s.Accuracy(), s.Total), formatMetric(s.AvgPunctuation(), s.Total))
		if s.ProblematicEval > 0 {
			line += alertStyle.Render(fmt.Sprintf(", %d problematic", s.ProblematicEval))
		}
		rows = append(rows, line)
	}
	slots := InfoStyle.Render("Report by question\n" + strings.Join(rows, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, title, summary, slots)
}
