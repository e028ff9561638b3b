package tui

import (
	"fmt"
	"strconv"
	"wireshairk/internal/reporting"

	"github.com/charmbracelet/lipgloss"
)

func (m ReportModel) View() string {
	headerText := "Wireshairk - Evaluation report"
	if m.source != "" {
		headerText += fmt.Sprintf(": %s", m.source)
	}
	title := reporting.TitleStyle.Render(headerText)

	summaryBox := reporting.InfoStyle.Render("General report\n" + m.report.Summary())
	slotsBox := reporting.InfoStyle.Render("Report by question\n" + m.table.View())

	body := lipgloss.JoinVertical(lipgloss.Left, title, summaryBox, slotsBox)
	if m.detail {
		body = lipgloss.JoinVertical(lipgloss.Left, body, reporting.InfoStyle.Render(m.selectedDetail()))
	}

	return body + "\nEnter: details, q: quit."
}

func (m ReportModel) selectedDetail() string {
	i, err := strconv.Atoi(m.table.SelectedRow()[0])
	if err != nil || i < 0 || i >= len(m.report.Slots) {
		return "No question selected"
	}
	s := m.report.Slots[i]
	return fmt.Sprintf("Question %d: %s\nCorrect: %d/%d\nTotal punctuation: %d\nProblematic evaluations: %d",
		i, m.questions[i], s.Correct, s.Total, s.TotalPunct, s.ProblematicEval)
}
