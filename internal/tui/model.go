package tui

import (
	"fmt"
	"wireshairk/internal/models"
	"wireshairk/internal/reporting"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ReportModel struct {
	report    reporting.Report
	questions models.QuestionSet
	source    string
	table     table.Model
	detail    bool
}

func NewReportModel(report reporting.Report, questions models.QuestionSet, source string) ReportModel {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Question", Width: 48},
		{Title: "Correct", Width: 9},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg punct", Width: 9},
		{Title: "Problematic", Width: 11},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(slotRows(report, questions)),
		table.WithFocused(true),
		table.WithHeight(models.NumQuestions+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ReportModel{
		report:    report,
		questions: questions,
		source:    source,
		table:     t,
	}
}

func slotRows(r reporting.Report, questions models.QuestionSet) []table.Row {
	rows := make([]table.Row, len(r.Slots))
	for i, s := range r.Slots {
		rows[i] = table.Row{
			fmt.Sprintf("%d", i),
			questions[i],
			fmt.Sprintf("%d/%d", s.Correct, s.Total),
			fmt.Sprintf("%.2f%%", s.Accuracy()),
			fmt.Sprintf("%.2f", s.AvgPunctuation()),
			fmt.Sprintf("%d", s.ProblematicEval),
		}
	}
	return rows
}

func (m ReportModel) Init() tea.Cmd {
	return nil
}

// Run shows the report until the user quits.
func Run(report reporting.Report, questions models.QuestionSet, source string) error {
	p := tea.NewProgram(NewReportModel(report, questions, source), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
