package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.detail = !m.detail
			return m, nil
		case "esc":
			m.detail = false
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}
