package tui

import (
	"context"
	"io"
	"strings"
	"testing"
	"wireshairk/internal/models"
	"wireshairk/internal/reporting"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() reporting.Report {
	var r reporting.Report
	r.Slots[0] = reporting.SlotStats{Correct: 1, Total: 2, TotalPunct: 150}
	r.Slots[5] = reporting.SlotStats{Correct: 0, Total: 1, TotalPunct: 0, ProblematicEval: 1}
	return r
}

func TestReportModelRows(t *testing.T) {
	m := NewReportModel(sampleReport(), models.DefaultQuestions(), "eval.jsonl")

	rows := m.table.Rows()
	require.Len(t, rows, models.NumQuestions)
	assert.Equal(t, "1/2", rows[0][2])
	assert.Equal(t, "50.00%", rows[0][3])
	assert.Equal(t, "75.00", rows[0][4])
	assert.Equal(t, "1", rows[5][5])
}

func TestReportModelQuit(t *testing.T) {
	m := NewReportModel(sampleReport(), models.DefaultQuestions(), "")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestReportModelDetail(t *testing.T) {
	m := NewReportModel(sampleReport(), models.DefaultQuestions(), "eval.jsonl")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view := next.View()
	assert.Contains(t, view, "eval.jsonl")
	assert.Contains(t, view, "Total punctuation: 150")
}

func TestConfirmWaitsForLine(t *testing.T) {
	var out strings.Builder
	c := &HuhConfirmer{In: strings.NewReader("\n"), Out: &out}

	require.NoError(t, c.Confirm(context.Background(), "backend down"))
	assert.Contains(t, out.String(), "backend down")
}

func TestConfirmEOFDeclines(t *testing.T) {
	var out strings.Builder
	c := &HuhConfirmer{In: strings.NewReader(""), Out: &out}

	assert.ErrorIs(t, c.Confirm(context.Background(), "backend down"), ErrDeclined)
}

func TestConfirmCancelReleasesReader(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	var out strings.Builder
	c := &HuhConfirmer{In: pr, Out: &out}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Confirm(ctx, "backend down"), context.Canceled)
	_, err := pw.Write([]byte("\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
