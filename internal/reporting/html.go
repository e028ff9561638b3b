package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"time"
	"wireshairk/internal/models"
)

// GenerateHTMLReport writes the report as a standalone HTML page into dir and
// returns the file name.
func GenerateHTMLReport(r Report, questions models.QuestionSet, source, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("report_%s.html", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	t := r.Totals()

	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Wireshairk Evaluation Report - %s</title>
    <style>
        body { font-family: sans-serif; margin: 20px; color: #333; }
        h1, h2 { color: #2c3e50; }
        table { width: 100%%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .summary { background: #eef; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .alert { color: #d9534f; font-weight: bold; }
    </style>
</head>
<body>
    <h1>Wireshairk Evaluation Report</h1>
    <div class="summary">
        <p><strong>Date:</strong> %s</p>
        <p><strong>Evaluation file:</strong> %s</p>
        <p><strong>Total correct answers:</strong> %d</p>
        <p><strong>Total problematic evaluations:</strong> %d</p>
        <p><strong>Total questions:</strong> %d</p>
        <p><strong>Average punctuation:</strong> %s</p>
    </div>

    <h2>Report by question</h2>
    <table>
        <thead>
            <tr>
                <th>#</th>
                <th>Question</th>
                <th>Correct</th>
                <th>Accuracy</th>
                <th>Average punctuation</th>
                <th>Problematic evaluations</th>
            </tr>
        </thead>
        <tbody>
`, timestamp, time.Now().Format(time.RFC1123), html.EscapeString(source),
		t.Correct, t.ProblematicEval, t.Total, formatMetric(r.AvgPunctuation(), t.Total))

	for i, s := range r.Slots {
		problematic := fmt.Sprintf("%d", s.ProblematicEval)
		if s.ProblematicEval > 0 {
			problematic = fmt.Sprintf(`<span class="alert">%d</span>`, s.ProblematicEval)
		}
		page += fmt.Sprintf("            <tr><td>%d</td><td>%s</td><td>%d/%d</td><td>%s%%</td><td>%s</td><td>%s</td></tr>\n",
			i, html.EscapeString(questions[i]), s.Correct, s.Total,
			formatMetric(s.Accuracy(), s.Total), formatMetric(s.AvgPunctuation(), s.Total), problematic)
	}

	if r.Invalid > 0 {
		page += fmt.Sprintf("            <tr><td colspan=\"6\" class=\"alert\">%d invalid evaluation lines were skipped.</td></tr>\n", r.Invalid)
	}

	page += `        </tbody>
    </table>
</body>
</html>`

	if _, err := file.WriteString(page); err != nil {
		return "", err
	}

	return filename, nil
}
