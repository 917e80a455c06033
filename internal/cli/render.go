package cli

import (
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/gcusage/internal/model"
	"github.com/theirongolddev/gcusage/internal/pipeline"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Report labels.
const (
	ReportTitle    = "Gemini-cli Usage Report"
	RangeSeparator = " ～ "
	NoMatchingData = "No matching data"
	TotalLabel     = "Total"
)

// Table represents a bordered text table for CLI output. Cells may span
// several lines; the row grows to the tallest cell.
type Table struct {
	Headers  []string
	Rows     [][]string
	Footer   []string // optional totals row, drawn below a separator
	TextCols int      // leading left-aligned columns; the rest are right-aligned
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers, rows and footer.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	measure := func(row []string) {
		for i, cell := range row {
			if i >= numCols {
				break
			}
			for _, line := range strings.Split(cell, "\n") {
				if w := lipgloss.Width(line); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}
	measure(t.Footer)

	var b strings.Builder

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	writeRow := func(row []string, style lipgloss.Style) {
		cells := make([][]string, numCols)
		height := 1
		for i := range cells {
			if i < len(row) {
				cells[i] = strings.Split(row[i], "\n")
			}
			if len(cells[i]) > height {
				height = len(cells[i])
			}
		}

		for line := 0; line < height; line++ {
			b.WriteString(dimStyle.Render("│"))
			for i := 0; i < numCols; i++ {
				text := ""
				if line < len(cells[i]) {
					text = cells[i][line]
				}
				b.WriteString(style.Render(" " + pad(text, widths[i], i >= t.TextCols) + " "))
				if i < numCols-1 {
					b.WriteString(dimStyle.Render("│"))
				}
			}
			b.WriteString(dimStyle.Render("│"))
			b.WriteString("\n")
		}
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		writeRow(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for i, row := range t.Rows {
		if i > 0 {
			rule("├", "┼", "┤")
		}
		writeRow(row, valueStyle)
	}
	if len(t.Footer) > 0 {
		rule("├", "┼", "┤")
		writeRow(t.Footer, totalStyle)
	}
	rule("╰", "┴", "╯")

	return b.String()
}

// pad fills s to width display columns, on the left when right is set.
func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// RenderReport renders a daily or session report. Dates in the title are
// taken from the resolved range when both ends are bounded, otherwise from
// the rows themselves. compactTotals selects k/M/B suffixes in the totals row.
func RenderReport(rep pipeline.Report, loc *time.Location, compactTotals bool) string {
	if rep.Empty() {
		return mutedStyle.Render(NoMatchingData) + "\n"
	}
	if loc == nil {
		loc = time.Local
	}

	var (
		t     Table
		dates []string
		sum   model.Totals
	)
	if rep.Period == model.PeriodSession {
		t = Table{
			Headers:  []string{"Date", "Session", "Models", "Input", "Output", "Thought", "Cache", "Tool", "Total Tokens"},
			TextCols: 3,
		}
		for _, s := range rep.Sessions {
			t.Rows = append(t.Rows, append([]string{s.Date, s.SessionID, modelsCell(s.Models)}, bucketCells(s.Totals, FormatTokens)...))
			dates = append(dates, s.Date)
			sum.Add(s.Totals)
		}
		t.Footer = append([]string{TotalLabel, "", ""}, bucketCells(sum, totalFormatter(compactTotals))...)
	} else {
		t = Table{
			Headers:  []string{"Date", "Models", "Input", "Output", "Thought", "Cache", "Tool", "Total Tokens"},
			TextCols: 2,
		}
		for _, d := range rep.Daily {
			t.Rows = append(t.Rows, append([]string{d.Date, modelsCell(d.Models)}, bucketCells(d.Totals, FormatTokens)...))
			dates = append(dates, d.Date)
			sum.Add(d.Totals)
		}
		t.Footer = append([]string{TotalLabel, ""}, bucketCells(sum, totalFormatter(compactTotals))...)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(RenderTitle(reportTitle(rep.Range, dates, loc)))
	b.WriteString("\n\n")
	b.WriteString(RenderTable(t))
	return b.String()
}

func reportTitle(r model.Range, dates []string, loc *time.Location) string {
	var start, end string
	if r.Bounded() {
		start = r.Since.In(loc).Format("2006-01-02")
		end = r.Until.In(loc).Format("2006-01-02")
	} else if len(dates) > 0 {
		sorted := append([]string(nil), dates...)
		sort.Strings(sorted)
		start, end = sorted[0], sorted[len(sorted)-1]
	}

	switch {
	case start == "":
		return ReportTitle
	case start == end:
		return ReportTitle + " - " + start
	default:
		return ReportTitle + " - " + start + RangeSeparator + end
	}
}

func modelsCell(models *model.ModelSet) string {
	return strings.Join(models.Slice(), "\n")
}

func totalFormatter(compact bool) func(float64) string {
	if compact {
		return FormatCompact
	}
	return FormatTokens
}

// bucketCells returns the five buckets followed by their sum.
func bucketCells(t model.Totals, format func(float64) string) []string {
	return []string{
		format(t.Input),
		format(t.Output),
		format(t.Thought),
		format(t.Cache),
		format(t.Tool),
		format(t.Sum()),
	}
}
