package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"autotrader/internal/decision"
	"autotrader/internal/ledger"
	"autotrader/internal/pkg/text"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	headerCell = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9CA3AF"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	statusStyles = map[ledger.Status]lipgloss.Style{
		ledger.StatusOpen:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
		ledger.StatusClosed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		ledger.StatusSkipped: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		ledger.StatusHold:    mutedStyle,
	}
)

func renderSymbols(syms []string) string {
	if len(syms) == 0 {
		return mutedStyle.Render("(no ledgers)")
	}
	return titleStyle.Render("Ledgers") + "\n" + boxStyle.Render(strings.Join(syms, "\n"))
}

var recordColumns = []string{"TIME", "DECISION", "QTY", "TP", "SL", "STATUS", "ERROR"}

func renderRecords(sym string, records []ledger.Record) string {
	if len(records) == 0 {
		return mutedStyle.Render(fmt.Sprintf("%s: no recent trades recorded", sym))
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Timestamp,
			r.Decision,
			strconv.FormatFloat(r.Quantity, 'f', -1, 64),
			orDash(r.TakeProfit),
			orDash(r.StopLoss),
			string(r.Status),
			orDash(text.Truncate(r.ErrorText(), 40)),
		})
	}
	widths := make([]int, len(recordColumns))
	for i, h := range recordColumns {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, h := range recordColumns {
		b.WriteString(headerCell.Width(widths[i] + 2).Render(h))
	}
	for i, row := range rows {
		b.WriteString("\n")
		status := records[i].Status
		for j, cell := range row {
			style := lipgloss.NewStyle()
			if j == 5 {
				if s, ok := statusStyles[status]; ok {
					style = s
				}
			}
			b.WriteString(style.Width(widths[j] + 2).Render(cell))
		}
	}
	_, long := ledger.LastOpen(records)
	title := fmt.Sprintf("%s  (%d records, open=%v)", sym, len(records), long)
	return titleStyle.Render(title) + "\n" + boxStyle.Render(b.String())
}

func renderDecision(d decision.Decision) string {
	tp, sl := d.Targets.Format()
	lines := []string{
		"action:  " + string(d.Action),
		"tp:      " + orDash(tp),
		"sl:      " + orDash(sl),
		"percent: " + strconv.FormatBool(d.Targets.Percent),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
