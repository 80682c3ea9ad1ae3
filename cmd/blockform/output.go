package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/goliatone/go-blockform/pkg/finance"
	"github.com/goliatone/go-blockform/pkg/render"
	"github.com/goliatone/go-blockform/pkg/taxonomy"
)

// fatih/color disables itself when stdout is not a terminal.
var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	labelColor   = color.New(color.FgCyan)
)

func successf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successColor.Sprint("✓ ")+fmt.Sprintf(format, args...))
}

func warnf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnColor.Sprint("! ")+fmt.Sprintf(format, args...))
}

var (
	labelCell  = lipgloss.NewStyle().PaddingRight(2)
	figureCell = lipgloss.NewStyle().Align(lipgloss.Right).PaddingLeft(2)
)

// writePreview prints the P&L table with translated metric labels and
// right-aligned figures.
func writePreview(w io.Writer, tr render.Translator, table finance.Table) {
	labels := make([]string, len(table.Rows))
	labelWidth := 0
	for i, row := range table.Rows {
		labels[i] = render.Label(tr, row.Metric, row.Metric)
		labelWidth = max(labelWidth, lipgloss.Width(labels[i]))
	}
	widths := make([]int, len(table.Periods))
	for i, p := range table.Periods {
		widths[i] = lipgloss.Width(p)
		for _, row := range table.Rows {
			widths[i] = max(widths[i], lipgloss.Width(row.Cells[i]))
		}
	}

	line := func(label string, cells []string) string {
		parts := []string{labelCell.Width(labelWidth + 2).Render(label)}
		for i, c := range cells {
			parts = append(parts, figureCell.Width(widths[i]+2).Render(c))
		}
		return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " ")
	}

	fmt.Fprintln(w, labelColor.Sprint(line("", table.Periods)))
	for i, row := range table.Rows {
		fmt.Fprintln(w, line(labels[i], row.Cells))
	}
}

// writeTree prints the industry taxonomy indented by depth, leaves with
// their code.
func writeTree(w io.Writer, tree taxonomy.Tree) {
	taxonomy.Walk(tree, func(node taxonomy.Node, depth int) bool {
		indent := strings.Repeat("  ", depth)
		if node.IsLeaf() {
			fmt.Fprintf(w, "%s%s %s\n", indent, labelColor.Sprint(node.Code), node.Label)
		} else {
			fmt.Fprintf(w, "%s%s\n", indent, node.Label)
		}
		return true
	})
}
