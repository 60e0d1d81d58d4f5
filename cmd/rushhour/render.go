package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2CD7C7"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7A89"))
	targetStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C"))
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F4D03F"))
	boardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#16858E")).
			Padding(0, 1)
)

// renderBoard draws b inside a rounded border, one space between cells.
// The target vehicle is highlighted.
func renderBoard(b *engine.Board, target string) string {
	var sb strings.Builder
	for row := 0; row < b.Size(); row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < b.Size(); col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(renderCell(b.At(row, col), target))
		}
	}
	return boardStyle.Render(sb.String())
}

func renderCell(name, target string) string {
	switch name {
	case engine.EmptyCell:
		return mutedStyle.Render(string(engine.EmptyRune))
	case target:
		return targetStyle.Render(firstRune(name))
	default:
		return cellStyle.Render(firstRune(name))
	}
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return s
}
