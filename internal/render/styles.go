// Package render formats export summaries, history listings and assistant
// replies for the terminal.
package render

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	ColorCyan   = lipgloss.Color("12") // Headers
	ColorYellow = lipgloss.Color("11") // Pending work and skipped files
	ColorGreen  = lipgloss.Color("10")
	ColorRed    = lipgloss.Color("9")
	ColorGray   = lipgloss.Color("8") // Secondary information
)

const (
	SymbolIncluded = "●"
	SymbolSkipped  = "○"
	SymbolSuccess  = "✓"
	SymbolError    = "✗"
	SymbolInfo     = "→"
)

var (
	HeaderStyle  = lipgloss.NewStyle().Foreground(ColorCyan)
	PendingStyle = lipgloss.NewStyle().Foreground(ColorYellow)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorRed)
	DimStyle     = lipgloss.NewStyle().Foreground(ColorGray)
)

// StyledSymbol returns a symbol with its colour applied.
func StyledSymbol(symbol string) string {
	switch symbol {
	case SymbolIncluded, SymbolSuccess:
		return SuccessStyle.Render(symbol)
	case SymbolSkipped:
		return PendingStyle.Render(symbol)
	case SymbolError:
		return ErrorStyle.Render(symbol)
	case SymbolInfo:
		return DimStyle.Render(symbol)
	default:
		return symbol
	}
}
