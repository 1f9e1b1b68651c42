package cli

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// styleTitle for main headings.
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// styleLabel for field names in key/value output.
	styleLabel = lipgloss.NewStyle().Foreground(colorGray)

	// styleValue for data values.
	styleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// styleNumber for numeric values.
	styleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// styleSuccess for success messages.
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// styleWarning for warning messages.
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	// styleError for error messages.
	styleError = lipgloss.NewStyle().Foreground(colorRed)

	// styleDim for secondary/muted text.
	styleDim = lipgloss.NewStyle().Foreground(colorDim)
)
