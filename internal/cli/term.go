package cli

import (
	"github.com/fatih/color"
)

var (
	colorHeader  = color.New(color.Bold)
	colorOK      = color.New(color.FgGreen)
	colorWarn    = color.New(color.FgYellow)
	colorMuted   = color.New(color.FgWhite, color.Faint)
	colorNumeric = color.New(color.FgCyan)
)

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatOK(s string) string {
	return colorOK.Sprint(s)
}

func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

// formatDays colors a day count, yellow when nothing is left.
func formatDays(days int) string {
	if days <= 0 {
		return colorWarn.Sprint(days)
	}
	return colorNumeric.Sprint(days)
}
