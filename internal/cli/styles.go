package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#5B4BDB") // Harmonygen violet
	errorColor   = lipgloss.Color("#A40000") // Red
	mutedColor   = lipgloss.Color("#888888") // Gray
	textColor    = lipgloss.Color("#FFFFFF") // White
)

// Styles
var (
	// Title style - bold violet with headphones emoji
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Error message style
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	// Hint style for remediation advice
	HintStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("Harmonygen 🎧"))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintHint prints remediation advice following an error
func PrintHint(message string) {
	fmt.Fprintf(os.Stderr, "%s\n", HintStyle.Render("Hint: "+message))
}

// PrintKeyValue prints an aligned key and value, as used by --list
func PrintKeyValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render(fmt.Sprintf("%-12s", key+":")), ValueStyle.Render(value))
}
