package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/docdiagrams/pkg/pipeline"
	"github.com/matzehuels/docdiagrams/pkg/render"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// =============================================================================
// Run Summary
// =============================================================================

// printRunHeader prints the settings a generate run starts with. endpoint is
// the full render URL, so a wrong --kroki-url shows up before any request.
func printRunHeader(opts pipeline.Options, endpoint string) {
	fmt.Println(StyleTitle.Render("Diagram generation"))
	printKeyValue("Root", opts.Root)
	printKeyValue("Format", opts.Format)
	printKeyValue("Service", StyleLink.Render(endpoint))
	if opts.Pattern != "" {
		printKeyValue("Filter", opts.Pattern)
	}
	printNewline()
}

// printSummary prints the run counters.
func printSummary(stats pipeline.Stats) {
	printNewline()
	fmt.Println(StyleTitle.Render("Summary"))
	printCount("Files", stats.FilesProcessed)
	printCount("Diagrams", stats.DiagramsFound)
	printCount("Generated", stats.Generated)
	printCount("Skipped", stats.Skipped)
	printCount("Errors", stats.Errors)
	printKeyValue("Duration", stats.Duration.Round(time.Millisecond).String())
}

func printCount(key string, n int) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleNumber.Render(fmt.Sprint(n)))
}

// diagnosisHints explains each failure reason and how to fix it.
var diagnosisHints = map[render.Reason][]string{
	render.ReasonParentheses: {
		"Unescaped parentheses inside [] or {} labels",
		"Inside labels write &#40; for ( and &#41; for ), e.g. A[Parse flags &#40;-u -t&#41;]",
	},
	render.ReasonSyntax: {
		"Other Mermaid syntax errors",
		"Check that nodes read ID[Text] or ID{Text} and arrows read A --> B",
	},
	render.ReasonConnection: {
		"Connection errors",
		"Check --kroki-url and network access, or retry later",
	},
	render.ReasonOther: {
		"Other failures",
		"Run with --verbose for details",
	},
}

// printDiagnostics prints one block per failure reason seen in the run.
func printDiagnostics(tally render.Tally) {
	reasons := tally.NonZero()
	if len(reasons) == 0 {
		return
	}
	printNewline()
	fmt.Println(StyleTitle.Render(diagnosticsTitle(tally)))
	for _, r := range reasons {
		hint, ok := diagnosisHints[r]
		if !ok {
			printWarning("%s: %d", r, tally[r])
			continue
		}
		printWarning("%s: %d", hint[0], tally[r])
		printDetail("%s", hint[1])
	}
}

func diagnosticsTitle(tally render.Tally) string {
	if n := tally.Total(); n != 1 {
		return fmt.Sprintf("Diagnostics (%d failures)", n)
	}
	return "Diagnostics (1 failure)"
}
