package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/strata/pkg/errors"
)

// statusOut receives status lines. Data goes to stdout, so status goes to
// stderr and output can be piped.
var statusOut io.Writer = os.Stderr

var (
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

// PrintError reports a failed command on stderr.
func PrintError(err error) {
	printError("%s", FormatError(err))
}

// FormatError renders err without the code prefix of each structured error
// in its cause chain. The outermost code follows the message in brackets.
func FormatError(err error) string {
	msg := userMessage(err)
	if code := errors.GetCode(err); code != "" {
		msg += " " + StyleDim.Render("["+string(code)+"]")
	}
	return msg
}

func userMessage(err error) string {
	e, ok := err.(*errors.Error)
	if !ok {
		return err.Error()
	}
	msg := errors.UserMessage(e)
	if e.Cause != nil {
		msg += ": " + userMessage(e.Cause)
	}
	return msg
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(statusOut, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output file line.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(statusOut, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints counts on one dimmed line, e.g. "12 records · 1 warning".
func printStats(parts ...string) {
	var line strings.Builder
	line.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			line.WriteString(StyleDim.Render(" · "))
		}
		line.WriteString(StyleDim.Render(part))
	}
	fmt.Fprintln(statusOut, line.String())
}

// printWarnings summarizes numeric warnings by code. Every warning has
// already been logged individually.
func printWarnings(warnings []errors.Warning) {
	if len(warnings) == 0 {
		return
	}
	counts := map[errors.Code]int{}
	var order []errors.Code
	worst := map[errors.Code]float64{}
	for _, w := range warnings {
		if counts[w.Code] == 0 {
			order = append(order, w.Code)
		}
		counts[w.Code]++
		worst[w.Code] = max(worst[w.Code], w.Residual)
	}
	for _, code := range order {
		printWarning("%s ×%d (largest residual %.3g)", code, counts[code], worst[code])
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
