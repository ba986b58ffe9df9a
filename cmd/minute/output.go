package main

import (
	"fmt"
	"os"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBold   = "\033[1m"
)

// paint wraps text in an ANSI color code unless --no-color is set.
func paint(code, text string) string {
	if noColor {
		return text
	}
	return code + text + ansiReset
}

func printSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", paint(ansiGreen, "ok:"), fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", paint(ansiRed, "error:"), fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", paint(ansiYellow, "warning:"), fmt.Sprintf(format, args...))
}

// printStatus renders one aligned "Label: value" line of the status report.
// Padding happens before painting so color codes don't skew the column.
func printStatus(label, format string, args ...any) {
	padded := fmt.Sprintf("%-18s", label+":")
	fmt.Fprintf(os.Stderr, "  %s%s\n", paint(ansiBold, padded), fmt.Sprintf(format, args...))
}
