package main

import (
	"fmt"
	"io"
	"strings"
)

// CLIError is a formatted usage/boot error, the same Type/Message/
// Details/Hint shape used at this boundary for every error that isn't
// a plain shell exit code.
type CLIError struct {
	Type    string // "usage", "boot", "manifest"
	Message string
	Details string
	Hint    string
}

func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// FormatError prints err to w, colorized when useColor is true.
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}
	if cliErr, ok := err.(*CLIError); ok {
		formatCLIError(w, cliErr, useColor)
		return
	}
	fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
}

func formatCLIError(w io.Writer, err *CLIError, useColor bool) {
	fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Message)
	if err.Details != "" {
		fmt.Fprintf(w, "\n%s\n", err.Details)
	}
	if err.Hint != "" {
		fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), err.Hint)
	}
}
