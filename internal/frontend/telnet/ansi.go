// Package telnet serves line-oriented Telnet sessions with ANSI colour.
package telnet

import (
	"fmt"
	"regexp"
)

// Style is an ANSI SGR escape sequence.
type Style string

// Styles used by the text renderer.
const (
	Reset   Style = "\033[0m"
	Bold    Style = "\033[1m"
	Dim     Style = "\033[2m"
	Red     Style = "\033[31m"
	Green   Style = "\033[32m"
	Yellow  Style = "\033[33m"
	Blue    Style = "\033[34m"
	Magenta Style = "\033[35m"
	Cyan    Style = "\033[36m"
	White   Style = "\033[97m"
)

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// Paint wraps text in s and a trailing reset.
func (s Style) Paint(text string) string {
	return string(s) + text + string(Reset)
}

// Paintf formats and paints in one step.
func (s Style) Paintf(format string, args ...any) string {
	return s.Paint(fmt.Sprintf(format, args...))
}

// StripANSI removes SGR escape sequences, leaving the printable text.
func StripANSI(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}
