// Package termfmt styles values printed in listings.  The fmt.Formatter trick comes from
// @shabbyrobe's termfmt (https://github.com/shabbyrobe/golib, MIT); the escapes are now lipgloss',
// which leaves output plain when stdout isn't a terminal.
package termfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// Style wraps a value so that printing it with any verb renders it styled:
//
//	fmt.Printf("%-30s\n", termfmt.Bold().V(name))
type Style struct {
	ls lipgloss.Style
	v  any
}

var _ fmt.Formatter = Style{}

func Plain() Style                { return Style{ls: lipgloss.NewStyle()} }
func Bold() Style                 { return Plain().Bold() }
func Faint() Style                { return Plain().Faint() }
func Fg(color string) Style       { return Plain().Fg(color) }
func (s Style) Bold() Style       { s.ls = s.ls.Bold(true); return s }
func (s Style) Faint() Style      { s.ls = s.ls.Faint(true); return s }
func (s Style) Fg(c string) Style { s.ls = s.ls.Foreground(lipgloss.Color(c)); return s }

func (s Style) V(v any) Style {
	s.v = v
	return s
}

// Format pads before styling, so widths line up whether or not escapes are emitted.
func (s Style) Format(f fmt.State, verb rune) {
	v := printable(fmt.Sprintf(buildValueFormat(f, verb), s.v))
	io.WriteString(f, s.ls.Render(v))
}

// ANSI colour numbers, for Fg.
const (
	Green  = "2"
	Yellow = "3"
)

func buildValueFormat(f fmt.State, verb rune) string {
	s := "%"
	for _, flag := range " +-0#" {
		if f.Flag(int(flag)) {
			s += string(flag)
		}
	}
	if width, ok := f.Width(); ok {
		s += strconv.Itoa(width)
	}
	if prec, ok := f.Precision(); ok {
		s += "." + strconv.Itoa(prec)
	}
	return s + string(verb)
}

// keeps server-supplied names from smuggling escapes into the terminal
func printable(v string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, v)
}
