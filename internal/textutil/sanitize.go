// Package textutil makes file names and messages safe to print on a
// terminal.
package textutil

import (
	"fmt"
	"strings"
	"unicode"
)

// formatLabels names the invisible formatting runes most likely to be used
// to disguise a file name. Other format runes are shown by code point.
var formatLabels = map[rune]string{
	0x061C: "ALM",
	0x200B: "ZWSP",
	0x200C: "ZWNJ",
	0x200D: "ZWJ",
	0x200E: "LRM",
	0x200F: "RLM",
	0x202A: "LRE",
	0x202B: "RLE",
	0x202C: "PDF",
	0x202D: "LRO",
	0x202E: "RLO",
	0x2028: "LSEP",
	0x2029: "PSEP",
	0x2060: "WJ",
	0x2066: "LRI",
	0x2067: "RLI",
	0x2068: "FSI",
	0x2069: "PDI",
	0x00AD: "SHY",
	0x180E: "MVS",
	0xFEFF: "BOM",
}

// SanitizeTerminalText replaces control characters so user-controlled text
// cannot inject terminal escape sequences when rendered. Line breaks and tabs
// become spaces, other controls become '?', and formatting runes are made
// visible as ⟪NAME⟫.
func SanitizeTerminalText(text string) string {
	for _, r := range text {
		if needsRewrite(r) {
			return rewrite(text)
		}
	}
	return text
}

// FormatRuneLabel returns the visible replacement for a formatting rune.
func FormatRuneLabel(r rune) (string, bool) {
	if name, ok := formatLabels[r]; ok {
		return "⟪" + name + "⟫", true
	}
	if isFormat(r) {
		return fmt.Sprintf("⟪U+%04X⟫", r), true
	}
	return "", false
}

func needsRewrite(r rune) bool {
	return unicode.IsControl(r) || isFormat(r) || r == unicode.ReplacementChar
}

// ZWJ sequences inside emoji are format runes too; file names rarely carry
// them and showing them is preferable to hiding a spoofed name.
func isFormat(r rune) bool {
	if _, ok := formatLabels[r]; ok {
		return true
	}
	return unicode.Is(unicode.Cf, r)
}

func rewrite(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if label, ok := FormatRuneLabel(r); ok {
			b.WriteString(label)
			continue
		}
		switch {
		case r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
