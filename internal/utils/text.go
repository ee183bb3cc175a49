package utils

import (
	"strings"
	"unicode/utf8"
)

const (
	TitleMaxRunes   = 60
	SummaryMaxRunes = 160
)

// DeriveTitle builds a title from the first non-empty line of content.
func DeriveTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return Truncate(collapseSpaces(line), TitleMaxRunes)
		}
	}
	return ""
}

// DeriveSummary collapses whitespace and cuts content to a teaser.
func DeriveSummary(content string) string {
	return Truncate(collapseSpaces(content), SummaryMaxRunes)
}

// Truncate cuts s to at most max runes, ending in "..." when shortened.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	r := []rune(s)[:max-3]
	return strings.TrimRight(string(r), " ") + "..."
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
