package rag

import (
	"regexp"
	"strings"
)

var (
	multiBlank = regexp.MustCompile(`\n{3,}`)
	multiSpace = regexp.MustCompile(`[ \t]{2,}`)
	trailingWS = regexp.MustCompile(`[ \t]+\n`)
)

// NormalizeText flattens raw guideline text into a form the splitter can work
// with: unix newlines, no trailing whitespace, at most one blank line in a
// row, collapsed runs of spaces.
func NormalizeText(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = trailingWS.ReplaceAllString(s, "\n")
	s = multiSpace.ReplaceAllString(s, " ")
	s = multiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
