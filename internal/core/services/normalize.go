package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	escapeReplacer = strings.NewReplacer(`\(`, "(", `\)`, ")", `\*`, "*", `\-`, "-", `\#`, "#")
	currencyDigit  = regexp.MustCompile(`\b(USD|EUR)(\d)`)
	zeroWidth      = regexp.MustCompile(`[\x{200b}\x{200c}\x{200d}\x{2060}]`)
	tabs           = regexp.MustCompile(`\t+`)
	newlineSpace   = regexp.MustCompile(`\s*\n\s*`)
)

// normalizeAnswer removes escaped Markdown characters the model tends to emit,
// spaces out commas and currency codes glued to numbers, and trims.
func normalizeAnswer(text string) string {
	text = escapeReplacer.Replace(text)
	text = spaceAfterCommas(text)
	text = currencyDigit.ReplaceAllString(text, "${1} ${2}")
	return strings.TrimSpace(text)
}

// cleanText additionally strips zero-width characters and collapses
// whitespace around line breaks.
func cleanText(text string) string {
	text = zeroWidth.ReplaceAllString(text, "")
	text = tabs.ReplaceAllString(text, " ")
	text = newlineSpace.ReplaceAllString(text, "\n")
	return normalizeAnswer(text)
}

func spaceAfterCommas(text string) string {
	if !strings.Contains(text, ",") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 8)
	for i, r := range text {
		b.WriteRune(r)
		if r != ',' {
			continue
		}
		next, _ := utf8.DecodeRuneInString(text[i+1:])
		if i+1 < len(text) && !unicode.IsSpace(next) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
