package convert

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBracketToken = regexp.MustCompile(`\[[^\]]+\]`)
	rePlaceholder  = regexp.MustCompile(`[0#?]`)
	reSciDecimals  = regexp.MustCompile(`\.([0#?]+)[eE]`)
	reNumPattern   = regexp.MustCompile(`[^0#.,]`)
)

// formatNumberWithCode renders a number through its cell format code. It
// covers the decimal, grouping, percent, scientific and literal subsets of
// the format grammar; ok is false when the code carries no usable
// instruction and the caller should fall back to plain rendering.
func formatNumberWithCode(value float64, code string) (string, bool) {
	if code == "" || code == "@" || strings.EqualFold(code, "general") {
		return "", false
	}

	sections := strings.Split(code, ";")
	section := sections[0]
	valueToFormat := value
	if len(sections) > 1 {
		switch {
		case value < 0:
			section = sections[1]
			valueToFormat = math.Abs(value)
		case value == 0 && len(sections) > 2:
			section = sections[2]
		}
	}

	// color, condition and locale tokens carry no digits
	section = reBracketToken.ReplaceAllString(section, "")

	if !rePlaceholder.MatchString(section) {
		return cleanFormatLiteral(section), true
	}

	firstIdx, lastIdx := -1, -1
	for idx, ch := range section {
		if ch == '0' || ch == '#' || ch == '?' {
			if firstIdx < 0 {
				firstIdx = idx
			}
			lastIdx = idx
		}
	}

	prefix := cleanFormatLiteral(section[:firstIdx])
	suffix := cleanFormatLiteral(section[lastIdx+1:])

	if strings.Contains(section, "%") {
		valueToFormat *= 100
	}

	if strings.ContainsAny(section, "eE") {
		decimals := 0
		if m := reSciDecimals.FindStringSubmatch(section); m != nil {
			decimals = len(m[1])
		}
		return prefix + fmt.Sprintf("%.*E", decimals, valueToFormat) + suffix, true
	}

	patternClean := reNumPattern.ReplaceAllString(section[firstIdx:lastIdx+1], "")
	intPart, fracPart, _ := strings.Cut(patternClean, ".")

	useGrouping := strings.Contains(intPart, ",")
	minDecimals := strings.Count(fracPart, "0")
	maxDecimals := strings.Count(fracPart, "0") + strings.Count(fracPart, "#")

	formatted := strconv.FormatFloat(valueToFormat, 'f', maxDecimals, 64)
	if maxDecimals > minDecimals && strings.Contains(formatted, ".") {
		intText, fracText, _ := strings.Cut(formatted, ".")
		fracText = strings.TrimRight(fracText, "0")
		for len(fracText) < minDecimals {
			fracText += "0"
		}
		if fracText == "" {
			formatted = intText
		} else {
			formatted = intText + "." + fracText
		}
	}
	if useGrouping {
		formatted = groupThousands(formatted)
	}
	return prefix + formatted + suffix, true
}

// groupThousands inserts comma separators into the integer part of an
// already formatted decimal string.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + fracPart
	}
	return out
}

// cleanFormatLiteral strips format directives from literal text: quoted
// runs keep their content, underscore and star consume the next character,
// backslash escapes one character.
func cleanFormatLiteral(text string) string {
	var b strings.Builder
	runes := []rune(text)
	for idx := 0; idx < len(runes); {
		switch runes[idx] {
		case '"':
			idx++
			for idx < len(runes) && runes[idx] != '"' {
				b.WriteRune(runes[idx])
				idx++
			}
			idx++
		case '_', '*':
			idx += 2
		case '\\':
			if idx+1 < len(runes) {
				b.WriteRune(runes[idx+1])
				idx += 2
			} else {
				idx++
			}
		default:
			b.WriteRune(runes[idx])
			idx++
		}
	}
	return b.String()
}
