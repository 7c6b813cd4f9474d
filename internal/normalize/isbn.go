package normalize

import (
	"regexp"
	"strings"
)

var isbnSeparators = regexp.MustCompile(`[\s-]`)

// CleanISBN strips whitespace and hyphens from a raw extracted ISBN string
// and uppercases the check character.
func CleanISBN(raw string) string {
	return strings.ToUpper(isbnSeparators.ReplaceAllString(raw, ""))
}

// ValidISBN13 reports whether s is exactly 13 ASCII digits whose weighted
// (1,3) mod-10 checksum over the first 12 digits matches the 13th.
func ValidISBN13(s string) bool {
	if len(s) != 13 {
		return false
	}
	total := 0
	for i := 0; i < 12; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		total += int(d-'0') * weight
	}
	last := s[12]
	if last < '0' || last > '9' {
		return false
	}
	check := (10 - total%10) % 10
	return check == int(last-'0')
}

// ValidISBN10 reports whether s is 9 digits plus a digit-or-X check
// character satisfying the weighted (10..1) mod-11 checksum, with X
// standing for 10.
func ValidISBN10(s string) bool {
	if len(s) != 10 {
		return false
	}
	total := 0
	for i := 0; i < 9; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return false
		}
		total += (10 - i) * int(d-'0')
	}
	switch last := s[9]; {
	case last == 'X':
		total += 10
	case last >= '0' && last <= '9':
		total += int(last - '0')
	default:
		return false
	}
	return total%11 == 0
}
