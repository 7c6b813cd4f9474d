package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"bookscout/internal/normalize"
)

var (
	priceRe       = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*₾`)
	isbnLabeledRe = regexp.MustCompile(`\bISBN\b\s*[:#]?\s*([0-9Xx][0-9Xx\s-]{8,20})`)
)

// ParsePrice converts a raw price fragment to a float, tolerating the comma
// decimal separator and non-breaking spaces the stores use.
func ParsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, " ", " ")
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ExtractPriceGEL pulls the first lari-denominated price out of free text.
func ExtractPriceGEL(text string) *float64 {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := ParsePrice(m[1])
	if err != nil {
		return nil
	}
	return &v
}

// MaxPriceGEL returns the highest lari price found in free text. Used as a
// fallback on pages where the product price shares the page with smaller
// cart or related-item prices.
func MaxPriceGEL(text string) *float64 {
	matches := priceRe.FindAllStringSubmatch(text, -1)
	var max *float64
	for _, m := range matches {
		v, err := ParsePrice(m[1])
		if err != nil {
			continue
		}
		if max == nil || v > *max {
			max = &v
		}
	}
	return max
}

// ExtractISBN finds a labeled ISBN in free text and returns it cleaned, or
// nil when absent or checksum-invalid. Both 10- and 13-digit forms are
// surfaced; only the 13-digit form participates in identity downstream.
func ExtractISBN(text string) *string {
	m := isbnLabeledRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	candidate := normalize.CleanISBN(m[1])
	switch {
	case len(candidate) == 13 && normalize.ValidISBN13(candidate):
		return &candidate
	case len(candidate) == 10 && normalize.ValidISBN10(candidate):
		return &candidate
	}
	return nil
}

// ExtractAvailability derives the tri-state stock flag from marker text.
// The out-of-stock marker is checked first because the in-stock marker is a
// substring of it on both stores. No marker means unknown, not false.
func ExtractAvailability(text, inStockText, outOfStockText string) *bool {
	if strings.Contains(text, outOfStockText) {
		v := false
		return &v
	}
	if strings.Contains(text, inStockText) {
		v := true
		return &v
	}
	return nil
}
