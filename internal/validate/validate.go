package validate

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"fieldbasket/internal/cart"
	"fieldbasket/internal/domain"
	"fieldbasket/internal/geo"
)

var (
	reID   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reType = regexp.MustCompile(`^(?i)(all|fruits?|vegetables?)?$`)
)

// Search trims the search text and caps it at 50 runes. Any printable text is
// accepted since it is only ever bound as a query parameter.
func Search(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.ContainsRune(s, 0) || !utf8.ValidString(s) {
		return "", false
	}
	if utf8.RuneCountInString(s) > 50 {
		s = string([]rune(s)[:50])
	}
	return s, true
}

// Page parses a page number; absent or invalid values become 1.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Limit parses a page size; absent or invalid values become def, large ones
// are clamped to max.
func Limit(s string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// Type validates a category filter and normalizes it.
func Type(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !reType.MatchString(s) {
		return "", false
	}
	return domain.NormalizeType(s), true
}

// MaxQty caps a single cart line.
const MaxQty = cart.MaxQuantity

func Qty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return ClampQty(n), true
}

// ClampQty caps n at MaxQty to avoid abuse. Values below 1 pass through so
// the cart can treat them as a removal.
func ClampQty(n int) int {
	if n > MaxQty {
		return MaxQty
	}
	return n
}

// ID validates a simple resource identifier (product ids, Mongo hex ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Text validates free-text delivery fields with a max length.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > max || strings.ContainsRune(s, 0) {
		return s, false
	}
	return s, true
}

// Coordinates parses a lat/lng pair.
func Coordinates(lat, lng string) (geo.Point, bool) {
	la, err1 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	ln, err2 := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err1 != nil || err2 != nil || math.IsInf(la, 0) || math.IsInf(ln, 0) {
		return geo.Point{}, false
	}
	p := geo.Point{Lat: la, Lng: ln}
	return p, p.Valid()
}
