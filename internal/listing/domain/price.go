package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a user-entered number. Dots are read as thousands
// separators and a comma as the decimal mark, so "12.500" is 12500 and
// "12,5" is 12.5. NaN and infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NormalizePrice turns submitted price text into a stored price. Empty, zero and
// negative prices become nil.
func NormalizePrice(raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, ok := ParseNumber(raw)
	if !ok {
		return nil, fmt.Errorf("%w: invalid price format %q", ErrValidationFailed, raw)
	}
	if v <= 0 {
		return nil, nil
	}
	return &v, nil
}
