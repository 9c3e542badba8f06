package errors

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Limits applied to externally supplied dimensions, in design units.
const (
	MaxDimension = 1_000_000
	maxIDLength  = 128
)

// ParseDimension parses a single design-unit dimension such as "120" or
// "12.5". Non-numeric, non-finite and non-positive values are rejected.
func ParseDimension(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, New(ErrCodeInvalidDimensions, "dimension cannot be empty")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, New(ErrCodeInvalidDimensions, "please enter valid dimensions: %q is not a number", s)
	}
	if err := ValidateDimension(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ParseDimensions parses a "WxH" (or "W,H") pair of design-unit dimensions.
func ParseDimensions(s string) (w, h float64, err error) {
	sep := "x"
	if strings.Contains(s, ",") {
		sep = ","
	}
	parts := strings.Split(strings.ToLower(s), sep)
	if len(parts) != 2 {
		return 0, 0, New(ErrCodeInvalidDimensions, "dimensions must look like WIDTHxHEIGHT, got %q", s)
	}
	if w, err = ParseDimension(parts[0]); err != nil {
		return 0, 0, err
	}
	if h, err = ParseDimension(parts[1]); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// ValidateDimension checks that v is a usable design-unit dimension.
func ValidateDimension(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidDimensions, "dimension must be a finite number")
	}
	if v <= 0 {
		return New(ErrCodeInvalidDimensions, "dimension must be positive, got %v", v)
	}
	if v > MaxDimension {
		return New(ErrCodeInvalidDimensions, "dimension too large (max %d)", MaxDimension)
	}
	return nil
}

// ValidateDimensions validates a width/height pair.
func ValidateDimensions(w, h float64) error {
	if err := ValidateDimension(w); err != nil {
		return err
	}
	return ValidateDimension(h)
}

// ParseRect parses "x,y,w,h" on the normalized 0–100 scale.
func ParseRect(s string) (x, y, w, h float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, New(ErrCodeInvalidRect, "rectangle must look like x,y,w,h, got %q", s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, perr := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if perr != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, 0, 0, New(ErrCodeInvalidRect, "rectangle component %q is not a number", p)
		}
		vals[i] = v
	}
	x, y, w, h = vals[0], vals[1], vals[2], vals[3]
	if w <= 0 || h <= 0 {
		return 0, 0, 0, 0, New(ErrCodeInvalidRect, "rectangle size must be positive")
	}
	if x < 0 || y < 0 || x+w > 100 || y+h > 100 {
		return 0, 0, 0, 0, New(ErrCodeInvalidRect, "rectangle %q lies outside the 0–100 frame", s)
	}
	return x, y, w, h, nil
}

// ParseLevel parses an unlock level. Any integer is accepted; range
// clamping is the engine's job, not a validation failure.
func ParseLevel(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, New(ErrCodeInvalidLevel, "unlock level must be an integer, got %q", s)
	}
	return n, nil
}

// ValidateSessionID validates a session identifier for safety.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - Only letters, digits, '-' and '_'
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSessionID, "session id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidSessionID, "session id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return New(ErrCodeInvalidSessionID, "session id contains invalid characters")
		}
	}
	return nil
}
