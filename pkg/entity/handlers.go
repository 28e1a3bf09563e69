package entity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/parleybot/parley/pkg/ports"
)

var (
	zipcodeRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	emailRe   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitsRe  = regexp.MustCompile(`\D`)
	spacesRe  = regexp.MustCompile(`\s+`)
)

func builtins() map[string]ports.EntityHandler {
	return map[string]ports.EntityHandler{
		"passthrough": ports.EntityHandlerFunc(Passthrough),
		"zipcode":     ports.EntityHandlerFunc(Zipcode),
		"email":       ports.EntityHandlerFunc(Email),
		"phone":       ports.EntityHandlerFunc(Phone),
		"address":     ports.EntityHandlerFunc(Address),
	}
}

// Passthrough accepts any non-empty value, trimmed.
func Passthrough(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", fmt.Errorf("empty value")
	}
	return v, nil
}

// Zipcode validates US ZIP and ZIP+4 forms and normalizes to the 5-digit code.
func Zipcode(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if !zipcodeRe.MatchString(v) {
		return "", fmt.Errorf("%q is not a valid zipcode", raw)
	}
	return v[:5], nil
}

// Email validates a plausible address and lowercases it.
func Email(raw string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if !emailRe.MatchString(v) {
		return "", fmt.Errorf("%q is not a valid email address", raw)
	}
	return v, nil
}

// Phone strips punctuation and accepts 10 digits, or 11 with a leading 1.
func Phone(raw string) (string, error) {
	digits := digitsRe.ReplaceAllString(raw, "")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", fmt.Errorf("%q is not a valid phone number", raw)
	}
	return digits, nil
}

// Address collapses internal whitespace; anything non-empty passes.
func Address(raw string) (string, error) {
	v := spacesRe.ReplaceAllString(strings.TrimSpace(raw), " ")
	if v == "" {
		return "", fmt.Errorf("empty address")
	}
	return v, nil
}
