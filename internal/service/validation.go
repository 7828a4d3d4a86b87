package service

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// normalizeEmail trims the address and checks it is a bare addr-spec with
// a dotted domain. Display-name forms such as "A <a@example.com>" and
// single-label hosts such as "a@localhost" are rejected.
func normalizeEmail(field, raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", invalid(field, "is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !hasTLD(email) {
		return "", invalid(field, "is not a valid email")
	}

	return email, nil
}

// hasTLD reports whether the domain has non-empty dotted labels and an
// alphabetic (or punycode) top-level label of two or more characters.
func hasTLD(email string) bool {
	labels := strings.Split(email[strings.LastIndexByte(email, '@')+1:], ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}

	tld := labels[len(labels)-1]
	if strings.HasPrefix(strings.ToLower(tld), "xn--") {
		return len(tld) > 4
	}
	if utf8.RuneCountInString(tld) < 2 {
		return false
	}
	return strings.IndexFunc(tld, func(r rune) bool { return !unicode.IsLetter(r) }) < 0
}

func validatePassword(password string) error {
	if password == "" {
		return invalid("password", "is required")
	}
	return nil
}

func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalid("name", "is required")
	}
	return name, nil
}

// ValidID reports whether id has record id syntax. Lookups with a
// malformed id are answered as not found without touching the store.
func ValidID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

func newID() string {
	return ulid.Make().String()
}
