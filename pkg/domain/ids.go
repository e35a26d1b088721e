// Package domain holds the validated primitives that cross trust boundaries.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "partnersearch/pkg/domain-errors"
)

// DUNSLength is the number of digits in a D-U-N-S number.
const DUNSLength = 9

// maxRawDUNSLength bounds the input accepted before normalisation so formatted
// numbers ("80-473-5132") parse while oversized payloads are rejected early.
const maxRawDUNSLength = 16

// DUNS is a validated nine digit D-U-N-S number.
type DUNS string

// ParseDUNS validates a D-U-N-S number. Hyphens and spaces used for display
// grouping are stripped; the remainder must be exactly nine ASCII digits.
func ParseDUNS(raw string) (DUNS, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "duns is required")
	}
	if len(raw) > maxRawDUNSLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "duns is too long")
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == ' ':
		default:
			return "", dErrors.New(dErrors.CodeInvalidInput, "duns must contain only digits")
		}
	}
	if b.Len() != DUNSLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "duns must be 9 digits")
	}
	return DUNS(b.String()), nil
}

func (d DUNS) String() string {
	return string(d)
}

// UserID identifies an authenticated user.
type UserID uuid.UUID

// ParseUserID parses a non-nil UUID into a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	if parsed == uuid.Nil {
		return UserID{}, dErrors.New(dErrors.CodeInvalidInput, "user id cannot be nil")
	}
	return UserID(parsed), nil
}

func (id UserID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the id is the zero value.
func (id UserID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}
