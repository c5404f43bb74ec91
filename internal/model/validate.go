package model

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nhle/project-dashboard/internal/apperr"
)

// Validator is implemented by every mutation payload.
type Validator interface {
	Validate() error
}

func invalid(field, format string, args ...any) error {
	return apperr.Validation(field, fmt.Sprintf(format, args...))
}

// requireText rejects blank values and, when max > 0, values longer than
// max runes.
func requireText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "%s must not be empty", field)
	}
	if max > 0 && utf8.RuneCountInString(value) > max {
		return invalid(field, "%s must be at most %d characters", field, max)
	}
	return nil
}

func checkRange(field string, start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return invalid(field, "end date must not be before start date")
	}
	return nil
}

func checkEmail(field, value string) error {
	if err := requireText(field, value, 254); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return invalid(field, "%q is not a valid email address", value)
	}
	return nil
}
