package store

import (
	"strings"
	"unicode/utf8"

	"github.com/andrewpaige1/apex-defense-api/apperr"
	"github.com/andrewpaige1/apex-defense-api/patch"
)

const maxNameLength = 255

func checkName(field, v string) error {
	n := utf8.RuneCountInString(v)
	if strings.TrimSpace(v) == "" || n > maxNameLength {
		return apperr.Newf(apperr.Validation, "%s must be between 1 and %d characters", field, maxNameLength)
	}
	return nil
}

func checkLetters(field, v string, length int) error {
	if len(v) != length {
		return apperr.Newf(apperr.Validation, "%s must be exactly %d letters", field, length)
	}
	for _, r := range v {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return apperr.Newf(apperr.Validation, "%s must be exactly %d letters", field, length)
		}
	}
	return nil
}

func checkFraction(field string, v *float64) error {
	if v != nil && (*v < 0 || *v > 1) {
		return apperr.Newf(apperr.Validation, "%s must be between 0 and 1", field)
	}
	return nil
}

func checkNonNegative[T int | int64 | float64](field string, v *T) error {
	if v != nil && *v < 0 {
		return apperr.Newf(apperr.Validation, "%s must be greater than or equal to 0", field)
	}
	return nil
}

func checkRange(field string, v *float64, lo, hi float64) error {
	if v != nil && (*v < lo || *v > hi) {
		return apperr.Newf(apperr.Validation, "%s must be between %g and %g", field, lo, hi)
	}
	return nil
}

// notNull rejects an explicit null on a column that cannot hold one.
func notNull[T any](field string, f patch.Field[T]) error {
	if f.Set && f.Null {
		return apperr.Newf(apperr.Validation, "%s cannot be null", field)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
