// Package store holds the gorm repositories behind the HTTP handlers. Every
// method runs in a single session bound to the caller's context, and every
// multi-step operation runs inside one transaction.
package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/andrewpaige1/apex-defense-api/apperr"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Page is an offset window over an ordered listing.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) Validate() error {
	if p.Skip < 0 {
		return apperr.New(apperr.Validation, "skip must be greater than or equal to 0")
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return apperr.Newf(apperr.Validation, "limit must be between 1 and %d", MaxLimit)
	}
	return nil
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Skip).Limit(p.Limit)
}

func byName(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}

func byRecent(db *gorm.DB) *gorm.DB {
	return db.Order("updated_at DESC")
}

// lookupErr converts a failed single-row read into NotFound or Internal.
func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Newf(apperr.NotFound, "%s not found", what)
	}
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return apperr.Wrap(apperr.Internal, "load "+strings.ToLower(what), err)
}

// writeErr converts a failed write, mapping unique violations to Conflict.
func writeErr(err error, op, conflictMsg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.Conflict, conflictMsg, err)
	}
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return apperr.Wrap(apperr.Internal, op, err)
}

// escapeLike makes user input literal inside a LIKE pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
