package db

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrNotFound is wrapped by lookups of ids that do not exist.
var ErrNotFound = errors.New("not found")

// IsUniqueViolation reports whether err came from a unique index or
// primary key.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	code, ok := extendedCode(err)
	return ok && (code == sqlite3.ErrConstraintUnique || code == sqlite3.ErrConstraintPrimaryKey)
}

// IsForeignKeyViolation reports whether err came from a reference to a row
// that does not exist.
func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	code, ok := extendedCode(err)
	return ok && code == sqlite3.ErrConstraintForeignKey
}

// IsConstraintViolation reports whether err came from any constraint,
// including check and not-null constraints.
func IsConstraintViolation(err error) bool {
	if IsUniqueViolation(err) || IsForeignKeyViolation(err) {
		return true
	}
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint
}

func extendedCode(err error) (sqlite3.ErrNoExtended, bool) {
	var serr sqlite3.Error
	if !errors.As(err, &serr) {
		return 0, false
	}
	return serr.ExtendedCode, true
}
