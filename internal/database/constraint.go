package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ViolationKind identifies which integrity rule the storage engine rejected.
type ViolationKind string

const (
	ViolationUnique     ViolationKind = "unique"
	ViolationForeignKey ViolationKind = "foreign_key"
	ViolationNotNull    ViolationKind = "not_null"
	ViolationCheck      ViolationKind = "check"
)

// PostgreSQL SQLSTATE codes for integrity constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// Violation is a constraint failure reported by the database.
type Violation struct {
	Kind ViolationKind
	// Constraint is the constraint name on PostgreSQL and the "table.column"
	// list SQLite reports. It may be empty.
	Constraint string
	Err        error
}

func (v *Violation) Error() string {
	if v.Constraint == "" {
		return string(v.Kind) + " violation: " + v.Err.Error()
	}
	return string(v.Kind) + " violation on " + v.Constraint + ": " + v.Err.Error()
}

func (v *Violation) Unwrap() error { return v.Err }

// Involves reports whether the violated constraint mentions name, e.g. a column.
func (v *Violation) Involves(name string) bool {
	return strings.Contains(strings.ToLower(v.Constraint), strings.ToLower(name))
}

// ClassifyError returns the constraint violation carried by err, or nil if err
// is not an integrity error.
func ClassifyError(err error) *Violation {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		var kind ViolationKind
		switch pgErr.Code {
		case pgUniqueViolation:
			kind = ViolationUnique
		case pgForeignKeyViolation:
			kind = ViolationForeignKey
		case pgNotNullViolation:
			kind = ViolationNotNull
		case pgCheckViolation:
			kind = ViolationCheck
		default:
			return nil
		}
		constraint := pgErr.ConstraintName
		if constraint == "" {
			constraint = pgErr.ColumnName
		}
		return &Violation{Kind: kind, Constraint: constraint, Err: err}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		var kind ViolationKind
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			kind = ViolationUnique
		case sqlite3.ErrConstraintForeignKey:
			kind = ViolationForeignKey
		case sqlite3.ErrConstraintNotNull:
			kind = ViolationNotNull
		case sqlite3.ErrConstraintCheck:
			kind = ViolationCheck
		default:
			return nil
		}
		// e.g. "UNIQUE constraint failed: users.email"
		_, constraint, _ := strings.Cut(liteErr.Error(), "failed: ")
		return &Violation{Kind: kind, Constraint: constraint, Err: err}
	}

	return nil
}

// IsViolation reports whether err is a constraint violation of the given kind.
func IsViolation(err error, kind ViolationKind) bool {
	v := ClassifyError(err)
	return v != nil && v.Kind == kind
}
