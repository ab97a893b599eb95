// Package sqlgraph classifies driver errors into the constraint kinds the
// store reports as modelkit.ConstraintError.
package sqlgraph

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ConstraintKind is the kind of a violated database constraint.
type ConstraintKind uint8

// Constraint kinds.
const (
	ConstraintNone ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintCheck
	ConstraintNotNull
)

// String returns the kind name.
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintUnique:
		return "unique"
	case ConstraintForeignKey:
		return "foreign key"
	case ConstraintCheck:
		return "check"
	case ConstraintNotNull:
		return "not null"
	default:
		return "none"
	}
}

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlBadNull                = 1048
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// Classify returns the kind of constraint err violated, or ConstraintNone.
func Classify(err error) ConstraintKind {
	if err == nil {
		return ConstraintNone
	}
	if e, ok := asError[*pq.Error](err); ok {
		switch e.Code {
		case pgUniqueViolation:
			return ConstraintUnique
		case pgForeignKeyViolation:
			return ConstraintForeignKey
		case pgCheckViolation:
			return ConstraintCheck
		case pgNotNullViolation:
			return ConstraintNotNull
		}
		return ConstraintNone
	}
	if e, ok := asError[*mysql.MySQLError](err); ok {
		switch e.Number {
		case mysqlDuplicateEntry:
			return ConstraintUnique
		case mysqlForeignKeyParent, mysqlForeignKeyChild:
			return ConstraintForeignKey
		case mysqlCheckConstraintViolate:
			return ConstraintCheck
		case mysqlBadNull:
			return ConstraintNotNull
		}
		return ConstraintNone
	}
	if e, ok := asError[*sqlite.Error](err); ok {
		switch e.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return ConstraintUnique
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return ConstraintForeignKey
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return ConstraintCheck
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return ConstraintNotNull
		}
	}
	// Fallback to string matching for wrapped or foreign drivers.
	msg := err.Error()
	switch {
	case containsAny(msg, "Error 1062", "violates unique constraint", "UNIQUE constraint failed"):
		return ConstraintUnique
	case containsAny(msg, "Error 1451", "Error 1452", "violates foreign key constraint", "FOREIGN KEY constraint failed"):
		return ConstraintForeignKey
	case containsAny(msg, "Error 3819", "violates check constraint", "CHECK constraint failed"):
		return ConstraintCheck
	case containsAny(msg, "Error 1048", "violates not-null constraint", "NOT NULL constraint failed"):
		return ConstraintNotNull
	}
	return ConstraintNone
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return Classify(err) != ConstraintNone
}

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
// e.g. duplicate value in unique index.
func IsUniqueConstraintError(err error) bool {
	return Classify(err) == ConstraintUnique
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
// e.g. parent row does not exist.
func IsForeignKeyConstraintError(err error) bool {
	return Classify(err) == ConstraintForeignKey
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
func IsCheckConstraintError(err error) bool {
	return Classify(err) == ConstraintCheck
}

// IsNotNullConstraintError reports if a required column was written as NULL.
func IsNotNullConstraintError(err error) bool {
	return Classify(err) == ConstraintNotNull
}

// asError attempts to extract an error of type T from the error chain.
func asError[T error](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
