package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes and classes translated by Errors.
const (
	pgUniqueViolation    = "23505"
	pgNotNullViolation   = "23502"
	pgCheckViolation     = "23514"
	pgDataExceptionClass = "22"
)

// Errors names the domain errors a repository reports for database
// failures. A nil field leaves that class of failure untranslated.
type Errors struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// Map translates err into the matching domain error. Missing rows become
// NotFound, unique violations Duplicate, and not-null, check, or
// data-exception failures (malformed dates, out of range numbers) Invalid.
// Translated errors keep the violated constraint or column in their text.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) && e.NotFound != nil {
		return e.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == pgUniqueViolation && e.Duplicate != nil:
		return fmt.Errorf("%w: %s", e.Duplicate, describe(pgErr))
	case isInvalidInput(pgErr.Code) && e.Invalid != nil:
		return fmt.Errorf("%w: %s", e.Invalid, describe(pgErr))
	}
	return err
}

func isInvalidInput(code string) bool {
	return code == pgNotNullViolation ||
		code == pgCheckViolation ||
		strings.HasPrefix(code, pgDataExceptionClass)
}

func describe(pgErr *pgconn.PgError) string {
	switch {
	case pgErr.ConstraintName != "":
		return fmt.Sprintf("%s (constraint %s)", pgErr.Message, pgErr.ConstraintName)
	case pgErr.ColumnName != "":
		return fmt.Sprintf("%s (column %s)", pgErr.Message, pgErr.ColumnName)
	}
	return pgErr.Message
}
