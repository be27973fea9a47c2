package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
)

// Postgres error codes we translate
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation report whether err came from unique constraint
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// IsForeignKeyViolation report whether err came from foreign key constraint
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// TranslateError convert gorm and postgres error into apperror.
// notFoundMsg is used when the record does not exist.
func TranslateError(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(notFoundMsg)
	case IsUniqueViolation(err):
		return apperror.NewError(apperror.CodeConflict, "record already exists", err)
	case IsForeignKeyViolation(err):
		return apperror.NewError(apperror.CodeValidation, "referenced record does not exist", err)
	default:
		return apperror.Internal("database error", err)
	}
}
