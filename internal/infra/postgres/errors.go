package postgres

import (
	"database/sql"
	"errors"

	"tietotesti/internal/domain"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/uptrace/bun/driver/pgdriver"
)

// normalize maps driver errors onto the domain taxonomy. notFound is returned
// for an empty result; pass nil where no rows is not an error.
func normalize(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && (errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)) {
		return notFound
	}

	var bunErr pgdriver.Error
	if errors.As(err, &bunErr) {
		if mapped := fromSQLState(bunErr.Field('C')); mapped != nil {
			return mapped
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped := fromSQLState(pgErr.Code); mapped != nil {
			return mapped
		}
	}
	return domain.WrapDataAccess(op, err)
}

func fromSQLState(code string) error {
	switch code {
	case "23505": // unique_violation
		return domain.NewValidationError("", "record already exists")
	case "23503": // foreign_key_violation
		return domain.NewValidationError("", "referenced record does not exist")
	case "23514", "22001": // check_violation, string_data_right_truncation
		return domain.NewValidationError("", "value out of range")
	}
	return nil
}
