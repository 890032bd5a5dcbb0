package database

import (
	"context"

	"github.com/Aidin1998/sanctions_matcher/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	DuplicateKeyErrorCode     = "23505"
	UndefinedTableErrorCode   = "42P01"
	ConnectionFailureCodeBase = "08"
)

// WrapError classifies a gorm error into an errors kind. Errors that already
// carry a kind are returned unchanged.
func WrapError(err error) error {
	var (
		pgErr *pgconn.PgError
		kind  *errors.Error
	)

	if err == nil {
		return nil
	} else if errors.As(err, &kind) {
		return err
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound.Wrap(err)
	} else if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == DuplicateKeyErrorCode:
			return errors.Conflict.
				Explain("duplication of key").
				Wrap(err)
		case pgErr.Code == UndefinedTableErrorCode:
			return errors.Unavailable.
				Explain("schema not migrated").
				Wrap(err)
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == ConnectionFailureCodeBase:
			return errors.Unavailable.
				Explain("database connection failure").
				Wrap(err)
		}
	} else if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return errors.Unavailable.Explain("database timeout").Wrap(err)
	}

	return err
}
