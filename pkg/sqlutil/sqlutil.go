package sqlutil

import (
	"database/sql"

	"github.com/omarelshorbagy/Project-Software-Engineering/internal/storage"
)

func WithTransaction(db *sql.DB, fn func(q *storage.Queries) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := fn(storage.New(db).WithTx(tx)); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
