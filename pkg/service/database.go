package service

import (
	"database/sql"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/omarelshorbagy/Project-Software-Engineering/internal/storage"
	"github.com/omarelshorbagy/Project-Software-Engineering/pkg/variables"
	"go.uber.org/fx"
)

type database_Params struct {
	fx.In

	Logger *slog.Logger
}

func database(params database_Params) (*sql.DB, error) {
	uri := variables.Env(variables.DATABASE_URL_NAME, variables.DATABASE_URL_DEFAULT)

	db, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, err
	}

	if err := storage.Migrate(db); err != nil {
		return nil, err
	}

	params.Logger.Info("database ready")
	return db, nil
}

func queries(db *sql.DB) *storage.Queries {
	return storage.New(db)
}

var DatabaseModule = fx.Module("database", fx.Provide(
	database,
	queries,
))
