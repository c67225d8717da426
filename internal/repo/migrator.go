package meta

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

type dialect struct {
	goose string
	dir   string
}

var (
	dialectPostgres = dialect{goose: "postgres", dir: "migrations/postgres"}
	dialectSQLite   = dialect{goose: "sqlite3", dir: "migrations/sqlite"}
)

// ApplyMigrations запускает goose-миграции для DSN каталога.
// Для memory:// миграции не нужны, функция ничего не делает.
func ApplyMigrations(ctx context.Context, dsn string, logger zerolog.Logger) error {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return fmt.Errorf("meta dsn is empty")
	case strings.HasPrefix(dsn, memoryScheme):
		return nil
	case strings.HasPrefix(dsn, sqliteScheme):
		store, err := OpenSQLite(ctx, strings.TrimPrefix(dsn, sqliteScheme), logger)
		if err != nil {
			return err
		}
		return store.Close()
	case strings.HasPrefix(dsn, postgresScheme), strings.HasPrefix(dsn, postgresAlias):
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return err
		}
		return migrate(ctx, db, dialectPostgres, logger)
	default:
		return fmt.Errorf("unsupported meta dsn scheme: %q", dsn)
	}
}

func migrate(ctx context.Context, db *sql.DB, d dialect, logger zerolog.Logger) error {
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{log: logger.With().Str("component", "migrations").Logger()})
	if err := goose.SetDialect(d.goose); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, d.dir)
}

// gooseLogger перенаправляет вывод goose в zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(format), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Msgf(strings.TrimSpace(format), v...)
}
