package meta

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sir_venger/download_lite/internal/models"
)

const sqliteDriver = "sqlite"

// SQLiteStore хранит дескрипторы во встроенной SQLite-базе.
type SQLiteStore struct {
	db *sql.DB
	q  queries
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite открывает файл базы и применяет миграции.
func OpenSQLite(ctx context.Context, path string, logger zerolog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, err
	}
	// SQLite допускает одного писателя; один коннект снимает "database is locked".
	db.SetMaxOpenConns(1)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err = migrate(ctx, db, dialectSQLite, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite migrations: %w", err)
	}

	return &SQLiteStore{
		db: db,
		q:  newQueries(sq.Question),
	}, nil
}

// Get возвращает дескриптор по идентификатору.
func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (models.Descriptor, error) {
	sqlStr, args, err := s.q.selectByID(id)
	if err != nil {
		return models.Descriptor{}, fmt.Errorf("build select: %w", err)
	}

	d, err := scanDescriptor(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Descriptor{}, models.ErrNotFound
		}
		return models.Descriptor{}, fmt.Errorf("scan descriptor row: %w", err)
	}

	return d, nil
}

// Save вставляет новый дескриптор; существующий id не перезаписывается.
func (s *SQLiteStore) Save(ctx context.Context, d models.Descriptor) error {
	sqlStr, args, err := s.q.insert(d)
	if err != nil {
		return fmt.Errorf("build insert sql: %w", err)
	}

	if _, err = s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.ErrAlreadyExists
		}
		return fmt.Errorf("exec insert: %w", err)
	}

	return nil
}

// List возвращает все дескрипторы от новых к старым.
func (s *SQLiteStore) List(ctx context.Context) ([]models.Descriptor, error) {
	sqlStr, args, err := s.q.selectAll()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query descriptors: %w", err)
	}
	defer rows.Close()

	var out []models.Descriptor
	for rows.Next() {
		d, err := scanDescriptor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan descriptor row: %w", err)
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
