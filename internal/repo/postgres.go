package meta

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sir_venger/download_lite/internal/models"
)

const pgUniqueViolation = "23505"

// PGStore сохраняет дескрипторы в Postgres.
type PGStore struct {
	pool *pgxpool.Pool
	q    queries
}

var _ Store = (*PGStore)(nil)

// NewPGStore создаёт пул подключений к Postgres. Схема создаётся миграциями.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("meta dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &PGStore{
		pool: pool,
		q:    newQueries(sq.Dollar),
	}, nil
}

// Get возвращает дескриптор по идентификатору.
func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (models.Descriptor, error) {
	sqlStr, args, err := s.q.selectByID(id)
	if err != nil {
		return models.Descriptor{}, fmt.Errorf("build select: %w", err)
	}

	d, err := scanDescriptor(s.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Descriptor{}, models.ErrNotFound
		}
		return models.Descriptor{}, fmt.Errorf("scan descriptor row: %w", err)
	}

	return d, nil
}

// Save вставляет новый дескриптор; существующий id не перезаписывается.
func (s *PGStore) Save(ctx context.Context, d models.Descriptor) error {
	sqlStr, args, err := s.q.insert(d)
	if err != nil {
		return fmt.Errorf("build insert sql: %w", err)
	}

	if _, err = s.pool.Exec(ctx, sqlStr, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return models.ErrAlreadyExists
		}
		return fmt.Errorf("exec insert: %w", err)
	}

	return nil
}

// List возвращает все дескрипторы от новых к старым.
func (s *PGStore) List(ctx context.Context) ([]models.Descriptor, error) {
	sqlStr, args, err := s.q.selectAll()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.pool.Query(ctx, sqlStr, args...)
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

// Close освобождает подключения пула.
func (s *PGStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
