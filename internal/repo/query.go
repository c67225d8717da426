package meta

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/sir_venger/download_lite/internal/models"
)

const descriptorsTable = "descriptors"

var descriptorColumns = []string{
	"id",
	"original_name",
	"size",
	"content_hash",
	"last_modified",
	"media_type",
}

// queries строит SQL для конкретного формата плейсхолдеров.
type queries struct {
	builder sq.StatementBuilderType
}

func newQueries(ph sq.PlaceholderFormat) queries {
	return queries{builder: sq.StatementBuilder.PlaceholderFormat(ph)}
}

func (q queries) selectByID(id uuid.UUID) (string, []any, error) {
	return q.builder.
		Select(descriptorColumns...).
		From(descriptorsTable).
		Where(sq.Eq{"id": id.String()}).
		Limit(1).
		ToSql()
}

func (q queries) selectAll() (string, []any, error) {
	return q.builder.
		Select(descriptorColumns...).
		From(descriptorsTable).
		OrderBy("last_modified DESC", "id").
		ToSql()
}

func (q queries) insert(d models.Descriptor) (string, []any, error) {
	return q.builder.
		Insert(descriptorsTable).
		Columns(descriptorColumns...).
		Values(d.ID.String(), d.OriginalName, d.Size, d.ContentHash, d.LastModified.Unix(), d.MediaType).
		ToSql()
}

// rowScanner покрывает и pgx.Row, и *sql.Row / *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDescriptor(row rowScanner) (models.Descriptor, error) {
	var (
		rawID        string
		name         string
		size         int64
		contentHash  string
		lastModified int64
		mediaType    string
	)
	if err := row.Scan(&rawID, &name, &size, &contentHash, &lastModified, &mediaType); err != nil {
		return models.Descriptor{}, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return models.Descriptor{}, fmt.Errorf("parse descriptor id %q: %w", rawID, err)
	}

	return models.NewDescriptor(id, name, size, contentHash, time.Unix(lastModified, 0), mediaType), nil
}
