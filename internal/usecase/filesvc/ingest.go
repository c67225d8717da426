package filesvc

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sir_venger/download_lite/internal/blob"
	"github.com/sir_venger/download_lite/internal/models"
)

const octetStream = "application/octet-stream"

// Ingest публикует новый файл: копирует поток во временный файл, считая SHA-512,
// определяет тип содержимого, кладёт байты в blob-хранилище и сохраняет дескриптор.
// Тело целиком в памяти не держится.
func (s *Files) Ingest(ctx context.Context, name string, r io.Reader) (models.Descriptor, error) {
	if r == nil {
		return models.Descriptor{}, fmt.Errorf("%w: body is required", models.ErrInvalidUpload)
	}

	if s.StagingDir != "" {
		if err := os.MkdirAll(s.StagingDir, 0o755); err != nil {
			return models.Descriptor{}, fmt.Errorf("create staging dir: %w", err)
		}
	}
	spool, err := os.CreateTemp(s.StagingDir, blob.StagingPattern)
	if err != nil {
		return models.Descriptor{}, fmt.Errorf("create staging file: %w", err)
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	hasher := sha512.New()
	size, err := io.Copy(io.MultiWriter(spool, hasher), r)
	if err != nil {
		return models.Descriptor{}, fmt.Errorf("spool upload: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return models.Descriptor{}, err
	}

	id := uuid.New()
	name = sanitizeName(name, id)
	mediaType := detectMediaType(name, spool)

	if _, err = spool.Seek(0, io.SeekStart); err != nil {
		return models.Descriptor{}, fmt.Errorf("rewind staging file: %w", err)
	}
	if err = s.Blobs.Put(ctx, id, spool, size); err != nil {
		return models.Descriptor{}, fmt.Errorf("store blob: %w", err)
	}

	d := models.NewDescriptor(id, name, size, hex.EncodeToString(hasher.Sum(nil)), s.Now(), mediaType)
	if err = s.MetaStorage.Save(ctx, d); err != nil {
		if delErr := s.Blobs.Delete(context.WithoutCancel(ctx), id); delErr != nil {
			s.Logger.Error().Err(delErr).Str("file_id", id.String()).Msg("orphan blob left after failed save")
		}
		return models.Descriptor{}, fmt.Errorf("save descriptor: %w", err)
	}

	s.Metrics.FileIngested()
	s.Logger.Info().
		Str("file_id", id.String()).
		Str("name", name).
		Int64("size", size).
		Str("media_type", mediaType).
		Msg("file published")

	return d, nil
}

// sanitizeName оставляет только базовое имя без управляющих символов.
func sanitizeName(name string, id uuid.UUID) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, filepath.Base(name))

	if name == "" || name == "." || name == "/" || name == ".." {
		return id.String()
	}
	return name
}

// detectMediaType сначала смотрит на расширение, затем на содержимое.
// Пустая строка: тип определить не удалось.
func detectMediaType(name string, content io.ReadSeeker) string {
	if byExt := normalizeMediaType(mime.TypeByExtension(filepath.Ext(name))); byExt != "" {
		return byExt
	}

	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return ""
	}
	detected, err := mimetype.DetectReader(content)
	if err != nil {
		return ""
	}
	return normalizeMediaType(detected.String())
}

// normalizeMediaType оставляет type/subtype и charset; octet-stream считается неизвестным типом.
func normalizeMediaType(v string) string {
	if v == "" {
		return ""
	}
	mt, params, err := mime.ParseMediaType(v)
	if err != nil || mt == octetStream {
		return ""
	}

	keep := map[string]string{}
	if cs, ok := params["charset"]; ok {
		keep["charset"] = strings.ToLower(cs)
	}
	return mime.FormatMediaType(mt, keep)
}
