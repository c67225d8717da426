// Package downloadclient — HTTP-клиент сервиса выдачи: загрузка файлов
// и условное скачивание с учётом ETag и Last-Modified.
package downloadclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/sir_venger/download_lite/pkg/downloadproto"
)

var (
	ErrNotFound = errors.New("file not found")
	// ErrTruncated — тело короче заявленного Content-Length.
	ErrTruncated = errors.New("download truncated")
)

// Validators — сохранённые от прошлого скачивания валидаторы.
type Validators struct {
	ETag         string
	LastModified time.Time
}

// Result описывает исход скачивания.
type Result struct {
	NotModified bool
	Name        string
	Size        int64
	ContentType string
	Validators  Validators
}

type Client struct {
	c        *http.Client
	progress io.Writer
}

type Option func(*Client)

// WithHTTPClient подменяет http.Client (таймауты, транспорт).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.c = c }
}

// WithProgress включает индикатор выполнения в w.
func WithProgress(w io.Writer) Option {
	return func(cl *Client) { cl.progress = w }
}

// New создаёт HTTP-клиент по умолчанию.
func New(opts ...Option) *Client {
	cl := &Client{c: &http.Client{}}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Upload публикует содержимое r под именем name. size < 0: длина неизвестна.
func (h *Client) Upload(ctx context.Context, baseURL, name string, r io.Reader, size int64) (downloadproto.UploadResponse, error) {
	bar := newProgressBar(h.progress, fmt.Sprintf("Uploading %s", name), size)
	body := io.Reader(&countingReader{inner: r, bar: bar})

	u := downloadproto.JoinURL(baseURL, downloadproto.RouteFiles) + "?" +
		url.Values{downloadproto.QueryFileName: {name}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		bar.Fail(err)
		return downloadproto.UploadResponse{}, err
	}
	if size >= 0 {
		req.ContentLength = size
	}
	req.Header.Set(downloadproto.HeaderFileName, name)
	bar.render(true)

	resp, err := h.c.Do(req)
	if err != nil {
		bar.Fail(err)
		return downloadproto.UploadResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		err = fmt.Errorf("upload failed: %s", resp.Status)
		bar.Fail(err)
		return downloadproto.UploadResponse{}, err
	}

	var out downloadproto.UploadResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		bar.Fail(err)
		return downloadproto.UploadResponse{}, fmt.Errorf("decode upload response: %w", err)
	}

	bar.Finish()
	return out, nil
}

// Download выполняет условный GET /download/{id}, следует редиректу на каноническое
// имя и пишет тело в w. Если сервер ответил 304, w не трогается и Result.NotModified = true.
func (h *Client) Download(ctx context.Context, baseURL, id string, cached Validators, w io.Writer) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadproto.JoinURL(baseURL, downloadproto.ShortPath(id)), nil)
	if err != nil {
		return Result{}, err
	}
	if cached.ETag != "" {
		req.Header.Set("If-None-Match", cached.ETag)
	}
	if !cached.LastModified.IsZero() {
		req.Header.Set("If-Modified-Since", cached.LastModified.UTC().Format(http.TimeFormat))
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	res := resultFrom(resp)
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		res.NotModified = true
		return res, nil
	case http.StatusNotFound:
		return Result{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	default:
		return Result{}, fmt.Errorf("download failed: %s", resp.Status)
	}

	bar := newProgressBar(h.progress, fmt.Sprintf("Downloading %s", res.Name), resp.ContentLength)
	bar.render(true)

	n, err := io.Copy(w, &countingReader{inner: resp.Body, bar: bar})
	if err == nil && resp.ContentLength >= 0 && n != resp.ContentLength {
		err = fmt.Errorf("%w: got %d of %d bytes", ErrTruncated, n, resp.ContentLength)
	}
	if err != nil {
		bar.Fail(err)
		return Result{}, err
	}

	bar.Finish()
	res.Size = n
	return res, nil
}

func resultFrom(resp *http.Response) Result {
	res := Result{
		Size:        resp.ContentLength,
		ContentType: resp.Header.Get("Content-Type"),
		Validators:  Validators{ETag: resp.Header.Get("ETag")},
	}
	if t, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		res.Validators.LastModified = t
	}
	if resp.Request != nil && resp.Request.URL != nil {
		if name, err := url.PathUnescape(path.Base(resp.Request.URL.EscapedPath())); err == nil {
			res.Name = name
		}
	}

	return res
}
