package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/oxtoacart/bpool"
	"github.com/rs/zerolog"
	"github.com/sir_venger/download_lite/internal/metrics"
	"github.com/sir_venger/download_lite/internal/models"
	"github.com/sir_venger/download_lite/internal/throttle"
	"github.com/sir_venger/download_lite/pkg/downloadproto"
)

// Action — форма входа: по id (редирект на каноническое имя) или по id с именем.
type Action int

const (
	ActionServe Action = iota
	ActionRedirect
)

func (a Action) String() string {
	if a == ActionRedirect {
		return "redirect"
	}
	return "serve"
}

// Request — разобранный входящий запрос на выдачу.
type Request struct {
	Action     Action
	ID         string
	Validators models.Validators
}

// Response — готовый к записи ответ. Body не nil только для GET 200;
// вызывающий обязан его закрыть.
type Response struct {
	Status int
	Header http.Header
	Body   io.ReadCloser
}

// Storage находит файл по id; для неизвестного id возвращает models.ErrNotFound.
type Storage interface {
	Lookup(ctx context.Context, id uuid.UUID) (models.Resource, error)
}

const (
	defaultBufferSize = 32 << 10
	defaultPoolSize   = 64
)

type Deps struct {
	Storage    Storage
	Policy     throttle.Policy
	BufferSize int
	PoolSize   int
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
}

// Service — обработчик выдачи: lookup, проверка кеша, редирект или отдача.
type Service struct {
	storage Storage
	policy  throttle.Policy
	buffers *bpool.BytePool
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// New собирает сервис выдачи. Без политики скорость не ограничивается.
func New(deps Deps) *Service {
	policy := deps.Policy
	if policy == nil {
		policy = throttle.PerResponse(0, 0)
	}
	bufferSize := deps.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	poolSize := deps.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	return &Service{
		storage: deps.Storage,
		policy:  policy,
		buffers: bpool.NewBytePool(poolSize, bufferSize),
		log:     deps.Logger.With().Str("component", "delivery").Logger(),
		metrics: deps.Metrics,
	}
}

// Deliver проводит запрос через состояния Lookup → Evaluate → {Redirect | Serve}.
// Неизвестный или нераспознанный id: обычный ответ 404, а не ошибка.
// Ошибка возвращается только при сбое хранилища.
func (s *Service) Deliver(ctx context.Context, req Request) (*Response, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return notFound(), nil
	}

	res, err := s.storage.Lookup(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return notFound(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", id, err)
	}

	d := res.Descriptor
	decision := Evaluate(d, req.Validators)
	log := s.log.With().
		Str("file_id", d.ID.String()).
		Str("action", req.Action.String()).
		Str("decision", decision.String()).
		Logger()

	if req.Action == ActionRedirect && decision == Proceed {
		location := downloadproto.CanonicalPath(d.ID.String(), d.OriginalName)
		log.Trace().Str("location", location).Msg("redirect to canonical name")

		h := make(http.Header, 1)
		h.Set(HeaderLocation, location)
		return &Response{Status: http.StatusMovedPermanently, Header: h}, nil
	}

	rendered := Render(d, decision, req.Validators.Method)
	resp := &Response{Status: rendered.Status, Header: rendered.Header}
	if rendered.Body != BodyStream {
		log.Trace().Int("status", rendered.Status).Msg("headers only")
		return resp, nil
	}

	body, err := res.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrStreamOpen, d.ID, err)
	}
	resp.Body = throttle.NewReader(ctx, body, s.policy.Budget())

	log.Debug().Int64("size", d.Size).Msg("serving file")
	return resp, nil
}

func notFound() *Response {
	return &Response{Status: http.StatusNotFound, Header: http.Header{}}
}
