package blob

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// GC удаляет брошенные незавершённые записи: *.partial в каталоге данных
// и временные файлы приёма в staging-каталоге.
type GC struct {
	dirs []string
	ttl  time.Duration
	log  zerolog.Logger
	now  func() time.Time
}

// NewGC создаёт сборщик для перечисленных каталогов.
func NewGC(ttl time.Duration, logger zerolog.Logger, dirs ...string) *GC {
	return &GC{
		dirs: dirs,
		ttl:  ttl,
		log:  logger.With().Str("component", "gc").Logger(),
		now:  time.Now,
	}
}

// Start запускает периодическую очистку и возвращает функцию остановки.
func (g *GC) Start(every time.Duration) func() {
	if every <= 0 || g.ttl <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				_, _ = g.Sweep()
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}

// Sweep делает один проход и возвращает число удалённых файлов.
// ttl <= 0 отключает сборку.
func (g *GC) Sweep() (int, error) {
	if g.ttl <= 0 {
		return 0, nil
	}

	var (
		removed int
		errs    []error
	)
	for _, dir := range g.dirs {
		n, err := g.sweepDir(dir)
		removed += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	if removed > 0 {
		g.log.Info().Int("removed", removed).Msg("stale partial files removed")
	}
	err := errors.Join(errs...)
	if err != nil {
		g.log.Error().Err(err).Msg("gc sweep failed")
	}

	return removed, err
}

func (g *GC) sweepDir(dir string) (int, error) {
	if dir == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	now := g.now()
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !isAbandoned(e.Name()) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < g.ttl {
			continue
		}

		if err = os.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}

func isAbandoned(name string) bool {
	if strings.HasSuffix(name, PartialSuffix) {
		return true
	}
	ok, _ := filepath.Match(StagingPattern, name)
	return ok
}
