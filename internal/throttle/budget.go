// Package throttle ограничивает скорость чтения потоков через token bucket.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Budget — бюджет скорости в байтах. WaitN блокирует вызывающего, пока не накопится n байт.
// *rate.Limiter удовлетворяет интерфейсу и безопасен для конкурентного использования.
type Budget interface {
	WaitN(ctx context.Context, n int) error
	Burst() int
}

// NewBudget создаёт бюджет bytesPerSecond с ёмкостью burst.
// bytesPerSecond <= 0: без ограничения; burst <= 0: одна секунда трафика.
// Bucket стартует пустым: N байт уходят не быстрее чем за N/bytesPerSecond.
func NewBudget(bytesPerSecond int64, burst int) *rate.Limiter {
	if bytesPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = int(min(bytesPerSecond, int64(maxBurst)))
	}
	burst = max(burst, 1)

	l := rate.NewLimiter(rate.Limit(bytesPerSecond), burst)
	l.ReserveN(time.Now(), burst)
	return l
}

const maxBurst = 1 << 30

// Policy выдаёт бюджет для очередного ответа.
type Policy interface {
	Budget() Budget
}

type shared struct {
	budget Budget
}

// Shared возвращает политику с одним общим бюджетом на все ответы.
func Shared(budget Budget) Policy {
	return shared{budget: budget}
}

func (s shared) Budget() Budget { return s.budget }

type perResponse struct {
	bytesPerSecond int64
	burst          int
}

// PerResponse возвращает политику, создающую новый бюджет на каждый ответ.
func PerResponse(bytesPerSecond int64, burst int) Policy {
	return perResponse{bytesPerSecond: bytesPerSecond, burst: burst}
}

func (p perResponse) Budget() Budget {
	return NewBudget(p.bytesPerSecond, p.burst)
}
