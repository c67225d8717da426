package throttle

import (
	"context"
	"io"
	"sync"
)

// Reader оборачивает источник байтов и перед каждым чтением ждёт бюджет.
// Skip, Remaining и Close идут мимо бюджета.
type Reader struct {
	ctx    context.Context
	src    io.ReadCloser
	budget Budget

	closeOnce sync.Once
	closeErr  error
}

var (
	_ io.ReadCloser = (*Reader)(nil)
	_ io.ByteReader = (*Reader)(nil)
)

// NewReader создаёт ограниченный поток. ctx прерывает ожидание бюджета.
func NewReader(ctx context.Context, src io.ReadCloser, budget Budget) *Reader {
	return &Reader{
		ctx:    ctx,
		src:    src,
		budget: budget,
	}
}

// Read ждёт len(p) байт бюджета и читает из источника.
// Запрос длиннее burst урезается до burst, иначе лимитер его никогда не обслужит.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return r.src.Read(p)
	}
	if b := r.budget.Burst(); b > 0 && len(p) > b {
		p = p[:b]
	}
	if err := r.budget.WaitN(r.ctx, len(p)); err != nil {
		return 0, err
	}

	return r.src.Read(p)
}

// ReadByte читает один байт, расходуя один байт бюджета.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.budget.WaitN(r.ctx, 1); err != nil {
		return 0, err
	}
	if br, ok := r.src.(io.ByteReader); ok {
		return br.ReadByte()
	}

	var b [1]byte
	if _, err := io.ReadFull(r.src, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// Skip пропускает до n байт без учёта в бюджете и возвращает число пропущенных.
func (r *Reader) Skip(n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	if s, ok := r.src.(io.Seeker); ok {
		cur, err := s.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		end, err := s.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, err
		}
		target := min(cur+n, end)
		if _, err = s.Seek(target, io.SeekStart); err != nil {
			return 0, err
		}
		return target - cur, nil
	}

	return io.CopyN(io.Discard, r.src, n)
}

// Remaining возвращает число оставшихся байт, если источник умеет его сообщить.
func (r *Reader) Remaining() (int64, bool) {
	switch s := r.src.(type) {
	case interface{ Len() int }:
		return int64(s.Len()), true
	case io.Seeker:
		cur, err := s.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, false
		}
		end, err := s.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, false
		}
		if _, err = s.Seek(cur, io.SeekStart); err != nil {
			return 0, false
		}
		return end - cur, true
	}
	return 0, false
}

// Close закрывает источник ровно один раз.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.src.Close()
	})
	return r.closeErr
}
