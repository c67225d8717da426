package downloadclient

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	progressBarWidth     = 32
	progressRenderPeriod = 120 * time.Millisecond
)

// progressBar рисует ASCII-индикатор выполнения и текущую скорость.
// nil-индикатор ничего не делает, поэтому вызывающему не нужны проверки.
type progressBar struct {
	out           io.Writer
	prefix        string
	total         int64
	current       int64
	started       time.Time
	lastRender    time.Time
	lastLineWidth int
	finished      bool
	mu            sync.Mutex
}

// newProgressBar возвращает nil, если выводить некуда.
func newProgressBar(out io.Writer, prefix string, total int64) *progressBar {
	if out == nil {
		return nil
	}
	return &progressBar{
		out:     out,
		prefix:  prefix,
		total:   total,
		started: time.Now(),
	}
}

func (p *progressBar) AddBytes(n int64) {
	if p == nil || n <= 0 {
		return
	}
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return
	}
	p.current += n
	p.mu.Unlock()
	p.render(false)
}

func (p *progressBar) render(force bool) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	now := time.Now()
	if !force && now.Sub(p.lastRender) < progressRenderPeriod {
		return
	}
	p.lastRender = now
	p.writeLocked(p.lineLocked(now), "")
}

// writeLocked перерисовывает строку, затирая хвост предыдущей.
func (p *progressBar) writeLocked(line, end string) {
	padding := ""
	if p.lastLineWidth > len(line) {
		padding = strings.Repeat(" ", p.lastLineWidth-len(line))
	}
	p.lastLineWidth = len(line)
	fmt.Fprintf(p.out, "\r%s%s%s", line, padding, end)
}

func (p *progressBar) lineLocked(now time.Time) string {
	var b strings.Builder
	b.Grow(len(p.prefix) + 80)
	b.WriteString(p.prefix)
	b.WriteByte(' ')

	if p.total > 0 {
		ratio := min(float64(p.current)/float64(p.total), 1)
		filled := min(int(ratio*progressBarWidth+0.5), progressBarWidth)
		b.WriteByte('[')
		b.WriteString(strings.Repeat("=", filled))
		b.WriteString(strings.Repeat(" ", progressBarWidth-filled))
		fmt.Fprintf(&b, "] %3d%% %s/%s", int(ratio*100+0.5), humanBytes(p.current), humanBytes(p.total))
	} else {
		fmt.Fprintf(&b, "%s transferred", humanBytes(p.current))
	}

	if elapsed := now.Sub(p.started).Seconds(); elapsed > 0 {
		fmt.Fprintf(&b, " %s/s", humanBytes(int64(float64(p.current)/elapsed)))
	}

	return b.String()
}

func (p *progressBar) Finish() {
	p.complete(nil)
}

func (p *progressBar) Fail(err error) {
	if err == nil {
		err = fmt.Errorf("failed")
	}
	p.complete(err)
}

func (p *progressBar) complete(err error) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true

	line := p.lineLocked(time.Now())
	if err != nil {
		line += fmt.Sprintf(" ✗ %v", err)
	} else {
		line += " ✓"
	}
	p.writeLocked(line, "\n")
}

// countingReader сообщает индикатору о каждом прочитанном куске.
type countingReader struct {
	inner io.Reader
	bar   *progressBar
	n     int64
}

func (r *countingReader) Read(b []byte) (int, error) {
	n, err := r.inner.Read(b)
	if n > 0 {
		r.n += int64(n)
		r.bar.AddBytes(int64(n))
	}
	return n, err
}

func humanBytes(v int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	value := float64(v)
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", v, units[unit])
	}
	return fmt.Sprintf("%.1f %s", value, units[unit])
}
