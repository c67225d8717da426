package delivery

import (
	"io"
	"net/http"
)

// Stream копирует тело в w буфером из пула и закрывает body.
// В памяти одновременно лежит не больше одного буфера; после каждой записи
// выполняется Flush, чтобы ограниченный по скорости поток доходил до клиента сразу.
func (s *Service) Stream(w io.Writer, body io.ReadCloser) (written int64, err error) {
	done := s.metrics.StreamStarted()
	defer func() {
		closeErr := body.Close()
		if err == nil {
			err = closeErr
		}
		done(written)
	}()

	buf := s.buffers.Get()
	defer s.buffers.Put(buf)

	flusher, _ := w.(http.Flusher)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			wn, writeErr := w.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, writeErr
			}
			if wn != n {
				return written, io.ErrShortWrite
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
