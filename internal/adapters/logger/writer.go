package logger

import (
	"bytes"
	"sync"
)

// LineWriter is an io.Writer that emits every complete line it receives through a
// log function. A trailing partial line is kept until it is completed or flushed.
type LineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(string)
}

// NewLineWriter returns a LineWriter calling emit for every line.
func NewLineWriter(emit func(string)) *LineWriter {
	return &LineWriter{emit: emit}
}

// Write buffers p and emits the complete lines in it.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line, put it back.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.send(line[:len(line)-1])
	}
	return len(p), nil
}

// Flush emits the remaining partial line, if any.
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.send(w.buf.String())
		w.buf.Reset()
	}
}

func (w *LineWriter) send(line string) {
	line = string(bytes.TrimRight([]byte(line), "\r"))
	if line != "" {
		w.emit(line)
	}
}
