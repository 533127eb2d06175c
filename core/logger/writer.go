package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter moves log output off the caller's goroutine. Lines are written in
// order and the buffer is flushed whenever the queue drains.
type asyncWriter struct {
	queue chan []byte
	flush chan chan error
	done  chan struct{}
	out   *bufio.Writer

	closeMu sync.RWMutex
	closed  bool

	errMu  sync.Mutex
	failed error
}

func newAsyncWriter(w io.Writer) *asyncWriter {
	aw := &asyncWriter{
		queue: make(chan []byte, 256),
		flush: make(chan chan error),
		done:  make(chan struct{}),
		out:   bufio.NewWriterSize(w, 32*1024),
	}
	go aw.loop()
	return aw
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case p, ok := <-w.queue:
			if !ok {
				w.fail(w.out.Flush())
				return
			}
			if _, err := w.out.Write(p); err != nil {
				w.fail(err)
			}
			if len(w.queue) == 0 {
				w.fail(w.out.Flush())
			}
		case ack := <-w.flush:
			ack <- w.out.Flush()
		}
	}
}

// Write queues a copy of p. It blocks while the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.queue <- append([]byte(nil), p...)
	return nil
}

// Flush returns once every line queued before the call is written out.
func (w *asyncWriter) Flush() error {
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		return w.err()
	}
	ack := make(chan error, 1)
	w.flush <- ack
	if err := <-ack; err != nil {
		return err
	}
	return w.err()
}

// Close drains the queue and reports the first write error.
func (w *asyncWriter) Close() error {
	w.closeMu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.closeMu.Unlock()
	<-w.done
	return w.err()
}

func (w *asyncWriter) err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.failed
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.failed == nil {
		w.failed = err
	}
}
