package source

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oblq/gauge/internal/sample"
)

var (
	// ErrNoData means no line was ready on this poll. It is not a failure.
	ErrNoData = errors.New("no data available")

	// ErrReleased is returned by Close once the transport has been released.
	ErrReleased = errors.New("source already released")
)

const (
	DefaultQueueSize = 64

	// maxLine bounds a line with no terminator, the excess is discarded.
	maxLine = 256

	// errBackoff throttles the reader after a transport error.
	errBackoff = 10 * time.Millisecond
)

// Transport is the exclusive connection to the device.
// Read may return (0, nil) when its own read timeout expires.
type Transport = io.ReadCloser

// Stats counts what happened to the device lines.
type Stats struct {
	Lines     uint64 // queued
	Dropped   uint64 // discarded on a full queue or oversize
	ReadErrs  uint64 // transient transport errors
	Malformed uint64 // lines rejected by the parser
}

// Source turns a streaming transport into a non-blocking line poll.
// A reader goroutine owns the transport reads and feeds a bounded queue,
// so TryReadLine never waits on the device.
type Source struct {
	// atomics first, 64-bit aligned on 32-bit boards
	lineCount uint64
	dropped   uint64
	readErrs  uint64
	malformed uint64

	transport Transport
	lines     chan string

	mutex      sync.Mutex
	released   bool
	done       chan struct{}
	readerDone chan struct{}
}

// New takes ownership of transport and starts reading from it.
func New(transport Transport, queueSize int) *Source {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	s := &Source{
		transport:  transport,
		lines:      make(chan string, queueSize),
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}

	go s.read()

	return s
}

// TryReadLine returns the next queued sample, ErrNoData when nothing is queued,
// or a *sample.ParseError for a malformed line.
// Calling it after Close is a programming error and panics.
func (s *Source) TryReadLine() (float64, error) {
	s.mutex.Lock()
	released := s.released
	s.mutex.Unlock()
	if released {
		panic("source: TryReadLine after release")
	}

	select {
	case line := <-s.lines:
		v, err := sample.Parse(line)
		if err != nil {
			atomic.AddUint64(&s.malformed, 1)
			return 0, err
		}
		return v, nil
	default:
		return 0, ErrNoData
	}
}

// Close releases the transport. Only the first call reaches the transport.
func (s *Source) Close() error {
	s.mutex.Lock()
	if s.released {
		s.mutex.Unlock()
		return ErrReleased
	}
	s.released = true
	close(s.done)
	s.mutex.Unlock()

	return s.transport.Close()
}

// Released reports whether Close has been called.
func (s *Source) Released() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.released
}

// ReaderDone is closed when the reader goroutine returns.
func (s *Source) ReaderDone() <-chan struct{} {
	return s.readerDone
}

func (s *Source) Stats() Stats {
	return Stats{
		Lines:     atomic.LoadUint64(&s.lineCount),
		Dropped:   atomic.LoadUint64(&s.dropped),
		ReadErrs:  atomic.LoadUint64(&s.readErrs),
		Malformed: atomic.LoadUint64(&s.malformed),
	}
}

func (s *Source) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Source) read() {
	defer close(s.readerDone)

	buf := make([]byte, 64)
	var pending []byte
	oversize := false

	for !s.stopped() {
		n, err := s.transport.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				i := bytes.IndexByte(pending, '\n')
				if i < 0 {
					break
				}
				if oversize {
					oversize = false
				} else {
					s.push(string(pending[:i]))
				}
				pending = pending[i+1:]
			}
			if len(pending) > maxLine {
				atomic.AddUint64(&s.dropped, 1)
				pending = pending[:0]
				oversize = true
			}
		}

		if err != nil {
			if err == io.EOF || s.stopped() {
				return
			}
			// transient: the next read decides
			atomic.AddUint64(&s.readErrs, 1)
			time.Sleep(errBackoff)
		}
	}
}

func (s *Source) push(line string) {
	select {
	case s.lines <- line:
		atomic.AddUint64(&s.lineCount, 1)
	default:
		atomic.AddUint64(&s.dropped, 1)
	}
}
