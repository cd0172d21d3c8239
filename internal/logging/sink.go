package logging

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gofrs/flock"

	"disklog/internal/config"
)

// ErrMissingLogFile is returned when logging is enabled without a log file.
var ErrMissingLogFile = errors.New("log file is not specified")

// SinkError reports a log file that could not be opened.
type SinkError struct {
	Path string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("failed to open %s log-file: %v", e.Path, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// FileSink is an append-only log file behind a write buffer. A mutex
// serializes writers inside the process; an advisory file lock is held while
// buffered bytes reach the file so other processes appending to the same
// path never see a partial record.
type FileSink struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	lock   *flock.Flock
	buf    *bufio.Writer
	closed bool
}

// OpenFileSink opens path for appending, creating it when absent. Parent
// directories are not created and existing content is never truncated.
func OpenFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, &SinkError{Path: path, Err: err}
	}
	sink := &FileSink{
		path: path,
		file: file,
		lock: flock.New(path),
	}
	sink.buf = bufio.NewWriter(lockedFile{file: file, lock: sink.lock})
	return sink, nil
}

// Path returns the file the sink appends to.
func (s *FileSink) Path() string {
	return s.path
}

// Write buffers one formatted record. The whole slice is written under the
// sink mutex so concurrent records never interleave.
func (s *FileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, os.ErrClosed
	}
	return s.buf.Write(p)
}

// Flush pushes buffered records to the file.
func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.buf.Flush()
}

// Close flushes and closes the file. Further writes fail with os.ErrClosed.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	_ = s.lock.Close()
	return errors.Join(flushErr, closeErr)
}

// lockedFile takes the advisory lock around each write the buffer issues.
// When the lock cannot be acquired (for example on filesystems without
// flock support) the write proceeds unlocked; O_APPEND still keeps each
// write at the end of the file.
type lockedFile struct {
	file *os.File
	lock *flock.Flock
}

func (w lockedFile) Write(p []byte) (int, error) {
	if err := w.lock.Lock(); err == nil {
		defer func() { _ = w.lock.Unlock() }()
	}
	return w.file.Write(p)
}

// BuildSink builds the Active layer described by cfg. It returns nil and no
// error when logging is not enabled; that path never touches the
// filesystem.
func BuildSink(cfg config.Logging) (*FileHandler, error) {
	if !cfg.IsEnabled() {
		return nil, nil
	}
	if cfg.LogFile == nil {
		return nil, ErrMissingLogFile
	}
	sink, err := OpenFileSink(*cfg.LogFile)
	if err != nil {
		return nil, err
	}
	return NewFileHandler(sink, cfg.ResolvedSpanEvents()), nil
}
