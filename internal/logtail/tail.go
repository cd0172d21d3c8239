package logtail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const pollInterval = 250 * time.Millisecond

// Options controls a single Read.
type Options struct {
	// Offset is the byte position to resume from. A negative offset reads the
	// last Lines records instead.
	Offset int64
	Lines  int
	// Wait bounds how long Read polls for new records when none are pending.
	Wait time.Duration
}

// Result carries the records read and the offset to resume from.
type Result struct {
	Lines  []string
	Offset int64
}

// Read returns records from the log file at path.
func Read(ctx context.Context, path string, opts Options) (Result, error) {
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	var res Result
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		err = nil
	case err != nil:
		return Result{Offset: opts.Offset}, fmt.Errorf("stat log file: %w", err)
	case info.IsDir():
		return Result{Offset: opts.Offset}, fmt.Errorf("log path %q is a directory", path)
	case opts.Offset < 0:
		res, err = lastLines(path, opts.Lines)
	default:
		offset := opts.Offset
		if offset > info.Size() {
			// Truncated or replaced underneath us; restart from the top.
			offset = 0
		}
		res, err = readFrom(path, offset)
	}
	if err != nil || len(res.Lines) > 0 || opts.Wait == 0 {
		return res, err
	}
	return poll(ctx, path, res.Offset, opts.Wait)
}

// Follow streams records appended after the last n lines to fn until ctx is
// done.
func Follow(ctx context.Context, path string, n int, fn func(string)) error {
	res, err := Read(ctx, path, Options{Offset: -1, Lines: n})
	if err != nil {
		return err
	}
	for {
		for _, line := range res.Lines {
			fn(line)
		}
		res, err = Read(ctx, path, Options{Offset: res.Offset, Wait: time.Second})
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func lastLines(path string, limit int) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return Result{}, fmt.Errorf("seek log file: %w", err)
		}
		return Result{Offset: end}, nil
	}

	ring := make([]string, limit)
	count, next := 0, 0
	offset, err := scan(file, func(line string) {
		ring[next] = line
		next = (next + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return Result{}, err
	}

	lines := make([]string, count)
	if count == limit {
		for i := range lines {
			lines[i] = ring[(next+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return Result{Lines: lines, Offset: offset}, nil
}

func readFrom(path string, offset int64) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, nil
		}
		return Result{Offset: offset}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Result{Offset: offset}, fmt.Errorf("seek log file: %w", err)
	}
	var lines []string
	end, err := scan(file, func(line string) { lines = append(lines, line) })
	if err != nil {
		return Result{Offset: offset}, err
	}
	return Result{Lines: lines, Offset: end}, nil
}

// scan feeds complete lines to fn and returns the offset just past the last
// newline, so a record still being written is picked up by the next read.
func scan(file *os.File, fn func(string)) (int64, error) {
	start, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("determine log offset: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	consumed := start
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			consumed += int64(len(line))
			fn(line[:len(line)-1])
			continue
		}
		if errors.Is(err, io.EOF) {
			return consumed, nil
		}
		return consumed, fmt.Errorf("read log file: %w", err)
	}
}

func poll(ctx context.Context, path string, offset int64, wait time.Duration) (Result, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return Result{Offset: offset}, ctx.Err()
		case <-ticker.C:
		}
		if info, err := os.Stat(path); err == nil && info.Size() < offset {
			offset = 0
		}
		res, err := readFrom(path, offset)
		if err != nil || len(res.Lines) > 0 {
			return res, err
		}
		offset = res.Offset
		if time.Now().After(deadline) {
			return res, nil
		}
	}
}
