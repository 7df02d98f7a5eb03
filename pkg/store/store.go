// Package store appends readings to an append-only text log.
//
// A write opens the log, appends one line, flushes it to the medium and
// closes it again. Opening is retried a bounded number of times; when every
// attempt fails the reading is dropped. Nothing is queued for later cycles.
package store

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/itohio/gobatt/pkg/sample"
)

const (
	// DefaultMaxAttempts is the number of open attempts per append.
	DefaultMaxAttempts = 3
	// DefaultRetryDelay is the wait after each failed open.
	DefaultRetryDelay = 100 * time.Millisecond
)

// ErrOpen is returned when the log could not be opened within the attempt budget.
var ErrOpen = errors.New("store: could not open log")

// File is an open append-only handle.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// Opener opens the log for appending.
type Opener interface {
	Open() (File, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func() (File, error)

// Open calls f.
func (f OpenerFunc) Open() (File, error) { return f() }

// FileOpener opens a file on the local filesystem in append mode.
type FileOpener struct {
	Path string
}

// Open opens (creating if needed) the file for appending.
func (o FileOpener) Open() (File, error) {
	f, err := os.OpenFile(o.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// AttemptOpen calls open up to maxAttempts times and returns the first handle.
// sleep(delay) is called after every failed attempt. When all attempts fail the
// returned error wraps ErrOpen and the last cause.
func AttemptOpen(maxAttempts int, delay time.Duration, open func() (File, error), sleep func(time.Duration)) (File, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		f, err := open()
		if err == nil {
			return f, nil
		}
		lastErr = err
		sleep(delay)
	}
	if lastErr == nil {
		return nil, ErrOpen
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrOpen, maxAttempts, lastErr)
}

// Logger appends readings with bounded retry.
type Logger struct {
	opener      Opener
	maxAttempts int
	delay       time.Duration
	sleep       func(time.Duration)
}

// New creates a Logger. Zero values select the defaults.
func New(opener Opener, maxAttempts int, delay time.Duration) *Logger {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	return &Logger{
		opener:      opener,
		maxAttempts: maxAttempts,
		delay:       delay,
		sleep:       time.Sleep,
	}
}

// Append writes one line for r. The handle is released before returning.
func (l *Logger) Append(r sample.Reading) error {
	f, err := AttemptOpen(l.maxAttempts, l.delay, l.opener.Open, func(d time.Duration) {
		log.Printf("Failed to open log file, retrying...")
		l.sleep(d)
	})
	if err != nil {
		return err
	}

	_, werr := io.WriteString(f, Format(r))
	serr := f.Sync()
	cerr := f.Close()
	if err := errors.Join(werr, serr, cerr); err != nil {
		return fmt.Errorf("store: write failed: %w", err)
	}
	return nil
}

// Format renders r as a log line: "<timestamp>, <volts with 2 decimals>\n".
func Format(r sample.Reading) string {
	return fmt.Sprintf("%s, %.2f\n", r.Timestamp, r.Voltage)
}

// Probe checks once that the log can be opened. It is meant for boot time.
func Probe(o Opener) error {
	f, err := o.Open()
	if err != nil {
		return fmt.Errorf("store: init failed: %w", err)
	}
	return f.Close()
}
