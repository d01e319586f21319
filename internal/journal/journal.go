package journal

import (
	"bufio"
	"errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eternalApril/respkit/resp"
)

// ErrClosed is returned by Append after Close
var ErrClosed = errors.New("journal: closed")

type fsyncStrategy int

const (
	fsyncAlways fsyncStrategy = iota + 1
	fsyncEverySec
	fsyncNo
)

// Options tune a Journal. Zero values fall back to defaults
type Options struct {
	Fsync      string // always, everysec, no
	QueueSize  int
	BufferSize int
}

// Journal appends RESP encoded values to a file. Values are encoded by the
// caller's goroutine and written by a background goroutine
type Journal struct {
	file     *os.File
	writer   *bufio.Writer
	filename string
	strategy fsyncStrategy

	records chan []byte

	mu     sync.RWMutex // guards closed against concurrent Append and Close
	closed bool

	wg       sync.WaitGroup
	writeErr error // first write error, reported by Close
	logger   *zap.Logger
}

// Open opens filename for appending, creating it if needed, and starts the background writer
func Open(filename string, opts Options, logger *zap.Logger) (*Journal, error) {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 4096
	}

	// open file in Append mode, Create if not exists, Read/Write
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}

	j := &Journal{
		file:     f,
		writer:   bufio.NewWriterSize(f, opts.BufferSize),
		filename: filename,
		strategy: parseStrategy(opts.Fsync),
		records:  make(chan []byte, opts.QueueSize), // buffer for burst writes
		logger:   logger,
	}

	// background disk writer
	j.wg.Add(1)
	go j.listen()

	logger.Debug("journal opened",
		zap.String("file", filename),
		zap.String("fsync", opts.Fsync),
	)

	return j, nil
}

// Append encodes v and queues it for writing. Encoding errors are returned
// immediately and nothing is queued. If the queue is full, Append blocks
func (j *Journal) Append(v any) error {
	payload, err := resp.Marshal(v)
	if err != nil {
		return err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return ErrClosed
	}
	j.records <- payload
	appendsTotal.Inc()
	return nil
}

func (j *Journal) listen() {
	defer j.wg.Done()

	var tick <-chan time.Time
	if j.strategy == fsyncEverySec {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case p, ok := <-j.records:
			if !ok {
				j.sync()
				return
			}
			if _, err := j.writer.Write(p); err != nil {
				j.fail("journal write error", err)
				continue
			}
			bytesTotal.Add(len(p))

			if j.strategy == fsyncAlways {
				j.sync()
			}

		case <-tick:
			j.sync()
		}
	}
}

// sync flushes the buffer and, unless fsync is disabled, forces the file to disk
func (j *Journal) sync() {
	if err := j.writer.Flush(); err != nil {
		j.fail("journal flush error", err)
		return
	}
	if j.strategy == fsyncNo {
		return
	}
	if err := j.file.Sync(); err != nil {
		j.fail("journal fsync error", err)
		return
	}
	fsyncsTotal.Inc()
}

func (j *Journal) fail(msg string, err error) {
	writeErrorsTotal.Inc()
	j.logger.Error(msg, zap.String("file", j.filename), zap.Error(err))
	if j.writeErr == nil {
		j.writeErr = err
	}
}

// Close writes every queued value, syncs the file and closes it
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return ErrClosed
	}
	j.closed = true
	close(j.records)
	j.mu.Unlock()

	j.wg.Wait() // wait for background routine to finish last flush

	if err := j.file.Close(); err != nil && j.writeErr == nil {
		return err
	}
	return j.writeErr
}

func parseStrategy(s string) fsyncStrategy {
	switch s {
	case "always":
		return fsyncAlways
	case "no":
		return fsyncNo
	default:
		return fsyncEverySec
	}
}
