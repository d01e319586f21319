package journal

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/eternalApril/respkit/resp"
)

// Replay is the content of a journal file
type Replay struct {
	Values []resp.Value
	// Size is the length of the prefix holding complete values
	Size int
	// Truncated is the length of an incomplete value at the end of the file,
	// left behind by a crash mid-write. Zero when the file ends cleanly
	Truncated int
}

// Load reads the whole journal file and decodes every value in it.
// A missing file is an empty journal. An incomplete value at the end is
// reported in Replay.Truncated; any other malformed value is an error
func Load(filename string, logger *zap.Logger) (Replay, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return Replay{}, nil // Fresh start
		}
		return Replay{}, err
	}

	dec := resp.NewDecoder(data)
	var r Replay

	for dec.More() {
		val, err := dec.Read()
		if err != nil {
			if truncated(err, data) {
				r.Truncated = dec.Buffered()
				break
			}
			return Replay{}, fmt.Errorf("journal %s: %w", filename, err)
		}
		r.Values = append(r.Values, val)
	}
	r.Size = dec.Offset()

	replayedTotal.Add(len(r.Values))
	if r.Truncated > 0 {
		truncatedTotal.Inc()
		logger.Warn("journal has a truncated tail",
			zap.String("file", filename),
			zap.Int("offset", r.Size),
			zap.Int("bytes", r.Truncated),
		)
	}

	logger.Debug("journal loaded",
		zap.String("file", filename),
		zap.Int("values", len(r.Values)),
	)
	return r, nil
}

// truncated reports whether err comes from data ending in the middle of a value.
// A line cut before its terminator fails with a line kind rather than KindEOF
func truncated(err error, data []byte) bool {
	var e *resp.Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case resp.KindEOF:
		return true
	case resp.KindExpectedSimpleString, resp.KindExpectedCRLF:
		return e.Offset >= 0 && e.Offset <= len(data) && bytes.IndexByte(data[e.Offset:], '\n') < 0
	}
	return false
}
