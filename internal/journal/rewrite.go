package journal

import (
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/eternalApril/respkit/resp"
)

// Rewrite atomically replaces filename with a journal holding exactly values.
// The new content is written to a temporary file, synced and renamed over the old one
func Rewrite(filename string, values []resp.Value, logger *zap.Logger) error {
	start := time.Now()
	tmpFile := filename + ".tmp"

	f, err := os.Create(tmpFile)
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile) //nolint:errcheck // no-op after a successful rename
	defer f.Close()          //nolint:errcheck

	enc := resp.NewEncoder(f)
	for _, v := range values {
		if err := enc.Write(v); err != nil {
			return err
		}
	}

	if err := enc.Flush(); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpFile, filename); err != nil {
		return err
	}

	logger.Info("journal rewritten",
		zap.String("file", filename),
		zap.Int("values", len(values)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Compact drops a truncated tail from filename, keeping every complete value.
// It returns the replay it compacted from
func Compact(filename string, logger *zap.Logger) (Replay, error) {
	r, err := Load(filename, logger)
	if err != nil {
		return Replay{}, err
	}
	if err := Rewrite(filename, r.Values, logger); err != nil {
		return Replay{}, err
	}
	return r, nil
}
