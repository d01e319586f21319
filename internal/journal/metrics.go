package journal

import "github.com/VictoriaMetrics/metrics"

var (
	appendsTotal     = metrics.NewCounter(`respkit_journal_appends_total`)
	bytesTotal       = metrics.NewCounter(`respkit_journal_written_bytes_total`)
	fsyncsTotal      = metrics.NewCounter(`respkit_journal_fsyncs_total`)
	writeErrorsTotal = metrics.NewCounter(`respkit_journal_write_errors_total`)
	replayedTotal    = metrics.NewCounter(`respkit_journal_replayed_values_total`)
	truncatedTotal   = metrics.NewCounter(`respkit_journal_truncated_tails_total`)
)
