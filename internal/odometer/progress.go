package odometer

import "sync/atomic"

// Progress holds live counters updated while a run walks the corpus.
// All fields are atomic so the HTTP status handler can read them while the
// run goroutine writes them.
type Progress struct {
	FilesProcessed  atomic.Int64
	FilesSkipped    atomic.Int64
	CacheHits       atomic.Int64
	CacheMisses     atomic.Int64
	LinesRead       atomic.Int64
	RecordsAccepted atomic.Int64
	LinesSkipped    atomic.Int64 // bar record present, timestamp unparsable
}
