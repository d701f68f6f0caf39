package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ItemStatus is the outcome of ingesting one id.
type ItemStatus int

const (
	// StatusStored means the article was written to the store.
	StatusStored ItemStatus = iota
	// StatusSkipped means the source has no article for the id.
	StatusSkipped
	// StatusFailed means the id was recorded as a failure in the report.
	StatusFailed
)

func (s ItemStatus) String() string {
	switch s {
	case StatusStored:
		return "stored"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress receives per-item updates from a running pipeline.
type Progress interface {
	// Start is called once before the first item with the requested count.
	Start(total int)

	// Item is called after each id is handled.
	Item(id string, status ItemStatus, detail string)
}

// ProgressPrinter writes one line per item to a writer.
type ProgressPrinter struct {
	writer    io.Writer
	total     int
	current   int
	startTime time.Time
	started   bool
	mu        sync.Mutex
}

var _ Progress = (*ProgressPrinter)(nil)

// NewProgressPrinter creates a printer writing to writer (typically os.Stderr).
func NewProgressPrinter(writer io.Writer) *ProgressPrinter {
	return &ProgressPrinter{writer: writer}
}

// Start begins tracking progress.
func (p *ProgressPrinter) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.startTime = time.Now()
	p.started = true
}

// Item prints the outcome of one id.
func (p *ProgressPrinter) Item(id string, status ItemStatus, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.current++

	rate := 0.0
	if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}
	fmt.Fprintf(p.writer, "[%d/%d] %s %s", p.current, p.total, id, status)
	if detail != "" {
		fmt.Fprintf(p.writer, ": %s", detail)
	}
	fmt.Fprintf(p.writer, " (%.2f items/s)\n", rate)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressPrinter) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.startTime)
}

type noProgress struct{}

func (noProgress) Start(int)                       {}
func (noProgress) Item(string, ItemStatus, string) {}
