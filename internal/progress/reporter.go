package progress

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer

	// Source is the dataset endpoint being fetched (for display).
	Source string
}

// Reporter accumulates run statistics and renders human-readable progress.
// The pipeline is strictly sequential, so the reporter is synchronous: it is
// updated inline from the single thread of control.
type Reporter struct {
	opts Options

	startTime time.Time
	pages     int
	records   int
	skipped   int
	shards    int
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Reporter{opts: opts}
}

// Start marks the beginning of a run and prints the header.
func (r *Reporter) Start() {
	r.startTime = time.Now()
	fmt.Fprintf(r.opts.Output, "[gamelist] Fetching: %s\n", r.opts.Source)
}

// PageFetched records one fetched page.
func (r *Reporter) PageFetched(offset, count int) {
	r.pages++
	r.records += count
	fmt.Fprintf(r.opts.Output, "\r[gamelist] Records: %d | Pages: %d | Offset: %d    ",
		r.records, r.pages, offset)
}

// SetSkipped records the number of records excluded from the search index.
func (r *Reporter) SetSkipped(n int) {
	r.skipped = n
}

// SetShards records the number of shard files written.
func (r *Reporter) SetShards(n int) {
	r.shards = n
}

// Finish prints the final run summary.
func (r *Reporter) Finish() {
	duration := time.Since(r.startTime)
	rate := 0.0
	if secs := duration.Seconds(); secs > 0 {
		rate = float64(r.records) / secs
	}

	fmt.Fprintf(r.opts.Output, "\r[gamelist] Records: %d | Pages: %d | Complete!          \n",
		r.records, r.pages)
	fmt.Fprintf(r.opts.Output, "[gamelist] Shards: %d | Index skips: %d\n",
		r.shards, r.skipped)
	fmt.Fprintf(r.opts.Output, "[gamelist] Total time: %s | Average rate: %.0f records/s\n",
		formatDuration(duration), rate)
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%.1fh", d.Hours())
	case d >= time.Minute:
		return fmt.Sprintf("%.1fm", d.Minutes())
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
