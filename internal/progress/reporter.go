// internal/progress/reporter.go
package progress

import (
	"os"
	"sync"
	"time"

	"github.com/klanec/pic2pin/internal/logger"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Reporter tracks and reports scan progress. The total file count is not
// known up front because discovery is lazy, so the bar runs in spinner
// mode.
type Reporter struct {
	mu             sync.Mutex
	located        int
	records        int
	skipped        int
	startTime      time.Time
	lastUpdateTime time.Time
	updateInterval time.Duration
	bar            *progressbar.ProgressBar
}

// New creates a new progress reporter. When showBar is true and stderr is a
// terminal, a progress bar is drawn; log lines carry the counts otherwise.
func New(showBar bool) *Reporter {
	r := &Reporter{
		updateInterval: 2 * time.Second,
	}
	if showBar && isatty.IsTerminal(os.Stderr.Fd()) {
		r.bar = progressbar.NewOptions64(-1,
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
	return r
}

// Start initializes the reporter.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.located = 0
	r.records = 0
	r.skipped = 0
	r.startTime = time.Now()
	r.lastUpdateTime = time.Now()
}

// Located marks a file as discovered.
func (r *Reporter) Located(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.located++
}

// Complete marks a file as having yielded a record.
func (r *Reporter) Complete(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records++
	r.updateProgress()
}

// Skip marks a file as skipped with the given reason.
func (r *Reporter) Skip(path string, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skipped++
	logger.Debug("Skipped %s: %s", path, reason)
	r.updateProgress()
}

// Finish completes the progress reporting.
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}

	duration := time.Since(r.startTime)
	logger.Info("Scan complete: %d files, %d records, %d skipped in %s",
		r.located, r.records, r.skipped, duration.Round(time.Millisecond))
}

// updateProgress updates the bar, or logs a progress line at most once per
// interval. Callers hold r.mu.
func (r *Reporter) updateProgress() {
	if r.bar != nil {
		_ = r.bar.Add(1)
		return
	}

	now := time.Now()
	if now.Sub(r.lastUpdateTime) < r.updateInterval {
		return
	}
	r.lastUpdateTime = now

	processed := r.records + r.skipped
	logger.Info("Progress: %d processed (%d records, %d skipped)",
		processed, r.records, r.skipped)
}
