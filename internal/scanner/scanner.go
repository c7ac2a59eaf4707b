// internal/scanner/scanner.go
package scanner

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"sort"

	"github.com/klanec/pic2pin/internal/geo"
	"github.com/klanec/pic2pin/internal/locate"
	"github.com/klanec/pic2pin/internal/logger"
	"github.com/klanec/pic2pin/internal/metadata"
	"github.com/klanec/pic2pin/internal/progress"
	"github.com/klanec/pic2pin/internal/worker"
	"github.com/klanec/pic2pin/pkg/models"
)

// Scanner runs the per-file decode→normalize→assemble chain over a
// discovery sequence and aggregates the outcomes.
type Scanner struct {
	ctx      context.Context
	pool     *worker.Pool
	progress *progress.Reporter
}

// New creates a Scanner processing up to concurrency files at a time.
func New(ctx context.Context, concurrency int, reporter *progress.Reporter) *Scanner {
	return &Scanner{
		ctx:      ctx,
		pool:     worker.NewPool(concurrency),
		progress: reporter,
	}
}

// indexed tags an outcome with its discovery position so workers can run in
// any order and the aggregate still comes out in discovery order.
type indexed struct {
	index   int
	outcome models.Outcome
}

// Scan consumes the discovery sequence and returns one outcome per entry,
// in discovery order. Files are processed independently; corruption in one
// never aborts the rest. Cancelling the context stops pulling new entries,
// while in-flight files are allowed to finish.
func (s *Scanner) Scan(entries <-chan locate.Entry) []models.Outcome {
	s.progress.Start()

	results := make(chan indexed)
	collected := make(chan []models.Outcome)

	go func() {
		var buf []indexed
		for r := range results {
			buf = append(buf, r)
		}
		sort.Slice(buf, func(i, j int) bool { return buf[i].index < buf[j].index })
		outcomes := make([]models.Outcome, len(buf))
		for i, r := range buf {
			outcomes[i] = r.outcome
		}
		collected <- outcomes
	}()

	index := 0
	for entry := range entries {
		if s.ctx.Err() != nil {
			// Drain so the locator can shut down.
			for range entries {
			}
			break
		}

		s.progress.Located(entry.Path)
		i, e := index, entry
		index++

		s.pool.Submit(func() {
			results <- indexed{index: i, outcome: s.process(e)}
		})
	}

	s.pool.Wait()
	close(results)

	outcomes := <-collected
	s.progress.Finish()
	return outcomes
}

// process maps one discovery entry to its outcome.
func (s *Scanner) process(entry locate.Entry) models.Outcome {
	out := models.Outcome{Path: entry.Path}

	if entry.Err != nil {
		out.Skip, out.Detail = pathSkip(entry.Err)
		s.progress.Skip(entry.Path, string(out.Skip))
		return out
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		out.Skip, out.Detail = pathSkip(err)
		s.progress.Skip(entry.Path, string(out.Skip))
		return out
	}

	// The fingerprint identifies the file for display and dedup even when
	// it yields no coordinate.
	sum := sha256.Sum256(data)
	out.Fingerprint = hex.EncodeToString(sum[:])

	ts, err := metadata.DecodeGPS(data)
	if err != nil {
		out.Skip, out.Detail = decodeSkip(err)
		s.progress.Skip(entry.Path, string(out.Skip))
		return out
	}

	coord, err := geo.Normalize(ts)
	if err != nil {
		out.Skip, out.Detail = normalizeSkip(err)
		s.progress.Skip(entry.Path, string(out.Skip))
		return out
	}

	record := &models.FileRecord{
		Path:        entry.Path,
		Fingerprint: out.Fingerprint,
		Coordinate:  coord,
	}
	if info := metadata.ReadCamera(bytes.NewReader(data)); info != nil {
		record.Taken = info.Taken
		record.CameraMake = info.Make
		record.CameraModel = info.Model
	}

	out.Record = record
	logger.Debug("Located %s at %s", entry.Path, coord)
	s.progress.Complete(entry.Path)
	return out
}

func pathSkip(err error) (models.SkipReason, string) {
	if errors.Is(err, os.ErrNotExist) {
		return models.SkipPathNotFound, err.Error()
	}
	return models.SkipPathUnreadable, err.Error()
}

func decodeSkip(err error) (models.SkipReason, string) {
	switch {
	case errors.Is(err, metadata.ErrNoContainer):
		return models.SkipNoMetadataContainer, err.Error()
	case errors.Is(err, metadata.ErrNoGPSGroup):
		return models.SkipNoGPSGroup, err.Error()
	default:
		return models.SkipCorruptedMetadata, err.Error()
	}
}

func normalizeSkip(err error) (models.SkipReason, string) {
	var refErr *geo.InvalidReferenceError
	var rangeErr *geo.OutOfRangeError
	switch {
	case errors.As(err, &refErr):
		return models.SkipInvalidReference, err.Error()
	case errors.As(err, &rangeErr):
		return models.SkipCoordinateOutOfRange, err.Error()
	default:
		// Zero denominators surface here when normalization touches a
		// rational the decoder did not need to validate.
		return models.SkipCorruptedMetadata, err.Error()
	}
}
