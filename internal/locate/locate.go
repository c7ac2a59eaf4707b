// internal/locate/locate.go
package locate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klanec/pic2pin/internal/logger"
	"github.com/klanec/pic2pin/pkg/common"
)

// Entry is one item in the discovery sequence: either a candidate file
// path, or a path that could not be visited.
type Entry struct {
	Path string
	Err  error
}

// Files walks the given root paths and yields candidate files on the
// returned channel, in a deterministic order: roots in the order given,
// directory entries lexicographically. A root that names a file is yielded
// as-is; content, not extension, decides image-ness downstream. Symlinked
// directories are not descended into, so cycles cannot cause
// non-termination. Unreachable paths yield an Entry with Err set rather
// than aborting the walk. The channel closes when discovery is complete or
// ctx is cancelled; callers abort a run by cancelling and draining.
func Files(ctx context.Context, roots []string, recursive bool) (<-chan Entry, error) {
	if len(roots) == 0 {
		return nil, common.NewUsageError("no input paths given")
	}

	out := make(chan Entry)
	go func() {
		defer close(out)
		for _, root := range roots {
			if ctx.Err() != nil {
				return
			}
			walkRoot(ctx, root, recursive, out)
		}
	}()
	return out, nil
}

func walkRoot(ctx context.Context, root string, recursive bool, out chan<- Entry) {
	info, err := os.Stat(root)
	if err != nil {
		emit(ctx, out, Entry{Path: root, Err: err})
		return
	}

	if !info.IsDir() {
		emit(ctx, out, Entry{Path: root})
		return
	}

	if recursive {
		// WalkDir does not follow symlinks and visits entries in
		// lexical order.
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return fs.SkipAll
			}
			if err != nil {
				logger.Warn("Skipping %s: %v", path, err)
				emit(ctx, out, Entry{Path: path, Err: err})
				return nil
			}
			if d.Type().IsRegular() {
				emit(ctx, out, Entry{Path: path})
			}
			return nil
		})
		if err != nil {
			emit(ctx, out, Entry{Path: root, Err: err})
		}
		return
	}

	// ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(root)
	if err != nil {
		emit(ctx, out, Entry{Path: root, Err: err})
		return
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		if e.Type().IsRegular() {
			emit(ctx, out, Entry{Path: filepath.Join(root, e.Name())})
		}
	}
}

func emit(ctx context.Context, out chan<- Entry, e Entry) {
	select {
	case out <- e:
	case <-ctx.Done():
	}
}
