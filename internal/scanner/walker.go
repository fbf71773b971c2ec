// internal/scanner/walker.go
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mtoohey31/uncommitted/internal/config"
	"github.com/mtoohey31/uncommitted/internal/errors"
	"github.com/mtoohey31/uncommitted/internal/log"
	"github.com/mtoohey31/uncommitted/internal/model"
)

// Walker scans directory trees with a fixed pool of workers sharing one
// work queue. Working-copy roots are leaves: their status command runs and
// nothing below them is visited.
type Walker struct {
	cfg        *config.Config
	classifier *Classifier
	runner     Runner
	handler    Handler
}

var _ Scanner = (*Walker)(nil)

func NewWalker(cfg *config.Config, runner Runner, handler Handler) *Walker {
	return &Walker{
		cfg:        cfg,
		classifier: NewClassifier(model.DefaultVCS),
		runner:     runner,
		handler:    handler,
	}
}

// WithVCS replaces the detection table.
func (w *Walker) WithVCS(table []model.VCS) *Walker {
	w.classifier = NewClassifier(table)
	return w
}

// Scan walks every root until no work remains or the first error. Roots
// are validated before any worker starts. Status commands already running
// when another worker fails are allowed to finish.
func (w *Walker) Scan(ctx context.Context, roots []string) (ScanResult, error) {
	var result ScanResult
	start := time.Now()
	logger := log.Named(ctx, "scanner")

	resolved, err := ResolveRoots(roots)
	if err != nil {
		return result, err
	}

	var (
		queue   = newWorkQueue(resolved)
		abort   = errors.NewAbort()
		wg      sync.WaitGroup
		visited = newVisitedSet(w.cfg.FollowSymlinks)
		stats   counters
	)
	abort.OnAbort(queue.close)

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			abort.Fail(errors.WithStackTrace(ctx.Err()))
		case <-abort.Done():
		case <-stop:
		}
	}()

	workers := w.cfg.Workers()
	logger.Debug().Int("workers", workers).Strs("roots", resolved).Msg("scan started")

	for id := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer errors.Recover(func(cause error) { abort.Fail(cause) })
			w.work(ctx, id, queue, abort, visited, &stats)
		}()
	}

	wg.Wait()
	close(stop)

	result = stats.snapshot()
	result.Duration = time.Since(start).Milliseconds()

	if err := abort.Err(); err != nil {
		logger.Debug().Err(err).Msg("scan aborted")
		return result, err
	}

	logger.Debug().
		Int64("classified", result.Classified).
		Int64("matched", result.Matched).
		Int64("duration_ms", result.Duration).
		Msg("scan complete")
	return result, nil
}

func (w *Walker) work(ctx context.Context, id int, queue *workQueue, abort *errors.Abort, visited *visitedSet, stats *counters) {
	logger := log.Named(ctx, "worker").With().Int("id", id).Logger()
	ctx = log.WithLogger(ctx, &logger)
	logger.Trace().Msg("worker started")
	defer func() { logger.Trace().Msg("worker stopped") }()

	for {
		path, ok := queue.pop()
		if !ok {
			return
		}
		if abort.Aborted() {
			queue.done()
			return
		}

		err := w.visit(ctx, path, queue, visited, stats)
		queue.done()
		if err != nil {
			abort.Fail(err)
			return
		}
	}
}

// visit resolves one directory: either runs its status command or pushes
// its subdirectories.
func (w *Walker) visit(ctx context.Context, path string, queue *workQueue, visited *visitedSet, stats *counters) error {
	logger := log.FromContext(ctx)

	first, err := visited.add(path)
	if err != nil {
		return err
	}
	if !first {
		stats.skipped.Add(1)
		logger.Debug().Str("path", path).Msg("already visited")
		return nil
	}

	match, err := w.classifier.Classify(path)
	if err != nil {
		return err
	}
	stats.classified.Add(1)

	if match.Matched() {
		stats.matched.Add(1)
		logger.Debug().Str("path", path).Str("vcs", match.VCS.Name).Msg("working copy found")

		res, err := w.runner.Run(ctx, path, match.VCS)
		if err != nil {
			return err
		}
		logger.Debug().Str("path", path).Bool("dirty", res.IsDirty()).Msg("status collected")
		return w.handler.Handle(res)
	}

	children, err := listDirs(path, w.cfg.FollowSymlinks)
	if err != nil {
		return err
	}
	stats.expanded.Add(1)
	logger.Trace().Str("path", path).Int("children", len(children)).Msg("expanded")

	queue.push(children...)
	return nil
}

// ResolveRoots makes every root absolute with symlinks resolved and checks
// that it is a directory. An empty list means the current directory.
// Duplicates are dropped, keeping the first occurrence.
func ResolveRoots(roots []string) ([]string, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}

	seen := make(map[string]bool, len(roots))
	resolved := make([]string, 0, len(roots))

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "resolve %s", root)
		}
		canonical, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "resolve %s", root)
		}
		info, err := os.Stat(canonical)
		if err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "stat %s", root)
		}
		if !info.IsDir() {
			return nil, errors.WithStackTrace(&NotDirectoryError{Path: root})
		}

		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		resolved = append(resolved, canonical)
	}

	return resolved, nil
}

type NotDirectoryError struct {
	Path string
}

func (e *NotDirectoryError) Error() string {
	return fmt.Sprintf("%s is not a directory", e.Path)
}

// visitedSet records the canonical path of every directory handed out, so
// overlapping roots, and directories reachable through several symlinks,
// are classified once and cycles terminate. Without symlink following every
// path is built from canonical roots by joining real directory names, so it
// is already canonical and needs no resolution.
type visitedSet struct {
	resolve bool
	mu      sync.Mutex
	seen    map[string]struct{}
}

func newVisitedSet(resolve bool) *visitedSet {
	return &visitedSet{resolve: resolve, seen: make(map[string]struct{})}
}

func (s *visitedSet) add(path string) (bool, error) {
	canonical := path
	if s.resolve {
		var err error
		canonical, err = filepath.EvalSymlinks(path)
		if err != nil {
			return false, errors.WithStackTraceAndPrefix(err, "resolve %s", path)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[canonical]; ok {
		return false, nil
	}
	s.seen[canonical] = struct{}{}
	return true, nil
}

type counters struct {
	classified atomic.Int64
	matched    atomic.Int64
	expanded   atomic.Int64
	skipped    atomic.Int64
}

func (c *counters) snapshot() ScanResult {
	return ScanResult{
		Classified: c.classified.Load(),
		Matched:    c.matched.Load(),
		Expanded:   c.expanded.Load(),
		Skipped:    c.skipped.Load(),
	}
}
