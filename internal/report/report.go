// internal/report/report.go
package report

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/mtoohey31/uncommitted/internal/errors"
	"github.com/mtoohey31/uncommitted/internal/model"
)

// Mode selects how dirty working copies are reported.
type Mode int

const (
	// Output prints a header and the raw command output per dirty result,
	// in completion order.
	Output Mode = iota
	// Count prints only the number of dirty results once the scan is done.
	Count
)

func (m Mode) String() string {
	switch m {
	case Output:
		return "output"
	case Count:
		return "count"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Aggregator consumes status results from concurrent workers.
type Aggregator struct {
	mode  Mode
	w     io.Writer
	mu    sync.Mutex // serialises writes so results never interleave
	dirty atomic.Int64
}

func New(mode Mode, w io.Writer) *Aggregator {
	return &Aggregator{mode: mode, w: w}
}

// Handle records one result. Clean results are ignored in both modes.
func (a *Aggregator) Handle(res *model.StatusResult) error {
	if !res.IsDirty() {
		return nil
	}

	a.dirty.Add(1)
	if a.mode == Count {
		return nil
	}

	var buf bytes.Buffer
	buf.Grow(len(res.Path) + len(res.VCS) + len(res.Stdout) + len(res.Stderr) + 4)
	fmt.Fprintf(&buf, "%s - %s\n", res.Path, res.VCS)
	buf.Write(res.Stdout)
	buf.Write(res.Stderr)

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.w.Write(buf.Bytes()); err != nil {
		return errors.WithStackTraceAndPrefix(err, "write result for %s", res.Path)
	}
	return nil
}

// Dirty returns the number of dirty results seen so far.
func (a *Aggregator) Dirty() int64 {
	return a.dirty.Load()
}

// Finish is called once after a successful scan. In count mode it prints
// the final tally; in output mode there is nothing left to write.
func (a *Aggregator) Finish() error {
	if a.mode != Count {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := fmt.Fprintln(a.w, a.dirty.Load()); err != nil {
		return errors.WithStackTraceAndPrefix(err, "write count")
	}
	return nil
}
