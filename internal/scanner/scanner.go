// internal/scanner/scanner.go
package scanner

import (
	"context"

	"github.com/mtoohey31/uncommitted/internal/model"
)

type Scanner interface {
	Scan(ctx context.Context, roots []string) (ScanResult, error)
}

// Runner runs the status command of a matched working copy.
type Runner interface {
	Run(ctx context.Context, dir string, vcs *model.VCS) (*model.StatusResult, error)
}

// Handler consumes status results. It is called concurrently from every
// worker and must be safe for that.
type Handler interface {
	Handle(res *model.StatusResult) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(res *model.StatusResult) error

func (f HandlerFunc) Handle(res *model.StatusResult) error {
	return f(res)
}

type ScanResult struct {
	Classified int64 // Directories classified
	Matched    int64 // Working copies whose status command ran
	Expanded   int64 // Directories listed for children
	Skipped    int64 // Directories already visited through another path
	Duration   int64 // milliseconds
}
