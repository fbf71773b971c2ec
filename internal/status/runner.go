// internal/status/runner.go
package status

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"github.com/mtoohey31/uncommitted/internal/errors"
	"github.com/mtoohey31/uncommitted/internal/log"
	"github.com/mtoohey31/uncommitted/internal/model"
)

// waitDelay bounds how long Run waits for output pipes after the command
// was killed, since grandchildren may keep them open.
const waitDelay = time.Second

// Runner executes a VCS status command inside a working copy.
type Runner struct {
	timeout time.Duration
}

// NewRunner returns a Runner. A zero timeout lets commands run until they exit.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Run spawns vcs.Command with dir as working directory and captures both
// output streams in full. The exit code is ignored; only failing to start,
// wait on or time out the process is an error.
func (r *Runner) Run(ctx context.Context, dir string, vcs *model.VCS) (*model.StatusResult, error) {
	if len(vcs.Command) == 0 {
		return nil, errors.WithStackTrace(&EmptyCommandError{VCS: vcs.Name})
	}

	cmdCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	log.FromContext(ctx).Debug().
		Str("dir", dir).
		Str("cmd", strings.Join(vcs.Command, " ")).
		Msg("running status command")

	cmd := exec.CommandContext(cmdCtx, vcs.Command[0], vcs.Command[1:]...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if cmdCtx.Err() != nil {
		return nil, errors.WithStackTraceAndPrefix(cmdCtx.Err(), "run %s in %s", vcs.Name, dir)
	}
	var exitErr *exec.ExitError
	if err != nil && !stderrors.As(err, &exitErr) {
		return nil, errors.WithStackTraceAndPrefix(err, "run %s in %s", vcs.Name, dir)
	}

	return &model.StatusResult{
		Path:   dir,
		VCS:    vcs.Name,
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}, nil
}

type EmptyCommandError struct {
	VCS string
}

func (e *EmptyCommandError) Error() string {
	return "no status command configured for " + e.VCS
}
