// internal/scanner/detect.go
package scanner

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/mtoohey31/uncommitted/internal/errors"
	"github.com/mtoohey31/uncommitted/internal/model"
)

// Classifier decides whether a directory is a working-copy root.
type Classifier struct {
	table []model.VCS
}

func NewClassifier(table []model.VCS) *Classifier {
	return &Classifier{table: table}
}

// Classify checks the markers in table order and returns the first hit.
// Markers are tested with Lstat, so a symlinked marker counts as present
// without being resolved. Any error other than absence is returned.
func (c *Classifier) Classify(path string) (model.Match, error) {
	for i := range c.table {
		vcs := &c.table[i]
		_, err := os.Lstat(filepath.Join(path, vcs.Marker))
		if err == nil {
			return model.Match{Path: path, VCS: vcs}, nil
		}
		if !os.IsNotExist(err) {
			return model.Match{}, errors.WithStackTraceAndPrefix(err, "stat %s", filepath.Join(path, vcs.Marker))
		}
	}
	return model.Match{Path: path}, nil
}

// listDirs returns the immediate subdirectories of path. Symlinks are only
// included when follow is set and their target is a directory; dangling or
// looping links are skipped.
func listDirs(path string, follow bool) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "read dir %s", path)
	}

	var dirs []string
	for _, e := range entries {
		child := filepath.Join(path, e.Name())

		if e.IsDir() {
			dirs = append(dirs, child)
			continue
		}

		if !follow || e.Type()&fs.ModeSymlink == 0 {
			continue
		}

		info, err := os.Stat(child)
		if err != nil {
			if os.IsNotExist(err) || stderrors.Is(err, syscall.ELOOP) {
				continue
			}
			return nil, errors.WithStackTraceAndPrefix(err, "stat %s", child)
		}
		if info.IsDir() {
			dirs = append(dirs, child)
		}
	}

	return dirs, nil
}
