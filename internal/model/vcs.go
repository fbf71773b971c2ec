// internal/model/vcs.go
package model

// VCS describes one version control system the scanner recognises.
type VCS struct {
	Name    string   // Display name printed in output headers
	Marker  string   // Directory name identifying a working-copy root
	Command []string // Status command argv, run inside the working copy
}

// DefaultVCS is the fixed detection table. Order is the marker priority:
// a directory holding several markers is attributed to the first match.
var DefaultVCS = []VCS{
	{
		Name:    "git",
		Marker:  ".git",
		Command: []string{"git", "-c", "color.status=always", "status", "-s"},
	},
	{
		Name:    "mercurial",
		Marker:  ".hg",
		Command: []string{"hg", "--config", "extensions.color=!", "st"},
	},
	{
		Name:    "subversion",
		Marker:  ".svn",
		Command: []string{"svn", "st", "-v"},
	},
}

// Match is the outcome of classifying a directory. A nil VCS means the
// directory is not a working-copy root and should be expanded.
type Match struct {
	Path string
	VCS  *VCS
}

func (m Match) Matched() bool {
	return m.VCS != nil
}
