// internal/model/result.go
package model

// StatusResult holds the captured output of one status command.
type StatusResult struct {
	Path   string
	VCS    string
	Stdout []byte
	Stderr []byte
}

// IsDirty reports whether the command produced any output at all.
// Exit codes are deliberately not part of the decision.
func (r *StatusResult) IsDirty() bool {
	return len(r.Stdout)+len(r.Stderr) > 0
}
