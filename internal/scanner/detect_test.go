// internal/scanner/detect_test.go
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mtoohey31/uncommitted/internal/model"
)

func TestClassify_GitRepo(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	match, err := NewClassifier(model.DefaultVCS).Classify(tmpDir)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if !match.Matched() {
		t.Fatal("Classify() should match a directory with .git")
	}

	if match.VCS.Name != "git" {
		t.Errorf("VCS = %q, want git", match.VCS.Name)
	}

	if match.Path != tmpDir {
		t.Errorf("Path = %q, want %q", match.Path, tmpDir)
	}
}

func TestClassify_WorktreeGitFile(t *testing.T) {
	tmpDir := t.TempDir()

	// Linked worktrees carry a .git file instead of a directory
	content := "gitdir: /somewhere/.git/worktrees/wt"
	if err := os.WriteFile(filepath.Join(tmpDir, ".git"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	match, err := NewClassifier(model.DefaultVCS).Classify(tmpDir)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if !match.Matched() || match.VCS.Name != "git" {
		t.Errorf("Classify() = %+v, want git match", match)
	}
}

func TestClassify_Priority(t *testing.T) {
	tests := []struct {
		name    string
		markers []string
		want    string
	}{
		{"git beats mercurial", []string{".hg", ".git"}, "git"},
		{"git beats subversion", []string{".svn", ".git"}, "git"},
		{"mercurial beats subversion", []string{".svn", ".hg"}, "mercurial"},
		{"all three", []string{".svn", ".hg", ".git"}, "git"},
		{"subversion alone", []string{".svn"}, "subversion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			for _, m := range tt.markers {
				if err := os.Mkdir(filepath.Join(tmpDir, m), 0755); err != nil {
					t.Fatal(err)
				}
			}

			match, err := NewClassifier(model.DefaultVCS).Classify(tmpDir)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if !match.Matched() || match.VCS.Name != tt.want {
				t.Errorf("Classify() = %+v, want %s", match, tt.want)
			}
		})
	}
}

func TestClassify_NotARepo(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, "src"), 0755); err != nil {
		t.Fatal(err)
	}

	match, err := NewClassifier(model.DefaultVCS).Classify(tmpDir)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if match.Matched() {
		t.Errorf("Classify() matched %s for a plain directory", match.VCS.Name)
	}
}

func TestClassify_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	tmpDir := t.TempDir()
	locked := filepath.Join(tmpDir, "locked")
	if err := os.Mkdir(locked, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	if _, err := NewClassifier(model.DefaultVCS).Classify(locked); err == nil {
		t.Error("Classify() should fail when markers cannot be checked")
	}
}

func TestListDirs_SkipsFiles(t *testing.T) {
	tmpDir := t.TempDir()
	for _, d := range []string{"one", "two"} {
		if err := os.Mkdir(filepath.Join(tmpDir, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "file.txt"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	dirs, err := listDirs(tmpDir, false)
	if err != nil {
		t.Fatalf("listDirs() error = %v", err)
	}

	sort.Strings(dirs)
	want := []string{filepath.Join(tmpDir, "one"), filepath.Join(tmpDir, "two")}
	if len(dirs) != 2 || dirs[0] != want[0] || dirs[1] != want[1] {
		t.Errorf("listDirs() = %v, want %v", dirs, want)
	}
}

func TestListDirs_Symlinks(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "target")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatal(err)
	}
	parent := filepath.Join(tmpDir, "parent")
	if err := os.Mkdir(parent, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, filepath.Join(parent, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(tmpDir, "missing"), filepath.Join(parent, "dangling")); err != nil {
		t.Fatal(err)
	}

	t.Run("not followed by default", func(t *testing.T) {
		dirs, err := listDirs(parent, false)
		if err != nil {
			t.Fatalf("listDirs() error = %v", err)
		}
		if len(dirs) != 0 {
			t.Errorf("listDirs() = %v, want no entries", dirs)
		}
	})

	t.Run("followed when enabled", func(t *testing.T) {
		dirs, err := listDirs(parent, true)
		if err != nil {
			t.Fatalf("listDirs() error = %v", err)
		}
		want := filepath.Join(parent, "link")
		if len(dirs) != 1 || dirs[0] != want {
			t.Errorf("listDirs() = %v, want [%s]", dirs, want)
		}
	})
}

func TestListDirs_MissingDirectory(t *testing.T) {
	if _, err := listDirs(filepath.Join(t.TempDir(), "gone"), false); err == nil {
		t.Error("listDirs() should fail for a missing directory")
	}
}
