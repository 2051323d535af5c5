package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/firefly-engineering/git-context/internal/config"
	"github.com/firefly-engineering/git-context/internal/system"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

// Workspace is a temporary workspace for tests.
type Workspace struct {
	T        *testing.T
	Root     string
	WS       *workspace.Workspace
	Exec     *system.MockExecutor
	Settings *config.Settings
}

// NewWorkspace creates an empty workspace directory with a git executor
// fake and short lock timeout.
func NewWorkspace(t *testing.T) *Workspace {
	t.Helper()

	root := t.TempDir()
	// Resolve symlinks (e.g. /tmp on macOS) so paths compare cleanly.
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	ws, err := workspace.At(root)
	if err != nil {
		t.Fatalf("Failed to create workspace: %v", err)
	}

	settings := config.Defaults()
	settings.LockTimeout = 200 * time.Millisecond

	return &Workspace{
		T:        t,
		Root:     root,
		WS:       ws,
		Exec:     GitExecutor(),
		Settings: settings,
	}
}

// NewRepo creates a workspace whose .git is an ordinary repository with one
// commit, the state init adopts.
func NewRepo(t *testing.T) *Workspace {
	t.Helper()

	w := NewWorkspace(t)
	repo, err := git.PlainInit(w.Root, false)
	if err != nil {
		t.Fatalf("Failed to init repository: %v", err)
	}

	w.Write("README.md", "# project\n")
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to open worktree: %v", err)
	}
	if _, err := wt.Add("README.md"); err != nil {
		t.Fatalf("Failed to stage README.md: %v", err)
	}
	if _, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	}); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
	return w
}

// Path returns the absolute path of a workspace-relative path.
func (w *Workspace) Path(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

// Write creates a file (and its parents) in the workspace.
func (w *Workspace) Write(rel, content string) {
	w.T.Helper()
	path := w.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		w.T.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		w.T.Fatalf("Failed to write %s: %v", rel, err)
	}
}

// Read returns a file's content, failing the test if it is unreadable.
func (w *Workspace) Read(rel string) string {
	w.T.Helper()
	data, err := os.ReadFile(w.Path(rel))
	if err != nil {
		w.T.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

// Exists reports whether rel exists, without following a final symlink.
func (w *Workspace) Exists(rel string) bool {
	_, err := os.Lstat(w.Path(rel))
	return err == nil
}

// LinkTarget returns the .git symlink target, or "" if .git is not a link.
func (w *Workspace) LinkTarget() string {
	target, err := os.Readlink(w.Path(workspace.GitDir))
	if err != nil {
		return ""
	}
	return target
}

// GitExecutor returns a MockExecutor that carries out the git commands
// git-context issues (init --bare and config) with go-git, so tests need no
// git binary.
func GitExecutor() *system.MockExecutor {
	m := system.NewMockExecutor()
	m.OnExecute = func(name string, args []string) error {
		return FakeGit(args)
	}
	return m
}

// FakeGit performs a git invocation against the real file system.
// Unrecognised invocations succeed without effect.
func FakeGit(args []string) error {
	switch {
	case len(args) >= 2 && args[0] == "init":
		_, err := git.PlainInit(args[len(args)-1], true)
		return err
	case len(args) == 5 && args[0] == "--git-dir" && args[2] == "config":
		return setConfig(args[1], args[3], args[4])
	}
	return nil
}

func setConfig(gitDir, key, value string) error {
	st := filesystem.NewStorage(osfs.New(gitDir), cache.NewObjectLRUDefault())
	cfg, err := st.Config()
	if err != nil {
		return err
	}

	if key == "core.bare" {
		cfg.Core.IsBare = value == "true"
	} else {
		section, option, _ := strings.Cut(key, ".")
		cfg.Raw.Section(section).SetOption(option, value)
	}
	return st.SetConfig(cfg)
}
