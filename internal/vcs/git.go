// Package vcs is git-context's only contact with git itself: creating
// backends and running commands with the git binary, and reading repository
// state through go-git.
package vcs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/logging"
	"github.com/firefly-engineering/git-context/internal/system"
)

// Git runs the git binary.
type Git struct {
	Binary string
	exec   system.CommandExecutor
}

// New returns a Git using binary (default "git") through exec (default OS).
func New(binary string, exec system.CommandExecutor) *Git {
	if binary == "" {
		binary = "git"
	}
	if exec == nil {
		exec = system.DefaultExecutor()
	}
	return &Git{Binary: binary, exec: exec}
}

// InitBackend creates a fresh backend at storage (an absolute path) that
// behaves as a normal repository once .git points at it.
func (g *Git) InitBackend(ctx context.Context, storage string) error {
	if err := g.run(ctx, "init", "init", "--quiet", "--bare", storage); err != nil {
		return err
	}
	// A bare init marks the repository bare; the working tree is the
	// workspace root, reached through the .git link.
	if err := g.run(ctx, "config", "--git-dir", storage, "config", "core.bare", "false"); err != nil {
		return err
	}
	return g.run(ctx, "config", "--git-dir", storage, "config", "core.logAllRefUpdates", "true")
}

func (g *Git) run(ctx context.Context, op string, args ...string) error {
	logging.Debug("running git", "args", shellquote.Join(args...))
	output, err := g.exec.Execute(ctx, g.Binary, args...)
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg != "" {
			err = fmt.Errorf("%s: %w", msg, err)
		}
		return errors.ExternalToolFailure(op, err)
	}
	return nil
}

// Env returns the environment that binds a command to storage with root as
// its working tree.
func Env(storage, root string) []string {
	return []string{
		"GIT_DIR=" + storage,
		"GIT_WORK_TREE=" + root,
	}
}

// Exec runs argv attached to the terminal with storage as the repository
// and root as the working tree. A command that exits non-zero is reported
// with its exit status so that it can be passed through unchanged.
func (g *Git) Exec(ctx context.Context, storage, root string, argv []string) error {
	if len(argv) == 0 {
		return errors.EmptyCommand()
	}

	logging.Debug("exec", "storage", storage, "command", shellquote.Join(argv...))
	err := g.exec.ExecuteInteractive(ctx, Env(storage, root), argv[0], argv[1:]...)
	if err == nil {
		return nil
	}
	if code, ok := system.ExitCode(err); ok {
		return errors.CommandExited(code, err)
	}
	return errors.Wrap(errors.ExitExternalTool, fmt.Sprintf("failed to run %s", argv[0]), err)
}

// SplitCommand splits a single shell-quoted argument into argv. Several
// arguments are returned unchanged.
func SplitCommand(args []string) ([]string, error) {
	if len(args) != 1 || !strings.ContainsAny(args[0], " \t\n") {
		return args, nil
	}
	argv, err := shellquote.Split(args[0])
	if err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("cannot parse command %q: %v", args[0], err))
	}
	return argv, nil
}

// Describe renders argv as a shell would need it typed.
func Describe(argv []string) string {
	return shellquote.Join(argv...)
}

// IsRepository checks that root holds a git repository go-git can open.
func IsRepository(root string) error {
	if _, err := git.PlainOpen(root); err != nil {
		return errors.NoBackendFound(fmt.Sprintf("%s: %v", filepath.Join(root, ".git"), err))
	}
	return nil
}

// HeadInfo describes a backend's HEAD.
type HeadInfo struct {
	// Branch is the short branch name, empty when HEAD is detached.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`

	// Hash is the commit HEAD resolves to, empty for an unborn branch.
	Hash string `json:"hash,omitempty" yaml:"hash,omitempty"`
}

// String renders the HEAD for humans: "main@1a2b3c4", "main (no commits)"
// or a detached short hash.
func (h HeadInfo) String() string {
	switch {
	case h.Branch != "" && h.Hash != "":
		return h.Branch + "@" + short(h.Hash)
	case h.Branch != "":
		return h.Branch + " (no commits)"
	case h.Hash != "":
		return short(h.Hash) + " (detached)"
	default:
		return "unknown"
	}
}

func short(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

// Head reads HEAD directly from a backend directory.
func Head(storage string) (HeadInfo, error) {
	st := filesystem.NewStorage(osfs.New(storage), cache.NewObjectLRUDefault())
	repo, err := git.Open(st, nil)
	if err != nil {
		return HeadInfo{}, fmt.Errorf("opening %s: %w", storage, err)
	}

	ref, err := repo.Head()
	if err == nil {
		info := HeadInfo{Hash: ref.Hash().String()}
		if ref.Name().IsBranch() {
			info.Branch = ref.Name().Short()
		}
		return info, nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return HeadInfo{}, fmt.Errorf("reading HEAD of %s: %w", storage, err)
	}

	// Unborn branch: HEAD names a branch that has no commits yet.
	sym, symErr := repo.Storer.Reference(plumbing.HEAD)
	if symErr != nil {
		return HeadInfo{}, fmt.Errorf("reading HEAD of %s: %w", storage, symErr)
	}
	return HeadInfo{Branch: sym.Target().Short()}, nil
}
