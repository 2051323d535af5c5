// Package redirect manages the .git entry at the workspace root: whether it
// is a plain repository directory or a symlink selecting one context's
// backend storage.
package redirect

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/logging"
	"github.com/firefly-engineering/git-context/internal/system"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

// State describes the .git entry.
type State int

const (
	// Absent means there is no .git entry at all.
	Absent State = iota
	// Directory means .git is an ordinary repository directory.
	Directory
	// Link means .git is a symlink; the workspace is managed.
	Link
	// Other means .git is a regular file (a worktree or submodule pointer).
	Other
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Directory:
		return "directory"
	case Link:
		return "link"
	default:
		return "other"
	}
}

// Redirector operates on the .git entry of one workspace root.
type Redirector struct {
	root string
	fs   system.FileSystem
}

// New returns a Redirector for root. A nil fs uses the OS file system.
func New(root string, fsys system.FileSystem) *Redirector {
	if fsys == nil {
		fsys = system.DefaultFS()
	}
	return &Redirector{root: root, fs: fsys}
}

func (r *Redirector) gitPath() string {
	return filepath.Join(r.root, workspace.GitDir)
}

// State inspects .git without following it.
func (r *Redirector) State() (State, error) {
	info, err := r.fs.Lstat(r.gitPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Absent, nil
		}
		return Absent, errors.FilesystemFailure("failed to inspect .git", err)
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return Link, nil
	case info.IsDir():
		return Directory, nil
	default:
		return Other, nil
	}
}

// EnsureManaged fails with NotManaged unless .git is a symlink.
func (r *Redirector) EnsureManaged() error {
	state, err := r.State()
	if err != nil {
		return err
	}
	if state != Link {
		return errors.NotManaged(fmt.Sprintf(".git is %s, not a symlink (run 'git-context init <name>')", state))
	}
	return nil
}

// Target returns the storage path .git currently points at.
func (r *Redirector) Target() (string, error) {
	if err := r.EnsureManaged(); err != nil {
		return "", err
	}
	target, err := r.fs.Readlink(r.gitPath())
	if err != nil {
		return "", errors.FilesystemFailure("failed to read .git symlink", err)
	}
	return filepath.ToSlash(target), nil
}

// Adopt turns an existing .git directory into the storage of a context:
// .git is renamed to storagePath and a symlink is put in its place. If the
// link cannot be created the rename is rolled back.
func (r *Redirector) Adopt(storagePath string) error {
	state, err := r.State()
	if err != nil {
		return err
	}
	switch state {
	case Absent:
		return errors.NoBackendFound("no .git directory in " + r.root)
	case Link:
		return errors.AlreadyManaged()
	case Other:
		return errors.NoBackendFound(".git is a file; worktrees and submodules cannot be adopted")
	}

	storage := filepath.Join(r.root, filepath.FromSlash(storagePath))
	if r.fs.Exists(storage) {
		return errors.FilesystemFailure(fmt.Sprintf("storage %s already exists", storagePath), fs.ErrExist)
	}

	logging.Debug("adopting repository", "from", r.gitPath(), "to", storage)
	if err := r.fs.Rename(r.gitPath(), storage); err != nil {
		return errors.FilesystemFailure(fmt.Sprintf("failed to move .git to %s", storagePath), err)
	}

	if err := r.fs.Symlink(storagePath, r.gitPath()); err != nil {
		if rbErr := r.fs.Rename(storage, r.gitPath()); rbErr != nil {
			return errors.FilesystemFailure("failed to link .git and failed to restore it",
				errors.Join(err, rbErr))
		}
		return errors.FilesystemFailure("failed to link .git", err)
	}
	return nil
}

// Unadopt reverses Adopt: the symlink is removed and storagePath is moved
// back to .git. It is used to undo an init whose store could not be written.
func (r *Redirector) Unadopt(storagePath string) error {
	if err := r.fs.Remove(r.gitPath()); err != nil {
		return errors.FilesystemFailure("failed to remove .git symlink", err)
	}
	storage := filepath.Join(r.root, filepath.FromSlash(storagePath))
	if err := r.fs.Rename(storage, r.gitPath()); err != nil {
		return errors.FilesystemFailure(fmt.Sprintf("failed to move %s back to .git", storagePath), err)
	}
	return nil
}

// Link creates the redirection in a workspace that has no .git yet.
func (r *Redirector) Link(storagePath string) error {
	state, err := r.State()
	if err != nil {
		return err
	}
	if state != Absent {
		return errors.FilesystemFailure(fmt.Sprintf(".git already exists (%s)", state), fs.ErrExist)
	}
	if err := r.fs.Symlink(storagePath, r.gitPath()); err != nil {
		return errors.FilesystemFailure("failed to link .git", err)
	}
	return nil
}

// Repoint atomically replaces the .git symlink so that it points at
// storagePath. A new link is created beside .git and renamed over it, so
// .git is never missing and never a directory. If anything fails the old
// link is left in place.
func (r *Redirector) Repoint(storagePath string) error {
	storage := filepath.Join(r.root, filepath.FromSlash(storagePath))
	if !r.fs.IsDir(storage) {
		return errors.NoBackendFound(fmt.Sprintf("storage %s does not exist", storagePath))
	}

	state, err := r.State()
	if err != nil {
		return err
	}
	if state == Directory || state == Other {
		return errors.NotManaged(fmt.Sprintf(".git is a %s and will not be replaced", state))
	}

	tmp := filepath.Join(r.root, workspace.GitTemp)
	// A leftover from an interrupted repoint is safe to discard.
	if r.fs.Exists(tmp) {
		if err := r.fs.Remove(tmp); err != nil {
			return errors.FilesystemFailure("failed to remove stale "+workspace.GitTemp, err)
		}
	}

	if err := r.fs.Symlink(storagePath, tmp); err != nil {
		return errors.FilesystemFailure("failed to create "+workspace.GitTemp, err)
	}
	if err := r.fs.Rename(tmp, r.gitPath()); err != nil {
		r.fs.Remove(tmp)
		return errors.FilesystemFailure("failed to replace .git symlink", err)
	}

	logging.Debug("repointed .git", "target", storagePath)
	return nil
}
