package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/firefly-engineering/git-context/internal/errors"
)

const (
	// StoreFile is the contexts file at the workspace root.
	StoreFile = ".contexts"

	// GitDir is the well-known path git looks for; in a managed workspace it
	// is a symlink to the active context's storage.
	GitDir = ".git"

	// GitTemp is the link built beside .git while it is being repointed.
	GitTemp = GitDir + ".new"
)

// Workspace is a located workspace root plus the caller's position in it.
type Workspace struct {
	// Root is the absolute workspace root.
	Root string

	// Offset is the caller's working directory relative to Root
	// ("." when invoked from the root).
	Offset string
}

// Locate walks from start up to the filesystem root and returns the first
// managed directory: one holding the contexts file or a .git symlink. A
// plain nested repository is walked past.
func Locate(start string) (*Workspace, error) {
	return locate(start, isManaged)
}

// LocateOrHere returns the nearest directory holding the contexts file or a
// .git entry of any kind, falling back to start itself. init and new use it
// to bootstrap a workspace, including around an unadopted repository.
func LocateOrHere(start string) (*Workspace, error) {
	ws, err := locate(start, hasRepository)
	if err == nil {
		return ws, nil
	}
	if !errors.HasCode(err, errors.ExitNotAWorkspace) {
		return nil, err
	}
	return At(start)
}

func locate(start string, marker func(dir string) bool) (*Workspace, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", start, err)
	}

	dir := abs
	for {
		if marker(dir) {
			return newWorkspace(dir, abs)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, errors.NotAWorkspace(abs)
		}
		dir = parent
	}
}

// At returns a workspace rooted at root with the caller at the root.
func At(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	return newWorkspace(abs, abs)
}

func newWorkspace(root, cwd string) (*Workspace, error) {
	offset, err := filepath.Rel(root, cwd)
	if err != nil {
		return nil, fmt.Errorf("computing offset of %s in %s: %w", cwd, root, err)
	}
	return &Workspace{Root: root, Offset: offset}, nil
}

func isManaged(dir string) bool {
	if _, err := os.Lstat(filepath.Join(dir, StoreFile)); err == nil {
		return true
	}
	info, err := os.Lstat(filepath.Join(dir, GitDir))
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func hasRepository(dir string) bool {
	if isManaged(dir) {
		return true
	}
	_, err := os.Lstat(filepath.Join(dir, GitDir))
	return err == nil
}

// Normalize turns a path given relative to the caller's working directory
// (or absolute) into a clean, slash-separated, workspace-relative path.
func (w *Workspace) Normalize(arg string) (string, error) {
	if strings.TrimSpace(arg) == "" {
		return "", errors.ValidationError("path must not be empty")
	}

	var abs string
	if filepath.IsAbs(arg) {
		abs = filepath.Clean(arg)
	} else {
		abs = filepath.Join(w.Root, w.Offset, arg)
	}

	rel, err := filepath.Rel(w.Root, abs)
	if err != nil {
		return "", errors.ValidationError(fmt.Sprintf("path %s is outside the workspace", arg))
	}
	if rel == "." {
		return "", errors.ValidationError("the workspace root itself cannot be managed")
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.ValidationError(fmt.Sprintf("path %s is outside the workspace", arg))
	}
	return filepath.ToSlash(rel), nil
}

// Resolve maps a stored workspace-relative path onto disk. Every directory
// component is resolved inside the root; the final component is left as is
// so that a symlink is addressed itself rather than its target.
func (w *Workspace) Resolve(rel string) (string, error) {
	return ScopedJoin(w.Root, rel)
}

// ScopedJoin joins rel onto base the way Resolve does.
func ScopedJoin(base, rel string) (string, error) {
	rel = filepath.FromSlash(rel)
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %s must be relative", rel)
	}
	clean := filepath.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes %s", rel, base)
	}

	parent, err := securejoin.SecureJoin(base, filepath.Dir(clean))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", rel, err)
	}
	return filepath.Join(parent, filepath.Base(clean)), nil
}

// Abs returns the absolute on-disk path for a workspace-relative path
// without symlink scoping. Use it for paths the tool itself creates.
func (w *Workspace) Abs(rel string) string {
	return filepath.Join(w.Root, filepath.FromSlash(rel))
}

// StorePath returns the absolute path of the contexts file.
func (w *Workspace) StorePath() string {
	return filepath.Join(w.Root, StoreFile)
}

// GitPath returns the absolute path of the .git redirection.
func (w *Workspace) GitPath() string {
	return filepath.Join(w.Root, GitDir)
}

// IsReserved reports whether rel names a path git-context manages itself
// (.git and its repoint link, the contexts file and its siblings) or lies
// beneath one of them.
func IsReserved(rel string) bool {
	first := strings.SplitN(rel, "/", 2)[0]
	if first == GitDir || first == GitTemp {
		return true
	}
	return first == StoreFile || strings.HasPrefix(first, StoreFile+".")
}
