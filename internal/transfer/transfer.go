// Package transfer moves a context's owned files between the working tree
// and the context's cold storage inside its backend directory.
//
// Every move is a rename, so contents and permissions are preserved and a
// symlink is moved as a link. Batches never stop at the first failure; each
// path gets its own Result.
package transfer

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/logging"
	"github.com/firefly-engineering/git-context/internal/system"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

// ColdDir is the cold storage directory, relative to a context's storage.
const ColdDir = "info/context-managed"

// Outcome is what happened to one path in a batch.
type Outcome int

const (
	Moved Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result is the per-path record of a batch.
type Result struct {
	Path    string
	Outcome Outcome

	// Conflict is set when the destination already existed and was replaced.
	Conflict bool

	Err error
}

// Report collects the results of a Stash or Restore batch.
type Report struct {
	Results []Result
}

// Moved returns the paths that were actually moved.
func (r *Report) Moved() []string {
	var paths []string
	for _, res := range r.Results {
		if res.Outcome == Moved {
			paths = append(paths, res.Path)
		}
	}
	return paths
}

// Conflicts returns the paths whose destination was replaced.
func (r *Report) Conflicts() []string {
	var paths []string
	for _, res := range r.Results {
		if res.Conflict {
			paths = append(paths, res.Path)
		}
	}
	return paths
}

// Failed returns the failed results.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Outcome == Failed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins the per-path failures, or returns nil when every path succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", res.Path, res.Err))
	}
	return errors.Join(errs...)
}

// Presence says where an owned path currently lives.
type Presence int

const (
	// Present means the path is in the working tree.
	Present Presence = iota
	// Stashed means the path is only in cold storage.
	Stashed
	// Missing means the path is in neither place.
	Missing
)

func (p Presence) String() string {
	switch p {
	case Present:
		return "present"
	case Stashed:
		return "stashed"
	default:
		return "missing"
	}
}

// MarshalText renders the presence by name in JSON and YAML output.
func (p Presence) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a name produced by MarshalText.
func (p *Presence) UnmarshalText(text []byte) error {
	switch string(text) {
	case "present":
		*p = Present
	case "stashed":
		*p = Stashed
	case "missing":
		*p = Missing
	default:
		return fmt.Errorf("unknown presence %q", text)
	}
	return nil
}

// Engine moves owned files for one workspace.
type Engine struct {
	ws *workspace.Workspace
	fs system.FileSystem
}

// NewEngine returns an Engine for ws. A nil fsys uses the OS file system.
func NewEngine(ws *workspace.Workspace, fsys system.FileSystem) *Engine {
	if fsys == nil {
		fsys = system.DefaultFS()
	}
	return &Engine{ws: ws, fs: fsys}
}

// ColdPath returns where rel is kept while its context is inactive.
func (e *Engine) ColdPath(storagePath, rel string) (string, error) {
	base := filepath.Join(e.ws.Root, filepath.FromSlash(storagePath), filepath.FromSlash(ColdDir))
	return workspace.ScopedJoin(base, rel)
}

// Stash moves each existing working-tree path into cold storage.
func (e *Engine) Stash(storagePath string, files []string) *Report {
	report := &Report{}
	for _, rel := range files {
		report.Results = append(report.Results, e.transfer(rel, func() (string, string, error) {
			src, err := e.ws.Resolve(rel)
			if err != nil {
				return "", "", err
			}
			dst, err := e.ColdPath(storagePath, rel)
			return src, dst, err
		}))
	}
	logging.Debug("stash complete", "storage", storagePath, "files", len(files), "moved", len(report.Moved()))
	return report
}

// Restore moves each stashed path back into the working tree.
func (e *Engine) Restore(storagePath string, files []string) *Report {
	report := &Report{}
	for _, rel := range files {
		report.Results = append(report.Results, e.transfer(rel, func() (string, string, error) {
			src, err := e.ColdPath(storagePath, rel)
			if err != nil {
				return "", "", err
			}
			dst, err := e.ws.Resolve(rel)
			return src, dst, err
		}))
	}
	logging.Debug("restore complete", "storage", storagePath, "files", len(files), "moved", len(report.Moved()))
	return report
}

// Locate reports where rel currently lives.
func (e *Engine) Locate(storagePath, rel string) Presence {
	if p, err := e.ws.Resolve(rel); err == nil && e.fs.Exists(p) {
		return Present
	}
	if p, err := e.ColdPath(storagePath, rel); err == nil && e.fs.Exists(p) {
		return Stashed
	}
	return Missing
}

func (e *Engine) transfer(rel string, paths func() (string, string, error)) Result {
	res := Result{Path: rel}

	src, dst, err := paths()
	if err != nil {
		res.Outcome = Failed
		res.Err = err
		return res
	}

	if _, err := e.fs.Lstat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Outcome = Skipped
			return res
		}
		res.Outcome = Failed
		res.Err = fmt.Errorf("inspecting %s: %w", src, err)
		return res
	}

	conflict, err := e.move(src, dst)
	res.Conflict = conflict
	if err != nil {
		res.Outcome = Failed
		res.Err = err
		return res
	}
	if conflict {
		logging.Warn("replaced existing copy", "path", rel, "destination", dst)
	}
	res.Outcome = Moved
	return res
}

// move renames src to dst, creating dst's parents. An existing dst is
// removed first and reported as a conflict.
func (e *Engine) move(src, dst string) (bool, error) {
	if err := e.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return false, fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}

	conflict := e.fs.Exists(dst)
	if conflict {
		if err := e.fs.RemoveAll(dst); err != nil {
			return true, fmt.Errorf("replacing %s: %w", dst, err)
		}
	}

	if err := e.fs.Rename(src, dst); err != nil {
		return conflict, fmt.Errorf("moving %s to %s: %w", src, dst, err)
	}
	return conflict, nil
}
