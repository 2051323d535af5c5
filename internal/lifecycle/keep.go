package lifecycle

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/firefly-engineering/git-context/internal/audit"
	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/store"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

// KeepResult describes a completed keep.
type KeepResult struct {
	Path    string
	Context string

	// AlreadyOwned is set when the active context already owned Path.
	AlreadyOwned bool
}

// Keep registers a working-tree path as owned by the active context.
func (m *Manager) Keep(ctx context.Context, arg string) (*KeepResult, error) {
	rel, err := m.ws.Normalize(arg)
	if err != nil {
		return nil, err
	}

	l, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	s, err := m.load()
	if err != nil {
		return nil, err
	}
	active, err := s.Active()
	if err != nil {
		return nil, err
	}

	if owner, ok := s.Owner(rel); ok {
		if owner == s.ActiveContext {
			return &KeepResult{Path: rel, Context: owner, AlreadyOwned: true}, nil
		}
		return nil, errors.ValidationError(fmt.Sprintf("%s is already owned by context %s", rel, owner))
	}
	if err := checkOwnable(s, rel); err != nil {
		return nil, err
	}

	abs, err := m.ws.Resolve(rel)
	if err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	if !m.fs.Exists(abs) {
		return nil, errors.PathNotFound(rel)
	}

	active.AddFile(rel)
	if err := s.Save(m.fs, m.ws.Root); err != nil {
		return nil, err
	}

	m.note(audit.EventKeep, s.ActiveContext, rel)
	return &KeepResult{Path: rel, Context: s.ActiveContext}, nil
}

// checkOwnable rejects reserved paths, storage directories and paths nested
// inside (or containing) a path another context already owns.
func checkOwnable(s *store.Store, rel string) error {
	if workspace.IsReserved(rel) {
		return errors.ValidationError(fmt.Sprintf("%s is managed by git-context itself and cannot be kept", rel))
	}
	if name, ok := s.IsStorage(rel); ok {
		return errors.ValidationError(fmt.Sprintf("%s is the storage of context %s and cannot be kept", rel, name))
	}
	for _, name := range s.Names() {
		for _, owned := range s.Contexts[name].OwnedFiles {
			if strings.HasPrefix(rel, owned+"/") || strings.HasPrefix(owned, rel+"/") {
				return errors.ValidationError(fmt.Sprintf("%s overlaps %s, owned by context %s", rel, owned, name))
			}
		}
	}
	return nil
}

// UnkeepResult describes a completed unkeep.
type UnkeepResult struct {
	Context string

	// Removed lists the paths no longer owned. It is empty when nothing
	// matched.
	Removed []string
}

// Unkeep stops the active context owning a path, or every owned path
// matching a glob pattern. The files themselves stay where they are.
func (m *Manager) Unkeep(ctx context.Context, arg string) (*UnkeepResult, error) {
	l, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	s, err := m.load()
	if err != nil {
		return nil, err
	}
	active, err := s.Active()
	if err != nil {
		return nil, err
	}

	matches, err := m.matchOwned(active, arg)
	if err != nil {
		return nil, err
	}

	result := &UnkeepResult{Context: s.ActiveContext}
	for _, rel := range matches {
		if active.RemoveFile(rel) {
			result.Removed = append(result.Removed, rel)
		}
	}
	if len(result.Removed) == 0 {
		return result, nil
	}

	if err := s.Save(m.fs, m.ws.Root); err != nil {
		return nil, err
	}
	for _, rel := range result.Removed {
		m.note(audit.EventUnkeep, s.ActiveContext, rel)
	}
	return result, nil
}

// matchOwned resolves arg to the owned paths it names. An argument that
// names an owned path literally is never treated as a pattern. A glob is
// interpreted relative to the caller's directory like a plain path.
func (m *Manager) matchOwned(active *store.Context, arg string) ([]string, error) {
	rel, err := m.ws.Normalize(arg)
	if err == nil && (active.Owns(rel) || !isGlob(arg)) {
		return []string{rel}, nil
	}
	if !isGlob(arg) {
		return nil, err
	}

	pattern := filepath.ToSlash(arg)
	if !path.IsAbs(pattern) && m.ws.Offset != "." {
		pattern = path.Join(filepath.ToSlash(m.ws.Offset), pattern)
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("invalid pattern %q: %v", arg, err))
	}

	var matches []string
	for _, owned := range active.OwnedFiles {
		if g.Match(owned) {
			matches = append(matches, owned)
		}
	}
	return matches, nil
}

func isGlob(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}
