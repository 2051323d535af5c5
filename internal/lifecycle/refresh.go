package lifecycle

import (
	"context"
	"fmt"

	"github.com/firefly-engineering/git-context/internal/audit"
	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/redirect"
	"github.com/firefly-engineering/git-context/internal/store"
	"github.com/firefly-engineering/git-context/internal/transfer"
)

// RefreshResult describes what a refresh repaired.
type RefreshResult struct {
	Context string

	// Relinked is set when .git had to be (re)created.
	Relinked bool

	Stashed  []string
	Restored []string
	Warnings []string
}

// Refresh rebuilds the workspace from the contexts file: .git is pointed at
// the active context, files owned by inactive contexts are moved out of the
// working tree, and the active context's stashed files are brought back.
func (m *Manager) Refresh(ctx context.Context) (*RefreshResult, error) {
	l, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	state, err := m.redirect.State()
	if err != nil {
		return nil, err
	}
	if state != redirect.Link && state != redirect.Absent {
		return nil, errors.NotManaged(fmt.Sprintf(".git is a %s and will not be replaced", state))
	}

	s, err := store.Load(m.fs, m.ws.Root)
	if err != nil {
		return nil, err
	}
	active, err := s.Active()
	if err != nil {
		return nil, err
	}

	result := &RefreshResult{Context: s.ActiveContext}

	relink := state == redirect.Absent
	if !relink {
		target, err := m.redirect.Target()
		if err != nil {
			return nil, err
		}
		relink = target != active.StoragePath
	}
	if relink {
		if err := m.redirect.Repoint(active.StoragePath); err != nil {
			return nil, err
		}
		result.Relinked = true
	}

	for _, name := range s.Names() {
		if name == s.ActiveContext {
			continue
		}
		c := s.Contexts[name]
		var leaked []string
		for _, rel := range c.OwnedFiles {
			if m.engine.Locate(c.StoragePath, rel) == transfer.Present {
				leaked = append(leaked, rel)
			}
		}
		if len(leaked) == 0 {
			continue
		}
		report := m.engine.Stash(c.StoragePath, leaked)
		result.Stashed = append(result.Stashed, report.Moved()...)
		result.Warnings = append(result.Warnings, warnings("stash", report)...)
	}

	var stashed []string
	for _, rel := range active.OwnedFiles {
		if m.engine.Locate(active.StoragePath, rel) == transfer.Stashed {
			stashed = append(stashed, rel)
		}
	}
	if len(stashed) > 0 {
		report := m.engine.Restore(active.StoragePath, stashed)
		result.Restored = report.Moved()
		result.Warnings = append(result.Warnings, warnings("restore", report)...)
	}

	m.record(audit.Event{
		Type:    audit.EventRefresh,
		Context: s.ActiveContext,
		Details: fmt.Sprintf("relinked=%t stashed=%d restored=%d", result.Relinked, len(result.Stashed), len(result.Restored)),
	})
	return result, nil
}
