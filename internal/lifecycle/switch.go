package lifecycle

import (
	"context"
	"fmt"

	"github.com/firefly-engineering/git-context/internal/audit"
	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/logging"
)

// SwitchResult describes a completed switch.
type SwitchResult struct {
	From string
	To   string

	// AlreadyActive is set when the target was already active and nothing
	// was done.
	AlreadyActive bool

	Stashed  []string
	Restored []string

	// Warnings lists restore failures and replaced files. The switch itself
	// still completed.
	Warnings []string
}

// Switch makes name the active context.
func (m *Manager) Switch(ctx context.Context, name string) (*SwitchResult, error) {
	l, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	return m.switchLocked(ctx, name)
}

// switchLocked performs the switch; the caller holds the lock.
//
// Order: stash the current context's files, repoint .git, restore the
// target's files, save the store. A failure before the repoint puts
// everything back; restore problems after the repoint are only warnings.
func (m *Manager) switchLocked(ctx context.Context, name string) (*SwitchResult, error) {
	s, err := m.load()
	if err != nil {
		return nil, err
	}

	if s.ActiveContext == name {
		return &SwitchResult{From: name, To: name, AlreadyActive: true}, nil
	}

	current, err := s.Active()
	if err != nil {
		return nil, err
	}
	target, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if !m.fs.IsDir(m.storageAbs(target.StoragePath)) {
		return nil, errors.NoBackendFound(fmt.Sprintf("storage %s of context %s does not exist", target.StoragePath, name))
	}

	from := s.ActiveContext
	txn := audit.NewTxn()
	m.record(audit.Event{Type: audit.EventSwitchBegin, Context: name, From: from, Txn: txn})
	abort := func(err error) (*SwitchResult, error) {
		m.record(audit.Event{Type: audit.EventSwitchAbort, Context: name, From: from, Txn: txn, Details: err.Error()})
		return nil, err
	}

	logging.Debug("switching", "from", from, "to", name, "txn", txn)

	stash := m.engine.Stash(current.StoragePath, current.OwnedFiles)
	if err := stash.Err(); err != nil {
		undo := m.engine.Restore(current.StoragePath, stash.Moved())
		if undoErr := undo.Err(); undoErr != nil {
			return abort(errors.FilesystemFailure(
				fmt.Sprintf("failed to stash files of %s, and failed to put some back", from),
				errors.Join(err, undoErr)))
		}
		return abort(errors.FilesystemFailure(fmt.Sprintf("failed to stash files of %s", from), err))
	}

	if err := m.redirect.Repoint(target.StoragePath); err != nil {
		undo := m.engine.Restore(current.StoragePath, stash.Moved())
		if undoErr := undo.Err(); undoErr != nil {
			return abort(errors.Join(err, undoErr))
		}
		return abort(err)
	}

	restore := m.engine.Restore(target.StoragePath, target.OwnedFiles)

	s.ActiveContext = name
	if err := s.Save(m.fs, m.ws.Root); err != nil {
		// .git already points at the target; the journal keeps this switch
		// open so status reports it and refresh can repair it.
		return nil, err
	}

	m.record(audit.Event{Type: audit.EventSwitchComplete, Context: name, From: from, Txn: txn})

	return &SwitchResult{
		From:     from,
		To:       name,
		Stashed:  stash.Moved(),
		Restored: restore.Moved(),
		Warnings: append(warnings("stash", stash), warnings("restore", restore)...),
	}, nil
}
