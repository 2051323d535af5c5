package lifecycle

import (
	"context"
	"fmt"

	"github.com/firefly-engineering/git-context/internal/audit"
	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/logging"
	"github.com/firefly-engineering/git-context/internal/redirect"
	"github.com/firefly-engineering/git-context/internal/store"
	"github.com/firefly-engineering/git-context/internal/vcs"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

// InitResult describes a completed init.
type InitResult struct {
	Context     string
	StoragePath string
}

// Init adopts the workspace's existing repository as context name.
func (m *Manager) Init(ctx context.Context, name string) (*InitResult, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}

	l, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	state, err := m.redirect.State()
	if err != nil {
		return nil, err
	}
	switch state {
	case redirect.Link:
		return nil, errors.AlreadyManaged()
	case redirect.Absent:
		return nil, errors.NoBackendFound(fmt.Sprintf("no .git directory in %s (use 'git-context new %s' to start a fresh history)", m.ws.Root, name))
	}
	if store.Exists(m.fs, m.ws.Root) {
		return nil, errors.InconsistentStore(fmt.Sprintf("%s exists but .git is not a symlink; move it aside before running init", m.ws.StorePath()))
	}
	if err := vcs.IsRepository(m.ws.Root); err != nil {
		return nil, err
	}

	storagePath, err := m.storageFor(name)
	if err != nil {
		return nil, err
	}
	logging.Debug("init", "context", name, "storage", storagePath)

	if err := m.redirect.Adopt(storagePath); err != nil {
		return nil, err
	}

	s := store.NewStore(name, storagePath)
	if err := s.Save(m.fs, m.ws.Root); err != nil {
		if undoErr := m.redirect.Unadopt(storagePath); undoErr != nil {
			return nil, errors.Join(err, undoErr)
		}
		return nil, err
	}

	m.note(audit.EventInit, name, storagePath)
	return &InitResult{Context: name, StoragePath: storagePath}, nil
}

// NewResult describes a completed new.
type NewResult struct {
	Context     string
	StoragePath string

	// Switch is set when the new context was registered in an already
	// managed workspace and then switched to.
	Switch *SwitchResult
}

// New creates a context with a fresh, empty history and makes it active.
func (m *Manager) New(ctx context.Context, name string) (*NewResult, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}

	l, err := m.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer l.Release()

	state, err := m.redirect.State()
	if err != nil {
		return nil, err
	}
	switch state {
	case redirect.Link:
		return m.newInManaged(ctx, name)
	case redirect.Absent:
		return m.newInFresh(ctx, name)
	case redirect.Directory:
		return nil, errors.NotManaged(fmt.Sprintf(".git is an existing repository; run 'git-context init <name>' to adopt it before creating %s", name))
	default:
		return nil, errors.NotManaged(".git is a file; worktrees and submodules cannot host contexts")
	}
}

func (m *Manager) newInManaged(ctx context.Context, name string) (*NewResult, error) {
	s, err := store.Load(m.fs, m.ws.Root)
	if err != nil {
		return nil, err
	}
	if _, exists := s.Contexts[name]; exists {
		return nil, errors.ContextExists(name)
	}

	storagePath, err := m.storageFor(name)
	if err != nil {
		return nil, err
	}
	if err := m.checkStorageFree(s, storagePath); err != nil {
		return nil, err
	}

	if err := m.git.InitBackend(ctx, m.storageAbs(storagePath)); err != nil {
		return nil, err
	}

	if err := s.Add(name, &store.Context{StoragePath: storagePath}); err != nil {
		return nil, err
	}
	if err := s.Save(m.fs, m.ws.Root); err != nil {
		m.fs.RemoveAll(m.storageAbs(storagePath))
		return nil, err
	}
	m.note(audit.EventNew, name, storagePath)

	sw, err := m.switchLocked(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("context %s was created but switching to it failed: %w", name, err)
	}
	return &NewResult{Context: name, StoragePath: storagePath, Switch: sw}, nil
}

func (m *Manager) newInFresh(ctx context.Context, name string) (*NewResult, error) {
	if store.Exists(m.fs, m.ws.Root) {
		return nil, errors.InconsistentStore(fmt.Sprintf("%s exists but .git is missing; run 'git-context refresh' to rebuild it", m.ws.StorePath()))
	}

	storagePath, err := m.storageFor(name)
	if err != nil {
		return nil, err
	}
	if m.fs.Exists(m.storageAbs(storagePath)) {
		return nil, errors.FilesystemFailure(fmt.Sprintf("storage %s already exists", storagePath), nil)
	}

	if err := m.git.InitBackend(ctx, m.storageAbs(storagePath)); err != nil {
		return nil, err
	}
	if err := m.redirect.Link(storagePath); err != nil {
		m.fs.RemoveAll(m.storageAbs(storagePath))
		return nil, err
	}

	s := store.NewStore(name, storagePath)
	if err := s.Save(m.fs, m.ws.Root); err != nil {
		m.fs.Remove(m.ws.GitPath())
		m.fs.RemoveAll(m.storageAbs(storagePath))
		return nil, err
	}

	m.note(audit.EventNew, name, storagePath)
	return &NewResult{Context: name, StoragePath: storagePath}, nil
}

// storageFor returns the storage path for a new context, refusing one that
// would land on an entry git-context manages itself.
func (m *Manager) storageFor(name string) (string, error) {
	storagePath := m.settings.StorageFor(name)
	if workspace.IsReserved(storagePath) {
		return "", errors.ValidationError(fmt.Sprintf("context %s would be stored at %s, which is reserved; choose another name or storage_prefix", name, storagePath))
	}
	return storagePath, nil
}

// checkStorageFree rejects a storage path that already exists on disk or
// collides with an owned path.
func (m *Manager) checkStorageFree(s *store.Store, storagePath string) error {
	if m.fs.Exists(m.storageAbs(storagePath)) {
		return errors.FilesystemFailure(fmt.Sprintf("storage %s already exists", storagePath), nil)
	}
	if owner, ok := s.Owner(storagePath); ok {
		return errors.ValidationError(fmt.Sprintf("storage %s is a file owned by context %s", storagePath, owner))
	}
	return nil
}
