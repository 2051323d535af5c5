// Package lifecycle implements the git-context operations: init, new,
// switch, keep, unkeep, status, exec and refresh.
//
// Each mutating operation takes the workspace lock, validates every
// precondition before touching the disk, and saves the contexts file last so
// that an interrupted operation leaves the previous state authoritative.
package lifecycle

import (
	"context"
	"path/filepath"

	"github.com/firefly-engineering/git-context/internal/audit"
	"github.com/firefly-engineering/git-context/internal/config"
	"github.com/firefly-engineering/git-context/internal/lock"
	"github.com/firefly-engineering/git-context/internal/logging"
	"github.com/firefly-engineering/git-context/internal/redirect"
	"github.com/firefly-engineering/git-context/internal/store"
	"github.com/firefly-engineering/git-context/internal/system"
	"github.com/firefly-engineering/git-context/internal/transfer"
	"github.com/firefly-engineering/git-context/internal/vcs"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

// Deps are the collaborators a Manager uses. Zero values select the OS
// implementations and default settings.
type Deps struct {
	FS       system.FileSystem
	Executor system.CommandExecutor
	Settings *config.Settings
}

// Manager runs lifecycle operations against one workspace.
type Manager struct {
	ws       *workspace.Workspace
	settings *config.Settings
	fs       system.FileSystem
	git      *vcs.Git
	redirect *redirect.Redirector
	engine   *transfer.Engine
	journal  *audit.Logger
}

// New returns a Manager for ws.
func New(ws *workspace.Workspace, deps Deps) *Manager {
	if deps.FS == nil {
		deps.FS = system.DefaultFS()
	}
	if deps.Executor == nil {
		deps.Executor = system.DefaultExecutor()
	}
	if deps.Settings == nil {
		deps.Settings = config.Defaults()
	}
	return &Manager{
		ws:       ws,
		settings: deps.Settings,
		fs:       deps.FS,
		git:      vcs.New(deps.Settings.GitBinary, deps.Executor),
		redirect: redirect.New(ws.Root, deps.FS),
		engine:   transfer.NewEngine(ws, deps.FS),
		journal:  audit.NewLogger(ws.Root),
	}
}

// Workspace returns the workspace the Manager operates on.
func (m *Manager) Workspace() *workspace.Workspace {
	return m.ws
}

// Journal returns every recorded lifecycle event.
func (m *Manager) Journal() ([]audit.Event, error) {
	return m.journal.Events()
}

func (m *Manager) lock(ctx context.Context) (*lock.Lock, error) {
	return lock.Acquire(ctx, m.ws.Root, m.settings.LockTimeout)
}

// load ensures the workspace is managed and reads the store.
func (m *Manager) load() (*store.Store, error) {
	if err := m.redirect.EnsureManaged(); err != nil {
		return nil, err
	}
	return store.Load(m.fs, m.ws.Root)
}

func (m *Manager) storageAbs(storagePath string) string {
	return filepath.Join(m.ws.Root, filepath.FromSlash(storagePath))
}

// record appends to the journal. The journal is informational; a failure to
// write it never fails the operation.
func (m *Manager) record(event audit.Event) {
	if err := m.journal.Log(event); err != nil {
		logging.Warn("failed to write journal", "error", err)
	}
}

// note records a simple event the same way record does.
func (m *Manager) note(t audit.EventType, context, details string) {
	if err := m.journal.LogEvent(t, context, details); err != nil {
		logging.Warn("failed to write journal", "error", err)
	}
}

// warnings renders the failures and conflicts of a transfer report.
func warnings(verb string, report *transfer.Report) []string {
	var out []string
	for _, res := range report.Results {
		switch {
		case res.Outcome == transfer.Failed:
			out = append(out, "could not "+verb+" "+res.Path+": "+res.Err.Error())
		case res.Conflict:
			out = append(out, res.Path+" already existed and was replaced")
		}
	}
	return out
}
