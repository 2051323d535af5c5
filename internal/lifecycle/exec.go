package lifecycle

import (
	"context"

	"github.com/firefly-engineering/git-context/internal/audit"
	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/store"
	"github.com/firefly-engineering/git-context/internal/vcs"
)

// Exec runs a command against context name without switching to it. The
// command sees GIT_DIR set to the context's storage and GIT_WORK_TREE set to
// the workspace root; its exit status is returned unchanged.
func (m *Manager) Exec(ctx context.Context, name string, args []string) error {
	if len(args) == 0 {
		return errors.EmptyCommand()
	}
	argv, err := vcs.SplitCommand(args)
	if err != nil {
		return err
	}
	if len(argv) == 0 {
		return errors.EmptyCommand()
	}

	s, err := store.Load(m.fs, m.ws.Root)
	if err != nil {
		return err
	}
	c, err := s.Get(name)
	if err != nil {
		return err
	}

	m.note(audit.EventExec, name, vcs.Describe(argv))
	return m.git.Exec(ctx, m.storageAbs(c.StoragePath), m.ws.Root, argv)
}
