package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/firefly-engineering/git-context/internal/audit"
	"github.com/firefly-engineering/git-context/internal/logging"
	"github.com/firefly-engineering/git-context/internal/store"
	"github.com/firefly-engineering/git-context/internal/transfer"
	"github.com/firefly-engineering/git-context/internal/vcs"
)

// OwnedFile is an owned path and where it currently lives.
type OwnedFile struct {
	Path     string            `json:"path" yaml:"path"`
	Presence transfer.Presence `json:"presence" yaml:"presence"`
}

// ContextInfo summarizes one registered context.
type ContextInfo struct {
	Name          string `json:"name" yaml:"name"`
	StoragePath   string `json:"storage_path" yaml:"storage_path"`
	Active        bool   `json:"active" yaml:"active"`
	Owned         int    `json:"owned_files" yaml:"owned_files"`
	StorageExists bool   `json:"storage_exists" yaml:"storage_exists"`
	Head          string `json:"head,omitempty" yaml:"head,omitempty"`
}

// PendingSwitch is a switch that began but never completed or aborted.
type PendingSwitch struct {
	From    string    `json:"from" yaml:"from"`
	To      string    `json:"to" yaml:"to"`
	Started time.Time `json:"started" yaml:"started"`
}

// Status is a read-only snapshot of the workspace.
type Status struct {
	Root          string        `json:"root" yaml:"root"`
	ActiveContext string        `json:"active_context" yaml:"active_context"`
	LinkTarget    string        `json:"link_target" yaml:"link_target"`
	OwnedFiles    []OwnedFile   `json:"owned_files" yaml:"owned_files"`
	Contexts      []ContextInfo `json:"contexts" yaml:"contexts"`

	// Problems lists inconsistencies that 'refresh' can repair.
	Problems []string       `json:"problems,omitempty" yaml:"problems,omitempty"`
	Pending  *PendingSwitch `json:"pending_switch,omitempty" yaml:"pending_switch,omitempty"`
}

// Status reports the active context, its owned files, every context and
// anything that looks inconsistent. It takes no lock.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	s, err := m.load()
	if err != nil {
		return nil, err
	}
	active, err := s.Active()
	if err != nil {
		return nil, err
	}
	target, err := m.redirect.Target()
	if err != nil {
		return nil, err
	}

	st := &Status{
		Root:          m.ws.Root,
		ActiveContext: s.ActiveContext,
		LinkTarget:    target,
		OwnedFiles:    []OwnedFile{},
	}

	if target != active.StoragePath {
		st.Problems = append(st.Problems, fmt.Sprintf(".git points at %s but the active context %s uses %s", target, s.ActiveContext, active.StoragePath))
	}

	for _, rel := range active.OwnedFiles {
		p := m.engine.Locate(active.StoragePath, rel)
		st.OwnedFiles = append(st.OwnedFiles, OwnedFile{Path: rel, Presence: p})
		if p == transfer.Stashed {
			st.Problems = append(st.Problems, fmt.Sprintf("%s is still in cold storage", rel))
		}
	}

	for _, name := range s.Names() {
		st.Contexts = append(st.Contexts, m.contextInfo(s, name))
		if name == s.ActiveContext {
			continue
		}
		for _, rel := range s.Contexts[name].OwnedFiles {
			if m.engine.Locate(s.Contexts[name].StoragePath, rel) == transfer.Present {
				st.Problems = append(st.Problems, fmt.Sprintf("%s (owned by inactive context %s) is in the working tree", rel, name))
			}
		}
	}

	pending, err := m.journal.Pending()
	if err != nil {
		logging.Debug("journal unreadable", "error", err)
	} else if pending != nil {
		st.Pending = pendingSwitch(pending)
	}

	return st, nil
}

func (m *Manager) contextInfo(s *store.Store, name string) ContextInfo {
	c := s.Contexts[name]
	info := ContextInfo{
		Name:          name,
		StoragePath:   c.StoragePath,
		Active:        name == s.ActiveContext,
		Owned:         len(c.OwnedFiles),
		StorageExists: m.fs.IsDir(m.storageAbs(c.StoragePath)),
	}
	if info.StorageExists {
		head, err := vcs.Head(m.storageAbs(c.StoragePath))
		if err != nil {
			logging.Debug("cannot read HEAD", "context", name, "error", err)
		} else {
			info.Head = head.String()
		}
	}
	return info
}

func pendingSwitch(e *audit.Event) *PendingSwitch {
	return &PendingSwitch{From: e.From, To: e.Context, Started: e.Timestamp}
}
