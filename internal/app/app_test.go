package app

import (
	"testing"

	"github.com/firefly-engineering/git-context/internal/config"
	"github.com/firefly-engineering/git-context/internal/system"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

func TestNew(t *testing.T) {
	app := New()

	if app == nil {
		t.Fatal("New() returned nil")
	}
	if app.Settings == nil || app.FS == nil || app.Executor == nil {
		t.Errorf("New() left a dependency unset: %+v", app)
	}
	if app.Settings.GitBinary != "git" {
		t.Errorf("GitBinary = %q, want git", app.Settings.GitBinary)
	}
}

func TestNew_Options(t *testing.T) {
	settings := config.Defaults()
	settings.StoragePrefix = ".repo-"
	fs := system.NewFaultFS(nil)
	exec := system.NewMockExecutor()

	app := New(
		WithSettings(settings),
		WithFS(fs),
		WithExecutor(exec),
	)

	if app.Settings != settings {
		t.Error("WithSettings did not set settings")
	}
	if app.FS != fs {
		t.Error("WithFS did not set the file system")
	}
	if app.Executor != exec {
		t.Error("WithExecutor did not set the executor")
	}
}

func TestManager(t *testing.T) {
	ws := &workspace.Workspace{Root: t.TempDir(), Offset: "."}
	m := New().Manager(ws)

	if m.Workspace() != ws {
		t.Error("Manager is bound to the wrong workspace")
	}
}

func TestSetDefault(t *testing.T) {
	original := Default
	defer func() { Default = original }()

	custom := New(WithExecutor(system.NewMockExecutor()))
	SetDefault(custom)
	if Default != custom {
		t.Error("SetDefault did not set Default")
	}

	ResetDefault()
	if Default == custom {
		t.Error("ResetDefault did not replace Default")
	}
}
