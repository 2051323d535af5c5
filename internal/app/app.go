// Package app provides the application context for git-context.
// It allows dependency injection for testing.
package app

import (
	"github.com/firefly-engineering/git-context/internal/config"
	"github.com/firefly-engineering/git-context/internal/lifecycle"
	"github.com/firefly-engineering/git-context/internal/system"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

// App holds the application dependencies
type App struct {
	// Settings is the loaded user configuration
	Settings *config.Settings

	// FS is the file system the lifecycle operations act on
	FS system.FileSystem

	// Executor runs git and exec'd commands
	Executor system.CommandExecutor
}

// Option is a function that configures the App
type Option func(*App)

// WithSettings sets custom settings
func WithSettings(s *config.Settings) Option {
	return func(a *App) {
		a.Settings = s
	}
}

// WithFS sets a custom file system
func WithFS(fs system.FileSystem) Option {
	return func(a *App) {
		a.FS = fs
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Executor = exec
	}
}

// New creates a new App with the given options. Anything not provided
// falls back to the OS implementation or the default settings.
func New(opts ...Option) *App {
	app := &App{}

	for _, opt := range opts {
		opt(app)
	}

	if app.Settings == nil {
		app.Settings = config.Defaults()
	}
	if app.FS == nil {
		app.FS = system.DefaultFS()
	}
	if app.Executor == nil {
		app.Executor = system.DefaultExecutor()
	}

	return app
}

// Manager returns a lifecycle manager for ws wired to the app's
// dependencies.
func (a *App) Manager(ws *workspace.Workspace) *lifecycle.Manager {
	return lifecycle.New(ws, lifecycle.Deps{
		FS:       a.FS,
		Executor: a.Executor,
		Settings: a.Settings,
	})
}

// Default is the default application instance
var Default = New()

// SetDefault sets the default application instance (used for testing)
func SetDefault(app *App) {
	Default = app
}

// ResetDefault resets to the default application instance
func ResetDefault() {
	Default = New()
}
