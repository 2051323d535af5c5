package cmd

import (
	"os"

	"github.com/firefly-engineering/git-context/internal/app"
	"github.com/firefly-engineering/git-context/internal/lifecycle"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

// manager locates the workspace around the working directory and returns a
// lifecycle manager for it.
func manager() (*lifecycle.Manager, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Locate(cwd)
	if err != nil {
		return nil, err
	}
	return app.Default.Manager(ws), nil
}

// bootstrapManager is manager for init and new, which may run where no
// workspace exists yet; the working directory then becomes the root.
func bootstrapManager() (*lifecycle.Manager, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	ws, err := workspace.LocateOrHere(cwd)
	if err != nil {
		return nil, err
	}
	return app.Default.Manager(ws), nil
}
