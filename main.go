package main

import (
	"os"

	"github.com/firefly-engineering/git-context/cmd"
	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if !errors.IsQuiet(err) {
			logging.UserError("%v", err)
		}
		os.Exit(errors.GetExitCode(err))
	}
}
