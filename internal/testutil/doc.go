// Package testutil provides test workspaces and fixtures.
//
// # Workspaces
//
// NewRepo creates a temporary directory holding an ordinary git repository
// with one commit, built with go-git so no git binary is needed:
//
//	w := testutil.NewRepo(t)
//	w.Write("secrets.env", "TOKEN=1")
//	m := lifecycle.New(w.WS, lifecycle.Deps{Executor: w.Exec, Settings: w.Settings})
//
// NewWorkspace creates an empty directory instead. Both come with
// GitExecutor, a MockExecutor that carries out "git init --bare" and
// "git --git-dir <dir> config" with go-git and records every command.
//
// # Fixtures
//
// Contexts file fixtures are embedded using go:embed:
//
//	fixtures/two_contexts.toml
//	fixtures/dangling_active.toml
//	fixtures/double_owner.toml
//
// WriteStoreFixture installs one as the contexts file of a directory.
package testutil
