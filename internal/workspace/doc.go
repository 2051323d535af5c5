// Package workspace locates the git-context workspace and maps user paths
// onto it.
//
// # Locating
//
// A workspace root is the first directory, walking up from the caller's
// working directory, that contains either the contexts file (.contexts) or
// a .git symlink. A nested repository with a plain .git directory, such as a
// vendored clone, does not stop the walk:
//
//	ws, err := workspace.Locate(cwd)
//	// ws.Root   = "/home/me/project"
//	// ws.Offset = "src/cmd" when invoked from /home/me/project/src/cmd
//
// init and new call LocateOrHere instead, which also stops at a plain .git
// directory so an existing repository can be adopted.
//
// # Paths
//
// Paths typed by the user are relative to their working directory. Normalize
// rewrites them relative to the root so that stored paths do not depend on
// where a command was run:
//
//	rel, _ := ws.Normalize("../config/secrets.env") // "src/config/secrets.env"
//
// Resolve goes the other way, using filepath-securejoin so that a stored
// path can never reach outside the workspace through a symlinked directory.
package workspace
