// Package store reads and writes the contexts file (.contexts) at the root of
// a workspace.
//
// The file is TOML and is always loaded and saved whole:
//
//	active_context = "work"
//
//	[contexts.work]
//	storage_path = ".git-work"
//	owned_files = ["config/local.env"]
//
//	[contexts.personal]
//	storage_path = ".git-personal"
//	owned_files = []
//
// Load rejects a file whose active context is not registered, whose storage
// paths collide, or whose owned files repeat or leave the workspace. The
// store does not lock; callers hold the workspace lock while they mutate it.
package store
