// Package errors provides typed errors with exit codes for git-context.
//
// # Error Types
//
// ContextError is the base error type that wraps an error with an exit code:
//
//	type ContextError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	    Quiet   bool   // Report by exit status only
//	}
//
// # Exit Codes
//
//	ExitSuccess           = 0   // Success
//	ExitGeneralError      = 1   // General/validation errors
//	ExitNotAWorkspace     = 2   // No .contexts or .git found above cwd
//	ExitNotManaged        = 3   // .git missing or not a symlink
//	ExitAlreadyManaged    = 4   // init on a managed workspace
//	ExitNoBackendFound    = 5   // no repository to adopt
//	ExitStoreUnreadable   = 6   // .contexts missing or unparsable
//	ExitInconsistentStore = 7   // .contexts violates its invariants
//	ExitContextNotFound   = 8   // unknown context name
//	ExitContextExists     = 9   // duplicate context name
//	ExitPathNotFound      = 10  // keep on a nonexistent path
//	ExitEmptyCommand      = 11  // exec without a command
//	ExitExternalTool      = 12  // git exited non-zero
//	ExitFilesystem        = 13  // rename/mkdir/symlink failure
//	ExitLocked            = 14  // another process holds the workspace lock
//
// CommandExited is the exception: its code is the exit status of the
// command run by exec, passed through unchanged.
//
// # Error Constructors
//
// Use the provided constructors for consistent error creation:
//
//	return errors.ContextNotFound(name)
//	return errors.FilesystemFailure("failed to move .git", err)
//
// GetExitCode extracts the exit code from any error chain and is what main
// hands to os.Exit.
package errors
