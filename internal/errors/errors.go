package errors

import (
	"errors"
	"fmt"
)

// Exit codes for git-context
const (
	ExitSuccess           = 0
	ExitGeneralError      = 1
	ExitNotAWorkspace     = 2
	ExitNotManaged        = 3
	ExitAlreadyManaged    = 4
	ExitNoBackendFound    = 5
	ExitStoreUnreadable   = 6
	ExitInconsistentStore = 7
	ExitContextNotFound   = 8
	ExitContextExists     = 9
	ExitPathNotFound      = 10
	ExitEmptyCommand      = 11
	ExitExternalTool      = 12
	ExitFilesystem        = 13
	ExitLocked            = 14
)

// ContextError is the base error type for git-context
type ContextError struct {
	Code    int
	Message string
	Cause   error

	// Quiet errors are not printed by main; the exit code carries
	// everything the caller needs (e.g. a delegated command's status).
	Quiet bool
}

func (e *ContextError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *ContextError) ExitCode() int {
	return e.Code
}

// New creates a new ContextError
func New(code int, message string) *ContextError {
	return &ContextError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a ContextError
func Wrap(code int, message string, cause error) *ContextError {
	return &ContextError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// NotAWorkspace returns an error when no workspace marker is found above start.
func NotAWorkspace(start string) *ContextError {
	return New(ExitNotAWorkspace, fmt.Sprintf("not a git-context workspace (or any parent up to /): %s", start))
}

// NotManaged returns an error when .git is missing or is not a redirection.
func NotManaged(reason string) *ContextError {
	return New(ExitNotManaged, fmt.Sprintf("workspace is not managed by git-context: %s", reason))
}

// AlreadyManaged returns an error when init is attempted on a managed workspace.
func AlreadyManaged() *ContextError {
	return New(ExitAlreadyManaged, "workspace is already managed by git-context (.git is a symlink)")
}

// NoBackendFound returns an error when there is no repository to adopt.
func NoBackendFound(reason string) *ContextError {
	return New(ExitNoBackendFound, fmt.Sprintf("git repository not found: %s", reason))
}

// StoreUnreadable returns an error for a missing or corrupt contexts file.
func StoreUnreadable(message string, cause error) *ContextError {
	return Wrap(ExitStoreUnreadable, message, cause)
}

// InconsistentStore returns an error for a contexts file that parses but
// violates its own invariants. It is never repaired automatically.
func InconsistentStore(message string) *ContextError {
	return New(ExitInconsistentStore, fmt.Sprintf("contexts file is inconsistent: %s", message))
}

// ContextNotFound returns an error for an unregistered context name
func ContextNotFound(name string) *ContextError {
	return New(ExitContextNotFound, fmt.Sprintf("context not found: %s", name))
}

// ContextExists returns an error when registering a duplicate context name
func ContextExists(name string) *ContextError {
	return New(ExitContextExists, fmt.Sprintf("context already exists: %s", name))
}

// PathNotFound returns an error for a path missing from the working tree
func PathNotFound(path string) *ContextError {
	return New(ExitPathNotFound, fmt.Sprintf("path not found: %s", path))
}

// EmptyCommand returns an error when exec is given no command
func EmptyCommand() *ContextError {
	return New(ExitEmptyCommand, "no command given")
}

// ExternalToolFailure returns an error for a failed git invocation
func ExternalToolFailure(op string, cause error) *ContextError {
	return Wrap(ExitExternalTool, fmt.Sprintf("git %s failed", op), cause)
}

// FilesystemFailure returns an error for rename/mkdir/symlink failures
func FilesystemFailure(op string, cause error) *ContextError {
	return Wrap(ExitFilesystem, op, cause)
}

// Locked returns an error when the workspace lock cannot be taken in time
func Locked(cause error) *ContextError {
	return Wrap(ExitLocked, "workspace is locked by another git-context process", cause)
}

// CommandExited carries the exit status of a delegated command unchanged.
func CommandExited(code int, cause error) *ContextError {
	return &ContextError{
		Code:    code,
		Message: fmt.Sprintf("command exited with status %d", code),
		Cause:   cause,
		Quiet:   true,
	}
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *ContextError {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var ctxErr *ContextError
	if errors.As(err, &ctxErr) {
		return ctxErr.ExitCode()
	}
	return ExitGeneralError
}

// HasCode reports whether err carries the given exit code.
func HasCode(err error, code int) bool {
	return err != nil && GetExitCode(err) == code
}

// IsQuiet reports whether err should be reported by exit status only.
func IsQuiet(err error) bool {
	var ctxErr *ContextError
	if errors.As(err, &ctxErr) {
		return ctxErr.Quiet
	}
	return false
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join wraps the standard library's errors.Join so callers do not need to
// import both error packages.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
