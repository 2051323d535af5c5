package system

import (
	"context"
	"io/fs"
	"strings"
	"sync"
)

// FaultFS wraps a FileSystem and injects errors for testing.
//
// The *Err fields fail every call of that operation. RenameFailures fails
// only renames whose source or destination ends with the given suffix,
// which lets a test break one file in the middle of a batch.
type FaultFS struct {
	FileSystem

	mu sync.Mutex

	// Error injection
	WriteFileErr error
	RemoveErr    error
	RemoveAllErr error
	MkdirAllErr  error
	RenameErr    error
	SymlinkErr   error
	ReadlinkErr  error

	RenameFailures map[string]error

	// Renames records every attempted rename as "old -> new".
	Renames []string
}

// NewFaultFS wraps base (the default OS file system when nil).
func NewFaultFS(base FileSystem) *FaultFS {
	if base == nil {
		base = &osFileSystem{}
	}
	return &FaultFS{
		FileSystem:     base,
		RenameFailures: make(map[string]error),
	}
}

// FailRename makes renames touching a path ending in suffix return err.
func (f *FaultFS) FailRename(suffix string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RenameFailures[suffix] = err
}

func (f *FaultFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if f.WriteFileErr != nil {
		return f.WriteFileErr
	}
	return f.FileSystem.WriteFile(path, data, perm)
}

func (f *FaultFS) Remove(path string) error {
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	return f.FileSystem.Remove(path)
}

func (f *FaultFS) RemoveAll(path string) error {
	if f.RemoveAllErr != nil {
		return f.RemoveAllErr
	}
	return f.FileSystem.RemoveAll(path)
}

func (f *FaultFS) MkdirAll(path string, perm fs.FileMode) error {
	if f.MkdirAllErr != nil {
		return f.MkdirAllErr
	}
	return f.FileSystem.MkdirAll(path, perm)
}

func (f *FaultFS) Rename(oldpath, newpath string) error {
	f.mu.Lock()
	f.Renames = append(f.Renames, oldpath+" -> "+newpath)
	var injected error
	for suffix, err := range f.RenameFailures {
		if strings.HasSuffix(oldpath, suffix) || strings.HasSuffix(newpath, suffix) {
			injected = err
			break
		}
	}
	f.mu.Unlock()

	if f.RenameErr != nil {
		return f.RenameErr
	}
	if injected != nil {
		return injected
	}
	return f.FileSystem.Rename(oldpath, newpath)
}

func (f *FaultFS) Symlink(oldname, newname string) error {
	if f.SymlinkErr != nil {
		return f.SymlinkErr
	}
	return f.FileSystem.Symlink(oldname, newname)
}

func (f *FaultFS) Readlink(path string) (string, error) {
	if f.ReadlinkErr != nil {
		return "", f.ReadlinkErr
	}
	return f.FileSystem.Readlink(path)
}

// MockExecutor implements CommandExecutor for testing.
type MockExecutor struct {
	mu sync.Mutex

	// Commands records all executed commands for verification.
	Commands []MockCommand

	// Responses maps command patterns to responses.
	// Key format: "command arg1"
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching response is found.
	DefaultResponse MockResponse

	// InteractiveErr is returned by ExecuteInteractive if set.
	InteractiveErr error

	// OnExecute, when set, runs for every Execute call before the response
	// lookup; a non-nil error is returned instead of the canned response.
	OnExecute func(name string, args []string) error
}

// MockCommand records an executed command.
type MockCommand struct {
	Name string
	Args []string
	Env  []string
}

// String renders the command the way it would be typed.
func (c MockCommand) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// MockResponse defines the response for a command.
type MockResponse struct {
	Output []byte
	Err    error
}

// NewMockExecutor creates a new MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Commands:  make([]MockCommand, 0),
		Responses: make(map[string]MockResponse),
	}
}

// AddResponse adds a response for a specific command pattern.
func (m *MockExecutor) AddResponse(pattern string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[pattern] = MockResponse{Output: output, Err: err}
}

func (m *MockExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, MockCommand{Name: name, Args: args})

	if m.OnExecute != nil {
		if err := m.OnExecute(name, args); err != nil {
			return nil, err
		}
	}

	key := name
	if len(args) > 0 {
		key = name + " " + args[0]
	}

	if resp, ok := m.Responses[key]; ok {
		return resp.Output, resp.Err
	}
	if resp, ok := m.Responses[name]; ok {
		return resp.Output, resp.Err
	}

	return m.DefaultResponse.Output, m.DefaultResponse.Err
}

func (m *MockExecutor) ExecuteInteractive(ctx context.Context, env []string, name string, args ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, MockCommand{Name: name, Args: args, Env: env})

	if m.InteractiveErr != nil {
		return m.InteractiveErr
	}
	return nil
}

// LastCommand returns the most recently executed command.
func (m *MockExecutor) LastCommand() (MockCommand, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Commands) == 0 {
		return MockCommand{}, false
	}
	return m.Commands[len(m.Commands)-1], true
}

// Reset clears all recorded commands.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = make([]MockCommand, 0)
}
