package store

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/system"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

// contextNameRegex validates context names.
// Names must start with a letter or digit, followed by letters, digits, dots, underscores, or hyphens.
var contextNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)

// ValidateName checks if a context name is valid.
// Valid names:
//   - Start with a letter or digit
//   - Contain only letters, digits, dots, underscores, or hyphens
//   - Are between 1 and 64 characters long
//
// The name becomes part of a directory name (.git-<name>), so path
// separators are never allowed.
func ValidateName(name string) error {
	if name == "" {
		return errors.ValidationError("context name cannot be empty")
	}

	if !contextNameRegex.MatchString(name) {
		return errors.ValidationError(fmt.Sprintf("invalid context name %q: must start with a letter or digit, contain only letters, digits, dots, underscores, or hyphens, and be at most 64 characters", name))
	}

	return nil
}

// Context is one registered history.
type Context struct {
	// StoragePath is the workspace-relative backend directory.
	StoragePath string `toml:"storage_path"`

	// OwnedFiles are workspace-relative paths private to this context.
	OwnedFiles []string `toml:"owned_files"`
}

// Owns reports whether rel is registered to this context.
func (c *Context) Owns(rel string) bool {
	for _, f := range c.OwnedFiles {
		if f == rel {
			return true
		}
	}
	return false
}

// AddFile registers rel, returning false if it was already owned.
func (c *Context) AddFile(rel string) bool {
	if c.Owns(rel) {
		return false
	}
	c.OwnedFiles = append(c.OwnedFiles, rel)
	return true
}

// RemoveFile deregisters rel, returning false if it was not owned.
func (c *Context) RemoveFile(rel string) bool {
	for i, f := range c.OwnedFiles {
		if f == rel {
			c.OwnedFiles = append(c.OwnedFiles[:i], c.OwnedFiles[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks that the Context is valid.
func (c *Context) Validate() error {
	if c.StoragePath == "" {
		return fmt.Errorf("storage_path is required")
	}
	if err := checkRelative(c.StoragePath); err != nil {
		return fmt.Errorf("storage_path: %w", err)
	}

	seen := make(map[string]bool, len(c.OwnedFiles))
	for _, f := range c.OwnedFiles {
		if err := checkRelative(f); err != nil {
			return fmt.Errorf("owned file %q: %w", f, err)
		}
		if seen[f] {
			return fmt.Errorf("owned file %q is listed twice", f)
		}
		seen[f] = true
	}
	return nil
}

func checkRelative(p string) error {
	if strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return fmt.Errorf("must be relative to the workspace root")
	}
	clean := path.Clean(p)
	if clean != p {
		return fmt.Errorf("must be a clean slash-separated path")
	}
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("must stay inside the workspace")
	}
	return nil
}

// Store is the persisted topology of a workspace: every context and which
// one is active. It is loaded and saved as a whole.
type Store struct {
	ActiveContext string              `toml:"active_context"`
	Contexts      map[string]*Context `toml:"contexts"`
}

// NewStore returns a store with a single active context.
func NewStore(name, storagePath string) *Store {
	return &Store{
		ActiveContext: name,
		Contexts: map[string]*Context{
			name: {StoragePath: storagePath, OwnedFiles: []string{}},
		},
	}
}

// Validate checks the invariants a loaded store must satisfy.
func (s *Store) Validate() error {
	if s.ActiveContext == "" {
		return fmt.Errorf("active_context is required")
	}
	if _, ok := s.Contexts[s.ActiveContext]; !ok {
		return fmt.Errorf("active context %q is not registered", s.ActiveContext)
	}

	storages := make(map[string]string, len(s.Contexts))
	owners := make(map[string]string)
	for _, name := range s.Names() {
		ctx := s.Contexts[name]
		if ctx == nil {
			return fmt.Errorf("context %q has no settings", name)
		}
		if err := ValidateName(name); err != nil {
			return err
		}
		if err := ctx.Validate(); err != nil {
			return fmt.Errorf("context %q: %w", name, err)
		}
		if other, dup := storages[ctx.StoragePath]; dup {
			return fmt.Errorf("contexts %q and %q share storage %s", other, name, ctx.StoragePath)
		}
		storages[ctx.StoragePath] = name
		for _, f := range ctx.OwnedFiles {
			if other, dup := owners[f]; dup {
				return fmt.Errorf("%s is owned by both %q and %q", f, other, name)
			}
			owners[f] = name
		}
	}
	return nil
}

// Names returns the registered context names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.Contexts))
	for name := range s.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named context or a ContextNotFound error.
func (s *Store) Get(name string) (*Context, error) {
	ctx, ok := s.Contexts[name]
	if !ok || ctx == nil {
		return nil, errors.ContextNotFound(name)
	}
	return ctx, nil
}

// Active returns the active context. A missing record is a consistency
// failure, not a user error.
func (s *Store) Active() (*Context, error) {
	ctx, ok := s.Contexts[s.ActiveContext]
	if !ok || ctx == nil {
		return nil, errors.InconsistentStore(fmt.Sprintf("active context %q is not registered", s.ActiveContext))
	}
	return ctx, nil
}

// Add registers a new context.
func (s *Store) Add(name string, ctx *Context) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, exists := s.Contexts[name]; exists {
		return errors.ContextExists(name)
	}
	if s.Contexts == nil {
		s.Contexts = make(map[string]*Context)
	}
	if ctx.OwnedFiles == nil {
		ctx.OwnedFiles = []string{}
	}
	s.Contexts[name] = ctx
	return nil
}

// Owner returns the context that owns rel, if any.
func (s *Store) Owner(rel string) (string, bool) {
	for _, name := range s.Names() {
		if s.Contexts[name].Owns(rel) {
			return name, true
		}
	}
	return "", false
}

// IsStorage reports whether rel is, or lies inside, a context's storage.
func (s *Store) IsStorage(rel string) (string, bool) {
	for _, name := range s.Names() {
		sp := s.Contexts[name].StoragePath
		if rel == sp || strings.HasPrefix(rel, sp+"/") {
			return name, true
		}
	}
	return "", false
}

func orDefault(fsys system.FileSystem) system.FileSystem {
	if fsys == nil {
		return system.DefaultFS()
	}
	return fsys
}

// Exists reports whether root has a contexts file. A nil fsys uses the OS
// file system, as do Load and Save.
func Exists(fsys system.FileSystem, root string) bool {
	_, err := orDefault(fsys).Lstat(filepath.Join(root, workspace.StoreFile))
	return err == nil
}

// Load reads and validates the contexts file under root.
func Load(fsys system.FileSystem, root string) (*Store, error) {
	storePath := filepath.Join(root, workspace.StoreFile)
	data, err := orDefault(fsys).ReadFile(storePath)
	if err != nil {
		return nil, errors.StoreUnreadable("failed to read contexts file (has 'init' been run?)", err)
	}

	var s Store
	if _, err := toml.Decode(string(data), &s); err != nil {
		return nil, errors.StoreUnreadable("failed to parse contexts file", err)
	}
	if s.Contexts == nil {
		s.Contexts = make(map[string]*Context)
	}

	if err := s.Validate(); err != nil {
		return nil, errors.InconsistentStore(err.Error())
	}

	return &s, nil
}

// Save writes the whole store under root. The file is replaced atomically
// so a crash never leaves a truncated contexts file behind.
func (s *Store) Save(fsys system.FileSystem, root string) error {
	if err := s.Validate(); err != nil {
		return errors.InconsistentStore(err.Error())
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode contexts file: %w", err)
	}

	fsys = orDefault(fsys)
	storePath := filepath.Join(root, workspace.StoreFile)
	tmpPath := storePath + ".tmp"
	if err := fsys.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return errors.FilesystemFailure("failed to write contexts file", err)
	}
	if err := fsys.Rename(tmpPath, storePath); err != nil {
		fsys.Remove(tmpPath)
		return errors.FilesystemFailure("failed to replace contexts file", err)
	}

	return nil
}
