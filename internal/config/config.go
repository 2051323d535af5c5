package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultGitBinary     = "git"
	DefaultStoragePrefix = ".git-"
	DefaultLockTimeout   = 10 * time.Second

	// EnvPrefix is the prefix of environment overrides.
	EnvPrefix = "GIT_CONTEXT_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Settings are the tool's own settings, shared by every workspace.
type Settings struct {
	// GitBinary is the git executable used to create backends.
	GitBinary string `koanf:"git"`

	// StoragePrefix is prepended to a context name to form its storage
	// directory.
	StoragePrefix string `koanf:"storage_prefix"`

	// LockTimeout bounds how long a mutating command waits for the
	// workspace lock.
	LockTimeout time.Duration `koanf:"lock_timeout"`
}

// Defaults returns the built-in settings.
func Defaults() *Settings {
	return &Settings{
		GitBinary:     DefaultGitBinary,
		StoragePrefix: DefaultStoragePrefix,
		LockTimeout:   DefaultLockTimeout,
	}
}

// StorageFor returns the workspace-relative storage path for a context.
func (s *Settings) StorageFor(name string) string {
	return s.StoragePrefix + name
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if s.GitBinary == "" {
		return fmt.Errorf("git must not be empty")
	}
	if s.StoragePrefix == "" {
		return fmt.Errorf("storage_prefix must not be empty")
	}
	if strings.ContainsAny(s.StoragePrefix, `/\`) {
		return fmt.Errorf("storage_prefix %q must not contain path separators", s.StoragePrefix)
	}
	if s.StoragePrefix == ".git" || strings.HasPrefix(s.StoragePrefix, ".git.") || strings.HasPrefix(s.StoragePrefix, ".contexts") {
		return fmt.Errorf("storage_prefix %q collides with a reserved name", s.StoragePrefix)
	}
	if s.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout must not be negative")
	}
	return nil
}

// DefaultPath returns ~/.config/git-context/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "git-context", "config.yaml"), nil
}

// Load reads settings from the YAML file at path, then applies GIT_CONTEXT_*
// environment overrides, then fills defaults for anything still unset.
//
// Precedence (highest to lowest):
//  1. Environment variables (GIT_CONTEXT_LOCK_TIMEOUT -> lock_timeout)
//  2. YAML config file
//  3. Built-in defaults
//
// An empty path means the default location, which may be absent. An explicit
// path must exist.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	content, err := readConfigFile(path)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&s)

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &s, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return io.ReadAll(io.LimitReader(f, maxConfigFileSize))
}

func applyDefaults(s *Settings) {
	d := Defaults()
	if s.GitBinary == "" {
		s.GitBinary = d.GitBinary
	}
	if s.StoragePrefix == "" {
		s.StoragePrefix = d.StoragePrefix
	}
	if s.LockTimeout == 0 {
		s.LockTimeout = d.LockTimeout
	}
}
