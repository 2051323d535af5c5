package testutil

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/firefly-engineering/git-context/internal/workspace"
)

//go:embed fixtures/*.toml
var fixturesFS embed.FS

// LoadFixture loads a contexts file fixture by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// WriteStoreFixture installs a fixture as the contexts file under root.
func WriteStoreFixture(root, name string) error {
	data, err := LoadFixture(name)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, workspace.StoreFile), data, 0644)
}

// TwoContexts is a consistent store: work (active) and personal.
func TwoContexts() ([]byte, error) {
	return LoadFixture("two_contexts.toml")
}

// DanglingActive names an active context that is not registered.
func DanglingActive() ([]byte, error) {
	return LoadFixture("dangling_active.toml")
}

// DoubleOwner has one path owned by two contexts.
func DoubleOwner() ([]byte, error) {
	return LoadFixture("double_owner.toml")
}
