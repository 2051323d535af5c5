package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"

	"github.com/firefly-engineering/git-context/internal/store"
)

func TestFixturesLoad(t *testing.T) {
	tests := []struct {
		name    string
		load    func() ([]byte, error)
		wantErr bool
	}{
		{"two contexts", TwoContexts, false},
		{"dangling active", DanglingActive, true},
		{"double owner", DoubleOwner, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.load()
			if err != nil {
				t.Fatalf("fixture error: %v", err)
			}
			root := t.TempDir()
			if err := os.WriteFile(filepath.Join(root, ".contexts"), data, 0644); err != nil {
				t.Fatal(err)
			}
			_, err = store.Load(nil, root)
			if (err != nil) != tt.wantErr {
				t.Errorf("store.Load error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	if _, err := LoadFixture("nonexistent.toml"); err == nil {
		t.Error("LoadFixture should fail for a nonexistent fixture")
	}
}

func TestNewRepo(t *testing.T) {
	w := NewRepo(t)

	repo, err := git.PlainOpen(w.Root)
	if err != nil {
		t.Fatalf("PlainOpen error: %v", err)
	}
	if _, err := repo.Head(); err != nil {
		t.Errorf("repository should have a commit: %v", err)
	}
	if w.Read("README.md") != "# project\n" {
		t.Error("README.md should be written")
	}
}

func TestFakeGit_InitBare(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".git-personal")

	if err := FakeGit([]string{"init", "--quiet", "--bare", dir}); err != nil {
		t.Fatalf("init error: %v", err)
	}
	if err := FakeGit([]string{"--git-dir", dir, "config", "core.bare", "false"}); err != nil {
		t.Fatalf("config error: %v", err)
	}
	if err := FakeGit([]string{"--git-dir", dir, "config", "core.logAllRefUpdates", "true"}); err != nil {
		t.Fatalf("config error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "config"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); !strings.Contains(got, "bare = false") || !strings.Contains(got, "logAllRefUpdates = true") {
		t.Errorf("config = %q", got)
	}
}
