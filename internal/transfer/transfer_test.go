package transfer

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/firefly-engineering/git-context/internal/system"
	"github.com/firefly-engineering/git-context/internal/workspace"
)

const storage = ".git-work"

func setup(t *testing.T) (*workspace.Workspace, string) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, storage), 0755); err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.At(root)
	if err != nil {
		t.Fatal(err)
	}
	return ws, root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

func cold(root, rel string) string {
	return filepath.Join(root, storage, ColdDir, filepath.FromSlash(rel))
}

func TestStashAndRestore(t *testing.T) {
	ws, root := setup(t)
	writeFile(t, filepath.Join(root, "secrets.env"), "TOKEN=1")
	writeFile(t, filepath.Join(root, "config", "local", "db.yaml"), "db: dev")

	e := NewEngine(ws, nil)
	files := []string{"secrets.env", "config/local/db.yaml", "never-created.txt"}

	report := e.Stash(storage, files)
	if err := report.Err(); err != nil {
		t.Fatalf("Stash error: %v", err)
	}
	if len(report.Moved()) != 2 {
		t.Errorf("Moved = %v, want 2 paths", report.Moved())
	}
	if report.Results[2].Outcome != Skipped {
		t.Errorf("absent path outcome = %v, want skipped", report.Results[2].Outcome)
	}
	if _, err := os.Lstat(filepath.Join(root, "secrets.env")); !os.IsNotExist(err) {
		t.Error("secrets.env should have left the working tree")
	}
	if got := readFile(t, cold(root, "config/local/db.yaml")); got != "db: dev" {
		t.Errorf("cold copy = %q", got)
	}

	if p := e.Locate(storage, "secrets.env"); p != Stashed {
		t.Errorf("Locate = %v, want stashed", p)
	}

	report = e.Restore(storage, files)
	if err := report.Err(); err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if got := readFile(t, filepath.Join(root, "secrets.env")); got != "TOKEN=1" {
		t.Errorf("restored content = %q", got)
	}
	info, err := os.Stat(filepath.Join(root, "secrets.env"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
	if p := e.Locate(storage, "secrets.env"); p != Present {
		t.Errorf("Locate = %v, want present", p)
	}
	if p := e.Locate(storage, "never-created.txt"); p != Missing {
		t.Errorf("Locate = %v, want missing", p)
	}
}

func TestStash_Directory(t *testing.T) {
	ws, root := setup(t)
	writeFile(t, filepath.Join(root, ".vscode", "settings.json"), "{}")
	writeFile(t, filepath.Join(root, ".vscode", "launch.json"), "[]")

	e := NewEngine(ws, nil)
	if err := e.Stash(storage, []string{".vscode"}).Err(); err != nil {
		t.Fatalf("Stash error: %v", err)
	}
	if got := readFile(t, cold(root, ".vscode/launch.json")); got != "[]" {
		t.Errorf("cold launch.json = %q", got)
	}
	if err := e.Restore(storage, []string{".vscode"}).Err(); err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if got := readFile(t, filepath.Join(root, ".vscode", "settings.json")); got != "{}" {
		t.Errorf("settings.json = %q", got)
	}
}

func TestStash_SymlinkMovedAsLink(t *testing.T) {
	ws, root := setup(t)
	writeFile(t, filepath.Join(root, "real.txt"), "data")
	if err := os.Symlink("real.txt", filepath.Join(root, "alias.txt")); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(ws, nil)
	if err := e.Stash(storage, []string{"alias.txt"}).Err(); err != nil {
		t.Fatalf("Stash error: %v", err)
	}

	info, err := os.Lstat(cold(root, "alias.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		t.Error("stashed alias.txt should still be a symlink")
	}
	if got := readFile(t, filepath.Join(root, "real.txt")); got != "data" {
		t.Error("link target must not be moved")
	}
}

func TestRestore_ConflictReplacesAndFlags(t *testing.T) {
	ws, root := setup(t)
	writeFile(t, cold(root, "notes.md"), "stashed")
	writeFile(t, filepath.Join(root, "notes.md"), "created meanwhile")

	e := NewEngine(ws, nil)
	report := e.Restore(storage, []string{"notes.md"})
	if err := report.Err(); err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if !report.Results[0].Conflict {
		t.Error("conflict should be flagged")
	}
	if len(report.Conflicts()) != 1 {
		t.Errorf("Conflicts = %v", report.Conflicts())
	}
	if got := readFile(t, filepath.Join(root, "notes.md")); got != "stashed" {
		t.Errorf("notes.md = %q, want the stashed copy", got)
	}
}

func TestStash_PartialFailureContinues(t *testing.T) {
	ws, root := setup(t)
	for _, name := range []string{"a.env", "b.env", "c.env"} {
		writeFile(t, filepath.Join(root, name), name)
	}

	faulty := system.NewFaultFS(nil)
	faulty.FailRename("b.env", fs.ErrPermission)
	e := NewEngine(ws, faulty)

	report := e.Stash(storage, []string{"a.env", "b.env", "c.env"})
	if report.Err() == nil {
		t.Fatal("Stash should report the failure")
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].Path != "b.env" {
		t.Errorf("Failed = %+v, want b.env only", failed)
	}
	if moved := report.Moved(); len(moved) != 2 || moved[0] != "a.env" || moved[1] != "c.env" {
		t.Errorf("Moved = %v, want [a.env c.env]", moved)
	}
	if got := readFile(t, filepath.Join(root, "b.env")); got != "b.env" {
		t.Error("b.env should still be in the working tree")
	}
}

func TestColdPath_StaysInsideStorage(t *testing.T) {
	ws, root := setup(t)
	e := NewEngine(ws, nil)

	got, err := e.ColdPath(storage, "dir/file.txt")
	if err != nil {
		t.Fatalf("ColdPath error: %v", err)
	}
	if got != cold(root, "dir/file.txt") {
		t.Errorf("ColdPath = %q", got)
	}
	if _, err := e.ColdPath(storage, "../../escape"); err == nil {
		t.Error("ColdPath should reject an escaping path")
	}
}

func TestOutcomeAndPresenceStrings(t *testing.T) {
	if Moved.String() != "moved" || Skipped.String() != "skipped" || Failed.String() != "failed" {
		t.Error("unexpected Outcome strings")
	}
	text, _ := Stashed.MarshalText()
	if string(text) != "stashed" {
		t.Errorf("MarshalText = %q", text)
	}
}

func TestPresenceUnmarshalText(t *testing.T) {
	for _, want := range []Presence{Present, Stashed, Missing} {
		text, _ := want.MarshalText()
		var got Presence
		if err := got.UnmarshalText(text); err != nil || got != want {
			t.Errorf("UnmarshalText(%q) = %v, %v", text, got, err)
		}
	}

	var p Presence
	if err := p.UnmarshalText([]byte("gone")); err == nil {
		t.Error("UnmarshalText should reject an unknown name")
	}
}
