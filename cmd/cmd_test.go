package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/firefly-engineering/git-context/internal/app"
	"github.com/firefly-engineering/git-context/internal/errors"
	"github.com/firefly-engineering/git-context/internal/lifecycle"
	"github.com/firefly-engineering/git-context/internal/logging"
	"github.com/firefly-engineering/git-context/internal/store"
	"github.com/firefly-engineering/git-context/internal/testutil"
)

func executeCommand(args ...string) (string, string, error) {
	// Reset flag values before each test
	verbose = false
	jsonOutput = false
	configPath = ""
	statusOutput = "text"
	logJSON = false

	cmd := rootCmd
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	logging.SetOutput(&stdout, &stderr)

	err := cmd.Execute()

	// Reset args for next test
	cmd.SetArgs(nil)
	cmd.SetOut(nil)
	cmd.SetErr(nil)
	logging.SetOutput(nil, nil)

	return stdout.String(), stderr.String(), err
}

// setupRepo creates a repository with one commit, makes it the working
// directory and wires the fake git executor into the app.
func setupRepo(t *testing.T) *testutil.Workspace {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	w := testutil.NewRepo(t)
	t.Chdir(w.Root)

	app.SetDefault(app.New(app.WithExecutor(w.Exec)))
	t.Cleanup(app.ResetDefault)
	return w
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := executeCommand(args...)
	if err != nil {
		t.Fatalf("%s failed: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), err, stdout, stderr)
	}
	return stdout
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	if !strings.Contains(stdout, "git-context") {
		t.Error("Help output should contain 'git-context'")
	}
	for _, sub := range []string{"init", "new", "switch", "keep", "unkeep", "exec", "status", "refresh", "pick", "log", "list"} {
		if !strings.Contains(stdout, sub) {
			t.Errorf("Help output should list %s", sub)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help failed: %v", err)
	}

	for _, flag := range []string{"--verbose", "--json", "--config"} {
		if !strings.Contains(stdout, flag) {
			t.Errorf("Should have %s flag", flag)
		}
	}
}

func TestCommandRequiresArgs(t *testing.T) {
	for _, name := range []string{"init", "new", "switch", "keep", "unkeep", "exec"} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := executeCommand(name); err == nil {
				t.Errorf("%s without arguments should fail", name)
			}
		})
	}
}

func TestNotAWorkspace(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, _, err := executeCommand("status")
	if !errors.HasCode(err, errors.ExitNotAWorkspace) {
		t.Errorf("status error = %v, want NotAWorkspace", err)
	}
}

func TestExplicitConfigMustExist(t *testing.T) {
	setupRepo(t)

	_, _, err := executeCommand("--config", filepath.Join(t.TempDir(), "missing.yaml"), "status")
	if err == nil {
		t.Error("a missing --config file should fail")
	}
}

func TestConfigStoragePrefix(t *testing.T) {
	w := setupRepo(t)
	cfg := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfg, []byte("storage_prefix: .repo-\n"), 0644); err != nil {
		t.Fatal(err)
	}

	mustRun(t, "--config", cfg, "init", "work")
	if w.LinkTarget() != ".repo-work" {
		t.Errorf(".git -> %q, want .repo-work", w.LinkTarget())
	}
}

func TestWorkflow(t *testing.T) {
	w := setupRepo(t)

	out := mustRun(t, "init", "work")
	if !strings.Contains(out, "Initialized context work") {
		t.Errorf("init output = %q", out)
	}

	w.Write("secrets.env", "TOKEN=work")
	out = mustRun(t, "keep", "secrets.env")
	if !strings.Contains(out, "secrets.env is now owned by work") {
		t.Errorf("keep output = %q", out)
	}

	out = mustRun(t, "new", "personal")
	if !strings.Contains(out, "Switched from work to personal") {
		t.Errorf("new output = %q", out)
	}
	if w.Exists("secrets.env") {
		t.Error("secrets.env should be stashed")
	}

	out = mustRun(t, "switch", "work")
	if !strings.Contains(out, "Restored 1 file(s) of work") {
		t.Errorf("switch output = %q", out)
	}
	if w.Read("secrets.env") != "TOKEN=work" {
		t.Error("secrets.env should be restored")
	}

	out = mustRun(t, "switch", "work")
	if !strings.Contains(out, "Already on context work") {
		t.Errorf("second switch output = %q", out)
	}

	out = mustRun(t, "unkeep", "secrets.env")
	if !strings.Contains(out, "no longer owned") {
		t.Errorf("unkeep output = %q", out)
	}
	s, err := store.Load(nil, w.Root)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Contexts["work"].OwnedFiles) != 0 {
		t.Errorf("owned files = %v", s.Contexts["work"].OwnedFiles)
	}
}

func TestKeepFromSubdirectory(t *testing.T) {
	w := setupRepo(t)
	mustRun(t, "init", "work")

	w.Write("sub/local.env", "x")
	t.Chdir(w.Path("sub"))
	mustRun(t, "keep", "local.env")

	s, err := store.Load(nil, w.Root)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Contexts["work"].OwnedFiles; len(got) != 1 || got[0] != "sub/local.env" {
		t.Errorf("owned files = %v", got)
	}
}

func TestKeepInsideVendoredRepository(t *testing.T) {
	w := setupRepo(t)
	mustRun(t, "init", "work")

	w.Write("vendor/lib/local.env", "x")
	if err := os.Mkdir(w.Path("vendor/lib/.git"), 0755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(w.Path("vendor/lib"))
	mustRun(t, "keep", "local.env")

	s, err := store.Load(nil, w.Root)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Contexts["work"].OwnedFiles; len(got) != 1 || got[0] != "vendor/lib/local.env" {
		t.Errorf("owned files = %v", got)
	}
}

func TestKeepMissingPath(t *testing.T) {
	setupRepo(t)
	mustRun(t, "init", "work")

	_, _, err := executeCommand("keep", "nope.txt")
	if !errors.HasCode(err, errors.ExitPathNotFound) {
		t.Errorf("keep error = %v, want PathNotFound", err)
	}
}

func TestStatusFormats(t *testing.T) {
	w := setupRepo(t)
	mustRun(t, "init", "work")
	w.Write("secrets.env", "x")
	mustRun(t, "keep", "secrets.env")
	mustRun(t, "new", "personal")

	t.Run("text", func(t *testing.T) {
		out := mustRun(t, "status")
		for _, want := range []string{"Active: personal", ".git -> .git-personal", "(none)", "* personal", "work"} {
			if !strings.Contains(out, want) {
				t.Errorf("status output should contain %q:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		out := mustRun(t, "status", "-o", "json")
		var st lifecycle.Status
		if err := json.Unmarshal([]byte(out), &st); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if st.ActiveContext != "personal" || len(st.Contexts) != 2 {
			t.Errorf("status = %+v", st)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out := mustRun(t, "status", "-o", "yaml")
		if !strings.Contains(out, "active_context: personal") || !strings.Contains(out, "storage_path: .git-work") {
			t.Errorf("yaml output:\n%s", out)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, _, err := executeCommand("status", "-o", "xml"); err == nil {
			t.Error("unknown format should fail")
		}
	})
}

func TestListAndPick(t *testing.T) {
	setupRepo(t)
	mustRun(t, "init", "work")
	mustRun(t, "new", "personal")

	out := mustRun(t, "list")
	if !strings.Contains(out, "NAME") || !strings.Contains(out, ".git-work") {
		t.Errorf("list output:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	var active string
	for _, l := range lines {
		if strings.HasPrefix(l, "*") {
			active = l
		}
	}
	if !strings.Contains(active, "personal") {
		t.Errorf("active row = %q", active)
	}

	// Test output is not a terminal, so pick lists instead.
	out = mustRun(t, "pick")
	if !strings.Contains(out, "* personal") {
		t.Errorf("pick output:\n%s", out)
	}
}

func TestExec(t *testing.T) {
	w := setupRepo(t)
	mustRun(t, "init", "work")
	mustRun(t, "new", "personal")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"plain", []string{"exec", "work", "git", "log", "-n", "3"}, "git log -n 3"},
		{"separator", []string{"exec", "work", "--", "git", "status"}, "git status"},
		{"quoted", []string{"exec", "work", "git commit -m 'two words'"}, "git commit -m two words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.Exec.Reset()
			mustRun(t, tt.args...)

			cmd, ok := w.Exec.LastCommand()
			if !ok || cmd.String() != tt.want {
				t.Fatalf("command = %q, want %q", cmd.String(), tt.want)
			}
			if len(cmd.Env) != 2 || cmd.Env[0] != "GIT_DIR="+w.Path(".git-work") {
				t.Errorf("Env = %v", cmd.Env)
			}
		})
	}

	if w.LinkTarget() != ".git-personal" {
		t.Error("exec must not switch contexts")
	}
}

func TestExecEmptyCommand(t *testing.T) {
	w := setupRepo(t)
	mustRun(t, "init", "work")
	w.Exec.Reset()

	for _, args := range [][]string{{"exec", "work"}, {"exec", "work", "--"}} {
		_, _, err := executeCommand(args...)
		if !errors.HasCode(err, errors.ExitEmptyCommand) {
			t.Errorf("%v error = %v, want EmptyCommand", args, err)
		}
	}
	if len(w.Exec.Commands) != 0 {
		t.Errorf("no command should run, got %v", w.Exec.Commands)
	}
}

func TestRefreshCommand(t *testing.T) {
	w := setupRepo(t)
	mustRun(t, "init", "work")

	out := mustRun(t, "refresh")
	if !strings.Contains(out, "consistent") {
		t.Errorf("refresh output = %q", out)
	}

	if err := os.Remove(w.Path(".git")); err != nil {
		t.Fatal(err)
	}
	out = mustRun(t, "refresh")
	if !strings.Contains(out, "Pointed .git at context work") {
		t.Errorf("refresh output = %q", out)
	}
	if w.LinkTarget() != ".git-work" {
		t.Errorf(".git -> %q", w.LinkTarget())
	}
}

func TestLogCommand(t *testing.T) {
	setupRepo(t)
	mustRun(t, "init", "work")
	mustRun(t, "new", "personal")

	out := mustRun(t, "log")
	if !strings.Contains(out, "switch-complete") || !strings.Contains(out, "work -> personal") {
		t.Errorf("log output:\n%s", out)
	}

	out = mustRun(t, "log", "--json")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d JSON lines, want 4 (init, new, switch-begin, switch-complete):\n%s", len(lines), out)
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if first["type"] != "init" {
		t.Errorf("first event = %v", first)
	}
}
