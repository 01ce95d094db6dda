package subcommands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leefowlercu/restore2fa/internal/config"
	"github.com/leefowlercu/restore2fa/internal/testutil"
)

func run(t *testing.T, src *cobra.Command, register func(*cobra.Command), stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := &cobra.Command{
		Use:     src.Use,
		Args:    src.Args,
		PreRunE: src.PreRunE,
		RunE:    src.RunE,
	}
	if register != nil {
		register(cmd)
	}

	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func showFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&showRaw, "raw", false, "")
	cmd.Flags().StringVar(&showFormat, "format", "yaml", "")
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&resetConfirm, "confirm", false, "")
}

// writeConfig writes a config file into the test config dir and reloads.
func writeConfig(t *testing.T, env *testutil.TestEnv, content string) string {
	t.Helper()

	path := filepath.Join(env.ConfigDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	config.Reset()
	if err := config.Init(); err != nil {
		t.Fatalf("config.Init failed: %v", err)
	}
	return path
}

func TestShow_EffectiveYAML(t *testing.T) {
	env := testutil.NewTestEnv(t)

	out, err := run(t, ShowCmd, showFlags, "")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}

	if !strings.Contains(out, "# Config file: none") {
		t.Errorf("expected no config file note, got: %s", out)
	}
	if !strings.Contains(out, "dir: "+env.ExportDir) {
		t.Errorf("expected env override of export dir, got: %s", out)
	}
	if !strings.Contains(out, "recovery_level: medium") {
		t.Errorf("expected default recovery level, got: %s", out)
	}
}

func TestShow_TOML(t *testing.T) {
	testutil.NewTestEnv(t)

	out, err := run(t, ShowCmd, showFlags, "", "--format", "toml")
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(out, "[export]") {
		t.Errorf("expected TOML table header, got: %s", out)
	}
}

func TestShow_InvalidFormat(t *testing.T) {
	testutil.NewTestEnv(t)

	if _, err := run(t, ShowCmd, showFlags, "", "--format", "json"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestShow_Raw(t *testing.T) {
	env := testutil.NewTestEnv(t)

	out, err := run(t, ShowCmd, showFlags, "", "--raw")
	if err != nil {
		t.Fatalf("show --raw failed: %v", err)
	}
	if !strings.Contains(out, "No configuration file found") {
		t.Errorf("expected missing file note, got: %s", out)
	}

	path := writeConfig(t, env, "export:\n  size: 512\n")
	out, err = run(t, ShowCmd, showFlags, "", "--raw")
	if err != nil {
		t.Fatalf("show --raw failed: %v", err)
	}
	if !strings.Contains(out, path) || !strings.Contains(out, "size: 512") {
		t.Errorf("expected raw file contents, got: %s", out)
	}
}

func TestValidate_Defaults(t *testing.T) {
	testutil.NewTestEnv(t)

	out, err := run(t, ValidateCmd, nil, "")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "Using default configuration values.") {
		t.Errorf("got: %s", out)
	}
}

func TestValidate_ValidFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := writeConfig(t, env, "export:\n  format: png\n")

	out, err := run(t, ValidateCmd, nil, "")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration is valid: "+path) {
		t.Errorf("got: %s", out)
	}
}

func TestValidate_InvalidFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	writeConfig(t, env, "export:\n  format: gif\n  size: 10\n")

	out, err := run(t, ValidateCmd, nil, "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(out, "export.format") || !strings.Contains(out, "export.size") {
		t.Errorf("expected both field errors, got: %s", out)
	}
}

func TestValidate_ExplicitPath(t *testing.T) {
	testutil.NewTestEnv(t)
	path := filepath.Join(t.TempDir(), "candidate.toml")
	if err := os.WriteFile(path, []byte("[export]\nformat = \"png\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, ValidateCmd, nil, "", path)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration is valid: "+path) {
		t.Errorf("got: %s", out)
	}

	if _, err := run(t, ValidateCmd, nil, "", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReset_WritesDefaultsWithBackup(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := writeConfig(t, env, "export:\n  size: 512\n")

	out, err := run(t, ResetCmd, resetFlags, "", "--confirm")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !strings.Contains(out, "Backup created: "+path+".backup.") {
		t.Errorf("expected backup note, got: %s", out)
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("reset config does not load: %v", err)
	}
	if cfg.Export.Size != config.DefaultExportSize {
		t.Errorf("Export.Size = %d, want default %d", cfg.Export.Size, config.DefaultExportSize)
	}

	backups, _ := filepath.Glob(path + ".backup.*")
	if len(backups) != 1 {
		t.Errorf("found %d backups, want 1", len(backups))
	}
}

func TestReset_Prompt(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := writeConfig(t, env, "export:\n  size: 512\n")

	out, err := run(t, ResetCmd, resetFlags, "n\n")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !strings.Contains(out, "Reset cancelled.") {
		t.Errorf("got: %s", out)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "size: 512") {
		t.Error("declined reset must leave the file alone")
	}

	out, err = run(t, ResetCmd, resetFlags, "y\n")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !strings.Contains(out, "Configuration reset to defaults") {
		t.Errorf("got: %s", out)
	}
}

func TestReset_NoExistingFile(t *testing.T) {
	env := testutil.NewTestEnv(t)

	out, err := run(t, ResetCmd, resetFlags, "", "--confirm")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if strings.Contains(out, "Backup created") {
		t.Error("no backup expected without an existing file")
	}
	if !config.ConfigExistsAt(filepath.Join(env.ConfigDir, "config.yaml")) {
		t.Error("expected default config to be written")
	}
}

func TestReset_WorkingDirectoryConfig(t *testing.T) {
	env := testutil.NewTestEnv(t)

	dir := t.TempDir()
	t.Chdir(dir)
	local := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(local, []byte("export:\n  size: 512\n"), 0600); err != nil {
		t.Fatal(err)
	}
	config.Reset()
	if err := config.Init(); err != nil {
		t.Fatalf("config.Init failed: %v", err)
	}

	if _, err := run(t, ResetCmd, resetFlags, "", "--confirm"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	cfg, err := config.LoadFromPath(local)
	if err != nil {
		t.Fatalf("reset config does not load: %v", err)
	}
	if cfg.Export.Size != config.DefaultExportSize {
		t.Errorf("Export.Size = %d, want default %d", cfg.Export.Size, config.DefaultExportSize)
	}
	if config.ConfigExistsAt(filepath.Join(env.ConfigDir, "config.yaml")) {
		t.Error("reset of a loaded file must not write the default location")
	}
}

func TestEdit_CreatesAndValidates(t *testing.T) {
	env := testutil.NewTestEnv(t)
	t.Setenv("EDITOR", "true")

	out, err := run(t, EditCmd, nil, "")
	if err != nil {
		t.Fatalf("edit failed: %v", err)
	}

	path := filepath.Join(env.ConfigDir, "config.yaml")
	if !strings.Contains(out, "Default configuration written: "+path) {
		t.Errorf("expected creation note, got: %s", out)
	}
	if !strings.Contains(out, "Configuration saved: "+path) {
		t.Errorf("got: %s", out)
	}
	if !config.ConfigExists() {
		t.Error("edit should create the config file")
	}
}

func TestFindEditor(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "myvisual")
	if got := findEditor(); got != "myvisual" {
		t.Errorf("findEditor() = %q, want VISUAL", got)
	}

	t.Setenv("EDITOR", "myeditor")
	if got := findEditor(); got != "myeditor" {
		t.Errorf("findEditor() = %q, want EDITOR", got)
	}
}
