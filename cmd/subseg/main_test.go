package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"

	"subseg/internal/config"
	"subseg/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Chdir(base)
	for _, name := range config.APIKeyEnvVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "subseg-test.toml"),
		outputDir:  filepath.Join(base, "out"),
	}
	testsupport.WriteFile(t, env.configPath, fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
cache_path = %q

[split]
nlp_engine = "rules"

[llm]
cache_enabled = true

[logging]
level = "error"
retention_days = 0
`, env.outputDir, filepath.Join(base, "logs"), filepath.Join(base, "cache", "llm.db")))
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Semantic stage ready: no")

	target := filepath.Join(env.baseDir, "new", "config.toml")
	out, _, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}

func TestConfigShowMasksKey(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("SUBSEG_LLM_API_KEY", "sk-test-123456")

	out, _, err := runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "sk-test-123456") {
		t.Fatalf("api key leaked:\n%s", out)
	}
	requireContains(t, out, "****3456")
}

func TestEnvFileSuppliesAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	envFile := filepath.Join(env.baseDir, "custom.env")
	testsupport.WriteFile(t, envFile, "SUBSEG_LLM_API_KEY=from-env-file\n")

	out, _, err := runCLI(t, env, "--env-file", envFile, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Semantic stage ready: yes")

	if _, _, err := runCLI(t, env, "--env-file", filepath.Join(env.baseDir, "missing.env"), "config", "validate"); err == nil {
		t.Fatal("expected an explicit missing env file to fail")
	}
}

func TestSplitWritesCheckpoints(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "talk.txt")
	testsupport.WriteLines(t, input, []string{"Hello there.", "How are you?"})

	out, _, err := runCLI(t, env, "split", input)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	requireContains(t, out, "Split summary")
	requireContains(t, out, "2 segments")
	requireContains(t, out, "semantic stage skipped")

	for _, name := range []string{"split_by_mark.txt", "split_by_comma.txt", "split_by_connector.txt", "split_by_nlp.txt", ".subseg-manifest.toml"} {
		if _, err := os.Stat(filepath.Join(env.outputDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, "split_by_meaning.txt")); !os.IsNotExist(err) {
		t.Fatalf("meaning checkpoint should not exist without an api key: %v", err)
	}
}

func TestSplitPrintAndNoComma(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "talk.txt")
	testsupport.WriteLines(t, input, []string{"Hello there.", "How are you?"})

	out, _, err := runCLI(t, env, "split", "--input", input, "--no-comma", "--no-connector", "--no-long-split", "--no-semantic", "--print")
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if got := strings.Split(strings.TrimSpace(out), "\n"); len(got) != 2 || got[0] != "Hello there." || got[1] != "How are you?" {
		t.Fatalf("printed lines = %q", got)
	}
	for _, name := range []string{"split_by_comma.txt", "split_by_connector.txt"} {
		if _, err := os.Stat(filepath.Join(env.outputDir, name)); !os.IsNotExist(err) {
			t.Fatalf("%s written with the stage disabled: %v", name, err)
		}
	}
}

func TestSplitResumeDropsDisabledStage(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "talk.txt")
	testsupport.WriteLines(t, input, []string{"Hello there.", "How are you?"})

	if _, _, err := runCLI(t, env, "split", input); err != nil {
		t.Fatalf("first split: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, "split_by_comma.txt")); err != nil {
		t.Fatalf("expected comma checkpoint: %v", err)
	}
	if _, _, err := runCLI(t, env, "split", input, "--resume", "--no-comma"); err != nil {
		t.Fatalf("resumed split: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.outputDir, "split_by_comma.txt")); !os.IsNotExist(err) {
		t.Fatalf("stale comma checkpoint survived --no-comma: %v", err)
	}
}

func TestSplitMissingInput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "split", filepath.Join(env.baseDir, "absent.csv"))
	if err == nil {
		t.Fatal("expected missing input to fail")
	}
	requireContains(t, err.Error(), "input unavailable")
}

func TestSplitRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "talk.txt")
	testsupport.WriteLines(t, input, []string{"Hello."})

	if _, _, err := runCLI(t, env, "split", input, "--max-length", "0"); err == nil {
		t.Fatal("expected max-length 0 to fail validation")
	}
	if _, _, err := runCLI(t, env, "split", input, "--engine", "spacy"); err == nil {
		t.Fatal("expected unknown engine to fail validation")
	}
}

func TestCacheStatsAndClear(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	requireContains(t, out, "Entries: 0")
	requireContains(t, out, "Models: none")

	out, _, err = runCLI(t, env, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "No cache entries removed")
}

func TestLLMCheckRequiresKey(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, "llm", "check")
	if err == nil {
		t.Fatal("expected llm check to fail without a key")
	}
	requireContains(t, out, "API key missing")
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "talk.csv")
	testsupport.WriteLines(t, input, []string{"text", "Hello there."})

	out, _, err := runCLI(t, env, "check", "--input", input)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Preflight")
	requireContains(t, out, "[OK] "+input)
	requireContains(t, out, "[WARN] API key missing")

	if _, _, err := runCLI(t, env, "check", "--input", filepath.Join(env.baseDir, "absent.csv")); err == nil {
		t.Fatal("expected a missing input to fail preflight")
	}
}

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Output", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Output:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	text.EnableColors()
	got := renderStatusLine("Result", statusOK, "3 segments", true)
	if !strings.HasPrefix(got, "\x1b[32m") || !strings.HasSuffix(got, "\x1b[0m") {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
