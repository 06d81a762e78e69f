package e2e_test

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "a11yfix-e2e")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(dir, "a11yfix")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/a11yfix")
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(dir)
		panic("build failed: " + string(out))
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// fixture copies the sample site and report so tests can write to them.
func fixture(t *testing.T) (site, report string) {
	t.Helper()
	src, err := filepath.Abs("../../testdata")
	require.NoError(t, err)
	dst := t.TempDir()

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(src, path)
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
	require.NoError(t, err)
	return filepath.Join(dst, "site"), filepath.Join(dst, "report.json")
}

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := exec.Command(binaryPath, args...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return out.String(), errOut.String(), exitCode
}

func TestE2E_Version(t *testing.T) {
	out, _, code := run(t, "", "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "a11yfix")
}

// --- Patch Tests ---

func TestE2E_PatchDryRunJSON(t *testing.T) {
	site, report := fixture(t)

	out, _, code := run(t, "", "patch", report, site, "--dry-run", "--json")
	assert.Equal(t, 0, code)

	var summary domain.PatchSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.WouldApply)

	data, err := os.ReadFile(filepath.Join(site, "index.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "alt=")
}

func TestE2E_PatchApplyWithYes(t *testing.T) {
	site, report := fixture(t)

	out, _, code := run(t, "", "patch", report, site, "--yes")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "1 applied")

	data, err := os.ReadFile(filepath.Join(site, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `alt="Acme Widgets"`)

	_, err = os.Stat(filepath.Join(site, ".a11yfix", "applied.json"))
	assert.NoError(t, err, "applied fixes should be recorded")
}

func TestE2E_PatchDeclinedOnEOF(t *testing.T) {
	site, report := fixture(t)

	_, _, code := run(t, "", "patch", report, site)
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(filepath.Join(site, "index.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "alt=")
}

func TestE2E_PatchMissingReport(t *testing.T) {
	site, _ := fixture(t)

	_, stderr, code := run(t, "", "patch", filepath.Join(t.TempDir(), "none.json"), site)
	assert.Equal(t, 1, code, "should exit 1 when the report cannot be read")
	assert.Contains(t, stderr, "Error:")
}

func TestE2E_PatchWithoutApprovedFixes(t *testing.T) {
	site, _ := fixture(t)
	report := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(report, []byte(`{"issues": []}`), 0644))

	_, stderr, code := run(t, "", "patch", report, site)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "approvedFixes")
}

// --- Locate Tests ---

func TestE2E_Locate(t *testing.T) {
	site, _ := fixture(t)

	out, _, code := run(t, `<img src="/img/logo.png" class="logo">`, "locate", site, "-")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "index.html:8\n"), out)
}
