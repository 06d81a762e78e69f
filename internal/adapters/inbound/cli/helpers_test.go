package cli_test

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a11yfix/a11yfix/internal/adapters/inbound/cli"
)

var testdata = filepath.Join("..", "..", "..", "..", "testdata")

// copyFixture copies the sample site and report into a temp dir and returns
// the site directory and report path.
func copyFixture(t *testing.T) (site, report string) {
	t.Helper()
	dst := t.TempDir()
	src := filepath.Join(testdata, "site")
	site = filepath.Join(dst, "site")
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(src, path)
		target := filepath.Join(site, rel)
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

	data, err := os.ReadFile(filepath.Join(testdata, "report.json"))
	require.NoError(t, err)
	report = filepath.Join(dst, "report.json")
	require.NoError(t, os.WriteFile(report, data, 0644))
	return site, report
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := cli.NewRootCmdForTest()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(bytes.NewBufferString(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
