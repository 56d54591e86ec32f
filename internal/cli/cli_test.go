package cli

import (
	"bytes"
	"encoding/json"
	"path"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/tools/txtar"

	"github.com/xab-mack/solhunt/internal/config"
	"github.com/xab-mack/solhunt/internal/model"
)

func execute(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "solhunt", SilenceErrors: true}
	addCommands(root, &globals{fs: fs, log: zap.NewNop()})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func vaultFS(t *testing.T) afero.Fs {
	t.Helper()
	ar, err := txtar.ParseFile("../solidity/testdata/vault.txtar")
	require.NoError(t, err)
	fs := afero.NewMemMapFs()
	for _, f := range ar.Files {
		require.NoError(t, afero.WriteFile(fs, path.Join("/repo", f.Name), f.Data, 0o644))
	}
	return fs
}

func TestScan_JSONReport(t *testing.T) {
	fs := vaultFS(t)
	out, err := execute(t, fs, "scan", "/repo", "--no-color", "--solc-output", "/repo/output.json", "--solc-version", "0.8.19", "-f", "json")
	require.NoError(t, err)

	var res model.ScanResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "/repo", res.Root)
	assert.Len(t, res.Findings["overflow"], 1)
}

func TestScan_FailOn(t *testing.T) {
	fs := vaultFS(t)
	_, err := execute(t, fs, "scan", "/repo", "--solc-output", "/repo/output.json", "--solc-version", "0.8.19",
		"--fail-on", "low", "--write-baseline", "/repo/baseline.json", "-o", "/repo/report.sarif", "-f", "sarif")
	require.ErrorIs(t, err, ErrThreshold)
	assert.Equal(t, 1, ExitCode(err))

	ok, _ := afero.Exists(fs, "/repo/report.sarif")
	assert.True(t, ok)

	// with the baseline nothing is left to fail on
	_, err = execute(t, fs, "scan", "/repo", "--solc-output", "/repo/output.json", "--solc-version", "0.8.19",
		"--fail-on", "low", "--baseline", "/repo/baseline.json", "-o", "/repo/report.md", "-f", "md")
	require.NoError(t, err)
}

func TestScan_RewriteBaseline(t *testing.T) {
	fs := vaultFS(t)
	scan := func(extra ...string) error {
		args := append([]string{"scan", "/repo", "--solc-output", "/repo/output.json", "--solc-version", "0.8.19", "-f", "json"}, extra...)
		_, err := execute(t, fs, args...)
		return err
	}
	require.NoError(t, scan("--write-baseline", "baseline.json"))
	ok, _ := afero.Exists(fs, "/repo/baseline.json")
	require.True(t, ok)

	require.NoError(t, scan("--baseline", "baseline.json", "--write-baseline", "baseline.json", "--fail-on", "low"))
	require.NoError(t, scan("--baseline", "baseline.json", "--fail-on", "low"))
}

func TestScan_BadFlags(t *testing.T) {
	fs := vaultFS(t)
	_, err := execute(t, fs, "scan", "/repo", "-f", "html")
	assert.Equal(t, 2, ExitCode(err))

	_, err = execute(t, fs, "scan", "/repo", "--solc-output", "/repo/output.json", "--min-severity", "severe")
	assert.True(t, model.IsCode(err, model.CodeConfiguration))

	_, err = execute(t, fs, "scan", "/repo", "--solc-output", "/repo/output.json", "-m", "overflow,bogus")
	assert.True(t, model.IsCode(err, model.CodeConfiguration))
}

func TestInit(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p", 0o755))

	out, err := execute(t, fs, "init", "-d", "/p")
	require.NoError(t, err)
	assert.Contains(t, out, "/p/.solhunt.toml")

	cfg, err := config.LoadFile(fs, "/p/.solhunt.toml")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = execute(t, fs, "init", "-d", "/p")
	assert.True(t, model.IsCode(err, model.CodeConfiguration))
	_, err = execute(t, fs, "init", "-d", "/p", "--force")
	assert.NoError(t, err)
}

func TestModulesList(t *testing.T) {
	out, err := execute(t, afero.NewMemMapFs(), "modules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "MODULE")
	for _, name := range []string{"compiler-version", "overflow", "tx-origin", "events", "access-control", "uninitialized-storage"} {
		assert.Contains(t, out, name)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, afero.NewMemMapFs(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "solhunt dev")
}
