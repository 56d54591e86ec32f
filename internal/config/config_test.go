package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/solhunt/internal/model"
)

func TestLoad_NoFileGivesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo/src", 0o755))

	cfg, path, err := Load(fs, "/repo/src")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_SearchesUpward(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo/src/tokens", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/repo/.solhunt.toml", []byte(`
severity_threshold = "low"
modules = ["overflow", "events"]

[solc]
path = "/usr/local/bin/solc"
version = "0.8.19"
remappings = ["@oz/=lib/oz/"]

[[ignore]]
module = "events"
path = "src/mocks/**"
reason = "test doubles"
`), 0o644))

	cfg, path, err := Load(fs, "/repo/src/tokens")
	require.NoError(t, err)
	assert.Equal(t, "/repo/.solhunt.toml", path)
	assert.Equal(t, model.SeverityLow, cfg.Threshold())
	assert.Equal(t, []string{"overflow", "events"}, cfg.Modules)
	assert.Equal(t, "/usr/local/bin/solc", cfg.Solc.Path)
	assert.Equal(t, []string{"@oz/=lib/oz/"}, cfg.Solc.Remappings)
	assert.Equal(t, 2, cfg.SnippetContext, "unset fields keep defaults")
	require.Len(t, cfg.Ignore, 1)
	assert.True(t, cfg.Ignore[0].Matches("events", 0, "src/mocks/deep/Mock.sol"))
	assert.False(t, cfg.Ignore[0].Matches("events", 0, "src/Vault.sol"))
	assert.False(t, cfg.Ignore[0].Matches("overflow", 1, "src/mocks/Mock.sol"))
}

func TestLoadFile_YAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/.solhunt.yml", []byte(`
severity_threshold: medium
snippet_context: 0
ignore:
  - module: overflow
    code: 3
`), 0o644))

	cfg, err := LoadFile(fs, "/repo/.solhunt.yml")
	require.NoError(t, err)
	assert.Equal(t, model.SeverityMedium, cfg.Threshold())
	assert.Zero(t, cfg.SnippetContext)
	require.Len(t, cfg.Ignore, 1)
	assert.True(t, cfg.Ignore[0].Matches("overflow", 3, "any.sol"))
	assert.False(t, cfg.Ignore[0].Matches("overflow", 1, "any.sol"))
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad toml", "/c.toml", `severity_threshold = `},
		{"unknown severity", "/c.toml", `severity_threshold = "critical-ish"`},
		{"bad glob", "/c.yaml", "ignore:\n  - path: \"src/[\"\n"},
		{"negative context", "/c.toml", `snippet_context = -1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, tt.file, []byte(tt.content), 0o644))
			_, err := LoadFile(fs, tt.file)
			require.Error(t, err)
			assert.True(t, model.IsCode(err, model.CodeConfiguration))
		})
	}
}

func TestEncode_RoundTrips(t *testing.T) {
	b, err := Encode(Default())
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/.solhunt.toml", b, 0o644))
	cfg, err := LoadFile(fs, "/.solhunt.toml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
