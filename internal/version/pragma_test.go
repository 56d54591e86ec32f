package version

import (
	"testing"

	goversion "github.com/hashicorp/go-version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/solhunt/internal/model"
)

func v(t *testing.T, s string) *goversion.Version {
	t.Helper()
	out, err := goversion.NewVersion(s)
	require.NoError(t, err)
	return out
}

func TestParsePragma_Matches(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		accept []string
		reject []string
		exact  bool
		lowest string
	}{
		{
			name:   "caret",
			tokens: []string{"solidity", "^", "0.8", ".4"},
			accept: []string{"0.8.4", "0.8.25"},
			reject: []string{"0.9.0", "0.8.3"},
			lowest: "0.8.4",
		},
		{
			name:   "double bound",
			tokens: []string{"solidity", ">=", "0.5", ".0", "<", "0.8", ".0"},
			accept: []string{"0.5.0", "0.7.0", "0.7.6"},
			reject: []string{"0.8.0", "0.4.26"},
			lowest: "0.5.0",
		},
		{
			name:   "exact",
			tokens: []string{"solidity", "0.7", ".0"},
			accept: []string{"0.7.0"},
			reject: []string{"0.7.1", "0.6.12"},
			exact:  true,
			lowest: "0.7.0",
		},
		{
			name:   "exact with equals",
			tokens: []string{"solidity", "=", "0.8", ".19"},
			accept: []string{"0.8.19"},
			reject: []string{"0.8.20"},
			exact:  true,
			lowest: "0.8.19",
		},
		{
			name:   "caret without patch",
			tokens: []string{"solidity", "^", "0.6"},
			accept: []string{"0.6.0", "0.6.12"},
			reject: []string{"0.7.0"},
			lowest: "0.6.0",
		},
		{
			name:   "upper bound only",
			tokens: []string{"solidity", "<", "0.9", ".0"},
			accept: []string{"0.1.0", "0.8.30"},
			reject: []string{"0.9.0"},
		},
		{
			name:   "lower bound only",
			tokens: []string{"solidity", ">", "0.6", ".0"},
			accept: []string{"0.6.1", "1.0.0"},
			reject: []string{"0.6.0"},
			lowest: "0.6.0",
		},
		{
			name:   "alternatives",
			tokens: []string{"solidity", "^", "0.7", ".0", "||", "^", "0.8", ".0"},
			accept: []string{"0.7.6", "0.8.1"},
			reject: []string{"0.6.12", "0.9.0"},
			lowest: "0.7.0",
		},
		{
			name:   "operator glued to version",
			tokens: []string{"solidity", "^0.8", ".0"},
			accept: []string{"0.8.9"},
			reject: []string{"0.9.0"},
			lowest: "0.8.0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParsePragma(tt.tokens)
			require.NoError(t, err)
			for _, s := range tt.accept {
				assert.True(t, r.Matches(v(t, s)), "%s should accept %s", r, s)
			}
			for _, s := range tt.reject {
				assert.False(t, r.Matches(v(t, s)), "%s should reject %s", r, s)
			}
			assert.Equal(t, tt.exact, r.Exact())
			if tt.lowest == "" {
				assert.Nil(t, r.Lowest())
			} else {
				require.NotNil(t, r.Lowest())
				assert.Equal(t, tt.lowest, r.Lowest().String())
			}
		})
	}
}

func TestParsePragma_Deterministic(t *testing.T) {
	tokens := []string{"solidity", ">=", "0.5", ".0", "<", "0.8", ".0"}
	a, err := ParsePragma(tokens)
	require.NoError(t, err)
	b, err := ParsePragma(tokens)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
	assert.NotEmpty(t, a.String())
}

func TestParsePragma_Errors(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		token  string
	}{
		{"not solidity", []string{"abicoder", "v2"}, "abicoder"},
		{"empty", nil, ""},
		{"malformed number", []string{"solidity", "^", "0.x"}, "0.x"},
		{"dangling operator", []string{"solidity", ">="}, ">="},
		{"no version", []string{"solidity"}, "solidity"},
		{"too many components", []string{"solidity", "0.8", ".1", ".2"}, "0.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePragma(tt.tokens)
			require.Error(t, err)
			assert.True(t, model.IsCode(err, model.CodeConfiguration))
			var e *model.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.token, e.Context[model.CtxToken])
		})
	}
}

func TestParseCompilerVersion(t *testing.T) {
	got, err := ParseCompilerVersion("solc, the solidity compiler commandline interface\nVersion: 0.8.19+commit.7dd6d404.Linux.g++\n")
	require.NoError(t, err)
	assert.Equal(t, "0.8.19", got.String())

	got, err = ParseCompilerVersion("0.7.0")
	require.NoError(t, err)
	assert.Equal(t, "0.7.0", got.String())

	_, err = ParseCompilerVersion("nightly")
	assert.True(t, model.IsCode(err, model.CodeConfiguration))
}
