package cache

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestStore_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := Open(fs, "/cache")
	require.NoError(t, err)

	key := Key("solc-standard-json", "0.8.19", "abc")
	_, ok := s.Load(key)
	assert.False(t, ok)

	require.NoError(t, s.Store(key, "solc", []byte(`{"sources":{}}`)))
	got, ok := s.Load(key)
	require.True(t, ok)
	assert.Equal(t, `{"sources":{}}`, string(got))

	require.NoError(t, s.Clear())
	_, ok = s.Load(key)
	assert.False(t, ok)
}

func TestStore_SchemaMismatchIsMiss(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := Open(fs, "/cache")
	require.NoError(t, err)

	b, err := msgpack.Marshal(&Entry{Schema: schemaVersion + 1, Data: []byte("x")})
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, s.pathFor("k"), b, 0o644))

	_, ok := s.Load("k")
	assert.False(t, ok)
}

func TestNilStoreIsDisabled(t *testing.T) {
	var s *Store
	require.NoError(t, s.Store("k", "solc", []byte("x")))
	_, ok := s.Load("k")
	assert.False(t, ok)
	assert.NoError(t, s.Clear())
}

func TestKey_SeparatesParts(t *testing.T) {
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.Equal(t, Key("a", "b"), Key("a", "b"))
}
