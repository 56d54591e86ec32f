package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"
)

// bump when Entry changes shape
const schemaVersion uint16 = 1

// Entry is the on-disk envelope around one cached solc output.
type Entry struct {
	Schema  uint16
	Tool    string
	Created int64
	Data    []byte
}

// Store keeps solc outputs keyed by content hash. A nil *Store is a valid,
// disabled cache.
type Store struct {
	mu  sync.RWMutex
	fs  afero.Fs
	dir string
}

// Dir returns the default cache directory, ~/.solhunt/cache.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".solhunt", "cache"), nil
}

// Open prepares a cache rooted at dir on fs. An empty dir selects Dir().
func Open(fs afero.Fs, dir string) (*Store, error) {
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{fs: fs, dir: dir}, nil
}

// Key computes a cache key from its inputs (tool tag, compiler, file hashes).
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Store) pathFor(key string) string {
	return filepath.Join(s.dir, key+".mp")
}

// Load returns the cached payload for key. Entries written by an older
// schema are treated as misses.
func (s *Store) Load(key string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := afero.ReadFile(s.fs, s.pathFor(key))
	if err != nil {
		return nil, false
	}
	var e Entry
	if err := msgpack.Unmarshal(b, &e); err != nil || e.Schema != schemaVersion {
		return nil, false
	}
	return e.Data, true
}

// Store writes data under key, replacing any previous entry.
func (s *Store) Store(key, tool string, data []byte) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := msgpack.Marshal(&Entry{
		Schema:  schemaVersion,
		Tool:    tool,
		Created: time.Now().Unix(),
		Data:    data,
	})
	if err != nil {
		return err
	}
	tmp := s.pathFor(key) + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, b, 0o644); err != nil {
		return err
	}
	return s.fs.Rename(tmp, s.pathFor(key))
}

// Clear drops every cached entry.
func (s *Store) Clear() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.RemoveAll(s.dir); err != nil {
		return err
	}
	return s.fs.MkdirAll(s.dir, 0o755)
}
