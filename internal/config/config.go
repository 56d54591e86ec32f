package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"

	"github.com/xab-mack/solhunt/internal/model"
)

// FileNames are searched in this order in every directory.
var FileNames = []string{".solhunt.toml", ".solhunt.yaml", ".solhunt.yml"}

// IgnoreRule suppresses findings. Empty fields match everything; Path is a
// glob over the root-relative file path.
type IgnoreRule struct {
	Module  string `toml:"module" yaml:"module"`
	Code    *int   `toml:"code,omitempty" yaml:"code,omitempty"`
	Path    string `toml:"path,omitempty" yaml:"path,omitempty"`
	Reason  string `toml:"reason,omitempty" yaml:"reason,omitempty"`
	Expires string `toml:"expires,omitempty" yaml:"expires,omitempty"`

	matcher glob.Glob
}

// Matches reports whether the rule covers a finding of module/code in file.
func (r *IgnoreRule) Matches(module string, code int, file string) bool {
	if r.Module != "" && !strings.EqualFold(r.Module, module) {
		return false
	}
	if r.Code != nil && *r.Code != code {
		return false
	}
	if r.Path != "" {
		if r.matcher == nil {
			g, err := glob.Compile(r.Path, '/')
			if err != nil {
				return false
			}
			r.matcher = g
		}
		if !r.matcher.Match(filepath.ToSlash(file)) {
			return false
		}
	}
	return true
}

type Solc struct {
	Path       string   `toml:"path" yaml:"path"`
	Version    string   `toml:"version,omitempty" yaml:"version,omitempty"`
	Remappings []string `toml:"remappings,omitempty" yaml:"remappings,omitempty"`
	Cache      bool     `toml:"cache" yaml:"cache"`
	CacheDir   string   `toml:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
}

type Config struct {
	SeverityThreshold string       `toml:"severity_threshold" yaml:"severity_threshold"`
	Modules           []string     `toml:"modules,omitempty" yaml:"modules,omitempty"`
	Exclude           []string     `toml:"exclude,omitempty" yaml:"exclude,omitempty"`
	SnippetContext    int          `toml:"snippet_context" yaml:"snippet_context"`
	TimeBudgetMs      int          `toml:"time_budget_ms" yaml:"time_budget_ms"`
	Baseline          string       `toml:"baseline,omitempty" yaml:"baseline,omitempty"`
	Solc              Solc         `toml:"solc" yaml:"solc"`
	Ignore            []IgnoreRule `toml:"ignore,omitempty" yaml:"ignore,omitempty"`
}

func Default() Config {
	return Config{
		SeverityThreshold: "informal",
		Exclude:           []string{"node_modules/**", "lib/**", "test/**", "**/*.t.sol"},
		SnippetContext:    2,
		TimeBudgetMs:      120000,
		Solc:              Solc{Path: "solc", Cache: true},
	}
}

// Threshold returns the parsed severity threshold.
func (c Config) Threshold() model.Severity { return model.ParseSeverity(c.SeverityThreshold) }

// Validate checks the fields that cannot be checked while decoding.
func (c *Config) Validate() error {
	if _, ok := model.LookupSeverity(c.SeverityThreshold); !ok {
		return model.NewError(model.CodeConfiguration, fmt.Sprintf("unknown severity threshold %q", c.SeverityThreshold)).
			WithContext(model.CtxToken, c.SeverityThreshold)
	}
	if c.SnippetContext < 0 {
		return model.NewError(model.CodeConfiguration, "snippet_context must not be negative")
	}
	for _, p := range c.Exclude {
		if _, err := glob.Compile(p, '/'); err != nil {
			return model.WrapError(err, model.CodeConfiguration, "invalid exclude pattern").WithContext(model.CtxToken, p)
		}
	}
	for i := range c.Ignore {
		r := &c.Ignore[i]
		if r.Path == "" {
			continue
		}
		g, err := glob.Compile(r.Path, '/')
		if err != nil {
			return model.WrapError(err, model.CodeConfiguration, "invalid ignore path pattern").WithContext(model.CtxToken, r.Path)
		}
		r.matcher = g
	}
	return nil
}

// Find searches startDir and its parents for a config file and returns its
// path, or "" when there is none.
func Find(fs afero.Fs, startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if ok, _ := afero.Exists(fs, candidate); ok {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Load finds and reads the project config above startDir. Without a config
// file the defaults are returned with an empty path.
func Load(fs afero.Fs, startDir string) (Config, string, error) {
	path, err := Find(fs, startDir)
	if err != nil {
		return Default(), "", model.WrapError(err, model.CodeConfiguration, "searching for config").
			WithContext(model.CtxPath, startDir)
	}
	if path == "" {
		cfg := Default()
		return cfg, "", cfg.Validate()
	}
	cfg, err := LoadFile(fs, path)
	return cfg, path, err
}

// LoadFile reads one config file. Fields it leaves out keep their defaults.
func LoadFile(fs afero.Fs, path string) (Config, error) {
	cfg := Default()
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, model.WrapError(err, model.CodeConfiguration, "reading config").WithContext(model.CtxPath, path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		_, err = toml.Decode(string(b), &cfg)
	}
	if err != nil {
		return cfg, model.WrapError(err, model.CodeConfiguration, "parsing config").WithContext(model.CtxPath, path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
