package solidity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xab-mack/solhunt/internal/cache"
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/version"
)

const prefetchLimit = 8

// CompileOptions configures one solc run.
type CompileOptions struct {
	Fs    afero.Fs
	Root  string
	Files []string // relative to Root

	Solc       string // binary, default "solc"
	Version    string // skip `solc --version` when set
	Remappings []string

	Cache  *cache.Store
	Logger *zap.Logger
}

type standardInput struct {
	Language string                 `json:"language"`
	Sources  map[string]sourceInput `json:"sources"`
	Settings standardInputSettings  `json:"settings"`
}

type sourceInput struct {
	Content string `json:"content"`
}

type standardInputSettings struct {
	Remappings      []string                       `json:"remappings,omitempty"`
	OutputSelection map[string]map[string][]string `json:"outputSelection"`
}

// Compile runs solc in standard JSON mode over opts.Files and decodes the
// resulting syntax trees. Outputs are cached by compiler version and source
// content when opts.Cache is set.
func Compile(ctx context.Context, opts CompileOptions) (*Output, error) {
	if opts.Solc == "" {
		opts.Solc = "solc"
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	log := opts.Logger.Named("solc")

	compiler := opts.Version
	if compiler == "" {
		v, err := solcVersion(ctx, opts.Solc)
		if err != nil {
			return nil, err
		}
		compiler = v
	}

	sources, err := prefetch(ctx, opts.Fs, opts.Root, opts.Files)
	if err != nil {
		return nil, err
	}

	in := standardInput{
		Language: "Solidity",
		Sources:  make(map[string]sourceInput, len(sources)),
		Settings: standardInputSettings{
			Remappings:      opts.Remappings,
			OutputSelection: map[string]map[string][]string{"*": {"": {"ast"}}},
		},
	}
	keyParts := []string{"solc-standard-json", opts.Solc, compiler}
	keyParts = append(keyParts, opts.Remappings...)
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		in.Sources[name] = sourceInput{Content: string(sources[name])}
		sum := sha256.Sum256(sources[name])
		keyParts = append(keyParts, name, hex.EncodeToString(sum[:]))
	}
	key := cache.Key(keyParts...)

	raw, ok := opts.Cache.Load(key)
	if ok {
		log.Debug("cache hit", zap.String("key", key))
	} else {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, model.WrapError(err, model.CodeConfiguration, "encoding solc input")
		}
		raw, err = runSolc(ctx, opts.Solc, opts.Root, payload)
		if err != nil {
			return nil, err
		}
	}

	out, err := ParseStandardOutput(raw)
	if err != nil {
		return nil, err
	}
	if !ok && !out.HasErrors() {
		if err := opts.Cache.Store(key, "solc "+compiler, raw); err != nil {
			log.Warn("cache store failed", zap.Error(err))
		}
	}
	out.Compiler = compiler
	out.Sources = sources
	for _, e := range out.Errors {
		if e.IsError() {
			log.Warn("compiler error", zap.String("type", e.Type), zap.String("message", e.Message))
		}
	}
	return out, nil
}

func prefetch(ctx context.Context, fs afero.Fs, root string, files []string) (map[string][]byte, error) {
	var mu sync.Mutex
	out := make(map[string][]byte, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchLimit)
	for _, name := range files {
		name := name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := afero.ReadFile(fs, filepath.Join(root, name))
			if err != nil {
				return model.WrapError(err, model.CodeConfiguration, "reading source").
					WithContext(model.CtxFile, name)
			}
			mu.Lock()
			out[filepath.ToSlash(name)] = b
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func solcVersion(ctx context.Context, solc string) (string, error) {
	b, err := exec.CommandContext(ctx, solc, "--version").Output()
	if err != nil {
		return "", model.WrapError(err, model.CodeConfiguration, "running solc --version").
			WithContext(model.CtxPath, solc)
	}
	v, err := version.ParseCompilerVersion(string(b))
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

func runSolc(ctx context.Context, solc, root string, input []byte) ([]byte, error) {
	args := []string{"--standard-json"}
	if root != "" {
		args = append(args, "--base-path", root, "--allow-paths", root)
	}
	cmd := exec.CommandContext(ctx, solc, args...)
	cmd.Dir = root
	cmd.Stdin = bytes.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, model.WrapError(err, model.CodeConfiguration, "running solc --standard-json").
			WithContext(model.CtxPath, solc).
			WithContext("stderr", stderr.String())
	}
	return out, nil
}
