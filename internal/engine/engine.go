package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xab-mack/solhunt/internal/analysis"
	"github.com/xab-mack/solhunt/internal/cache"
	"github.com/xab-mack/solhunt/internal/config"
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/plugins"
	"github.com/xab-mack/solhunt/internal/solidity"
	"github.com/xab-mack/solhunt/internal/version"
)

type compileFunc func(ctx context.Context, opts solidity.CompileOptions) (*solidity.Output, error)

type Engine struct {
	registry *plugins.Registry
	fs       afero.Fs
	log      *zap.Logger
	compile  compileFunc
}

// New builds an engine with the built-in modules registered. A nil fs
// selects the OS filesystem.
func New(fs afero.Fs, log *zap.Logger) *Engine {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	reg := plugins.NewRegistry()
	reg.RegisterBuiltin()
	return &Engine{registry: reg, fs: fs, log: log, compile: solidity.Compile}
}

func (e *Engine) Registry() *plugins.Registry { return e.registry }

// Scan compiles (or loads) the project at req.Path, traverses it with the
// selected modules and applies the post-run filters.
func (e *Engine) Scan(ctx context.Context, req model.ScanRequest) (*model.ScanResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := e.log.With(zap.String("run", runID))

	root, files, err := e.target(req.Path)
	if err != nil {
		return nil, err
	}
	cfg, err := e.loadConfig(req, root)
	if err != nil {
		return nil, err
	}

	budget := req.TimeBudget
	if budget == 0 && cfg.TimeBudgetMs > 0 {
		budget = time.Duration(cfg.TimeBudgetMs) * time.Millisecond
	}
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	modules, err := e.registry.Select(cfg.Modules)
	if err != nil {
		return nil, err
	}

	out, err := e.output(ctx, req, cfg, root, files, log)
	if err != nil {
		return nil, err
	}
	project := analysis.FromOutput(root, out)
	log.Debug("project loaded", zap.Int("artifacts", len(project.Artifacts)), zap.String("compiler", out.Compiler))

	w, err := NewWalker(root, project.Artifacts, modules,
		WithFS(e.fs),
		WithSources(project.Sources),
		WithLogger(log),
		WithSnippetContext(cfg.SnippetContext),
	)
	if err != nil {
		return nil, err
	}
	all, err := w.Traverse(ctx)
	if err != nil {
		return nil, err
	}

	threshold := cfg.Threshold()
	if req.MinSeverity != nil {
		threshold = *req.MinSeverity
	}
	all, _ = filterBySeverity(all, threshold)
	all, suppressed := applyIgnores(all, cfg.Ignore, w.Source)

	baselinePath := cfg.Baseline
	if req.BaselinePath != "" {
		baselinePath = req.BaselinePath
	}
	b, err := loadBaseline(e.fs, inRoot(root, baselinePath))
	if err != nil {
		return nil, err
	}
	// written from the unfiltered set: findings already in b stay recorded
	if out := inRoot(root, req.WriteBaselinePath); out != "" {
		if err := writeBaseline(e.fs, out, all); err != nil {
			return nil, model.WrapError(err, model.CodeConfiguration, "writing baseline").WithContext(model.CtxPath, out)
		}
		log.Debug("baseline written", zap.String("path", out), zap.Int("findings", all.Count()))
	}
	all, known := filterByBaseline(all, b)

	return &model.ScanResult{
		RunID:      runID,
		Root:       root,
		Compiler:   out.Compiler,
		Findings:   all,
		Suppressed: suppressed + known,
		Elapsed:    time.Since(start),
	}, nil
}

func inRoot(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// target resolves the scan root. A single .sol file scans its directory
// with just that file.
func (e *Engine) target(path string) (string, []string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, model.WrapError(err, model.CodeConfiguration, "resolving scan path").WithContext(model.CtxPath, path)
	}
	fi, err := e.fs.Stat(abs)
	if err != nil {
		return "", nil, model.WrapError(err, model.CodeConfiguration, "scan path not found").WithContext(model.CtxPath, path)
	}
	if fi.IsDir() {
		return abs, nil, nil
	}
	if filepath.Ext(abs) != ".sol" {
		return "", nil, model.NewError(model.CodeConfiguration, "scan target is not a solidity file").WithContext(model.CtxPath, path)
	}
	return filepath.Dir(abs), []string{filepath.Base(abs)}, nil
}

func (e *Engine) loadConfig(req model.ScanRequest, root string) (config.Config, error) {
	var (
		cfg  config.Config
		path string
		err  error
	)
	if req.ConfigPath != "" {
		path = req.ConfigPath
		cfg, err = config.LoadFile(e.fs, path)
	} else {
		cfg, path, err = config.Load(e.fs, root)
	}
	if err != nil {
		return cfg, err
	}
	if path != "" {
		e.log.Debug("config loaded", zap.String("path", path))
	}
	if len(req.Modules) > 0 {
		cfg.Modules = req.Modules
	}
	if req.SolcVersion != "" {
		cfg.Solc.Version = req.SolcVersion
	}
	return cfg, nil
}

func (e *Engine) output(ctx context.Context, req model.ScanRequest, cfg config.Config, root string, files []string, log *zap.Logger) (*solidity.Output, error) {
	if req.SolcOutput != "" {
		out, err := solidity.LoadStandardOutput(e.fs, req.SolcOutput)
		if err != nil {
			return nil, err
		}
		out.Compiler = cfg.Solc.Version
		if out.Compiler == "" {
			out.Compiler = pinnedCompiler(out.Units)
			if out.Compiler != "" {
				log.Info("compiler version taken from pragma", zap.String("version", out.Compiler))
			} else {
				log.Warn("compiler version unknown, version-dependent checks are skipped; pass --solc-version",
					zap.String("output", req.SolcOutput))
			}
		}
		return out, checkCompilerErrors(out)
	}

	if files == nil {
		var err error
		files, err = discover(e.fs, root, cfg.Exclude)
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, model.NewError(model.CodeConfiguration, "no solidity sources found").WithContext(model.CtxPath, root)
	}

	var store *cache.Store
	if cfg.Solc.Cache {
		s, err := cache.Open(e.fs, cfg.Solc.CacheDir)
		if err != nil {
			log.Warn("solc cache disabled", zap.Error(err))
		} else {
			store = s
		}
	}
	out, err := e.compile(ctx, solidity.CompileOptions{
		Fs:         e.fs,
		Root:       root,
		Files:      files,
		Solc:       cfg.Solc.Path,
		Version:    cfg.Solc.Version,
		Remappings: cfg.Solc.Remappings,
		Cache:      store,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	return out, checkCompilerErrors(out)
}

// pinnedCompiler returns the version every exact pragma in units pins, or ""
// when there is none or the pins disagree.
func pinnedCompiler(units []solidity.Unit) string {
	pin := ""
	for _, u := range units {
		if u.Tree == nil {
			continue
		}
		for _, n := range u.Tree.Nodes {
			p, ok := n.(*solidity.PragmaDirective)
			if !ok || !p.IsVersion() {
				continue
			}
			r, err := version.ParsePragma(p.Literals)
			if err != nil || !r.Exact() {
				continue
			}
			v := r.Lowest().String()
			if pin != "" && pin != v {
				return ""
			}
			pin = v
		}
	}
	return pin
}

func checkCompilerErrors(out *solidity.Output) error {
	if !out.HasErrors() {
		return nil
	}
	var msgs []string
	for _, ce := range out.Errors {
		if ce.IsError() {
			msgs = append(msgs, strings.TrimSpace(ce.FormattedMessage))
		}
	}
	return model.NewError(model.CodeConfiguration, fmt.Sprintf("solc reported %d error(s):\n%s", len(msgs), strings.Join(msgs, "\n")))
}

// discover lists the .sol files under root as slash-separated relative
// paths, skipping those matched by an exclude glob.
func discover(fs afero.Fs, root string, exclude []string) ([]string, error) {
	var skip []glob.Glob
	for _, p := range exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, model.WrapError(err, model.CodeConfiguration, "invalid exclude pattern").WithContext(model.CtxToken, p)
		}
		skip = append(skip, g)
	}
	excluded := func(rel string) bool {
		for _, g := range skip {
			if g.Match(rel) {
				return true
			}
		}
		return false
	}

	var out []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") || excluded(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(rel) == ".sol" && !excluded(rel) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, model.WrapError(err, model.CodeConfiguration, "listing sources").WithContext(model.CtxPath, root)
	}
	sort.Strings(out)
	return out, nil
}
