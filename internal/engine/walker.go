package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xab-mack/solhunt/internal/analysis"
	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/plugins"
	"github.com/xab-mack/solhunt/internal/solidity"
	"github.com/xab-mack/solhunt/internal/util"
)

const defaultSnippetContext = 2

type Option func(*Walker)

// WithFS sets the filesystem source files are read from.
func WithFS(fs afero.Fs) Option { return func(w *Walker) { w.fs = fs } }

// WithSources supplies file content up front, keyed by absolute or
// root-relative path. Supplied files are never read from disk.
func WithSources(src map[string][]byte) Option { return func(w *Walker) { w.supplied = src } }

func WithLogger(l *zap.Logger) Option {
	return func(w *Walker) {
		if l != nil {
			w.log = l
		}
	}
}

// WithSnippetContext sets how many lines around a finding go into its snippet.
func WithSnippetContext(n int) Option {
	return func(w *Walker) {
		if n >= 0 {
			w.snippetContext = n
		}
	}
}

// Walker runs modules over the artifacts of one project.
type Walker struct {
	root           string
	artifacts      map[analysis.ArtifactID]*analysis.Artifact
	modules        []plugins.Module
	fs             afero.Fs
	log            *zap.Logger
	snippetContext int

	supplied map[string][]byte
	files    map[string]*sourceFile
}

type sourceFile struct {
	path     string
	display  string
	index    util.Index
	degraded bool
}

// moduleRun is the state one module accumulates over one Traverse call.
type moduleRun struct {
	module plugins.Module
	sink   *plugins.Sink
	acc    *plugins.Accumulator
	seen   int
}

func NewWalker(root string, artifacts map[analysis.ArtifactID]*analysis.Artifact, modules []plugins.Module, opts ...Option) (*Walker, error) {
	if strings.TrimSpace(root) == "" {
		return nil, model.NewError(model.CodeConfiguration, "project root is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, model.WrapError(err, model.CodeConfiguration, "resolving project root").
			WithContext(model.CtxPath, root)
	}
	w := &Walker{
		root:           abs,
		artifacts:      artifacts,
		modules:        modules,
		fs:             afero.NewOsFs(),
		log:            zap.NewNop(),
		snippetContext: defaultSnippetContext,
		files:          map[string]*sourceFile{},
	}
	for _, o := range opts {
		o(w)
	}
	if len(w.supplied) > 0 {
		src := make(map[string][]byte, len(w.supplied))
		for p, b := range w.supplied {
			src[w.resolve(p)] = b
		}
		w.supplied = src
	}
	return w, nil
}

func (w *Walker) Root() string { return w.root }

// resolve turns a unit path into its identity: cleaned and absolute.
func (w *Walker) resolve(p string) string {
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) {
		p = filepath.Join(w.root, p)
	}
	return filepath.Clean(p)
}

// display returns path relative to the root, or orig when the file lives
// outside of it.
func (w *Walker) display(path, orig string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		if orig == "" {
			return filepath.ToSlash(path)
		}
		return orig
	}
	return filepath.ToSlash(rel)
}

// Traverse runs every module over every distinct source unit and returns
// the findings keyed by module name. Module instances may be reused across
// calls; all run state is created here.
func (w *Walker) Traverse(ctx context.Context) (model.AllFindings, error) {
	all := make(model.AllFindings, len(w.modules))
	runs := make([]*moduleRun, 0, len(w.modules))
	for _, m := range w.modules {
		all[m.Name()] = []model.MetaFinding{}
		runs = append(runs, &moduleRun{module: m, sink: plugins.NewSink(m), acc: plugins.NewAccumulator()})
	}

	done := map[string]bool{}
	for _, id := range analysis.SortedIDs(w.artifacts) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		art := w.artifacts[id]
		if art == nil || art.Tree == nil {
			return nil, model.NewError(model.CodeMissingData, "artifact has no syntax tree").
				WithContext(model.CtxArtifact, id.String())
		}

		orig := art.Tree.AbsolutePath
		if orig == "" {
			orig = id.Source
		}
		path := w.resolve(orig)
		if done[path] {
			w.log.Debug("source unit already processed", zap.String("artifact", id.String()), zap.String("path", path))
			continue
		}
		done[path] = true

		f, err := w.load(path, orig)
		if model.IsFatal(err) {
			return nil, err
		}
		if err != nil {
			w.degrade(f, err)
		}
		info, err := versionInfo(id, f)
		if err != nil {
			return nil, err
		}
		for _, r := range runs {
			if err := w.visit(r, art.Tree, f, info, all); err != nil {
				return nil, err
			}
		}
	}
	return all, nil
}

func versionInfo(id analysis.ArtifactID, f *sourceFile) (analysis.VersionInfo, error) {
	info := analysis.VersionInfo{File: f.display, Source: f.path}
	if id.Version == "" {
		return info, nil
	}
	v, err := goversion.NewVersion(id.Version)
	if err != nil {
		return info, model.WrapError(err, model.CodeConfiguration, fmt.Sprintf("invalid compiler version %q", id.Version)).
			WithContext(model.CtxArtifact, id.String()).
			WithContext(model.CtxToken, id.Version)
	}
	info.Version = v
	return info, nil
}

func (w *Walker) visit(r *moduleRun, tree *solidity.SourceUnit, f *sourceFile, info analysis.VersionInfo, all model.AllFindings) error {
	name := r.module.Name()
	log := w.log.With(zap.String("module", name), zap.String("file", f.display)).Sugar()
	c := plugins.NewContext(r.sink, r.acc, tree, info, log)

	if err := plugins.Walk(c, r.module.NewVisitor(), tree); err != nil {
		var me *model.Error
		if !errors.As(err, &me) {
			me = model.WrapError(err, model.CodeContractViolation, fmt.Sprintf("module %s failed", name))
		}
		return me.WithContext(model.CtxModule, name).WithContext(model.CtxFile, f.display)
	}
	if err := r.sink.Err(); err != nil {
		return err
	}

	for _, fd := range r.sink.Since(r.seen) {
		all[name] = append(all[name], model.MetaFinding{Finding: fd, Meta: w.meta(f, fd.Span)})
	}
	r.seen = r.sink.Len()
	return nil
}

func (w *Walker) meta(f *sourceFile, sp *model.Span) model.Meta {
	m := model.Meta{File: f.display}
	if sp == nil || f.degraded {
		return m
	}
	line, col, ok := f.index.Locate(sp.Start)
	if !ok {
		return m
	}
	m.Line, m.Column = line, col
	m.Snippet = f.index.Snippet(sp.Start, sp.Length, w.snippetContext)
	return m
}

// load reads and indexes path once per walker. A read or index failure is
// returned as DEGRADED_INPUT alongside the file.
func (w *Walker) load(path, orig string) (*sourceFile, error) {
	if f, ok := w.files[path]; ok {
		return f, nil
	}
	f := &sourceFile{path: path, display: w.display(path, orig)}
	w.files[path] = f

	content, ok := w.supplied[path]
	if !ok {
		b, err := afero.ReadFile(w.fs, path)
		if err != nil {
			return f, model.WrapError(err, model.CodeDegradedInput, "reading source").WithContext(model.CtxFile, f.display)
		}
		content = b
	}
	ix, err := util.NewIndex(content)
	if err != nil {
		return f, model.WrapError(err, model.CodeDegradedInput, "indexing source").WithContext(model.CtxFile, f.display)
	}
	f.index = ix
	return f, nil
}

func (w *Walker) degrade(f *sourceFile, err error) {
	f.degraded = true
	f.index, _ = util.NewIndex(nil)
	w.log.Warn("source unavailable, findings will carry no position",
		zap.String("file", f.display),
		zap.String("code", string(model.CodeDegradedInput)),
		zap.Error(err))
}

// Source returns the content the walker read for path, which may be
// absolute or root-relative.
func (w *Walker) Source(path string) ([]byte, bool) {
	f, ok := w.files[w.resolve(path)]
	if !ok || f.degraded {
		return nil, false
	}
	return f.index.Content(), true
}
