// Package driver runs the lowering pass over Go packages: it loads and
// type-checks them, lowers every file, checks the lowered program again and
// writes it to an output directory.
package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/born-ml/dunder/internal/lower"
)

// ErrEmitSkipped is returned when NoEmitOnError is set and the lowered
// program has diagnostics.
var ErrEmitSkipped = errors.New("emit skipped")

// loadMode type-checks dependencies from source so that type errors in the
// loaded packages are reported with positions instead of as compiler output.
const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// Options configures a Run.
type Options struct {
	// Dir is the directory patterns are resolved in and output paths are
	// relative to. Empty means the current directory.
	Dir string
	// Patterns selects the packages to lower. Empty means ".".
	Patterns []string
	// OutDir receives the lowered sources.
	OutDir string
	// Tags are passed to the build system as -tags.
	Tags []string
	// Rules configures the lowering pass.
	Rules lower.Rules
	// DryRun lowers and checks without writing anything.
	DryRun bool
	// NoEmitOnError skips writing when the lowered program has diagnostics.
	NoEmitOnError bool
	// Logf receives progress messages. Nil discards them.
	Logf func(format string, args ...any)
}

// File is one lowered source file.
type File struct {
	Source string // absolute path of the input
	Output string // path it is (or would be) written to
	Result *lower.Result
	src    []byte
}

// Report describes a Run.
type Report struct {
	Files       []File
	Diagnostics []Diagnostic
	Emitted     bool
}

// Run lowers the packages selected by opts.
//
// Type errors in the input are expected, since infix arithmetic on tensors
// does not type-check before lowering. Only the lowered program is checked,
// and its errors are reported as diagnostics. Run fails when loading fails,
// when writing fails, or with ErrEmitSkipped.
func Run(ctx context.Context, opts Options) (*Report, error) {
	pass, err := lower.New(opts.Rules)
	if err != nil {
		return nil, err
	}
	dir, err := absDir(opts.Dir)
	if err != nil {
		return nil, err
	}
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	fset := token.NewFileSet()
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     dir,
		Fset:    fset,
	}
	if len(opts.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(opts.Tags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if err := listErrors(pkgs); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	report := &Report{}
	if err := lowerPackages(ctx, pass, fset, pkgs, dir, opts.OutDir, report); err != nil {
		return nil, err
	}
	for _, f := range report.Files {
		if f.Result.Changed() {
			logf("%s: %d lowered, %d literals wrapped, %d skipped",
				relPath(dir, f.Source), f.Result.Total(), f.Result.Wrapped, f.Result.Skipped)
		}
	}

	diags, err := recheck(cfg, patterns, dir, report.Files)
	if err != nil {
		return nil, err
	}
	report.Diagnostics = diags

	if len(diags) > 0 && opts.NoEmitOnError {
		return report, fmt.Errorf("%w: %d diagnostics", ErrEmitSkipped, len(diags))
	}
	if opts.DryRun {
		return report, nil
	}
	if err := emit(ctx, report.Files); err != nil {
		return report, err
	}
	report.Emitted = true
	logf("wrote %d files to %s", len(report.Files), opts.OutDir)
	return report, nil
}

// lowerPackages lowers and formats every file of pkgs concurrently.
func lowerPackages(ctx context.Context, pass *lower.Pass, fset *token.FileSet, pkgs []*packages.Package, dir, outDir string, report *Report) error {
	type job struct {
		pkg  *packages.Package
		file *ast.File
	}
	var jobs []job
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			jobs = append(jobs, job{pkg, file})
		}
	}

	files := make([]File, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := fset.Position(j.file.Package).Filename
			res := pass.File(fset, j.file, j.pkg.Types, j.pkg.TypesInfo)

			var buf bytes.Buffer
			if err := format.Node(&buf, fset, j.file); err != nil {
				return fmt.Errorf("format %s: %w", name, err)
			}
			files[i] = File{
				Source: name,
				Output: filepath.Join(outDir, relPath(dir, name)),
				Result: res,
				src:    buf.Bytes(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Source < files[j].Source })
	report.Files = files
	return nil
}

// recheck type-checks the lowered sources in place of the originals.
func recheck(cfg *packages.Config, patterns []string, dir string, files []File) ([]Diagnostic, error) {
	overlay := make(map[string][]byte, len(files))
	for _, f := range files {
		overlay[f.Source] = f.src
	}
	checkCfg := *cfg
	checkCfg.Fset = token.NewFileSet()
	checkCfg.Overlay = overlay

	pkgs, err := packages.Load(&checkCfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}

	seen := make(map[Diagnostic]bool)
	var diags []Diagnostic
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			d := newDiagnostic(dir, e)
			if !seen[d] {
				seen[d] = true
				diags = append(diags, d)
			}
		}
	})
	sortDiagnostics(diags)
	return diags, nil
}

func emit(ctx context.Context, files []File) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(f.Output), 0o755); err != nil {
				return fmt.Errorf("emit %s: %w", f.Output, err)
			}
			if err := os.WriteFile(f.Output, f.src, 0o644); err != nil {
				return fmt.Errorf("emit %s: %w", f.Output, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// listErrors reports packages the build system could not resolve.
func listErrors(pkgs []*packages.Package) error {
	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			if e.Kind == packages.ListError {
				errs = append(errs, e)
			}
		}
	})
	if len(pkgs) == 0 {
		errs = append(errs, errors.New("no packages matched"))
	}
	return errors.Join(errs...)
}

func absDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return abs, nil
}

// relPath returns name relative to dir, or its base name when name lies
// outside dir.
func relPath(dir, name string) string {
	rel, err := filepath.Rel(dir, name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(name)
	}
	return rel
}
