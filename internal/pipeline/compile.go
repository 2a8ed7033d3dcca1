package pipeline

import (
	"golang.org/x/sync/errgroup"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/codegen"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/diagnostics"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/genericcache"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/jobs"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/registry"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/resolver"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/scope"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// ParseFunc materializes f.Tree from source text. The concrete lexer/
// parser is out of scope (§1/§4.C); Compile takes it as a dependency so
// this package never needs to know how a syntax.Tree comes into being.
type ParseFunc func(f *registry.FileInfo) error

// Result is everything one compile run produces apart from diagnostics,
// which go to the sink passed to Compile: the files analysed, the entry
// points found, and the code-gen visitor's accumulated output.
type Result struct {
	Files       []*registry.FileInfo
	EntryPoints []*types.MethodInfo
	CodeGen     *codegen.Output
}

// Compile runs the full control-flow DAG from §2:
//
//	ParseFiles → GatherTypes → (ResolveMembers ∥ FindEntryPoints) →
//	ConstructExpressionTrees → GatherCodeGenEntries*
//
// ResolveMembers and FindEntryPoints run concurrently via errgroup because
// both only depend on GatherTypes having populated resolveMap — member
// resolution does not affect which types/methods match an entry-point
// pattern. Returns the first fatal (non-diagnostic) error from any stage;
// semantic errors are recorded in sink and do not stop the run, matching
// §5/§7's "collect as many errors as possible" policy, except that a file
// failing to parse stops further analysis of that file alone (§7).
func Compile(pool *jobs.Pool, reg *registry.Registry, parse ParseFunc, resolveMap *resolver.Map, generics *genericcache.Cache, rootPackage string, entryPatterns []string, emitter codegen.Emitter, sink *diagnostics.Sink) (*Result, error) {
	files := reg.Files()

	if err := parseFiles(pool, files, parse, sink); err != nil {
		return nil, err
	}

	if err := GatherTypes(pool, files, resolveMap, sink); err != nil {
		return nil, err
	}

	var entryPoints []*types.MethodInfo
	g := new(errgroup.Group)
	g.Go(func() error {
		return ResolveMembers(pool, files, resolveMap, generics, sink)
	})
	g.Go(func() error {
		entryPoints = FindEntryPoints(resolveMap, rootPackage, entryPatterns, sink)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ConstructExpressionTrees(pool, files, resolveMap, sink); err != nil {
		return nil, err
	}

	lookup := BuildMethodIndex(files)
	visitor := codegen.NewVisitor(lookup, emitter)
	entries := make([]codegen.VisitEntry, len(entryPoints))
	for i, m := range entryPoints {
		entries[i] = codegen.MethodEntry(m)
	}
	if err := visitor.GatherCodeGenEntries(pool, entries); err != nil {
		return nil, err
	}

	return &Result{Files: files, EntryPoints: entryPoints, CodeGen: visitor.Output}, nil
}

// parseFiles runs the external parse hook as one batched parallel-for, the
// same shape every other phase in this package uses. A parse error is
// recorded as a diagnostic against that file alone (§7) rather than
// aborting the run, and that file's Tree is dropped so later phases skip it.
func parseFiles(pool *jobs.Pool, files []*registry.FileInfo, parse ParseFunc, sink *diagnostics.Sink) error {
	if parse == nil {
		return nil
	}
	return pool.Execute(jobs.ForeachBatchedParams(len(files), batchSize(len(files))), func(_ *jobs.Context, start, end int) {
		for i := start; i < end; i++ {
			f := files[i]
			if err := parse(f); err != nil {
				sink.Errorf(f.FilePath, diagnostics.LineColumn{}, "parse error: %v", err)
				f.Tree = nil
			}
		}
	})
}

// BuildMethodIndex collects every MethodDefinition across every file's
// declared types into a lookup keyed by its MethodInfo, the shape §4.L's
// code-gen visitor needs to walk from a MethodInfo it discovered via a call
// expression back to the resolved body that call expression's callee owns.
func BuildMethodIndex(files []*registry.FileInfo) codegen.MethodLookup {
	index := make(map[*types.MethodInfo]*scope.MethodDefinition)
	for _, f := range files {
		for _, decl := range f.DeclaredTypes {
			if decl.TypeContext == nil {
				continue
			}
			for _, md := range decl.TypeContext.Methods {
				index[md.MethodInfo] = md
			}
		}
	}
	return func(m *types.MethodInfo) (*scope.MethodDefinition, bool) {
		def, ok := index[m]
		return def, ok
	}
}
