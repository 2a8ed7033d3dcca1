package pipeline

import (
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/diagnostics"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/jobs"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/registry"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/resolver"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/scope"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/syntax"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// ConstructExpressionTrees runs §4.J's scope introspector as one batched
// parallel-for over files: for every declared type's non-prototype,
// non-forward-declared methods, it materializes the parameter VEPs and
// walks the method body, populating MethodDefinition.Scope/Body in place.
//
// This is the "ConstructExpressionTrees" stage of the control-flow DAG in
// §2, scheduled after ResolveMembers (a method's body can reference any
// field/property/method on any type, all of which must already carry their
// resolved types) and before GatherCodeGenEntries (§4.L walks these same
// Body trees to discover reachable methods).
func ConstructExpressionTrees(pool *jobs.Pool, files []*registry.FileInfo, resolveMap *resolver.Map, sink *diagnostics.Sink) error {
	return pool.Execute(jobs.ForeachBatchedParams(len(files), batchSize(len(files))), func(_ *jobs.Context, start, end int) {
		for i := start; i < end; i++ {
			constructFileExpressionTrees(files[i], resolveMap, sink)
		}
	})
}

func constructFileExpressionTrees(f *registry.FileInfo, resolveMap *resolver.Map, sink *diagnostics.Sink) {
	if f.Tree == nil {
		return
	}
	tree := f.Tree

	in := &scope.Introspector{
		Tree: tree,
		Sink: sink,
		Path: f.FilePath,
		Lookup: func(name string) (*types.TypeInfo, bool) {
			if alias, ok := f.UsingAliases[name]; ok {
				return alias, true
			}
			return resolveMap.Lookup(f.PackageName + "::" + name)
		},
	}

	for _, decl := range f.DeclaredTypes {
		tc := decl.TypeContext
		if tc == nil {
			continue
		}
		for _, md := range tc.Methods {
			walkMethodDefinition(in, tree, md)
		}
	}
}

// walkMethodDefinition skips optional-parameter prototypes (§3: "never the
// target of a call") and every method without a body node: forward
// declarations, and the optional-parameter expansions, which carry no
// NodeIndex of their own. A method declared with optional parameters
// therefore has no body walked.
func walkMethodDefinition(in *scope.Introspector, tree *syntax.Tree, md *scope.MethodDefinition) {
	m := md.MethodInfo
	if m.IsOptionalParameterPrototype {
		return
	}
	decl := tree.Node(syntax.NodeIndex(m.NodeIndex))
	body := decl.Child3
	if !body.IsValid() {
		return
	}
	md.Parameters = parametersToVEPs(m.Parameters)
	in.WalkMethod(md, body)
}

func parametersToVEPs(params []*types.ParameterInfo) []*scope.VEP {
	out := make([]*scope.VEP, len(params))
	for i, p := range params {
		out[i] = &scope.VEP{Kind: scope.VEPParameter, Name: p.Name, Type: p.Type, PassBy: p.PassBy}
	}
	return out
}
