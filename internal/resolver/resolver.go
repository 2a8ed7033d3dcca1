package resolver

import (
	"fmt"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/diagnostics"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/genericcache"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/registry"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/syntax"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// GenericFrame is the "stack of enclosing type/method type parameters"
// (§4.E step 3): a flat name -> ResolvedType map is sufficient because
// Alchemy has no parameter shadowing between a type's and its method's
// generic parameters in this frontend's scope (method generics simply
// extend the type's frame for the duration of that method's resolution).
type GenericFrame struct {
	Names map[string]types.ResolvedType
}

// NewGenericFrame builds a frame from a TypeInfo's own generic arguments,
// the starting point before a method pushes its own (§4.E step 3).
func NewGenericFrame(declaringGenerics []types.ResolvedType) *GenericFrame {
	f := &GenericFrame{Names: make(map[string]types.ResolvedType, len(declaringGenerics))}
	for _, g := range declaringGenerics {
		if g.TypeInfo != nil {
			f.Names[g.TypeInfo.TypeName] = g
		}
	}
	return f
}

// Extend returns a new frame with extra generic parameter names added on
// top of f, used when a method declares its own generic parameters.
func (f *GenericFrame) Extend(extra []types.ResolvedType) *GenericFrame {
	out := &GenericFrame{Names: make(map[string]types.ResolvedType, len(f.Names)+len(extra))}
	for k, v := range f.Names {
		out.Names[k] = v
	}
	for _, g := range extra {
		if g.TypeInfo != nil {
			out.Names[g.TypeInfo.TypeName] = g
		}
	}
	return out
}

// Resolver resolves TypePathNodes against the global resolve Map and the
// generic-type cache, recording diagnostics (with "did you mean" hints) on
// failure rather than aborting (§7: resolution errors are reported, not
// fatal).
type Resolver struct {
	Map      *Map
	Generics *genericcache.Cache
	Sink     *diagnostics.Sink
}

// New returns a Resolver wired to the given resolve map, generic cache, and
// diagnostics sink.
func New(m *Map, generics *genericcache.Cache, sink *diagnostics.Sink) *Resolver {
	return &Resolver{Map: m, Generics: generics, Sink: sink}
}

// pos reports a node's position as a byte offset rather than a true
// line/column: a FileInfo keeps only the parsed Tree (from a
// pipeline.ParseFunc or a syntax.Builder), not the source text, so there is
// no source string to hand syntax.LineColumn.
func pos(n *syntax.Node) diagnostics.LineColumn {
	return diagnostics.LineColumn{Line: 0, Column: int(n.Range.Start)}
}

// genericArgListHead returns the NodeIndex of the first argument in a
// TypePath's generic-argument list, given that TypePath's Child0 as idx
// (either a KindGenericArgumentList node or the first argument itself), or
// 0 if idx is absent.
func genericArgListHead(tree *syntax.Tree, idx syntax.NodeIndex) syntax.NodeIndex {
	if !idx.IsValid() {
		return 0
	}
	n := tree.Node(idx)
	if n.Kind == syntax.KindGenericArgumentList {
		return n.Child0
	}
	return idx
}

// Resolve implements §4.E's full algorithm for the TypePath node at idx
// within file, using frame for the enclosing generic-parameter stack.
// Returns (rt, true) on success; on failure it has already reported a
// diagnostic and returns the zero ResolvedType and false.
func (r *Resolver) Resolve(tree *syntax.Tree, idx syntax.NodeIndex, file *registry.FileInfo, frame *GenericFrame) (types.ResolvedType, bool) {
	n := tree.Node(idx)

	// Step 1: built-in fast path. syntax.BuiltInTypeName and
	// types.BuiltInTypeName are deliberately independent enums (syntax must
	// not depend on types) kept in identical iota order, so the numeric
	// conversion here is exact.
	if n.BuiltIn != syntax.BuiltInInvalid {
		rt := types.FromBuiltIn(types.BuiltInTypeName(uint8(n.BuiltIn)))
		return applyNullableArray(rt, n), true
	}

	// Step 3: enclosing generic parameter match.
	if frame != nil {
		if rt, ok := frame.Names[n.Name]; ok {
			return applyNullableArray(rt, n), true
		}
	}

	// Step 4: using-alias exact match.
	if aliased, ok := file.UsingAliases[n.Name]; ok {
		return applyNullableArray(types.FromTypeInfo(aliased), n), true
	}

	// Step 2: canonical textual name (simple name + arity suffix).
	argHead := genericArgListHead(tree, n.Child0)
	arity := syntax.Count(tree, argHead)
	simpleName := n.Name
	if arity > 0 {
		simpleName = fmt.Sprintf("%s`%d", n.Name, arity)
	}

	// Step 5: package (implicitly first), then each using-namespace.
	namespaces := make([]string, 0, len(file.UsingNamespaces)+1)
	namespaces = append(namespaces, file.PackageName)
	namespaces = append(namespaces, file.UsingNamespaces...)

	var found *types.TypeInfo
	var firstMatchFQN string
	matchCount := 0
	for _, ns := range namespaces {
		fqn := ns + "::" + simpleName
		t, ok := r.Map.Lookup(fqn)
		if !ok {
			continue
		}
		matchCount++
		if matchCount == 1 {
			found, firstMatchFQN = t, fqn
			continue
		}
		// Open Question (a), decided: ambiguity fires on the second hit;
		// later matches are not separately reported.
		if matchCount == 2 {
			r.Sink.Errorf(file.FilePath, pos(n), "Ambiguous type match %s", firstMatchFQN)
			return types.ResolvedType{}, false
		}
	}

	if found == nil {
		msg := diagnostics.WithSuggestion(fmt.Sprintf("Unable to resolve type `%s`", n.Name), r.Map.AllNames(), simpleName)
		r.Sink.Errorf(file.FilePath, pos(n), "%s", msg)
		return types.ResolvedType{}, false
	}

	result := types.FromTypeInfo(found)

	// Step 6: recursively resolve generic arguments, then intern via the
	// generic-type cache.
	if arity > 0 {
		args := make([]types.ResolvedType, 0, arity)
		allOK := true
		syntax.Each(tree, argHead, func(argIdx syntax.NodeIndex, _ *syntax.Node) {
			rt, ok := r.Resolve(tree, argIdx, file, frame)
			if !ok {
				allOK = false
				return
			}
			args = append(args, rt)
		})
		if !allOK {
			// Partial failure: the argument's own Resolve call already
			// reported a diagnostic (§4.E "Partial failures ... still
			// report and return false").
			return types.ResolvedType{}, false
		}
		closed := r.Generics.MakeGenericType(found, args)
		result = types.FromTypeInfo(closed)
	}

	// Step 7: record the dependency.
	if found.DeclaringFile != nil {
		file.AddFileReferenceByID(found.DeclaringFile.FileID())
	}

	return applyNullableArray(result, n), true
}

func applyNullableArray(rt types.ResolvedType, n *syntax.Node) types.ResolvedType {
	if n.IsNullable {
		rt = rt.MakeNullable()
	}
	if n.IsArray {
		rt.ArrayRank = 1
	}
	return rt
}
