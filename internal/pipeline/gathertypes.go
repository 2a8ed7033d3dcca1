package pipeline

import (
	"fmt"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/diagnostics"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/jobs"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/registry"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/resolver"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/syntax"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// FileRoot is the NodeIndex every file's KindFile node occupies, per the
// tree-shape convention documented in doc.go.
const FileRoot syntax.NodeIndex = 1

// GatherTypes runs §4.H as one batched parallel-for over files: builds a
// namespace stack per file, walks top-level declarations, allocates a
// TypeInfo (and a generic-argument placeholder TypeInfo per type parameter)
// for each, then — single-threaded, after the parallel-for returns —
// inserts every declared type into the shared resolve map, diagnosing
// duplicate fully-qualified names.
//
// Grounded on the teacher's internal/indexing/pipeline.go parallel extract
// stage (one job per file, results merged after a barrier).
func GatherTypes(pool *jobs.Pool, files []*registry.FileInfo, resolveMap *resolver.Map, sink *diagnostics.Sink) error {
	err := pool.Execute(jobs.ForeachBatchedParams(len(files), batchSize(len(files))), func(_ *jobs.Context, start, end int) {
		for i := start; i < end; i++ {
			gatherFile(files[i], sink)
		}
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		for _, decl := range f.DeclaredTypes {
			t := decl.TypeInfo
			if existingFile, inserted := resolveMap.Declare(t.FullyQualifiedName, f.FilePath, t); !inserted {
				sink.Errorf(f.FilePath, diagnostics.LineColumn{}, "%s `%s` was also declared in %s", t.Class, t.FullyQualifiedName, existingFile)
			}
		}
	}
	return nil
}

// batchSize picks a batch size that keeps the number of jobs proportional
// to available parallelism without spawning one job per file for very
// large file sets, matching how the teacher's indexing pipeline sizes its
// own batches.
func batchSize(n int) int {
	if n <= 1 {
		return 1
	}
	const target = 64
	if n < target {
		return 1
	}
	return n / target
}

func gatherFile(f *registry.FileInfo, sink *diagnostics.Sink) {
	if f.Tree == nil {
		return
	}
	tree := f.Tree
	ns := &types.Namespace{Name: f.PackageName, FullyQualifiedName: f.PackageName}

	root := tree.Node(FileRoot)
	syntax.Each(tree, root.Child0, func(idx syntax.NodeIndex, n *syntax.Node) {
		switch n.Kind {
		case syntax.KindUsingNamespace:
			f.UsingNamespaces = append(f.UsingNamespaces, n.Name)
		case syntax.KindUsingAlias:
			f.UsingAliasDecls = append(f.UsingAliasDecls, registry.UsingAliasDecl{Name: n.Name, TypePath: n.Child0})
		}
	})

	syntax.Each(tree, root.Child1, func(idx syntax.NodeIndex, n *syntax.Node) {
		gatherTypeDecl(f, tree, idx, n, ns)
	})
}

func gatherTypeDecl(f *registry.FileInfo, tree *syntax.Tree, idx syntax.NodeIndex, n *syntax.Node, ns *types.Namespace) {
	class := classForKind(n.Kind)
	if class == types.ClassInvalid {
		return
	}

	fqn := ns.FullyQualifiedName + "::" + n.Name
	t := &types.TypeInfo{
		DeclaringFile:      f,
		TypeName:           n.Name,
		FullyQualifiedName: fqn,
		NamespacePath:      ns,
		Modifiers:          types.Modifier(n.Modifiers),
		Class:              class,
		NodeIndex:          types.NodeRef(idx),
	}

	var generics []types.ResolvedType
	syntax.Each(tree, n.Child0, func(_ syntax.NodeIndex, tp *syntax.Node) {
		ga := &types.TypeInfo{TypeName: tp.Name, Class: types.ClassGenericArgument}
		generics = append(generics, types.ResolvedType{TypeInfo: ga})
	})
	if len(generics) > 0 {
		t.GenericArguments = generics
		t.Flags |= types.FlagIsGeneric | types.FlagIsGenericTypeDefinition
		t.FullyQualifiedName = fmt.Sprintf("%s`%d", fqn, len(generics))
	}

	preCountMembers(tree, n.Child2, t)

	f.DeclaredTypes = append(f.DeclaredTypes, registry.DeclaredType{TypeInfo: t})
}

func classForKind(k syntax.Kind) types.Class {
	switch k {
	case syntax.KindClassDecl:
		return types.ClassClass
	case syntax.KindStructDecl:
		return types.ClassStruct
	case syntax.KindInterfaceDecl:
		return types.ClassInterface
	case syntax.KindEnumDecl:
		return types.ClassEnum
	case syntax.KindDelegateDecl:
		return types.ClassDelegate
	default:
		return types.ClassInvalid
	}
}

// preCountMembers pre-allocates exact-length member slices (§4.H: "so §4.I
// can allocate exact arrays"), reserving extra MethodInfo slots for methods
// with optional trailing parameters: the prototype itself plus §4.H's
// "(count − firstDefault + 1)" additional slots, one per expanded arity.
func preCountMembers(tree *syntax.Tree, memberHead syntax.NodeIndex, t *types.TypeInfo) {
	var fieldCount, propCount, indexerCount, ctorCount, methodSlots int

	syntax.Each(tree, memberHead, func(_ syntax.NodeIndex, n *syntax.Node) {
		switch n.Kind {
		case syntax.KindFieldDecl:
			fieldCount++
		case syntax.KindPropertyDecl:
			propCount++
		case syntax.KindIndexerDecl:
			indexerCount++
		case syntax.KindConstructorDecl:
			ctorCount++
		case syntax.KindMethodDecl:
			methodSlots += optionalParameterSlots(tree, n.Child1)
		}
	})

	t.Fields = make([]*types.FieldInfo, 0, fieldCount)
	t.Properties = make([]*types.PropertyInfo, 0, propCount)
	t.Indexers = make([]*types.IndexerInfo, 0, indexerCount)
	t.Constructors = make([]*types.ConstructorInfo, 0, ctorCount)
	t.Methods = make([]*types.MethodInfo, 0, methodSlots)
}

// optionalParameterSlots returns 1 (the declaration itself) plus §4.H's
// "(count - firstDefault + 1)" reservation, one slot per arity from
// firstDefault through count; a method without optional parameters gets 1.
func optionalParameterSlots(tree *syntax.Tree, paramHead syntax.NodeIndex) int {
	total, firstDefault := 0, -1
	syntax.Each(tree, paramHead, func(_ syntax.NodeIndex, p *syntax.Node) {
		if firstDefault == -1 && p.HasDefaultValue {
			firstDefault = total
		}
		total++
	})
	if firstDefault == -1 {
		return 1
	}
	return 1 + (total - firstDefault + 1)
}
