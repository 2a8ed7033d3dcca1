package pipeline

import (
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/diagnostics"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/genericcache"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/jobs"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/registry"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/resolver"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/scope"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/syntax"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// Exact diagnostic strings captured from original_source's
// ResolveMemberTypesJob.h (§4.I), reused verbatim.
const (
	errOptionalAfterRequired  = "Optional parameters must appear after all required parameters"
	errOptionalRefOrOut       = "Optional parameters cannot be passed by ref or out"
	errOptionalStorage        = "Optional parameters cannot specify storage requirements"
	errDuplicateParameterFmt  = "Duplicate parameter `%s`"
)

// ResolveMembers runs §4.I as one batched parallel-for over files. Each
// batch gets its own *resolver.Resolver — the closest Go equivalent of the
// original's thread-local TypeResolver — since a single *jobs.Context batch
// body always runs on one worker goroutine at a time.
func ResolveMembers(pool *jobs.Pool, files []*registry.FileInfo, resolveMap *resolver.Map, generics *genericcache.Cache, sink *diagnostics.Sink) error {
	return pool.Execute(jobs.ForeachBatchedParams(len(files), batchSize(len(files))), func(_ *jobs.Context, start, end int) {
		r := resolver.New(resolveMap, generics, sink)
		for i := start; i < end; i++ {
			resolveFileMembers(files[i], r)
		}
	})
}

func resolveFileMembers(f *registry.FileInfo, r *resolver.Resolver) {
	if f.Tree == nil {
		return
	}
	tree := f.Tree

	// Step 1: using aliases.
	for _, decl := range f.UsingAliasDecls {
		if rt, ok := r.Resolve(tree, decl.TypePath, f, nil); ok && rt.TypeInfo != nil {
			f.UsingAliases[decl.Name] = rt.TypeInfo
		}
	}

	for _, decl := range f.DeclaredTypes {
		resolveType(f, tree, decl.TypeInfo, r)
	}
}

func resolveType(f *registry.FileInfo, tree *syntax.Tree, t *types.TypeInfo, r *resolver.Resolver) {
	idx := syntax.NodeIndex(t.NodeIndex)
	n := tree.Node(idx)
	frame := resolver.NewGenericFrame(t.GenericArguments)

	resolveBaseTypes(f, tree, n, t, r, frame)

	syntax.Each(tree, n.Child2, func(memberIdx syntax.NodeIndex, m *syntax.Node) {
		switch m.Kind {
		case syntax.KindFieldDecl:
			resolveField(f, tree, m, t, r, frame)
		case syntax.KindPropertyDecl:
			resolveProperty(f, tree, memberIdx, m, t, r, frame)
		case syntax.KindIndexerDecl:
			resolveIndexer(f, tree, memberIdx, m, t, r, frame)
		case syntax.KindMethodDecl:
			resolveMethod(f, tree, memberIdx, m, t, r, frame)
		case syntax.KindConstructorDecl:
			resolveConstructor(f, tree, memberIdx, m, t, r, frame)
		}
	})

	f.DeclaredTypes = replaceTypeContext(f.DeclaredTypes, t, scope.AllocateTypeContext(t))
}

func replaceTypeContext(decls []registry.DeclaredType, t *types.TypeInfo, tc *scope.TypeContext) []registry.DeclaredType {
	for i := range decls {
		if decls[i].TypeInfo == t {
			decls[i].TypeContext = tc
			break
		}
	}
	return decls
}

// resolveBaseTypes implements §4.I step 2: at most one class base, only at
// position 0; every other base must be an interface; neither may be
// nullable or an array.
func resolveBaseTypes(f *registry.FileInfo, tree *syntax.Tree, n *syntax.Node, t *types.TypeInfo, r *resolver.Resolver, frame *resolver.GenericFrame) {
	pos := 0
	for idx := n.Child1; idx.IsValid(); idx = tree.Node(idx).Next {
		rt, ok := r.Resolve(tree, idx, f, frame)
		if !ok || rt.TypeInfo == nil {
			pos++
			continue
		}
		if rt.IsNullable() || rt.ArrayRank > 0 {
			r.Sink.Errorf(f.FilePath, diagnostics.LineColumn{}, "Base type `%s` of `%s` must not be nullable or an array", rt.TypeInfo.FullyQualifiedName, t.FullyQualifiedName)
			pos++
			continue
		}
		if pos == 0 && t.Class == types.ClassClass && rt.TypeInfo.Class == types.ClassClass {
			t.BaseTypes = append(t.BaseTypes, rt.TypeInfo)
		} else if rt.TypeInfo.Class == types.ClassInterface {
			t.BaseTypes = append(t.BaseTypes, rt.TypeInfo)
		} else {
			r.Sink.Errorf(f.FilePath, diagnostics.LineColumn{}, "Only one class base is allowed, at position 0; `%s` is not an interface", rt.TypeInfo.FullyQualifiedName)
		}
		pos++
	}
}

func resolveField(f *registry.FileInfo, tree *syntax.Tree, m *syntax.Node, t *types.TypeInfo, r *resolver.Resolver, frame *resolver.GenericFrame) {
	rt, _ := r.Resolve(tree, m.Child0, f, frame)
	t.Fields = append(t.Fields, &types.FieldInfo{
		DeclaringType: t,
		Name:          m.Name,
		Type:          rt,
		Modifiers:     types.Modifier(m.Modifiers),
	})
}

func resolveProperty(f *registry.FileInfo, tree *syntax.Tree, idx syntax.NodeIndex, m *syntax.Node, t *types.TypeInfo, r *resolver.Resolver, frame *resolver.GenericFrame) {
	rt, _ := r.Resolve(tree, m.Child0, f, frame)
	t.Properties = append(t.Properties, &types.PropertyInfo{
		DeclaringType:   t,
		Name:            m.Name,
		Type:            rt,
		Modifiers:       types.Modifier(m.Modifiers),
		NodeIndex:       types.NodeRef(idx),
		GetterNodeIndex: types.NodeRef(m.Child1),
		SetterNodeIndex: types.NodeRef(m.Child2),
	})
}

func resolveIndexer(f *registry.FileInfo, tree *syntax.Tree, idx syntax.NodeIndex, m *syntax.Node, t *types.TypeInfo, r *resolver.Resolver, frame *resolver.GenericFrame) {
	valueType, _ := r.Resolve(tree, m.Child0, f, frame)
	var paramType types.ResolvedType
	if paramNode := tree.Node(m.Child1); paramNode.Kind == syntax.KindParameter {
		paramType, _ = r.Resolve(tree, paramNode.Child0, f, frame)
	}
	t.Indexers = append(t.Indexers, &types.IndexerInfo{
		DeclaringType:   t,
		Type:            valueType,
		ParamType:       paramType,
		Modifiers:       types.Modifier(m.Modifiers),
		NodeIndex:       types.NodeRef(idx),
		GetterNodeIndex: types.NodeRef(m.Child2),
		SetterNodeIndex: types.NodeRef(m.Child3),
	})
}

func resolveMethod(f *registry.FileInfo, tree *syntax.Tree, idx syntax.NodeIndex, m *syntax.Node, t *types.TypeInfo, r *resolver.Resolver, frame *resolver.GenericFrame) {
	methodFrame := frame
	var genericArgs []types.ResolvedType
	if m.Child0.IsValid() {
		syntax.Each(tree, m.Child0, func(_ syntax.NodeIndex, tp *syntax.Node) {
			ga := &types.TypeInfo{TypeName: tp.Name, Class: types.ClassGenericArgument}
			genericArgs = append(genericArgs, types.ResolvedType{TypeInfo: ga})
		})
		methodFrame = frame.Extend(genericArgs)
	}

	returnType, _ := r.Resolve(tree, m.Child2, f, methodFrame)
	params, ok := resolveParameters(f, tree, m.Child1, r, methodFrame)

	method := &types.MethodInfo{
		DeclaringType:    t,
		Name:             m.Name,
		ReturnType:       returnType,
		Parameters:       params,
		GenericArguments: genericArgs,
		Modifiers:        types.Modifier(m.Modifiers),
		NodeIndex:        types.NodeRef(idx),
		IsGenericDefinition: len(genericArgs) > 0,
	}
	t.Methods = append(t.Methods, method)

	if ok {
		expandOptionalParameters(t, method)
	}
}

func resolveConstructor(f *registry.FileInfo, tree *syntax.Tree, idx syntax.NodeIndex, m *syntax.Node, t *types.TypeInfo, r *resolver.Resolver, frame *resolver.GenericFrame) {
	params, _ := resolveParameters(f, tree, m.Child0, r, frame)
	ctor := &types.ConstructorInfo{
		DeclaringType: t,
		Name:          t.TypeName,
		Parameters:    params,
		Modifiers:     types.Modifier(m.Modifiers),
		NodeIndex:     types.NodeRef(idx),
	}
	t.Constructors = append(t.Constructors, ctor)
}

// resolveParameters implements §4.I step 3's method/constructor parameter
// rules: contiguous optional tail, no ref/out or storage on optional
// parameters, no duplicate names. ok is false if any rule was violated
// (callers use this to skip optional-parameter expansion on a broken
// signature rather than compounding the diagnostic).
func resolveParameters(f *registry.FileInfo, tree *syntax.Tree, head syntax.NodeIndex, r *resolver.Resolver, frame *resolver.GenericFrame) ([]*types.ParameterInfo, bool) {
	var params []*types.ParameterInfo
	seen := make(map[string]bool)
	ok := true
	firstOptional := -1

	i := 0
	for idx := head; idx.IsValid(); idx = tree.Node(idx).Next {
		p := tree.Node(idx)
		if seen[p.Name] {
			r.Sink.Errorf(f.FilePath, pos(p), errDuplicateParameterFmt, p.Name)
			ok = false
		}
		seen[p.Name] = true

		if p.HasDefaultValue {
			if firstOptional == -1 {
				firstOptional = i
			}
			if p.Modifiers&(syntax.ModRef|syntax.ModOut) != 0 {
				r.Sink.Errorf(f.FilePath, pos(p), errOptionalRefOrOut)
				ok = false
			}
			if p.Modifiers&syntax.ModTemp != 0 {
				r.Sink.Errorf(f.FilePath, pos(p), errOptionalStorage)
				ok = false
			}
		} else if firstOptional != -1 {
			r.Sink.Errorf(f.FilePath, pos(p), errOptionalAfterRequired)
			ok = false
		}

		rt, _ := r.Resolve(tree, p.Child0, f, frame)
		params = append(params, &types.ParameterInfo{
			Name:            p.Name,
			Type:            rt,
			Storage:         storageFor(p.Modifiers),
			PassBy:          passByFor(p.Modifiers),
			HasDefaultValue: p.HasDefaultValue,
			NodeIndex:       types.NodeRef(idx),
		})
		i++
	}
	return params, ok
}

func storageFor(m syntax.Modifier) types.StorageClass {
	if m&syntax.ModTemp != 0 {
		return types.StorageTemp
	}
	return types.StorageDefault
}

func passByFor(m syntax.Modifier) types.PassByModifier {
	switch {
	case m&syntax.ModRef != 0:
		return types.PassByRef
	case m&syntax.ModOut != 0:
		return types.PassByOut
	default:
		return types.PassByNone
	}
}

func pos(n *syntax.Node) diagnostics.LineColumn {
	return diagnostics.LineColumn{Line: 0, Column: int(n.Range.Start)}
}

// expandOptionalParameters implements §4.I's "materialize a new
// non-optional MethodInfo copying only the leading parameters, with
// prototype set to the original" rule, once for every arity from the first
// optional parameter's index up to the full parameter count. The original
// method is marked IsOptionalParameterPrototype and never itself called.
func expandOptionalParameters(t *types.TypeInfo, original *types.MethodInfo) {
	firstOptional := -1
	for i, p := range original.Parameters {
		if p.HasDefaultValue {
			firstOptional = i
			break
		}
	}
	if firstOptional == -1 {
		return
	}
	original.IsOptionalParameterPrototype = true
	for arity := firstOptional; arity <= len(original.Parameters); arity++ {
		overload := &types.MethodInfo{
			DeclaringType: t,
			Name:          original.Name,
			ReturnType:    original.ReturnType,
			Parameters:    append([]*types.ParameterInfo(nil), original.Parameters[:arity]...),
			Modifiers:     original.Modifiers,
			Prototype:     original,
		}
		t.Methods = append(t.Methods, overload)
	}
}
