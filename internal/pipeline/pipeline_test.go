package pipeline

import (
	"testing"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/diagnostics"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/genericcache"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/jobs"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/registry"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/resolver"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/syntax"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// fileWithClass builds a one-type, no-member file fixture whose KindFile
// root follows doc.go's tree-shape convention, optionally exported.
func fileWithClass(id uint32, path, pkg, typeName string, exported bool) *registry.FileInfo {
	b := syntax.NewBuilder()
	root := b.Add(syntax.Node{Kind: syntax.KindFile}) // NodeIndex(1), per doc.go

	var mods syntax.Modifier
	if exported {
		mods = syntax.ModExport
	}
	classDecl := b.Add(syntax.Node{Kind: syntax.KindClassDecl, Name: typeName, Modifiers: mods})
	b.Patch(root, func(n *syntax.Node) { n.Child1 = classDecl })

	f := registry.NewFileInfoForTest(id, pkg, path)
	f.Tree = b.Build()
	return f
}

// TestCompile_DuplicateType is §8 scenario 1: two files declare the same
// fully-qualified type; exactly one diagnostic is reported and the first
// declaration wins the resolve map slot.
func TestCompile_DuplicateType(t *testing.T) {
	files := []*registry.FileInfo{
		fileWithClass(1, "/src/a.ax", "App", "Foo", false),
		fileWithClass(2, "/src/b.ax", "App", "Foo", false),
	}

	resolveMap := resolver.NewMap()
	sink := diagnostics.NewSink()
	pool := jobs.NewPool(4)

	if err := GatherTypes(pool, files, resolveMap, sink); err != nil {
		t.Fatalf("GatherTypes: %v", err)
	}

	diags := sink.All()
	if len(diags) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d: %v", len(diags), diags)
	}
	want := "class `App::Foo` was also declared in /src/a.ax"
	if diags[0].Message != want {
		t.Fatalf("message = %q, want %q", diags[0].Message, want)
	}

	winner, ok := resolveMap.Lookup("App::Foo")
	if !ok {
		t.Fatalf("App::Foo not found in resolve map")
	}
	if winner.DeclaringFile.Path() != "/src/a.ax" {
		t.Fatalf("winner declared in %q, want the first file", winner.DeclaringFile.Path())
	}
}

// buildOptionalParamMethod assembles `void F(int x, int y = 1, int z = 2)`
// on a class `App::Host`, following doc.go's parameter-list convention.
func buildOptionalParamMethod() *registry.FileInfo {
	b := syntax.NewBuilder()
	root := b.Add(syntax.Node{Kind: syntax.KindFile}) // NodeIndex(1), per doc.go

	intPath := func() syntax.NodeIndex {
		return b.Add(syntax.Node{Kind: syntax.KindTypePath, BuiltIn: syntax.BuiltInInt32})
	}

	px := b.Add(syntax.Node{Kind: syntax.KindParameter, Name: "x", Child0: intPath()})
	py := b.Add(syntax.Node{Kind: syntax.KindParameter, Name: "y", Child0: intPath(), HasDefaultValue: true})
	pz := b.Add(syntax.Node{Kind: syntax.KindParameter, Name: "z", Child0: intPath(), HasDefaultValue: true})
	paramHead := b.LinkSiblings(px, py, pz)

	voidPath := b.Add(syntax.Node{Kind: syntax.KindTypePath, BuiltIn: syntax.BuiltInVoid})
	methodDecl := b.Add(syntax.Node{Kind: syntax.KindMethodDecl, Name: "F", Child1: paramHead, Child2: voidPath})
	classDecl := b.Add(syntax.Node{Kind: syntax.KindClassDecl, Name: "Host", Child2: methodDecl})
	b.Patch(root, func(n *syntax.Node) { n.Child1 = classDecl })

	f := registry.NewFileInfoForTest(1, "App", "/src/host.ax")
	f.Tree = b.Build()
	return f
}

// TestCompile_OptionalParameterExpansion is §8 scenario 3: the prototype
// plus one concrete MethodInfo per arity from firstOptional up to full
// arity.
func TestCompile_OptionalParameterExpansion(t *testing.T) {
	files := []*registry.FileInfo{buildOptionalParamMethod()}

	resolveMap := resolver.NewMap()
	generics := genericcache.New()
	sink := diagnostics.NewSink()
	pool := jobs.NewPool(4)

	if err := GatherTypes(pool, files, resolveMap, sink); err != nil {
		t.Fatalf("GatherTypes: %v", err)
	}
	if err := ResolveMembers(pool, files, resolveMap, generics, sink); err != nil {
		t.Fatalf("ResolveMembers: %v", err)
	}

	if len(sink.All()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}

	host, ok := resolveMap.Lookup("App::Host")
	if !ok {
		t.Fatalf("App::Host not declared")
	}

	if len(host.Methods) != 4 {
		t.Fatalf("expected 4 MethodInfos (prototype + 3 arities), got %d", len(host.Methods))
	}

	var prototype *types.MethodInfo
	byArity := make(map[int]*types.MethodInfo)
	for _, m := range host.Methods {
		if m.IsOptionalParameterPrototype {
			prototype = m
			continue
		}
		byArity[len(m.Parameters)] = m
	}

	if prototype == nil {
		t.Fatalf("no prototype MethodInfo found")
	}
	if len(prototype.Parameters) != 3 {
		t.Fatalf("prototype should carry all 3 parameters, got %d", len(prototype.Parameters))
	}

	for _, arity := range []int{1, 2, 3} {
		m, ok := byArity[arity]
		if !ok {
			t.Fatalf("missing arity-%d overload", arity)
		}
		if m.Prototype != prototype {
			t.Fatalf("arity-%d overload's Prototype != the prototype MethodInfo", arity)
		}
		for i := 0; i < arity; i++ {
			if m.Parameters[i].Type != prototype.Parameters[i].Type {
				t.Fatalf("arity-%d param %d type diverges from prototype", arity, i)
			}
		}
	}
}

// TestCompile_EntryPoint is §8 scenario 6: an exported class with one
// exported method is selected by an unqualified pattern; marking the type
// non-exported instead produces the "must be marked as export" diagnostic.
func TestCompile_EntryPoint(t *testing.T) {
	b := syntax.NewBuilder()
	root := b.Add(syntax.Node{Kind: syntax.KindFile}) // NodeIndex(1), per doc.go
	voidPath := b.Add(syntax.Node{Kind: syntax.KindTypePath, BuiltIn: syntax.BuiltInVoid})
	mainMethod := b.Add(syntax.Node{Kind: syntax.KindMethodDecl, Name: "Main", Child2: voidPath, Modifiers: syntax.ModExport})
	classDecl := b.Add(syntax.Node{Kind: syntax.KindClassDecl, Name: "Program", Child2: mainMethod, Modifiers: syntax.ModExport})
	b.Patch(root, func(n *syntax.Node) { n.Child1 = classDecl })

	f := registry.NewFileInfoForTest(1, "TestApp", "/src/program.ax")
	f.Tree = b.Build()
	files := []*registry.FileInfo{f}

	resolveMap := resolver.NewMap()
	generics := genericcache.New()
	sink := diagnostics.NewSink()
	pool := jobs.NewPool(4)

	if err := GatherTypes(pool, files, resolveMap, sink); err != nil {
		t.Fatalf("GatherTypes: %v", err)
	}
	if err := ResolveMembers(pool, files, resolveMap, generics, sink); err != nil {
		t.Fatalf("ResolveMembers: %v", err)
	}

	entries := FindEntryPoints(resolveMap, "TestApp", []string{"Program"}, sink)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one entry point, got %d", len(entries))
	}
	if entries[0].Name != "Main" {
		t.Fatalf("entry point method = %q, want Main", entries[0].Name)
	}
	if len(sink.All()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", sink.All())
	}
}

// TestCompile_EntryPointRequiresExport covers §8 scenario 6's negative
// case: a non-exported type matching the pattern is rejected with the
// exact diagnostic text §4.K specifies, and no entry point is returned.
func TestCompile_EntryPointRequiresExport(t *testing.T) {
	b := syntax.NewBuilder()
	root := b.Add(syntax.Node{Kind: syntax.KindFile}) // NodeIndex(1), per doc.go
	voidPath := b.Add(syntax.Node{Kind: syntax.KindTypePath, BuiltIn: syntax.BuiltInVoid})
	mainMethod := b.Add(syntax.Node{Kind: syntax.KindMethodDecl, Name: "Main", Child2: voidPath, Modifiers: syntax.ModExport})
	classDecl := b.Add(syntax.Node{Kind: syntax.KindClassDecl, Name: "Program", Child2: mainMethod})
	b.Patch(root, func(n *syntax.Node) { n.Child1 = classDecl })

	f := registry.NewFileInfoForTest(1, "TestApp", "/src/program.ax")
	f.Tree = b.Build()
	files := []*registry.FileInfo{f}

	resolveMap := resolver.NewMap()
	sink := diagnostics.NewSink()
	pool := jobs.NewPool(4)

	if err := GatherTypes(pool, files, resolveMap, sink); err != nil {
		t.Fatalf("GatherTypes: %v", err)
	}

	entries := FindEntryPoints(resolveMap, "TestApp", []string{"Program"}, sink)
	if len(entries) != 0 {
		t.Fatalf("expected no entry points for a non-exported type, got %d", len(entries))
	}
	diags := sink.All()
	if len(diags) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d: %v", len(diags), diags)
	}
}
