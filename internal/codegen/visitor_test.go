package codegen

import (
	"sync/atomic"
	"testing"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/jobs"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// TestGatherCodeGenEntries_NoMethodVisitedTwice is §8's "has_code_gen CAS:
// no method is scheduled into code-gen twice," exercised by feeding the same
// method in as two separate entries (simulating two independent call paths
// reaching it).
func TestGatherCodeGenEntries_NoMethodVisitedTwice(t *testing.T) {
	var visits atomic.Int32
	emitter := countingEmitter{visits: &visits}

	m := &types.MethodInfo{Name: "Shared"}
	v := NewVisitor(nil, emitter)

	pool := jobs.NewPool(4)
	err := v.GatherCodeGenEntries(pool, []VisitEntry{
		MethodEntry(m),
		MethodEntry(m),
		MethodEntry(m),
	})
	if err != nil {
		t.Fatalf("GatherCodeGenEntries returned error: %v", err)
	}

	if got := visits.Load(); got != 1 {
		t.Fatalf("method visited %d times, want exactly 1", got)
	}
	if len(v.Output.ForwardDecls()) != 1 {
		t.Fatalf("expected exactly one forward decl, got %d", len(v.Output.ForwardDecls()))
	}
}

func TestGatherCodeGenEntries_DistinctMethodsBothVisited(t *testing.T) {
	var visits atomic.Int32
	emitter := countingEmitter{visits: &visits}

	a := &types.MethodInfo{Name: "A"}
	b := &types.MethodInfo{Name: "B"}
	v := NewVisitor(nil, emitter)

	pool := jobs.NewPool(4)
	err := v.GatherCodeGenEntries(pool, []VisitEntry{MethodEntry(a), MethodEntry(b)})
	if err != nil {
		t.Fatalf("GatherCodeGenEntries returned error: %v", err)
	}
	if got := visits.Load(); got != 2 {
		t.Fatalf("visited %d methods, want 2", got)
	}
}

func TestVisitType_RecordsFieldsAndBases(t *testing.T) {
	base := &types.TypeInfo{TypeName: "Base"}
	field := &types.TypeInfo{TypeName: "Field"}
	owner := &types.TypeInfo{
		TypeName:  "Owner",
		BaseTypes: []*types.TypeInfo{base},
		Fields: []*types.FieldInfo{
			{Name: "f", Type: types.FromTypeInfo(field)},
		},
	}

	v := NewVisitor(nil, nil)
	pool := jobs.NewPool(2)
	err := v.GatherCodeGenEntries(pool, []VisitEntry{TypeEntry(owner)})
	if err != nil {
		t.Fatalf("GatherCodeGenEntries returned error: %v", err)
	}

	touched := v.Output.TouchedTypes()
	seen := make(map[*types.TypeInfo]bool, len(touched))
	for _, tt := range touched {
		seen[tt] = true
	}
	if !seen[owner] || !seen[base] || !seen[field] {
		t.Fatalf("expected owner, base, and field types all recorded as touched")
	}
}

type countingEmitter struct {
	visits *atomic.Int32
}

func (e countingEmitter) EmitMethodForwardDecl(m *types.MethodInfo) string {
	e.visits.Add(1)
	return "decl " + m.Name
}

func (e countingEmitter) EmitStructDecl(t *types.TypeInfo) string {
	return "struct " + t.TypeName
}
