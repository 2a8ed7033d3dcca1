// Package codegen implements §4.L's code-gen visitor: given a set of
// VisitEntry roots (typically the entry-point methods §4.K finds), it
// discovers every method/type transitively reachable from them, scheduling
// one job per newly-discovered method via the has_code_gen single-fire CAS
// (§5) so that exactly one worker ever visits a given method.
//
// Textual code emission is out of scope for this module (§1); this package
// owns only the reachability walk and scheduling discipline, and hands
// every visited symbol to a pluggable Emitter so a real backend can be
// wired in without touching this walk. Grounded on the teacher's
// internal/core/graph_propagator.go reachability-propagation shape (a
// worklist of newly-touched nodes, each expanding the frontier by one
// more hop) and internal/symbollinker/linker_engine.go's single-fire
// "claim this symbol before processing it" discipline.
package codegen

import (
	"sync"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/jobs"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/scope"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// VisitKind discriminates a VisitEntry's payload, matching §4.L's
// `VisitEntry { kind: Type|Method|Property|Indexer|Constructor, ptr }`.
type VisitKind uint8

const (
	VisitMethod VisitKind = iota
	VisitType
	VisitProperty
	VisitIndexer
	VisitConstructor
)

// VisitEntry is one unit fed to GatherCodeGenEntries.
type VisitEntry struct {
	Kind        VisitKind
	Method      *types.MethodInfo
	Type        *types.TypeInfo
	Property    *types.PropertyInfo
	Indexer     *types.IndexerInfo
	Constructor *types.ConstructorInfo
}

func MethodEntry(m *types.MethodInfo) VisitEntry           { return VisitEntry{Kind: VisitMethod, Method: m} }
func TypeEntry(t *types.TypeInfo) VisitEntry                { return VisitEntry{Kind: VisitType, Type: t} }
func PropertyEntry(p *types.PropertyInfo) VisitEntry        { return VisitEntry{Kind: VisitProperty, Property: p} }
func IndexerEntry(i *types.IndexerInfo) VisitEntry          { return VisitEntry{Kind: VisitIndexer, Indexer: i} }
func ConstructorEntry(c *types.ConstructorInfo) VisitEntry  { return VisitEntry{Kind: VisitConstructor, Constructor: c} }

// Emitter is the pluggable textual-output contract §4.L hands visited
// symbols to. A real backend can implement this to produce actual C-like
// target text; this module ships no concrete implementation since textual
// emission is explicitly out of scope (§1).
type Emitter interface {
	// EmitMethodForwardDecl returns the forward declaration for m, named
	// via m.MangledName().
	EmitMethodForwardDecl(m *types.MethodInfo) string
	// EmitStructDecl returns the struct definition for t.
	EmitStructDecl(t *types.TypeInfo) string
}

// MethodLookup resolves a MethodInfo to the MethodDefinition holding the
// body §4.J's ConstructExpressionTrees phase walked for it. Returns false
// for forward declarations / externs with no body to walk.
type MethodLookup func(*types.MethodInfo) (*scope.MethodDefinition, bool)

// Output accumulates every emitted fragment plus the set of types touched
// by any visited field/property/parameter/return-type, unioned across
// workers (§4.L: "the set of touched types is unioned across workers at
// the end").
type Output struct {
	mu      sync.Mutex
	forward []string
	structs []string
	touched map[*types.TypeInfo]struct{}
}

func newOutput() *Output {
	return &Output{touched: make(map[*types.TypeInfo]struct{})}
}

func (o *Output) addForward(s string) {
	if s == "" {
		return
	}
	o.mu.Lock()
	o.forward = append(o.forward, s)
	o.mu.Unlock()
}

func (o *Output) addStruct(s string) {
	if s == "" {
		return
	}
	o.mu.Lock()
	o.structs = append(o.structs, s)
	o.mu.Unlock()
}

func (o *Output) recordType(t *types.TypeInfo) {
	if t == nil {
		return
	}
	o.mu.Lock()
	o.touched[t] = struct{}{}
	o.mu.Unlock()
}

// ForwardDecls returns every method forward declaration emitted so far.
func (o *Output) ForwardDecls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.forward))
	copy(out, o.forward)
	return out
}

// StructDecls returns every struct definition emitted so far.
func (o *Output) StructDecls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.structs))
	copy(out, o.structs)
	return out
}

// TouchedTypes returns every type recorded by a visited member, for
// emission ordering by a real backend.
func (o *Output) TouchedTypes() []*types.TypeInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*types.TypeInfo, 0, len(o.touched))
	for t := range o.touched {
		out = append(out, t)
	}
	return out
}

// Visitor drives §4.L's reachability walk.
type Visitor struct {
	Lookup  MethodLookup
	Emitter Emitter
	Output  *Output
}

// NewVisitor returns a Visitor with a fresh Output. lookup and emitter may
// be nil; a nil emitter just skips textual output while still performing
// the reachability walk and touched-type bookkeeping.
func NewVisitor(lookup MethodLookup, emitter Emitter) *Visitor {
	return &Visitor{Lookup: lookup, Emitter: emitter, Output: newOutput()}
}

// GatherCodeGenEntries runs §4.L/§2's "GatherCodeGenEntries*" dynamic
// fan-out: one job per entry, expanding further as each method body is
// walked and new callees are discovered. A method already CAS-claimed by
// an earlier Find/entry-point call (duplicate entries, or a method reached
// by two different call paths) is silently skipped, matching §8's
// "has_code_gen CAS: no method is scheduled into code-gen twice."
func (v *Visitor) GatherCodeGenEntries(pool *jobs.Pool, entries []VisitEntry) error {
	return pool.Execute(jobs.SingleParams(), func(ctx *jobs.Context, _, _ int) {
		var handles []jobs.Handle
		for _, e := range entries {
			e := e
			if h, scheduled := v.scheduleEntry(ctx, e); scheduled {
				handles = append(handles, h)
			}
		}
		ctx.AwaitAll(handles...)
	})
}

// scheduleEntry claims e (CAS for methods; types/properties/indexers/
// constructors have no analogous single-fire flag in §3's data model and
// are always (re-)visited, matching the original's "types: emit a struct
// definition" being idempotent) and, on a successful claim, schedules a
// child job for it.
func (v *Visitor) scheduleEntry(ctx *jobs.Context, e VisitEntry) (jobs.Handle, bool) {
	if e.Kind == VisitMethod {
		if e.Method == nil || !e.Method.TryScheduleCodeGen() {
			return jobs.Handle{}, false
		}
	}
	return ctx.Schedule(func(ctx *jobs.Context, _, _ int) { v.visit(ctx, e) }), true
}

func (v *Visitor) visit(ctx *jobs.Context, e VisitEntry) {
	switch e.Kind {
	case VisitMethod:
		v.visitMethod(ctx, e.Method)
	case VisitType:
		v.visitType(e.Type)
	case VisitProperty:
		v.visitProperty(e.Property)
	case VisitIndexer:
		v.visitIndexer(e.Indexer)
	case VisitConstructor:
		v.visitConstructor(e.Constructor)
	}
}

// visitMethod implements the method half of §4.L: emit the forward
// declaration, record the declaring type, then walk the already-resolved
// body (built by ConstructExpressionTrees, §4.J) looking for further
// method calls and member accesses, scheduling a child job for every
// callee this call CAS-wins.
func (v *Visitor) visitMethod(ctx *jobs.Context, m *types.MethodInfo) {
	if m == nil {
		return
	}
	if v.Emitter != nil {
		v.Output.addForward(v.Emitter.EmitMethodForwardDecl(m))
	}
	v.Output.recordType(m.DeclaringType)

	if v.Lookup == nil {
		return
	}
	def, ok := v.Lookup(m)
	if !ok || def == nil {
		return
	}

	var handles []jobs.Handle
	scope.WalkAll(def.Body, func(e *scope.Expr) {
		switch e.Kind {
		case scope.ExprStaticCall, scope.ExprInstanceCall:
			if e.Method != nil && e.Method.TryScheduleCodeGen() {
				target := e.Method
				handles = append(handles, ctx.Schedule(func(ctx *jobs.Context, _, _ int) {
					v.visitMethod(ctx, target)
				}))
			}
		case scope.ExprFieldAccess:
			if e.Field != nil {
				v.Output.recordType(e.Field.Type.TypeInfo)
			}
		case scope.ExprPropertyAccess:
			if e.Property != nil {
				v.Output.recordType(e.Property.Type.TypeInfo)
			}
		case scope.ExprDirectCast:
			v.Output.recordType(e.CastTarget.TypeInfo)
		}
	})
	ctx.AwaitAll(handles...)
}

// visitType implements the type half of §4.L: emit a struct definition and
// record every field/property type for later emission ordering.
func (v *Visitor) visitType(t *types.TypeInfo) {
	if t == nil {
		return
	}
	if v.Emitter != nil {
		v.Output.addStruct(v.Emitter.EmitStructDecl(t))
	}
	v.Output.recordType(t)
	for _, f := range t.Fields {
		v.Output.recordType(f.Type.TypeInfo)
	}
	for _, p := range t.Properties {
		v.Output.recordType(p.Type.TypeInfo)
	}
	for _, base := range t.BaseTypes {
		v.Output.recordType(base)
	}
}

func (v *Visitor) visitProperty(p *types.PropertyInfo) {
	if p == nil {
		return
	}
	v.Output.recordType(p.DeclaringType)
	v.Output.recordType(p.Type.TypeInfo)
}

func (v *Visitor) visitIndexer(i *types.IndexerInfo) {
	if i == nil {
		return
	}
	v.Output.recordType(i.DeclaringType)
	v.Output.recordType(i.Type.TypeInfo)
}

func (v *Visitor) visitConstructor(c *types.ConstructorInfo) {
	if c == nil {
		return
	}
	v.Output.recordType(c.DeclaringType)
	for _, p := range c.Parameters {
		v.Output.recordType(p.Type.TypeInfo)
	}
}
