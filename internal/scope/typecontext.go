// Package scope is the scope introspector (§4.J): it builds an expression
// tree inside a scope stack for every declared method, resolves
// identifiers against that stack and the enclosing type, and performs
// method overload resolution with the conversion ladder and numeric
// widening rules from §4.J.
//
// Scope push/pop is grounded on the teacher's
// internal/symbollinker/extractor.go ScopeManager (PushScope/PopScope/
// CurrentScope); overload-candidate collect-then-filter-then-score follows
// the same shape the teacher's internal/search ranking code uses.
package scope

import "github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"

// MethodDefinition pairs a MethodInfo with the root Scope built for its
// body and the VEPs materialized for its parameters, per
// original_source/Src/Compiler/TypeContext.h.
type MethodDefinition struct {
	Scope      *Scope
	MethodInfo *types.MethodInfo
	Parameters []*VEP

	// Body is the resolved statement-expression list built by
	// Introspector.WalkMethod, walked again by §4.L's code-gen visitor to
	// discover every method/field/property it reaches.
	Body []*Expr
}

func (m *MethodDefinition) GetParameters() []*VEP { return m.Parameters }

// PropertyDefinition pairs a PropertyInfo with the scopes built for its
// getter/setter bodies (nil if the accessor is absent or auto-implemented).
type PropertyDefinition struct {
	GetterScope  *Scope
	SetterScope  *Scope
	PropertyInfo *types.PropertyInfo
}

// TypeContext is the per-type scope metadata built by §4.H (allocated
// alongside each declared TypeInfo) and populated by §4.J.
type TypeContext struct {
	TypeInfo   *types.TypeInfo
	RootScope  *Scope
	Fields     []*VEP
	Methods    []*MethodDefinition
	Properties []*PropertyDefinition
	Indexers   []*PropertyDefinition
}

// AllocateTypeContext pre-sizes every per-type array from typeInfo's member
// counts and pre-populates each MethodDefinition.MethodInfo, matching
// original_source's AllocateTypeContext.
func AllocateTypeContext(t *types.TypeInfo) *TypeContext {
	tc := &TypeContext{
		TypeInfo:   t,
		Fields:     make([]*VEP, 0, len(t.Fields)),
		Methods:    make([]*MethodDefinition, len(t.Methods)),
		Properties: make([]*PropertyDefinition, 0, len(t.Properties)),
		Indexers:   make([]*PropertyDefinition, 0, len(t.Indexers)),
	}
	for i, m := range t.Methods {
		tc.Methods[i] = &MethodDefinition{MethodInfo: m}
	}
	return tc
}
