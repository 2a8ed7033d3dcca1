package scope

import "github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"

// VEPKind distinguishes the three declaration origins a VEP can have,
// matching original_source/Src/Compiler/TypeContext.h's VariableOrParameter
// (hence "VEP": variable, expression, or parameter).
type VEPKind uint8

const (
	VEPLocal VEPKind = iota
	VEPParameter
	VEPField
)

// VEP binds a name to a resolved type somewhere a scope can look it up: a
// local variable, a method parameter, or (via TypeContext.Fields) a field.
// It is the leaf the name resolver hands back once it decides "this
// identifier means this declaration."
type VEP struct {
	Kind     VEPKind
	Name     string
	Type     types.ResolvedType
	PassBy   types.PassByModifier
	IsCaptured bool // set once a nested closure scope reads this VEP

	// Field is set only when Kind == VEPField.
	Field *types.FieldInfo

	// Value is set for a VEPLocal whose binding is synthesized rather than
	// written to a storage slot directly — e.g. an if-statement context-list
	// name (§4.J), which resolves to `v.value` of the nullable condition it
	// was unwrapped from. nil for an ordinary parameter/field-backed VEP.
	Value *Expr
}

// IsAssignable reports whether the VEP may appear as the target of an
// assignment. Every VEP is assignable except one read through a closure
// capture with no ref/out modifier.
func (v *VEP) IsAssignable() bool {
	if v.IsCaptured {
		return v.PassBy != types.PassByNone
	}
	return true
}
