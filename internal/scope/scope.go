package scope

import "github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"

// Scope is one lexical block in a method or property accessor body: a
// chain of VEP declarations plus a parent link for identifier lookup, per
// §3's "Scope/Expression tree" data model. Block, loop, and catch bodies
// each get their own child Scope; the method body's Scope is the root
// stored on MethodDefinition.
type Scope struct {
	Parent *Scope

	// Declarations holds the VEPs introduced directly in this scope, in
	// declaration order (locals are visible only after their declaration
	// statement, which the introspector enforces by appending as it walks).
	Declarations []*VEP

	// ReturnType is set on the root scope of a method/accessor body; child
	// scopes leave it zero and defer to Parent when a return statement
	// needs it.
	ReturnType types.ResolvedType

	// ThisType is the enclosing type of the member whose body this root
	// scope belongs to, set for static members too (IsStaticBoundary marks
	// those).
	ThisType *types.TypeInfo

	// IsStaticBoundary marks a root scope belonging to a static method: an
	// identifier lookup crossing it must not resolve to an instance field.
	IsStaticBoundary bool

	// IsClosureBoundary marks a root scope introduced by a lambda/local
	// function: VEPs resolved across it from an enclosing scope are marked
	// IsCaptured.
	IsClosureBoundary bool
}

// NewRootScope starts the scope chain for a method or property accessor
// body declared on t; isStatic sets IsStaticBoundary.
func NewRootScope(t *types.TypeInfo, isStatic bool, returnType types.ResolvedType) *Scope {
	return &Scope{
		ThisType:         t,
		IsStaticBoundary: isStatic,
		ReturnType:       returnType,
	}
}

// Push opens a nested block scope.
func (s *Scope) Push() *Scope {
	return &Scope{Parent: s}
}

// PushClosure opens a nested scope across a closure boundary.
func (s *Scope) PushClosure() *Scope {
	return &Scope{Parent: s, IsClosureBoundary: true}
}

// Declare adds a new VEP to this scope, shadowing any same-named VEP
// visible from an enclosing scope.
func (s *Scope) Declare(v *VEP) {
	s.Declarations = append(s.Declarations, v)
}

// Lookup walks from s outward through Parent links looking for name,
// marking the VEP captured if the walk crosses a closure boundary before
// finding it. It returns nil if no enclosing scope declares name.
func (s *Scope) Lookup(name string) *VEP {
	crossedClosure := false
	for cur := s; cur != nil; cur = cur.Parent {
		for i := len(cur.Declarations) - 1; i >= 0; i-- {
			if cur.Declarations[i].Name == name {
				v := cur.Declarations[i]
				if crossedClosure {
					v.IsCaptured = true
				}
				return v
			}
		}
		if cur.IsClosureBoundary {
			crossedClosure = true
		}
	}
	return nil
}

// RootReturnType climbs to the root scope and returns its ReturnType.
func (s *Scope) RootReturnType() types.ResolvedType {
	cur := s
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur.ReturnType
}

// LookupThis climbs to the root scope and reports whether the walk passed
// any IsStaticBoundary scope along the way (the root's own boundary, or an
// intermediate one such as a local static function nested in an instance
// method). declType is the enclosing type regardless of static-ness, so a
// caller can still name the type in a "static context" diagnostic even
// when access must be refused.
func (s *Scope) LookupThis() (declType *types.TypeInfo, crossedStatic bool) {
	cur := s
	for cur.Parent != nil {
		if cur.IsStaticBoundary {
			crossedStatic = true
		}
		cur = cur.Parent
	}
	if cur.IsStaticBoundary {
		crossedStatic = true
	}
	return cur.ThisType, crossedStatic
}
