// Package types is the compiler's type/member identity model: TypeInfo,
// FieldInfo, PropertyInfo, MethodInfo, ParameterInfo, and the namespace
// tree they hang off of. Grounded on original_source/Src/Compiler/TypeInfo.h
// and MemberInfo.h, adapted from raw-pointer C++ records to Go pointer
// structs; the class-base-only lookup-walk discipline is preserved exactly
// because later phases (the resolver, the scope introspector) depend on it.
package types

import "sync/atomic"

// Class is the kind of a declared or synthesized type.
type Class uint8

const (
	ClassInvalid Class = iota
	ClassClass
	ClassStruct
	ClassInterface
	ClassEnum
	ClassDelegate
	ClassGenericArgument
)

func (c Class) String() string {
	switch c {
	case ClassClass:
		return "class"
	case ClassStruct:
		return "struct"
	case ClassInterface:
		return "interface"
	case ClassEnum:
		return "enum"
	case ClassDelegate:
		return "delegate"
	case ClassGenericArgument:
		return "generic argument"
	default:
		return "invalid"
	}
}

// Modifier mirrors syntax.Modifier for declaration-level flags; kept as a
// distinct type so the types package has no import-cycle dependency on
// syntax beyond what it actually needs (NodeIndex).
type Modifier uint16

const (
	ModNone    Modifier = 0
	ModExport  Modifier = 1 << 0
	ModStatic  Modifier = 1 << 1
	ModPrivate Modifier = 1 << 2
	ModRef     Modifier = 1 << 3
	ModOut     Modifier = 1 << 4
)

// Flags is TypeInfoFlags from the original: a bitset of type-level traits.
type Flags uint16

const (
	FlagNone Flags = 0
	FlagIsGeneric Flags = 1 << iota
	FlagIsGenericTypeDefinition
	FlagIsNullable
	FlagIsArray
	FlagRequiresInitConstructor
	FlagInstantiatedGeneric
	FlagContainsOpenGenericTypes
	FlagIsPrimitive
)

// Has reports whether all bits in want are set.
func (f Flags) Has(want Flags) bool { return f&want == want }

// Namespace is a node in the package/nested-type namespace tree. The root
// node's name equals the package name.
type Namespace struct {
	Parent             *Namespace
	EnclosingType       *TypeInfo // non-nil for a nested-type-as-namespace
	Name                string
	FullyQualifiedName  string
}

// PackageName walks to the root of the namespace tree and returns its name.
func (n *Namespace) PackageName() string {
	p := n
	for p.Parent != nil {
		p = p.Parent
	}
	return p.Name
}

// NodeRef is a lightweight back-reference into a parsed file's syntax tree,
// kept here instead of importing syntax.NodeIndex directly so that types
// has no hard dependency on the concrete tree shape beyond an integer.
type NodeRef uint16

// TypeInfo is the identity record for a class/struct/interface/enum/delegate
// or a generic argument placeholder.
type TypeInfo struct {
	DeclaringFile      FileHandle
	TypeName           string
	FullyQualifiedName string // includes backtick-arity suffix for generics
	NamespacePath      *Namespace

	// BaseTypes[0] is the class base (if Class); remaining entries are
	// implemented interfaces. Lookup walks that convention, never this
	// slice blindly, so ordering is load-bearing.
	BaseTypes []*TypeInfo

	Fields       []*FieldInfo
	Properties   []*PropertyInfo
	Methods      []*MethodInfo
	Indexers     []*IndexerInfo
	Constructors []*ConstructorInfo

	GenericArguments []ResolvedType
	Constraints      []GenericConstraint

	Modifiers Modifier
	Class     Class
	Flags     Flags
	NodeIndex NodeRef
}

// GenericConstraint is left empty pending a concrete constraint grammar, as
// in the original (`GenericConstraint{}` // todo).
type GenericConstraint struct{}

// FileHandle is the minimal view of a FileInfo that TypeInfo needs, kept as
// an interface so the types package does not import registry (which owns
// the concrete FileInfo and would otherwise create an import cycle).
type FileHandle interface {
	FileID() uint32
	Path() string
}

// IsExported matches the original: only non-generic, export-modified
// classes are valid entry-point hosts.
func (t *TypeInfo) IsExported() bool {
	return t.Class == ClassClass && t.Modifiers&ModExport != 0 && len(t.GenericArguments) == 0
}

func (t *TypeInfo) IsEnum() bool      { return t.Class == ClassEnum }
func (t *TypeInfo) IsStruct() bool    { return t.Class == ClassStruct }
func (t *TypeInfo) IsClass() bool     { return t.Class == ClassClass }
func (t *TypeInfo) IsInterface() bool { return t.Class == ClassInterface }
func (t *TypeInfo) IsPrimitive() bool { return t.Flags.Has(FlagIsPrimitive) }
func (t *TypeInfo) IsGeneric() bool   { return t.Flags.Has(FlagIsGeneric) }
func (t *TypeInfo) IsGenericTypeDefinition() bool {
	return t.Flags.Has(FlagIsGenericTypeDefinition)
}

// PackageName walks the namespace path to the root.
func (t *TypeInfo) PackageName() string {
	if t.NamespacePath == nil {
		return ""
	}
	return t.NamespacePath.PackageName()
}

// IsSubclassOf walks BaseTypes[0] (class-base only) until it finds target
// or hits a non-class base, matching the original's class-only walk.
func (t *TypeInfo) IsSubclassOf(target *TypeInfo) bool {
	if t.Class == ClassStruct || t.Class == ClassEnum {
		return false
	}
	if len(t.BaseTypes) == 0 {
		return false
	}
	ptr := t.BaseTypes[0]
	for ptr != nil {
		if ptr.Class != t.Class {
			break
		}
		if ptr == target {
			return true
		}
		if len(ptr.BaseTypes) == 0 {
			break
		}
		ptr = ptr.BaseTypes[0]
	}
	return false
}

// Implements recursively walks every base (class base and all interfaces).
func Implements(t, iface *TypeInfo) bool {
	if t == iface {
		return true
	}
	for _, base := range t.BaseTypes {
		if Implements(base, iface) {
			return true
		}
	}
	return false
}

// IsIndexable is true if t or any class-base declares an indexer.
func IsIndexable(t *TypeInfo) bool {
	if t == nil || len(t.Indexers) > 0 {
		return true
	}
	if t.Class != ClassStruct && t.Class != ClassClass {
		return false
	}
	if len(t.BaseTypes) == 0 {
		return false
	}
	ptr := t.BaseTypes[0]
	for ptr != nil {
		if len(ptr.Indexers) > 0 {
			return true
		}
		if len(ptr.BaseTypes) == 0 {
			return false
		}
		ptr = ptr.BaseTypes[0]
	}
	return false
}

// IsReferenceType reports whether t is a class, interface, delegate, or
// array-of-anything; structs and enums are value types.
func IsReferenceType(t *TypeInfo) bool {
	if t == nil {
		return true // Dynamic/String/Object built-ins route through ResolvedType, not here
	}
	return t.Class == ClassClass || t.Class == ClassInterface || t.Class == ClassDelegate
}

// IsAssignableFrom implements the original's TypeInfoIsAssignableFrom:
// identical types, subclass relation, or interface implementation.
func IsAssignableFrom(target, from *TypeInfo) bool {
	if target == from {
		return true
	}
	if target == nil || from == nil {
		return false
	}
	if target.Class == ClassInterface {
		return Implements(from, target)
	}
	return from.IsSubclassOf(target)
}

// atomicCodeGenGuard is the storage behind MethodInfo.hasCodeGen; pulled out
// so the CAS semantics are exercised by a single well-tested helper.
type atomicCodeGenGuard struct {
	flag atomic.Bool
}

// TryFire performs the single-fire compare-and-swap described in §4.L:
// exactly one caller across all workers ever observes true.
func (g *atomicCodeGenGuard) TryFire() bool {
	return g.flag.CompareAndSwap(false, true)
}
