package types

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ResolvedTypeFlags mirrors the original's ResolvedType bitset exactly.
type ResolvedTypeFlags uint16

const (
	RTNone ResolvedTypeFlags = 0
	RTIsVoid ResolvedTypeFlags = 1 << iota
	RTIsNullable
	RTIsArray
	RTIsNullableArray
	_ // unnamed, as upstream; bit 5 here, since RTIsVoid starts at bit 1
	RTIsEnum
	RTIsVector
	RTIsNullOrDefault
	RTIsMethodGroup
	RTIsVar
)

// BuiltInTypeName enumerates primitive/built-in names a ResolvedType can
// carry without a TypeInfo; kept independent from syntax.BuiltInTypeName so
// this package has no dependency on syntax.
type BuiltInTypeName uint8

const (
	BuiltInInvalid BuiltInTypeName = iota
	BuiltInVoid
	BuiltInBool
	BuiltInInt8
	BuiltInInt16
	BuiltInInt32
	BuiltInInt64
	BuiltInUInt8
	BuiltInUInt16
	BuiltInUInt32
	BuiltInUInt64
	BuiltInFloat
	BuiltInDouble
	BuiltInString
	BuiltInObject
	BuiltInDynamic
	BuiltInChar
	BuiltInInt2
	BuiltInInt3
	BuiltInInt4
	BuiltInUint2
	BuiltInUint3
	BuiltInUint4
	BuiltInFloat2
	BuiltInFloat3
	BuiltInFloat4
	BuiltInColor
)

func (b BuiltInTypeName) String() string {
	switch b {
	case BuiltInVoid:
		return "void"
	case BuiltInBool:
		return "bool"
	case BuiltInInt8:
		return "sbyte"
	case BuiltInInt16:
		return "short"
	case BuiltInInt32:
		return "int"
	case BuiltInInt64:
		return "long"
	case BuiltInUInt8:
		return "byte"
	case BuiltInUInt16:
		return "ushort"
	case BuiltInUInt32:
		return "uint"
	case BuiltInUInt64:
		return "ulong"
	case BuiltInFloat:
		return "float"
	case BuiltInDouble:
		return "double"
	case BuiltInString:
		return "string"
	case BuiltInObject:
		return "object"
	case BuiltInDynamic:
		return "dynamic"
	case BuiltInChar:
		return "char"
	default:
		return "<invalid>"
	}
}

// ResolvedType is the value-type pair the resolver produces for every
// expression and member type: `{typeInfo?, builtIn, arrayRank, flags}`.
// Equality is componentwise (see Equals); hashing is stable within a
// process (see Hash), matching §3's invariants.
type ResolvedType struct {
	TypeInfo    *TypeInfo
	BuiltIn     BuiltInTypeName
	ArrayRank   uint8
	Flags       ResolvedTypeFlags
}

func FromTypeInfo(t *TypeInfo) ResolvedType { return ResolvedType{TypeInfo: t} }

func FromBuiltIn(name BuiltInTypeName) ResolvedType { return ResolvedType{BuiltIn: name} }

func Var() ResolvedType          { return ResolvedType{Flags: RTIsVar} }
func Null() ResolvedType         { return ResolvedType{Flags: RTIsNullOrDefault} }
func MethodGroupType() ResolvedType { return ResolvedType{Flags: RTIsMethodGroup} }
func Void() ResolvedType         { return ResolvedType{Flags: RTIsVoid, BuiltIn: BuiltInVoid} }

func (r ResolvedType) MakeNullable() ResolvedType {
	out := r
	if out.IsArray() {
		out.Flags |= RTIsNullableArray
	} else {
		out.Flags |= RTIsNullable
	}
	return out
}

func (r ResolvedType) ToNonNullable() ResolvedType {
	out := r
	if out.IsArray() {
		out.Flags &^= RTIsNullableArray
	} else {
		out.Flags &^= RTIsNullable
	}
	return out
}

func (r ResolvedType) IsVoid() bool         { return r.Flags&RTIsVoid != 0 }
func (r ResolvedType) IsNullable() bool     { return r.Flags&RTIsNullable != 0 }
func (r ResolvedType) IsNullableArray() bool { return r.Flags&RTIsNullableArray != 0 }
func (r ResolvedType) IsArray() bool        { return r.ArrayRank > 0 }
func (r ResolvedType) IsVar() bool          { return r.Flags&RTIsVar != 0 }
func (r ResolvedType) IsEnum() bool         { return r.Flags&RTIsEnum != 0 }
func (r ResolvedType) IsNullOrDefault() bool { return r.Flags&RTIsNullOrDefault != 0 }
func (r ResolvedType) IsResolved() bool     { return r.TypeInfo != nil || r.IsVoid() }

func (r ResolvedType) IsCallable() bool {
	return (r.TypeInfo != nil && r.TypeInfo.Class == ClassDelegate) || r.Flags&RTIsMethodGroup != 0
}

func (r ResolvedType) IsPrimitive() bool {
	return r.IsVoid() || (!r.IsNullable() && !r.IsArray() && isPrimitiveTypeName(r.BuiltIn))
}

func isPrimitiveTypeName(b BuiltInTypeName) bool {
	switch b {
	case BuiltInBool, BuiltInInt8, BuiltInInt16, BuiltInInt32, BuiltInInt64,
		BuiltInUInt8, BuiltInUInt16, BuiltInUInt32, BuiltInUInt64,
		BuiltInFloat, BuiltInDouble, BuiltInChar:
		return true
	default:
		return false
	}
}

func (r ResolvedType) IsBool() bool {
	return r.Flags == RTNone && r.BuiltIn == BuiltInBool
}

func (r ResolvedType) IsInteger() bool {
	if r.Flags != RTNone {
		return false
	}
	switch r.BuiltIn {
	case BuiltInInt8, BuiltInInt16, BuiltInInt32, BuiltInInt64,
		BuiltInUInt8, BuiltInUInt16, BuiltInUInt32, BuiltInUInt64:
		return true
	default:
		return false
	}
}

func (r ResolvedType) IsArithmetic() bool {
	if r.Flags != RTNone {
		return false
	}
	switch r.BuiltIn {
	case BuiltInInt8, BuiltInInt16, BuiltInInt32, BuiltInInt64,
		BuiltInUInt8, BuiltInUInt16, BuiltInUInt32, BuiltInUInt64,
		BuiltInFloat, BuiltInDouble:
		return true
	default:
		return false
	}
}

func (r ResolvedType) IsUnsignedInteger() bool {
	if r.Flags != RTNone {
		return false
	}
	switch r.BuiltIn {
	case BuiltInUInt8, BuiltInUInt16, BuiltInUInt32, BuiltInUInt64:
		return true
	default:
		return false
	}
}

func (r ResolvedType) IsFloatingPoint() bool {
	if r.Flags != RTNone {
		return false
	}
	return r.BuiltIn == BuiltInFloat || r.BuiltIn == BuiltInDouble
}

func (r ResolvedType) IsVector() bool {
	if r.Flags != RTNone {
		return false
	}
	switch r.BuiltIn {
	case BuiltInInt2, BuiltInInt3, BuiltInInt4,
		BuiltInUint2, BuiltInUint3, BuiltInUint4,
		BuiltInFloat2, BuiltInFloat3, BuiltInFloat4,
		BuiltInColor:
		return true
	default:
		return false
	}
}

func (r ResolvedType) IsReferenceType() bool {
	switch r.BuiltIn {
	case BuiltInDynamic, BuiltInString, BuiltInObject:
		return true
	default:
		return r.IsArray() || IsReferenceType(r.TypeInfo)
	}
}

func (r ResolvedType) IsValueType() bool {
	if r.IsArray() || r.TypeInfo == nil {
		return false
	}
	return r.TypeInfo.Class == ClassEnum || r.TypeInfo.Class == ClassStruct
}

func (r ResolvedType) IsInterface() bool {
	return r.TypeInfo != nil && r.TypeInfo.Class == ClassInterface
}

func (r ResolvedType) IsIndexable() bool { return r.IsArray() || IsIndexable(r.TypeInfo) }

// Equals is componentwise equality over every field, matching §3's
// "Equality is componentwise" invariant.
func (r ResolvedType) Equals(o ResolvedType) bool {
	return r.TypeInfo == o.TypeInfo && r.Flags == o.Flags && r.ArrayRank == o.ArrayRank && r.BuiltIn == o.BuiltIn
}

// IsAssignableFrom implements §4.L/ResolvedType.IsAssignableFrom: Var and
// exact-equals fast paths, Void never assignable either direction, array
// rank must match, and otherwise delegates to the TypeInfo relation.
func (r ResolvedType) IsAssignableFrom(from ResolvedType) bool {
	if r.IsVar() || r.Equals(from) {
		return true
	}
	if r.IsVoid() || from.IsVoid() {
		return false
	}
	if from.IsArray() != r.IsArray() {
		return false
	}
	return IsAssignableFrom(r.TypeInfo, from.TypeInfo)
}

// Hash returns a stable-within-process hash, used by the generic-type
// cache's sharding (§4.F) and any map keyed on ResolvedType. The original
// hashes the raw in-memory bytes of the struct (UB in a portable sense, but
// fine in C++ for a same-process cache); here we hash the same logical
// fields through xxhash instead of reinterpreting struct bytes, since Go
// gives no safe equivalent and the stability requirement is only "within
// one process."
func (r ResolvedType) Hash() uint64 {
	var buf [24]byte
	buf[0] = byte(r.BuiltIn)
	buf[1] = r.ArrayRank
	buf[2] = byte(r.Flags)
	buf[3] = byte(r.Flags >> 8)
	// TypeInfo identity folded in via pointer value, stable within a run.
	ptr := uintptr_of(r.TypeInfo)
	for i := 0; i < 8; i++ {
		buf[4+i] = byte(ptr >> (8 * i))
	}
	return xxhash.Sum64(buf[:12])
}

// ToString renders the canonical type string used both for diagnostics and
// for the generic-type cache key (§4.F): fully-qualified name, `<args>` for
// generics, `?` for nullable, `[]` for array, trailing `?` for nullable
// array — built in the exact order the original's ToString does.
func (r ResolvedType) ToString() string {
	var b strings.Builder
	if r.TypeInfo == nil {
		b.WriteString(r.BuiltIn.String())
	} else {
		b.WriteString(r.TypeInfo.FullyQualifiedName)
		if len(r.TypeInfo.GenericArguments) > 0 {
			b.WriteByte('<')
			for i, arg := range r.TypeInfo.GenericArguments {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(arg.ToString())
			}
			b.WriteByte('>')
		}
	}
	if r.Flags&RTIsNullable != 0 {
		b.WriteByte('?')
	}
	if r.IsArray() {
		b.WriteString("[]")
	}
	if r.Flags&RTIsNullableArray != 0 {
		b.WriteByte('?')
	}
	return b.String()
}

// GenericReplacement pairs a generic parameter name with the concrete
// ResolvedType substituted for it during generic-type construction (§4.F).
type GenericReplacement struct {
	GenericName    string
	ResolvedGeneric ResolvedType
}
