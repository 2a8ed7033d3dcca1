package types

import (
	"encoding/base32"
	"fmt"
	"sync/atomic"
)

// FieldInfo, PropertyInfo, IndexerInfo, MethodInfo, ParameterInfo,
// ConstructorInfo: member records, each holding a back-reference to their
// declaring TypeInfo (never ownership) per original_source/MemberInfo.h.

type FieldInfo struct {
	DeclaringType *TypeInfo
	Name          string
	Type          ResolvedType
	Modifiers     Modifier
	NodeIndex     NodeRef
}

func (f *FieldInfo) IsStatic() bool { return f.Modifiers&ModStatic != 0 }
func (f *FieldInfo) IsConst() bool  { return false } // const fields are not modeled in this frontend

type PropertyInfo struct {
	DeclaringType  *TypeInfo
	Name           string
	Type           ResolvedType
	Modifiers      Modifier
	NodeIndex      NodeRef
	GetterNodeIndex NodeRef
	SetterNodeIndex NodeRef
}

func (p *PropertyInfo) IsStatic() bool        { return p.Modifiers&ModStatic != 0 }
func (p *PropertyInfo) IsBackedProperty() bool { return p.GetterNodeIndex == 0 && p.SetterNodeIndex == 0 }

type IndexerInfo struct {
	DeclaringType   *TypeInfo
	Type            ResolvedType
	ParamType       ResolvedType
	Modifiers       Modifier
	NodeIndex       NodeRef
	GetterNodeIndex NodeRef
	SetterNodeIndex NodeRef
}

// StorageClass and PassByModifier describe a parameter's calling
// convention, shared between MethodInfo, ConstructorInfo, and IndexerInfo.
type StorageClass uint8

const (
	StorageDefault StorageClass = iota
	StorageTemp
)

type PassByModifier uint8

const (
	PassByNone PassByModifier = iota
	PassByRef
	PassByOut
)

type ParameterInfo struct {
	Name            string
	Type            ResolvedType
	Storage         StorageClass
	PassBy          PassByModifier
	HasDefaultValue bool
	NodeIndex       NodeRef
}

// MethodInfo is a declared or synthesized (optional-parameter-expanded)
// method. Prototype is non-nil only for the synthesized concrete overloads
// produced by §4.I's optional-parameter expansion; IsOptionalParameterPrototype
// marks the original, never-called declaration they were expanded from.
type MethodInfo struct {
	DeclaringType     *TypeInfo
	Name              string
	ReturnType        ResolvedType
	Parameters        []*ParameterInfo
	GenericArguments  []ResolvedType
	Modifiers         Modifier
	NodeIndex         NodeRef

	IsGenericDefinition          bool
	IsOptionalParameterPrototype bool
	Prototype                    *MethodInfo

	codeGen       atomicCodeGenGuard
	mangleIDValue atomic.Uint64
}

func (m *MethodInfo) IsStatic() bool  { return m.Modifiers&ModStatic != 0 }
func (m *MethodInfo) IsPrivate() bool { return m.Modifiers&ModPrivate != 0 }
func (m *MethodInfo) IsGeneric() bool { return len(m.GenericArguments) > 0 || m.IsGenericDefinition }
func (m *MethodInfo) IsGenericMethodDefinition() bool { return m.IsGenericDefinition }

// TryScheduleCodeGen performs the CAS described in §4.L / §5: exactly one
// caller across all workers wins and is responsible for scheduling the
// code-gen job for this method.
func (m *MethodInfo) TryScheduleCodeGen() bool { return m.codeGen.TryFire() }

var mangleIDs atomic.Uint64

var mangleBase32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// mangleID assigns each MethodInfo a stable, process-lifetime identity the
// first time its mangled name is requested. This stands in for the
// original's raw-pointer-as-identity base-32 encoding (§4.L): the base-32
// encoder itself is an out-of-scope bit-twiddling primitive (§1), so this
// repository depends only on the encoding/base32 contract, not a
// hand-rolled one.
func (m *MethodInfo) mangleID() uint64 {
	id := m.mangleIDValue.Load()
	if id != 0 {
		return id
	}
	id = mangleIDs.Add(1)
	if !m.mangleIDValue.CompareAndSwap(0, id) {
		id = m.mangleIDValue.Load()
	}
	return id
}

// MangledName builds the `Type_Method_genArity_paramCount_<base32 id>` name
// §4.L's code-gen visitor uses for forward declarations and call-site
// mangling, where id is the method's mangleID.
func (m *MethodInfo) MangledName() string {
	typeName := "_"
	if m.DeclaringType != nil {
		typeName = m.DeclaringType.TypeName
	}
	var idBuf [8]byte
	id := m.mangleID()
	for i := 0; i < 8; i++ {
		idBuf[i] = byte(id >> (8 * i))
	}
	return fmt.Sprintf("%s_%s_gen%d_%d_%s", typeName, m.Name, len(m.GenericArguments), len(m.Parameters), mangleBase32.EncodeToString(idBuf[:]))
}

type ConstructorInfo struct {
	DeclaringType *TypeInfo
	Name          string
	Parameters    []*ParameterInfo
	Modifiers     Modifier
	NodeIndex     NodeRef
}

// MethodGroup is every overload sharing a name on one type.
type MethodGroup struct {
	Name    string
	Methods []*MethodInfo
}

// member-lookup helpers: linear search in declared members, then recurse
// into the class base only — interfaces contribute methods for lookup but
// are never walked for fields/properties, matching §4.D exactly.

func HasAnyMethodWithName(t *TypeInfo, name string) bool {
	for _, m := range t.Methods {
		if m.Name == name {
			return true
		}
	}
	return false
}

func TryGetField(t *TypeInfo, name string) (*FieldInfo, bool) {
	for ptr := t; ptr != nil; {
		for _, f := range ptr.Fields {
			if f.Name == name {
				return f, true
			}
		}
		if len(ptr.BaseTypes) == 0 || ptr.BaseTypes[0].Class != ClassClass {
			return nil, false
		}
		ptr = ptr.BaseTypes[0]
	}
	return nil, false
}

func TryGetProperty(t *TypeInfo, name string) (*PropertyInfo, bool) {
	for ptr := t; ptr != nil; {
		for _, p := range ptr.Properties {
			if p.Name == name {
				return p, true
			}
		}
		if len(ptr.BaseTypes) == 0 || ptr.BaseTypes[0].Class != ClassClass {
			return nil, false
		}
		ptr = ptr.BaseTypes[0]
	}
	return nil, false
}

// TryGetMethodGroup collects every overload named name, walking class bases
// only, matching try_get_method_group in §4.D.
func TryGetMethodGroup(t *TypeInfo, name string) (MethodGroup, bool) {
	group := MethodGroup{Name: name}
	for ptr := t; ptr != nil; {
		for _, m := range ptr.Methods {
			if m.Name == name && !m.IsOptionalParameterPrototype {
				group.Methods = append(group.Methods, m)
			}
		}
		if len(ptr.BaseTypes) == 0 || ptr.BaseTypes[0].Class != ClassClass {
			break
		}
		ptr = ptr.BaseTypes[0]
	}
	return group, len(group.Methods) > 0
}

// TryGetMethodGroupWithParameterCount narrows TryGetMethodGroup to
// candidates of exactly paramCount parameters, the entry point overload
// resolution (§4.J step 1) uses to bound its candidate set before scoring.
func TryGetMethodGroupWithParameterCount(t *TypeInfo, name string, paramCount int) (MethodGroup, bool) {
	all, ok := TryGetMethodGroup(t, name)
	if !ok {
		return MethodGroup{Name: name}, false
	}
	group := MethodGroup{Name: name}
	for _, m := range all.Methods {
		if len(m.Parameters) == paramCount {
			group.Methods = append(group.Methods, m)
		}
	}
	return group, len(group.Methods) > 0
}

func MethodCount(t *TypeInfo) int { return len(t.Methods) }

func MethodCountWithParameterCount(t *TypeInfo, paramCount int) int {
	n := 0
	for _, m := range t.Methods {
		if len(m.Parameters) == paramCount {
			n++
		}
	}
	return n
}
