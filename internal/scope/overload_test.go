package scope

import (
	"testing"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

func intParam(name string, builtin types.BuiltInTypeName) *types.ParameterInfo {
	return &types.ParameterInfo{Name: name, Type: types.FromBuiltIn(builtin)}
}

// TestScoreConversion_IdentityBeatsWidening is §8's "Overload scoring:
// identical-type match always wins over any widening match at equal arity."
func TestScoreConversion_IdentityBeatsWidening(t *testing.T) {
	identity := ScoreConversion(types.FromBuiltIn(types.BuiltInDouble), types.FromBuiltIn(types.BuiltInDouble))
	widening := ScoreConversion(types.FromBuiltIn(types.BuiltInInt32), types.FromBuiltIn(types.BuiltInDouble))

	if identity != Identity {
		t.Fatalf("identity conversion = %d, want %d", identity, Identity)
	}
	if widening != ImplicitWidening {
		t.Fatalf("widening conversion = %d, want %d", widening, ImplicitWidening)
	}
	if identity <= widening {
		t.Fatalf("identity score %d must exceed widening score %d", identity, widening)
	}
}

func TestScoreConversion_NoNarrowing(t *testing.T) {
	s := ScoreConversion(types.FromBuiltIn(types.BuiltInDouble), types.FromBuiltIn(types.BuiltInInt32))
	if s != NoConversion {
		t.Fatalf("narrowing double->int scored %d, want NoConversion", s)
	}
}

func TestResolveOverload_PicksExactOverWidened(t *testing.T) {
	exact := &types.MethodInfo{Name: "F", Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInDouble)}}
	widened := &types.MethodInfo{Name: "F", Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInInt64)}}
	group := &types.MethodGroup{Name: "F", Methods: []*types.MethodInfo{widened, exact}}

	result := ResolveOverload(group, []types.ResolvedType{types.FromBuiltIn(types.BuiltInDouble)}, CallSite{HasInstance: true})

	if result.Outcome != OverloadResolved {
		t.Fatalf("outcome = %v, want OverloadResolved", result.Outcome)
	}
	if result.Method != exact {
		t.Fatalf("selected %v, want the exact-match overload", result.Method)
	}
}

// TestResolveOverload_MixedSignednessRejectsCandidate exercises §4.J's
// same-rank signed<->unsigned rejection at the overload level: an int32
// argument is an exact match for an int32 parameter, and the sibling
// uint32 overload is disqualified outright (not merely outscored), so the
// result is resolved rather than ambiguous.
func TestResolveOverload_MixedSignednessRejectsCandidate(t *testing.T) {
	a := &types.MethodInfo{Name: "F", Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInInt32)}}
	b := &types.MethodInfo{Name: "F", Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInUInt32)}}
	group := &types.MethodGroup{Name: "F", Methods: []*types.MethodInfo{a, b}}

	result := ResolveOverload(group, []types.ResolvedType{types.FromBuiltIn(types.BuiltInInt32)}, CallSite{HasInstance: true})
	if result.Outcome != OverloadResolved {
		t.Fatalf("outcome = %v, want OverloadResolved (uint32 overload should be disqualified, not tied)", result.Outcome)
	}
	if result.Method != a {
		t.Fatalf("selected %v, want the exact int32 overload", result.Method)
	}
}

func TestResolveOverload_TieIsAmbiguous(t *testing.T) {
	// A genuine tie: two candidates whose sole parameter is built from the
	// same ResolvedType value.
	c := &types.MethodInfo{Name: "G", Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInInt64)}}
	d := &types.MethodInfo{Name: "G", Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInInt64)}}
	tieGroup := &types.MethodGroup{Name: "G", Methods: []*types.MethodInfo{c, d}}
	tieResult := ResolveOverload(tieGroup, []types.ResolvedType{types.FromBuiltIn(types.BuiltInInt64)}, CallSite{HasInstance: true})
	if tieResult.Outcome != OverloadAmbiguous {
		t.Fatalf("outcome = %v, want OverloadAmbiguous", tieResult.Outcome)
	}
	if len(tieResult.Ambiguous) != 2 {
		t.Fatalf("ambiguous candidates = %d, want 2", len(tieResult.Ambiguous))
	}
}

// TestResolveOverload_RejectsInstanceMethodWithoutInstance is §4.J step 2's
// static-from-instance filter: an instance method is excluded from a call
// site with no instance, with the rejection reason recorded rather than
// left to fail arbitrarily during scoring.
func TestResolveOverload_RejectsInstanceMethodWithoutInstance(t *testing.T) {
	m := &types.MethodInfo{Name: "F", Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInInt32)}}
	group := &types.MethodGroup{Name: "F", Methods: []*types.MethodInfo{m}}

	result := ResolveOverload(group, []types.ResolvedType{types.FromBuiltIn(types.BuiltInInt32)}, CallSite{HasInstance: false})
	if result.Outcome != OverloadNoCandidate {
		t.Fatalf("outcome = %v, want OverloadNoCandidate", result.Outcome)
	}
	if len(result.Rejected) != 1 || result.Rejected[0].Method != m {
		t.Fatalf("Rejected = %+v, want the instance method with a reason", result.Rejected)
	}
}

// TestResolveOverload_StaticMethodCallableWithoutInstance is the positive
// side of the same filter: a static overload in the same group still
// resolves when there is no instance at the call site.
func TestResolveOverload_StaticMethodCallableWithoutInstance(t *testing.T) {
	instanceOnly := &types.MethodInfo{Name: "F", Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInInt32)}}
	static := &types.MethodInfo{Name: "F", Modifiers: types.ModStatic, Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInInt32)}}
	group := &types.MethodGroup{Name: "F", Methods: []*types.MethodInfo{instanceOnly, static}}

	result := ResolveOverload(group, []types.ResolvedType{types.FromBuiltIn(types.BuiltInInt32)}, CallSite{HasInstance: false})
	if result.Outcome != OverloadResolved {
		t.Fatalf("outcome = %v, want OverloadResolved", result.Outcome)
	}
	if result.Method != static {
		t.Fatalf("selected %v, want the static overload", result.Method)
	}
}

// TestResolveOverload_RejectsPrivateFromOutsideDeclaringType is §4.J step
// 2's visibility filter: a private method is only callable from within its
// own declaring type.
func TestResolveOverload_RejectsPrivateFromOutsideDeclaringType(t *testing.T) {
	owner := &types.TypeInfo{TypeName: "Owner"}
	outsider := &types.TypeInfo{TypeName: "Outsider"}
	m := &types.MethodInfo{Name: "F", DeclaringType: owner, Modifiers: types.ModPrivate, Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInInt32)}}
	group := &types.MethodGroup{Name: "F", Methods: []*types.MethodInfo{m}}

	fromOutside := ResolveOverload(group, []types.ResolvedType{types.FromBuiltIn(types.BuiltInInt32)}, CallSite{HasInstance: true, FromType: outsider})
	if fromOutside.Outcome != OverloadNoCandidate {
		t.Fatalf("outcome = %v, want OverloadNoCandidate when called from outside the declaring type", fromOutside.Outcome)
	}
	if len(fromOutside.Rejected) != 1 || fromOutside.Rejected[0].Method != m {
		t.Fatalf("Rejected = %+v, want the private method with a reason", fromOutside.Rejected)
	}

	fromInside := ResolveOverload(group, []types.ResolvedType{types.FromBuiltIn(types.BuiltInInt32)}, CallSite{HasInstance: true, FromType: owner})
	if fromInside.Outcome != OverloadResolved {
		t.Fatalf("outcome = %v, want OverloadResolved when called from the declaring type", fromInside.Outcome)
	}
}

func TestResolveOverload_NoCandidateOnArityMismatch(t *testing.T) {
	m := &types.MethodInfo{Name: "F", Parameters: []*types.ParameterInfo{intParam("x", types.BuiltInInt32)}}
	group := &types.MethodGroup{Name: "F", Methods: []*types.MethodInfo{m}}

	result := ResolveOverload(group, []types.ResolvedType{
		types.FromBuiltIn(types.BuiltInInt32),
		types.FromBuiltIn(types.BuiltInInt32),
	}, CallSite{HasInstance: true})
	if result.Outcome != OverloadNoCandidate {
		t.Fatalf("outcome = %v, want OverloadNoCandidate", result.Outcome)
	}
}

func TestCommonNumericType_PrefersDouble(t *testing.T) {
	result := CommonNumericType(types.FromBuiltIn(types.BuiltInInt32), types.FromBuiltIn(types.BuiltInDouble))
	if result.BuiltIn != types.BuiltInDouble {
		t.Fatalf("common type = %v, want double", result.BuiltIn)
	}
}

func TestReferenceEqualityAllowed(t *testing.T) {
	classType := types.ResolvedType{TypeInfo: &types.TypeInfo{Class: types.ClassClass}}
	ifaceType := types.ResolvedType{TypeInfo: &types.TypeInfo{Class: types.ClassInterface}}
	structType := types.ResolvedType{TypeInfo: &types.TypeInfo{Class: types.ClassStruct}}

	if !ReferenceEqualityAllowed(classType, classType) {
		t.Fatalf("two reference types should allow reference equality")
	}
	if !ReferenceEqualityAllowed(structType, ifaceType) {
		t.Fatalf("struct compared to an interface should allow reference equality")
	}
	if ReferenceEqualityAllowed(structType, structType) {
		t.Fatalf("two non-interface value types should not allow reference equality")
	}
}
