package scope

import "github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"

// ConversionScore ranks how good a fit an argument type is for a parameter
// type, following §4.J's conversion ladder exactly: identity beats
// nullable-wrap/primitive-identity beats reference conversion beats a
// user-defined conversion beats implicit numeric widening; anything else is
// NoConversion and disqualifies the candidate.
type ConversionScore int

const (
	NoConversion      ConversionScore = 0
	ImplicitWidening  ConversionScore = 5
	UserDefined       ConversionScore = 10
	ReferenceConversion ConversionScore = 20
	NullableWrap      ConversionScore = 50
	Identity          ConversionScore = 100
)

// numericRank orders the built-in numeric types along the single combined
// widening lattice double > float > ulong > long > uint > int > ushort >
// short > byte > sbyte, matching §4.J's binary-operator common-type descent
// ladder used by CommonNumericType. This is deliberately the *only* user of
// a combined cross-signedness order: ScoreConversion's implicit-widening
// branch below must not reuse it, since §4.J specifies two separate
// same-signedness lattices for argument conversion, not one.
var numericRank = map[types.BuiltInTypeName]int{
	types.BuiltInDouble: 9,
	types.BuiltInFloat:  8,
	types.BuiltInUInt64: 7,
	types.BuiltInInt64:  6,
	types.BuiltInUInt32: 5,
	types.BuiltInInt32:  4,
	types.BuiltInUInt16: 3,
	types.BuiltInInt16:  2,
	types.BuiltInUInt8:  1,
	types.BuiltInInt8:   0,
}

// signedRank and unsignedRank each order one of §4.J's two widening
// lattices (i8⊂i16⊂i32⊂i64⊂f32⊂f64 and u8⊂u16⊂u32⊂u64⊂f32⊂f64); both
// lattices share the same float tier since either integer family widens
// into float/double at the top.
var signedRank = map[types.BuiltInTypeName]int{
	types.BuiltInInt8:   0,
	types.BuiltInInt16:  1,
	types.BuiltInInt32:  2,
	types.BuiltInInt64:  3,
	types.BuiltInFloat:  4,
	types.BuiltInDouble: 5,
}

var unsignedRank = map[types.BuiltInTypeName]int{
	types.BuiltInUInt8:  0,
	types.BuiltInUInt16: 1,
	types.BuiltInUInt32: 2,
	types.BuiltInUInt64: 3,
	types.BuiltInFloat:  4,
	types.BuiltInDouble: 5,
}

// crossSignedFloor is §4.J's "usual cross-signedness rules": the one
// signed rank each unsigned integer is permitted to widen directly into
// (u8->i16, u16->i32, u32->i64). u64 has no entry — there is no wider
// signed integer for it to cross into, though it can still widen to
// float/double via unsignedRank. Signed-to-unsigned crossing is never
// permitted at any rank, matching "no signed<->unsigned at equal rank"
// generalized to the whole lattice.
var crossSignedFloor = map[types.BuiltInTypeName]types.BuiltInTypeName{
	types.BuiltInUInt8:  types.BuiltInInt16,
	types.BuiltInUInt16: types.BuiltInInt32,
	types.BuiltInUInt32: types.BuiltInInt64,
}

// ScoreConversion computes the ConversionScore of converting a value of
// type from into a parameter of type to: Identity for equal types,
// NullableWrap for a value into its own nullable form (or a non-value-type
// source into the null/default type), ImplicitWidening along the numeric
// lattices, ReferenceConversion where types.IsAssignableFrom relates the
// two, and NoConversion otherwise. UserDefined is never returned.
func ScoreConversion(from, to types.ResolvedType) ConversionScore {
	if from.Equals(to) {
		return Identity
	}
	// Non-nullable -> nullable of the same underlying type, and any
	// primitive-or-nullable identity conversion, both score NullableWrap
	// (the spec's table gives both rows the same 50 points).
	if !from.IsNullable() && to.IsNullable() && from.ToNonNullable().Equals(to.ToNonNullable()) {
		return NullableWrap
	}
	if to.IsNullOrDefault() && !from.IsValueType() {
		return NullableWrap
	}
	if from.BuiltIn != types.BuiltInInvalid && to.BuiltIn != types.BuiltInInvalid {
		if widensNumeric(from, to) {
			return ImplicitWidening
		}
		if _, fok := numericRank[from.BuiltIn]; fok {
			if _, tok := numericRank[to.BuiltIn]; tok {
				return NoConversion
			}
		}
	}
	// Reference conversion: assignable in either direction between two
	// reference types (upcast, downcast, or interface implementation).
	if from.IsReferenceType() && to.IsReferenceType() {
		if to.IsAssignableFrom(from) || from.IsAssignableFrom(to) {
			return ReferenceConversion
		}
	}
	if to.IsAssignableFrom(from) {
		return ReferenceConversion
	}
	return NoConversion
}

// CommonNumericType descends the same widening lattice to find the type a
// binary arithmetic/comparison operator promotes both operands to, per
// §4.J. Returns the zero ResolvedType if neither operand is numeric.
func CommonNumericType(a, b types.ResolvedType) types.ResolvedType {
	ra, aok := numericRank[a.BuiltIn]
	rb, bok := numericRank[b.BuiltIn]
	if !aok || !bok {
		return types.ResolvedType{}
	}
	if ra >= rb {
		return a
	}
	return b
}

// DecodeBinaryOp maps a KindBinaryExpr node's operator token (carried in
// syntax.Node.Name, §4.J) to the BinaryOp and ExprKind bucket it belongs
// to: arithmetic, comparison, or equality.
func DecodeBinaryOp(token string) (op BinaryOp, kind Kind, isComparison, isEquality bool) {
	switch token {
	case "+":
		return OpAdd, ExprArithmetic, false, false
	case "-":
		return OpSub, ExprArithmetic, false, false
	case "*":
		return OpMul, ExprArithmetic, false, false
	case "/":
		return OpDiv, ExprArithmetic, false, false
	case "%":
		return OpMod, ExprArithmetic, false, false
	case "<":
		return OpLess, ExprComparison, true, false
	case "<=":
		return OpLessEq, ExprComparison, true, false
	case ">":
		return OpGreater, ExprComparison, true, false
	case ">=":
		return OpGreaterEq, ExprComparison, true, false
	case "==":
		return OpEqual, ExprEquality, false, true
	case "!=":
		return OpNotEqual, ExprEquality, false, true
	default:
		return OpAdd, ExprArithmetic, false, false
	}
}

// mixedSignedness reports whether a and b are both built-in integers with
// opposite signedness, the case §4.J singles out for rejection ("cast
// required") rather than silent promotion through the preference ladder.
func mixedSignedness(a, b types.ResolvedType) bool {
	return a.IsInteger() && b.IsInteger() && a.IsUnsignedInteger() != b.IsUnsignedInteger()
}

// widensNumeric reports whether from implicitly widens to to under §4.J's
// two same-signedness lattices, plus the three named cross-signedness
// crossings (u8->i16, u16->i32, u32->i64). Signed-to-unsigned crossing and
// same-rank signed<->unsigned are never permitted.
func widensNumeric(from, to types.ResolvedType) bool {
	switch {
	case from.IsFloatingPoint():
		fr, fok := signedRank[from.BuiltIn]
		tr, tok := signedRank[to.BuiltIn]
		return fok && tok && to.IsFloatingPoint() && tr >= fr

	case from.IsUnsignedInteger():
		if to.IsUnsignedInteger() || to.IsFloatingPoint() {
			fr, fok := unsignedRank[from.BuiltIn]
			tr, tok := unsignedRank[to.BuiltIn]
			return fok && tok && tr >= fr
		}
		if !mixedSignedness(from, to) {
			return false
		}
		floor, ok := crossSignedFloor[from.BuiltIn]
		if !ok {
			return false
		}
		fr := signedRank[floor]
		tr, tok := signedRank[to.BuiltIn]
		return tok && tr >= fr

	case from.IsInteger(): // signed: IsUnsignedInteger already excluded above
		if to.IsUnsignedInteger() {
			return false
		}
		fr, fok := signedRank[from.BuiltIn]
		tr, tok := signedRank[to.BuiltIn]
		return fok && tok && tr >= fr

	default:
		return false
	}
}

// ReferenceEqualityAllowed implements §4.J's equality rule for non-numeric
// operands: both reference-typed, or at least one is an interface.
func ReferenceEqualityAllowed(a, b types.ResolvedType) bool {
	if a.IsInterface() || b.IsInterface() {
		return true
	}
	return a.IsReferenceType() && b.IsReferenceType()
}
