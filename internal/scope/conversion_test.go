package scope

import (
	"testing"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// TestScoreConversion_CrossSignednessCrossings exercises §4.J's three named
// exceptions to "no signed<->unsigned conversion": u8->i16, u16->i32,
// u32->i64. Each should score ImplicitWidening; anything further from the
// crossing point (e.g. u8->i8, which narrows) must not.
func TestScoreConversion_CrossSignednessCrossings(t *testing.T) {
	cases := []struct {
		name    string
		from, to types.BuiltInTypeName
		want    ConversionScore
	}{
		{"u8->i16 allowed crossing", types.BuiltInUInt8, types.BuiltInInt16, ImplicitWidening},
		{"u16->i32 allowed crossing", types.BuiltInUInt16, types.BuiltInInt32, ImplicitWidening},
		{"u32->i64 allowed crossing", types.BuiltInUInt32, types.BuiltInInt64, ImplicitWidening},
		{"u8->i8 same rank rejected", types.BuiltInUInt8, types.BuiltInInt8, NoConversion},
		{"u16->i16 same rank rejected", types.BuiltInUInt16, types.BuiltInInt16, NoConversion},
		{"u32->i32 same rank rejected", types.BuiltInUInt32, types.BuiltInInt32, NoConversion},
		{"u64->i64 has no crossing (no wider signed type)", types.BuiltInUInt64, types.BuiltInInt64, NoConversion},
		{"i8->u8 signed to unsigned never allowed", types.BuiltInInt8, types.BuiltInUInt8, NoConversion},
		{"i32->u32 signed to unsigned never allowed", types.BuiltInInt32, types.BuiltInUInt32, NoConversion},
		{"i64->u64 signed to unsigned never allowed", types.BuiltInInt64, types.BuiltInUInt64, NoConversion},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ScoreConversion(types.FromBuiltIn(c.from), types.FromBuiltIn(c.to))
			if got != c.want {
				t.Fatalf("ScoreConversion(%v, %v) = %d, want %d", c.from, c.to, got, c.want)
			}
		})
	}
}

// TestScoreConversion_SameSignednessLattices exercises plain widening
// within each of §4.J's two lattices (i8<i16<i32<i64<f32<f64 and
// u8<u16<u32<u64<f32<f64), and rejects narrowing within a lattice.
func TestScoreConversion_SameSignednessLattices(t *testing.T) {
	cases := []struct {
		name    string
		from, to types.BuiltInTypeName
		want    ConversionScore
	}{
		{"i8->i64 widens", types.BuiltInInt8, types.BuiltInInt64, ImplicitWidening},
		{"i32->f32 widens", types.BuiltInInt32, types.BuiltInFloat, ImplicitWidening},
		{"i64->f64 widens", types.BuiltInInt64, types.BuiltInDouble, ImplicitWidening},
		{"i64->i32 narrows, rejected", types.BuiltInInt64, types.BuiltInInt32, NoConversion},
		{"u8->u64 widens", types.BuiltInUInt8, types.BuiltInUInt64, ImplicitWidening},
		{"u32->f64 widens", types.BuiltInUInt32, types.BuiltInDouble, ImplicitWidening},
		{"u64->u32 narrows, rejected", types.BuiltInUInt64, types.BuiltInUInt32, NoConversion},
		{"f32->f64 widens", types.BuiltInFloat, types.BuiltInDouble, ImplicitWidening},
		{"f64->f32 narrows, rejected", types.BuiltInDouble, types.BuiltInFloat, NoConversion},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ScoreConversion(types.FromBuiltIn(c.from), types.FromBuiltIn(c.to))
			if got != c.want {
				t.Fatalf("ScoreConversion(%v, %v) = %d, want %d", c.from, c.to, got, c.want)
			}
		})
	}
}

func TestMixedSignedness(t *testing.T) {
	if !mixedSignedness(types.FromBuiltIn(types.BuiltInInt32), types.FromBuiltIn(types.BuiltInUInt32)) {
		t.Fatalf("int32/uint32 should be reported as mixed signedness")
	}
	if mixedSignedness(types.FromBuiltIn(types.BuiltInInt32), types.FromBuiltIn(types.BuiltInInt64)) {
		t.Fatalf("int32/int64 share signedness and should not be reported as mixed")
	}
}
