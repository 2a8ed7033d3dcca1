package scope

import "github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"

// ExprKind discriminates Expr's variants, replacing the original's
// Expression/Declaration/Statement inheritance chain with an exhaustive tag
// switch (§9 "Tagged variants").
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprFieldAccess
	ExprPropertyAccess
	ExprIndexerAccess
	ExprMethodGroupAccess
	ExprLiteralNumeric
	ExprLiteralBool
	ExprLiteralNull
	ExprLiteralDefault
	ExprDirectCast
	ExprArithmetic
	ExprComparison
	ExprEquality
	ExprArgument
	ExprStaticCall
	ExprInstanceCall
	ExprIfStatement
	// ExprNullableHasValue and ExprNullableValue are synthesized by an
	// if-statement's context-list handling (§4.J): `v.hasValue` and
	// `v.value` over the nullable expression stashed in Receiver, standing
	// in for the original's internal variable v without requiring an actual
	// VEP-backed local-declaration statement.
	ExprNullableHasValue
	ExprNullableValue
	ExprSemanticError
)

// BinaryOp is the operator carried by Arithmetic/Comparison/Equality nodes.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpEqual
	OpNotEqual
)

// Expr is one node in the expression tree built by the introspector. Only
// the fields relevant to Kind are meaningful, mirroring the original's
// closed set of expression variants (§3).
type Expr struct {
	Kind Kind
	Type types.ResolvedType

	// Receiver / Left / Right cover FieldAccess/PropertyAccess/IndexerAccess
	// receivers and binary-operation operands.
	Receiver *Expr
	Left     *Expr
	Right    *Expr
	Op       BinaryOp

	Field    *types.FieldInfo
	Property *types.PropertyInfo
	Method   *types.MethodInfo
	Args     []*Expr

	// NumericLiteral/BoolLiteral hold the decoded literal value for the
	// corresponding ExprKind.
	NumericLiteral float64
	BoolLiteral    bool

	// CastTarget is set on ExprDirectCast.
	CastTarget types.ResolvedType

	// Message is set on ExprSemanticError: the diagnostic already logged,
	// repeated here so downstream passes need not re-derive it.
	Message string
}

// Kind is an alias so Expr.Kind reads naturally as "expr.Kind" without
// colliding with the package-level ExprKind type name above.
type Kind = ExprKind

// SemanticError builds the placeholder node §7 requires: type Null, tree
// still walkable, diagnostic already recorded by the caller.
func SemanticError(message string) *Expr {
	return &Expr{Kind: ExprSemanticError, Type: types.Null(), Message: message}
}

// Walk visits e and every descendant reachable through Receiver/Left/Right/
// Args, depth-first, invoking visit on each non-nil node. Used by §4.L's
// code-gen visitor to discover every method/field/property a method body
// reaches without needing its own copy of the Expr shape.
func Walk(e *Expr, visit func(*Expr)) {
	if e == nil {
		return
	}
	visit(e)
	Walk(e.Receiver, visit)
	Walk(e.Left, visit)
	Walk(e.Right, visit)
	for _, a := range e.Args {
		Walk(a, visit)
	}
}

// WalkAll runs Walk over a statement list, the shape MethodDefinition.Body
// and walkBlock's return value both use.
func WalkAll(stmts []*Expr, visit func(*Expr)) {
	for _, s := range stmts {
		Walk(s, visit)
	}
}
