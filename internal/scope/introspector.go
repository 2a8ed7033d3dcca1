package scope

import (
	"fmt"
	"strconv"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/diagnostics"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/syntax"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// Introspector walks a method/accessor body's syntax subtree, builds its
// Scope chain, and resolves every identifier and call expression into an
// Expr tree, recording a diagnostic (and a SemanticError placeholder node,
// §7) for anything it cannot resolve instead of aborting the walk.
type Introspector struct {
	Tree  *syntax.Tree
	Sink  *diagnostics.Sink
	Path  string

	// Lookup resolves a bare type name to a TypeInfo; populated by the
	// caller with whatever resolver backs the current file (§4.E). The walk
	// does not call it: `new` expressions and static member access are not
	// handled.
	Lookup func(name string) (*types.TypeInfo, bool)
}

// WalkMethod builds the root Scope for def and walks its body, populating
// def.Scope in place.
func (in *Introspector) WalkMethod(def *MethodDefinition, bodyHead syntax.NodeIndex) {
	m := def.MethodInfo
	root := NewRootScope(m.DeclaringType, m.IsStatic(), m.ReturnType)
	for _, p := range def.Parameters {
		root.Declare(p)
	}
	def.Scope = root
	def.Body = in.walkBlock(root, bodyHead)
}

func (in *Introspector) walkBlock(parent *Scope, head syntax.NodeIndex) []*Expr {
	block := parent.Push()
	var stmts []*Expr
	for idx := head; idx.IsValid(); {
		n := in.Tree.Node(idx)
		stmts = append(stmts, in.walkStatement(block, idx))
		idx = n.Next
	}
	return stmts
}

func (in *Introspector) walkStatement(s *Scope, idx syntax.NodeIndex) *Expr {
	n := in.Tree.Node(idx)
	switch n.Kind {
	case syntax.KindBlock:
		in.walkBlock(s, n.Child0)
		return nil
	case syntax.KindIfStatement:
		return in.walkIf(s, n)
	case syntax.KindExpressionStatement:
		return in.walkExpr(s, n.Child0)
	case syntax.KindReturnStatement:
		if !n.Child0.IsValid() {
			return nil
		}
		return in.walkExpr(s, n.Child0)
	default:
		return in.errorf(n, "unsupported statement kind %d", n.Kind)
	}
}

// walkIf handles an if/else chain via Child0=condition, Child1=then-block,
// Child2=else branch, matching §4.J's "if-statement-with-context-list"
// shape. When Name is set (a trailing `using (name)` clause) and the
// condition's type is a non-null nullable, it synthesizes the internal
// variable v described there: the condition is replaced with v.hasValue,
// and a VEP bound to Name — resolving to v.value — is declared in a child
// scope that wraps the then-block, so only that branch sees the unwrapped
// name.
func (in *Introspector) walkIf(s *Scope, n *syntax.Node) *Expr {
	cond := in.walkExpr(s, n.Child0)

	thenScope := s
	if n.Name != "" {
		switch {
		case cond.Kind == ExprSemanticError:
			// condition already failed to resolve; nothing to unwrap.
		case !cond.Type.IsNullable():
			cond = in.errorf(n, "if-using context '%s' requires a nullable condition, got %s", n.Name, cond.Type.ToString())
		default:
			unwrapped := cond.Type.ToNonNullable()
			child := s.Push()
			child.Declare(&VEP{
				Kind:  VEPLocal,
				Name:  n.Name,
				Type:  unwrapped,
				Value: &Expr{Kind: ExprNullableValue, Type: unwrapped, Receiver: cond},
			})
			thenScope = child
			cond = &Expr{Kind: ExprNullableHasValue, Type: types.FromBuiltIn(types.BuiltInBool), Receiver: cond}
		}
	}

	if !cond.Type.IsBool() && cond.Kind != ExprSemanticError {
		cond = in.errorf(n, "if condition must be bool, got %s", cond.Type.ToString())
	}
	in.walkBlock(thenScope, n.Child1)
	if n.Child2.IsValid() {
		elseNode := in.Tree.Node(n.Child2)
		if elseNode.Kind == syntax.KindIfStatement {
			in.walkIf(s, elseNode)
		} else {
			in.walkBlock(s, n.Child2)
		}
	}
	return &Expr{Kind: ExprIfStatement, Type: types.Void(), Left: cond}
}

func (in *Introspector) walkExpr(s *Scope, idx syntax.NodeIndex) *Expr {
	n := in.Tree.Node(idx)
	switch n.Kind {
	case syntax.KindIdentifier:
		return in.resolveIdentifier(s, n)
	case syntax.KindLiteral:
		return in.resolveLiteral(n)
	case syntax.KindBinaryExpr:
		return in.walkBinary(s, n)
	case syntax.KindCallExpr:
		return in.walkCall(s, n)
	case syntax.KindMemberAccess:
		return in.walkMemberAccess(s, n)
	case syntax.KindArgument:
		return in.walkExpr(s, n.Child0)
	default:
		return in.errorf(n, "unsupported expression kind %d", n.Kind)
	}
}

func (in *Introspector) resolveIdentifier(s *Scope, n *syntax.Node) *Expr {
	if v := s.Lookup(n.Name); v != nil {
		if v.Value != nil {
			return v.Value
		}
		return &Expr{Kind: ExprFieldAccess, Type: v.Type, Field: v.Field}
	}
	// declType is the enclosing type even across a static boundary, so a
	// bare name that does name an instance member still gets the precise
	// "static context" diagnostic (§4.J step 1) instead of "unknown
	// identifier".
	if declType, crossedStatic := s.LookupThis(); declType != nil {
		if f, ok := types.TryGetField(declType, n.Name); ok {
			if crossedStatic && !f.IsStatic() {
				return in.errorf(n, "cannot access instance field '%s' from a static context", n.Name)
			}
			return &Expr{Kind: ExprFieldAccess, Type: f.Type, Field: f}
		}
		if p, ok := types.TryGetProperty(declType, n.Name); ok {
			if crossedStatic && !p.IsStatic() {
				return in.errorf(n, "cannot access instance property '%s' from a static context", n.Name)
			}
			return &Expr{Kind: ExprPropertyAccess, Type: p.Type, Property: p}
		}
	}
	msg := diagnostics.WithSuggestion("unknown identifier '"+n.Name+"'", nil, n.Name)
	return in.emitError(n, msg)
}

func (in *Introspector) resolveLiteral(n *syntax.Node) *Expr {
	switch n.Name {
	case "true":
		return &Expr{Kind: ExprLiteralBool, Type: types.FromBuiltIn(types.BuiltInBool), BoolLiteral: true}
	case "false":
		return &Expr{Kind: ExprLiteralBool, Type: types.FromBuiltIn(types.BuiltInBool), BoolLiteral: false}
	case "null":
		return &Expr{Kind: ExprLiteralNull, Type: types.Null()}
	case "default":
		return &Expr{Kind: ExprLiteralDefault, Type: types.Null()}
	default:
		if f, err := strconv.ParseFloat(n.Name, 64); err == nil {
			return &Expr{Kind: ExprLiteralNumeric, Type: types.FromBuiltIn(types.BuiltInDouble), NumericLiteral: f}
		}
		return in.errorf(n, "unrecognized literal %q", n.Name)
	}
}

// walkBinary implements §4.J's binary-operation rules: equality on
// non-numeric operands checks reference-equality eligibility instead of
// promoting; everything else descends the numeric preference ladder and
// wraps the less-precise operand in an ExprDirectCast, matching the
// testable "int + double -> DirectCast<double> on the LHS" scenario (§8.5).
func (in *Introspector) walkBinary(s *Scope, n *syntax.Node) *Expr {
	left := in.walkExpr(s, n.Child0)
	right := in.walkExpr(s, n.Child1)
	op, kind, isComparison, isEquality := DecodeBinaryOp(n.Name)

	if isEquality && !(left.Type.IsArithmetic() && right.Type.IsArithmetic()) {
		switch {
		case left.Type.IsEnum() && right.Type.IsEnum() && left.Type.Equals(right.Type):
			return &Expr{Kind: ExprEquality, Type: types.FromBuiltIn(types.BuiltInBool), Left: left, Right: right, Op: op}
		case ReferenceEqualityAllowed(left.Type, right.Type):
			return &Expr{Kind: ExprEquality, Type: types.FromBuiltIn(types.BuiltInBool), Left: left, Right: right, Op: op}
		default:
			return in.errorf(n, "cannot compare %s and %s", left.Type.ToString(), right.Type.ToString())
		}
	}

	if !left.Type.IsArithmetic() || !right.Type.IsArithmetic() {
		return in.errorf(n, "no common numeric type for %s and %s", left.Type.ToString(), right.Type.ToString())
	}
	if isComparison && mixedSignedness(left.Type, right.Type) {
		return in.errorf(n, "cast required: cannot compare %s and %s without an explicit cast", left.Type.ToString(), right.Type.ToString())
	}

	common := CommonNumericType(left.Type, right.Type)
	if common.BuiltIn == types.BuiltInInvalid {
		return in.errorf(n, "no common numeric type for %s and %s", left.Type.ToString(), right.Type.ToString())
	}
	left = wrapDirectCast(left, common)
	right = wrapDirectCast(right, common)

	resultType := common
	if isComparison || isEquality {
		resultType = types.FromBuiltIn(types.BuiltInBool)
	}
	return &Expr{Kind: kind, Type: resultType, Left: left, Right: right, Op: op}
}

// wrapDirectCast wraps operand in an ExprDirectCast to target when its type
// isn't already target, matching §4.J's "the less-precise operand is
// wrapped in a DirectCast to the preferred type."
func wrapDirectCast(operand *Expr, target types.ResolvedType) *Expr {
	if operand.Type.Equals(target) {
		return operand
	}
	return &Expr{Kind: ExprDirectCast, Type: target, Left: operand, CastTarget: target}
}

func (in *Introspector) walkCall(s *Scope, n *syntax.Node) *Expr {
	callee := in.Tree.Node(n.Child0)
	var args []*Expr
	for idx := n.Child1; idx.IsValid(); {
		argNode := in.Tree.Node(idx)
		args = append(args, in.walkExpr(s, idx))
		idx = argNode.Next
	}
	declType, crossedStatic := s.LookupThis()
	if declType == nil {
		return in.errorf(n, "cannot resolve call '%s' without an enclosing type", callee.Name)
	}
	group, ok := types.TryGetMethodGroupWithParameterCount(declType, callee.Name, len(args))
	if !ok {
		return in.errorf(n, "no method '%s' with %d parameter(s)", callee.Name, len(args))
	}
	argTypes := make([]types.ResolvedType, len(args))
	for i, a := range args {
		argTypes[i] = a.Type
	}
	site := CallSite{HasInstance: !crossedStatic, FromType: declType}
	result := ResolveOverload(&group, argTypes, site)
	switch result.Outcome {
	case OverloadResolved:
		kind := ExprInstanceCall
		if result.Method.IsStatic() {
			kind = ExprStaticCall
		}
		return &Expr{Kind: kind, Type: result.Method.ReturnType, Method: result.Method, Args: args}
	case OverloadAmbiguous:
		return in.errorf(n, "%s: '%s' matches %d candidates", ErrAmbiguousOverload, callee.Name, len(result.Ambiguous))
	default:
		if len(result.Rejected) > 0 {
			return in.errorf(n, "no overload of '%s' matches the given arguments: %s", callee.Name, result.Rejected[0].Reason)
		}
		return in.errorf(n, "no overload of '%s' matches the given arguments", callee.Name)
	}
}

func (in *Introspector) walkMemberAccess(s *Scope, n *syntax.Node) *Expr {
	receiver := in.walkExpr(s, n.Child0)
	member := in.Tree.Node(n.Child1)
	if receiver.Type.TypeInfo == nil {
		return in.errorf(n, "cannot access member '%s' on this expression", member.Name)
	}
	if f, ok := types.TryGetField(receiver.Type.TypeInfo, member.Name); ok {
		return &Expr{Kind: ExprFieldAccess, Type: f.Type, Receiver: receiver, Field: f}
	}
	if p, ok := types.TryGetProperty(receiver.Type.TypeInfo, member.Name); ok {
		return &Expr{Kind: ExprPropertyAccess, Type: p.Type, Receiver: receiver, Property: p}
	}
	msg := diagnostics.WithSuggestion("no member '"+member.Name+"' on "+receiver.Type.ToString(), nil, member.Name)
	return in.emitError(member, msg)
}

func (in *Introspector) errorf(n *syntax.Node, format string, args ...any) *Expr {
	return in.emitError(n, fmt.Sprintf(format, args...))
}

func (in *Introspector) emitError(n *syntax.Node, msg string) *Expr {
	in.Sink.Errorf(in.Path, diagnostics.LineColumn{Line: int(n.Range.Start), Column: 0}, "%s", msg)
	return SemanticError(msg)
}
