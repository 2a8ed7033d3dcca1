// Package syntax defines the read-only contract the semantic-analysis core
// consumes from a parser: a densely-packed, index-addressed node array. The
// concrete lexer/parser that populates this array is out of scope for this
// module; syntax only owns the node shapes and a small in-memory Builder
// used by tests to construct trees without one.
package syntax

// NodeIndex addresses a Node within a Tree. The zero value means "absent" —
// callers must check IsValid before dereferencing.
type NodeIndex uint16

// IsValid reports whether idx refers to a real node.
func (idx NodeIndex) IsValid() bool { return idx != 0 }

// Kind discriminates the variant stored in a Node's payload.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFile
	KindNamespaceDecl
	KindUsingNamespace
	KindUsingAlias
	KindClassDecl
	KindStructDecl
	KindInterfaceDecl
	KindEnumDecl
	KindDelegateDecl
	KindTypeParameter
	KindFieldDecl
	KindPropertyDecl
	KindIndexerDecl
	KindMethodDecl
	KindConstructorDecl
	KindParameter
	KindTypePath
	KindGenericArgumentList
	KindBlock
	KindIfStatement
	KindExpressionStatement
	KindReturnStatement
	KindIdentifier
	KindLiteral
	KindBinaryExpr
	KindCallExpr
	KindArgument
	KindMemberAccess
)

// Modifier is a bitset of declaration modifiers, shared by types and
// members. Bit positions must match types.Modifier exactly: gatherFile and
// resolveFileMembers convert a syntax.Modifier straight into a
// types.Modifier with a bare cast, not a bit-by-bit translation.
type Modifier uint16

const (
	ModNone    Modifier = 0
	ModExport  Modifier = 1 << 0
	ModStatic  Modifier = 1 << 1
	ModPrivate Modifier = 1 << 2
	ModRef     Modifier = 1 << 3
	ModOut     Modifier = 1 << 4
	ModTemp    Modifier = 1 << 5
)

// TokenRange is the half-open source-text range `[Start,End)` a node spans,
// used only to recover line/column for diagnostics.
type TokenRange struct {
	Start, End uint32
}

// Node is the uniform node record. Only the fields relevant to a given Kind
// are meaningful; this mirrors the original's fixed 32-byte cell discipline
// without requiring an actual packed layout in Go, since the node array here
// is produced entirely in-process (by Builder) rather than memory-mapped.
type Node struct {
	Kind  Kind
	Range TokenRange

	// Name is the literal text for identifier-bearing nodes (types, members,
	// parameters, using directives) and, for KindBinaryExpr, the operator
	// token ("+", "==", "<", ...); empty otherwise. For KindIfStatement it
	// holds the bound name from a trailing `using (name)` context clause, or
	// "" when the if-statement has no context list.
	Name string

	// Next threads sibling lists (declaration lists, parameter lists,
	// statement lists, type-argument lists).
	Next NodeIndex

	// Child0..Child3 are kind-specific children (e.g. TypePath's generic
	// argument list, MethodDecl's parameter list head and body, BinaryExpr's
	// left/right operands).
	Child0, Child1, Child2, Child3 NodeIndex

	Modifiers Modifier

	// BuiltIn is set on TypePath nodes that name a built-in type directly
	// (int, double, string, …); BuiltInInvalid otherwise.
	BuiltIn BuiltInTypeName

	// IsNullable / IsArray mark a TypePath's trailing `?` / `[]`.
	IsNullable bool
	IsArray    bool

	// HasDefaultValue marks a Parameter node with a trailing `= expr`.
	HasDefaultValue bool
}

// BuiltInTypeName enumerates primitive/built-in type names the resolver
// fast-paths without a name lookup.
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
)

// Tree is the read-only, index-addressed node array produced by a parser.
// Index 0 is reserved for "absent"; Tree.Nodes[0] is a sentinel KindInvalid
// node so that NodeIndex(0) never aliases a real node.
type Tree struct {
	Nodes []Node
}

// Node returns the node at idx, or the sentinel if idx is not valid.
func (t *Tree) Node(idx NodeIndex) *Node {
	if !idx.IsValid() || int(idx) >= len(t.Nodes) {
		return &t.Nodes[0]
	}
	return &t.Nodes[idx]
}

// LineColumn recovers a 1-based line/column pair for a token offset by
// scanning src; used only for diagnostics, never on the resolver's hot path.
func LineColumn(src string, offset uint32) (line, col int) {
	line, col = 1, 1
	for i := 0; i < int(offset) && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
