package syntax

// Builder assembles a Tree in-process. It exists for tests and tools that
// need a syntax tree without a real lexer/parser wired in — the concrete
// parser remains out of scope for this module.
type Builder struct {
	nodes []Node
}

// NewBuilder returns a Builder pre-seeded with the index-0 sentinel.
func NewBuilder() *Builder {
	return &Builder{nodes: []Node{{Kind: KindInvalid}}}
}

// Add appends n and returns the NodeIndex it was stored at.
func (b *Builder) Add(n Node) NodeIndex {
	idx := NodeIndex(len(b.nodes))
	b.nodes = append(b.nodes, n)
	return idx
}

// Build finalizes the tree. The Builder must not be reused afterwards.
func (b *Builder) Build() *Tree {
	return &Tree{Nodes: b.nodes}
}

// Patch mutates the node already stored at idx. Tests that must honor
// doc.go's "file root is always NodeIndex(1)" convention add the KindFile
// node first, then its children, then wire the parent/child links back
// together with Patch rather than reordering Add calls.
func (b *Builder) Patch(idx NodeIndex, fn func(*Node)) {
	fn(&b.nodes[idx])
}

// LinkSiblings threads idxs into a Next-linked list and returns its head,
// mirroring how the parser threads declaration/parameter/statement lists.
func (b *Builder) LinkSiblings(idxs ...NodeIndex) NodeIndex {
	if len(idxs) == 0 {
		return 0
	}
	for i := 0; i < len(idxs)-1; i++ {
		b.nodes[idxs[i]].Next = idxs[i+1]
	}
	return idxs[0]
}

// Each walks a Next-linked list starting at head, invoking fn for every
// node in order. Shared by every phase that iterates a declaration,
// parameter, or statement list.
func Each(t *Tree, head NodeIndex, fn func(NodeIndex, *Node)) {
	for idx := head; idx.IsValid(); idx = t.Node(idx).Next {
		fn(idx, t.Node(idx))
	}
}

// Count returns the number of nodes in a Next-linked list starting at head.
func Count(t *Tree, head NodeIndex) int {
	n := 0
	Each(t, head, func(NodeIndex, *Node) { n++ })
	return n
}
