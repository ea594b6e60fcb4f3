package tree

// Path addresses a node in a move tree by child index at each ply from
// the root. The empty path is the root itself.
type Path []int

// IsPrefixOf reports whether p is a prefix of other: every element of p
// equals the corresponding element of other and p is no longer than
// other. The empty path is a prefix of every path.
func (p Path) IsPrefixOf(other Path) bool {
	if len(p) > len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// child returns a copy of p extended by one index. The copy keeps paths
// handed to visitors independent of the walk's internal state.
func (p Path) child(i int) Path {
	c := make(Path, len(p)+1)
	copy(c, p)
	c[len(p)] = i
	return c
}

// Node is one position in a move tree. Move is the SAN notation of the
// move that led here (empty at the root), HalfMoves the ply count of
// the position.
type Node struct {
	FEN       string  `json:"fen"`
	Move      string  `json:"san"`
	HalfMoves int     `json:"halfMoves"`
	Comment   string  `json:"comment,omitempty"`
	Children  []*Node `json:"children,omitempty"`
}

// Tree is a read-only move tree with a derived fen-to-path index.
type Tree struct {
	root  *Node
	index map[string]Path
}

// New wraps root in a Tree. A nil root yields an empty tree.
func New(root *Node) *Tree {
	return &Tree{root: root}
}

// Root returns the root node, which may be nil.
func (t *Tree) Root() *Node {
	return t.root
}

// Walk visits every node exactly once in pre-order, siblings in stored
// child order. The visitor receives the node's path and the node; a
// false return stops the walk.
func (t *Tree) Walk(visit func(Path, *Node) bool) {
	if t == nil || t.root == nil {
		return
	}
	walk(Path{}, t.root, visit)
}

func walk(p Path, n *Node, visit func(Path, *Node) bool) bool {
	if !visit(p, n) {
		return false
	}
	for i, c := range n.Children {
		if !walk(p.child(i), c, visit) {
			return false
		}
	}
	return true
}

// FenIndex returns the fen-to-path mapping for the tree, built on first
// use. The first encounter wins for transposed positions, matching the
// card builder's duplicate rule. The index belongs to this Tree value;
// a changed tree means a new Tree and therefore a fresh index.
func (t *Tree) FenIndex() map[string]Path {
	if t.index == nil {
		t.index = make(map[string]Path)
		t.Walk(func(p Path, n *Node) bool {
			if _, ok := t.index[n.FEN]; !ok {
				t.index[n.FEN] = p
			}
			return true
		})
	}
	return t.index
}

// FindPositionByFen resolves a position identifier back to its path in
// the tree, used to resynchronize a card against a possibly-changed tree.
func (t *Tree) FindPositionByFen(fen string) (Path, bool) {
	p, ok := t.FenIndex()[fen]
	return p, ok
}
