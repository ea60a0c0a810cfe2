package board

// Point is a pointer position in surface cells.
type Point struct {
	X, Y int
}

type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// MidY is the vertical midpoint used for drop hit-testing.
func (r Rect) MidY() float64 {
	return float64(r.Y) + float64(r.H)/2
}

// Node is one realized child of a Surface: an item row or the drop indicator.
type Node struct {
	ID     int64
	Rect   Rect
	Lifted bool

	indicator bool
	parent    *Surface
}

func (n *Node) IsIndicator() bool { return n.indicator }

// Parent is the surface the node is attached to, or nil when detached.
func (n *Node) Parent() *Surface { return n.parent }

// NewIndicator returns a detached drop-line node.
func NewIndicator() *Node {
	return &Node{indicator: true}
}

// Surface is the realized list: an ordered set of child nodes with their
// on-screen geometry. It stands in for the list container a toolkit draws.
type Surface struct {
	Bounds   Rect
	children []*Node
}

func NewSurface() *Surface {
	return &Surface{}
}

// Build replaces all children with one item node per id, in order.
func (s *Surface) Build(ids []int64) {
	for _, n := range s.children {
		n.parent = nil
	}
	s.children = make([]*Node, 0, len(ids))
	for _, id := range ids {
		s.children = append(s.children, &Node{ID: id, parent: s})
	}
}

func (s *Surface) Children() []*Node {
	return append([]*Node(nil), s.children...)
}

func (s *Surface) Len() int {
	return len(s.children)
}

// Items returns the item children in order, skipping the indicator.
func (s *Surface) Items() []*Node {
	items := make([]*Node, 0, len(s.children))
	for _, n := range s.children {
		if !n.indicator {
			items = append(items, n)
		}
	}
	return items
}

// IDs reads back the realized item order.
func (s *Surface) IDs() []int64 {
	ids := make([]int64, 0, len(s.children))
	for _, n := range s.Items() {
		ids = append(ids, n.ID)
	}
	return ids
}

func (s *Surface) Node(id int64) *Node {
	for _, n := range s.children {
		if !n.indicator && n.ID == id {
			return n
		}
	}
	return nil
}

func (s *Surface) indexOf(n *Node) int {
	for i, c := range s.children {
		if c == n {
			return i
		}
	}
	return -1
}

// NextSibling returns the child after n, or nil when n is last or detached.
func (s *Surface) NextSibling(n *Node) *Node {
	i := s.indexOf(n)
	if i < 0 || i+1 >= len(s.children) {
		return nil
	}
	return s.children[i+1]
}

// Remove detaches n. Removing a detached node is a no-op.
func (s *Surface) Remove(n *Node) {
	i := s.indexOf(n)
	if i < 0 {
		return
	}
	s.children = append(s.children[:i], s.children[i+1:]...)
	n.parent = nil
}

// InsertBefore moves n so it sits right before ref. A nil ref, or a ref
// that is not a child, appends n at the end.
func (s *Surface) InsertBefore(n, ref *Node) {
	if n == ref {
		return
	}
	if n.parent != nil {
		n.parent.Remove(n)
	}
	i := s.indexOf(ref)
	if ref == nil || i < 0 {
		s.children = append(s.children, n)
	} else {
		s.children = append(s.children, nil)
		copy(s.children[i+1:], s.children[i:])
		s.children[i] = n
	}
	n.parent = s
}

func (s *Surface) Append(n *Node) {
	s.InsertBefore(n, nil)
}

// Layout stacks the children top to bottom from the surface origin and sets
// Bounds to cover them. heightOf gives each child's height in cells.
func (s *Surface) Layout(origin Point, width int, heightOf func(n *Node) int) {
	y := origin.Y
	for _, n := range s.children {
		h := heightOf(n)
		n.Rect = Rect{X: origin.X, Y: y, W: width, H: h}
		y += h
	}
	s.Bounds = Rect{X: origin.X, Y: origin.Y, W: width, H: y - origin.Y}
}
