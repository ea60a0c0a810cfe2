package board

import (
	"errors"

	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/rs/zerolog"
)

var (
	ErrDragActive   = errors.New("a drag is already in progress")
	ErrNotDraggable = errors.New("item cannot be dragged")
)

// Reorderer persists a realized order. ok is false when ids do not map onto
// the stored list; tasks is then the untouched stored list.
type Reorderer interface {
	Reorder(ids []int64) (tasks []model.Task, ok bool)
}

// Ghost is the floating proxy that follows the pointer during a drag.
type Ghost struct {
	ID   int64
	Rect Rect
}

// DragEngine owns at most one drag session over a surface.
type DragEngine struct {
	surface   *Surface
	store     Reorderer
	render    func(tasks []model.Task)
	onReorder func()
	locked    func(id int64) bool
	log       zerolog.Logger

	active *DragSession
}

type DragDeps struct {
	Surface *Surface
	Store   Reorderer
	// Render re-renders the list from the given tasks after a drop.
	Render func(tasks []model.Task)
	// OnReorder runs on every drop, e.g. to clear a sorted-by-date marker.
	OnReorder func()
	// Locked reports items that must not be dragged, e.g. while editing.
	Locked func(id int64) bool
	Log    zerolog.Logger
}

func NewDragEngine(deps DragDeps) *DragEngine {
	e := &DragEngine{
		surface:   deps.Surface,
		store:     deps.Store,
		render:    deps.Render,
		onReorder: deps.OnReorder,
		locked:    deps.Locked,
		log:       deps.Log,
	}
	if e.render == nil {
		e.render = func([]model.Task) {}
	}
	if e.onReorder == nil {
		e.onReorder = func() {}
	}
	if e.locked == nil {
		e.locked = func(int64) bool { return false }
	}
	return e
}

// Active returns the session in progress, or nil.
func (e *DragEngine) Active() *DragSession {
	return e.active
}

// Start begins dragging the item with the given id from pointer p.
func (e *DragEngine) Start(id int64, p Point) (*DragSession, error) {
	if e.active != nil {
		return nil, ErrDragActive
	}
	node := e.surface.Node(id)
	if node == nil || e.locked(id) {
		return nil, ErrNotDraggable
	}

	s := &DragSession{
		engine:     e,
		node:       node,
		origParent: node.Parent(),
		origNext:   e.surface.NextSibling(node),
		offset:     Point{X: p.X - node.Rect.X, Y: p.Y - node.Rect.Y},
		ghost:      Ghost{ID: id, Rect: node.Rect},
		indicator:  NewIndicator(),
	}
	node.Lifted = true
	e.active = s
	e.log.Debug().Int64("id", id).Int("x", p.X).Int("y", p.Y).Msg("drag started")
	return s, nil
}

// Abort ends the active session without persisting anything. The item goes
// back to where it started. The list must be re-rendered from the store
// afterwards; Board.Rerender does this on its own.
func (e *DragEngine) Abort() {
	s := e.active
	if s == nil {
		return
	}
	s.ended = true
	e.active = nil
	s.node.Lifted = false
	s.restore()
	e.log.Debug().Int64("id", s.node.ID).Msg("drag aborted")
}

// DragSession is one pointer-down to pointer-up gesture.
type DragSession struct {
	engine     *DragEngine
	node       *Node
	origParent *Surface
	origNext   *Node
	offset     Point
	ghost      Ghost
	indicator  *Node
	ended      bool
}

func (s *DragSession) ID() int64 { return s.node.ID }

func (s *DragSession) Ghost() Ghost { return s.ghost }

// Indicator is the drop line; its Parent is nil while detached.
func (s *DragSession) Indicator() *Node { return s.indicator }

// Move tracks the pointer with the ghost and repositions the drop line.
// A pointer outside the surface bounds detaches the line.
func (s *DragSession) Move(p Point) {
	if s.ended {
		return
	}
	s.ghost.Rect.X = p.X - s.offset.X
	s.ghost.Rect.Y = p.Y - s.offset.Y

	surface := s.origParent
	if surface == nil {
		return
	}
	if !surface.Bounds.Contains(p) {
		surface.Remove(s.indicator)
		return
	}

	target, before := s.dropTarget(float64(p.Y))
	switch {
	case target == nil:
		if s.indicator.Parent() == nil {
			surface.Append(s.indicator)
		}
	case before:
		surface.InsertBefore(s.indicator, target)
	default:
		surface.InsertBefore(s.indicator, surface.NextSibling(target))
	}
}

// dropTarget scans the items other than the dragged one in order. The first
// item whose midpoint lies below y is the insert-before target; past every
// midpoint the line goes after the last item.
func (s *DragSession) dropTarget(y float64) (target *Node, before bool) {
	var items []*Node
	for _, n := range s.origParent.Items() {
		if n != s.node {
			items = append(items, n)
		}
	}
	if len(items) == 0 {
		return nil, true
	}
	for _, n := range items {
		if y < n.Rect.MidY() {
			return n, true
		}
	}
	return items[len(items)-1], false
}

// End drops the item. With the line attached the item takes its place and
// the realized order is reconciled into the store; otherwise the item goes
// back to where it started and nothing is persisted.
func (s *DragSession) End() (tasks []model.Task, persisted bool) {
	if s.ended {
		return nil, false
	}
	s.ended = true
	e := s.engine
	e.active = nil
	s.node.Lifted = false

	surface := s.origParent
	if surface != nil && s.indicator.Parent() == surface {
		surface.InsertBefore(s.node, s.indicator)
		surface.Remove(s.indicator)

		ids := surface.IDs()
		tasks, persisted = e.store.Reorder(ids)
		if !persisted {
			e.log.Debug().Ints64("ids", ids).Msg("drop order does not map onto stored tasks, reverted")
		}
		e.render(tasks)
	} else {
		s.restore()
		e.log.Debug().Int64("id", s.node.ID).Msg("drop outside list, restored")
	}
	e.onReorder()
	return tasks, persisted
}

func (s *DragSession) restore() {
	if s.indicator.Parent() != nil {
		s.indicator.Parent().Remove(s.indicator)
	}
	if s.origParent == nil {
		return
	}
	if s.origNext != nil && s.origNext.Parent() != s.origParent {
		s.origNext = nil
	}
	s.origParent.InsertBefore(s.node, s.origNext)
}

// Ended reports whether the session was dropped or aborted.
func (s *DragSession) Ended() bool { return s.ended }
