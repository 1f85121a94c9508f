// Package grid models a read-only AMR (adaptive mesh refinement) hierarchy:
// nested rectangular grids where regions of interest are covered by
// successively finer children, each refined 2x per axis relative to its
// parent.
//
// Nodes are built once and never mutated afterwards; the partitioning pass
// borrows them read-only. Every node carries its own resolved bounding box
// and level-global index offset, so no ambient hierarchy state is consulted
// during traversal.
package grid

import (
	"fmt"
)

// RefinementFactor is the per-axis refinement between adjacent levels.
const RefinementFactor = 2

// Node is one grid in the hierarchy.
type Node struct {
	// ActiveDims is the number of cells along each axis.
	ActiveDims [3]int

	// LeftEdge and RightEdge bound the grid in world coordinates.
	LeftEdge  [3]float64
	RightEdge [3]float64

	// Level is the refinement level, 0 for the root.
	Level int

	// StartIndex is the grid's cell offset in its level-wide index frame.
	StartIndex [3]int

	// Children are fully nested grids at Level+1.
	Children []*Node

	fields map[string]*Array3
	mask   *Mask3
}

// NewNode builds a node with no fields and no children.
func NewNode(dims [3]int, left, right [3]float64, level int, start [3]int) *Node {
	return &Node{
		ActiveDims: dims,
		LeftEdge:   left,
		RightEdge:  right,
		Level:      level,
		StartIndex: start,
		fields:     make(map[string]*Array3),
	}
}

// Footprint is a half-open cell-index box [Start, End) in some grid's local
// frame.
type Footprint struct {
	Start, End [3]int
}

// Dims returns the cell count along each axis.
func (n *Node) Dims() [3]int {
	return n.ActiveDims
}

// Bounds returns the world-space bounding box.
func (n *Node) Bounds() (left, right [3]float64) {
	return n.LeftEdge, n.RightEdge
}

// CellSize returns the world-space cell width along each axis.
func (n *Node) CellSize() [3]float64 {
	var dds [3]float64
	for i := 0; i < 3; i++ {
		dds[i] = (n.RightEdge[i] - n.LeftEdge[i]) / float64(n.ActiveDims[i])
	}
	return dds
}

// GlobalStartIndex returns the grid's index offset in its level-wide frame.
func (n *Node) GlobalStartIndex() [3]int {
	return n.StartIndex
}

// ChildCount returns the number of child grids.
func (n *Node) ChildCount() int {
	return len(n.Children)
}

// AddChild attaches a child grid and invalidates the cached coverage mask.
// The child must sit one level below its parent.
func (n *Node) AddChild(c *Node) error {
	if c.Level != n.Level+1 {
		return fmt.Errorf("grid: child level %d under parent level %d", c.Level, n.Level)
	}
	n.Children = append(n.Children, c)
	n.mask = nil
	return nil
}

// ChildFootprint projects child c into this grid's local cell-index frame,
// returning the half-open box [start, end) it covers.
func (n *Node) ChildFootprint(c *Node) (start, end [3]int) {
	cs := c.GlobalStartIndex()
	ps := n.GlobalStartIndex()
	for i := 0; i < 3; i++ {
		start[i] = cs[i]/RefinementFactor - ps[i]
		end[i] = start[i] + c.ActiveDims[i]/RefinementFactor
	}
	return start, end
}

// ChildFootprints returns every child's projected box, in child order.
func (n *Node) ChildFootprints() []Footprint {
	fps := make([]Footprint, len(n.Children))
	for i, c := range n.Children {
		fps[i].Start, fps[i].End = n.ChildFootprint(c)
	}
	return fps
}

// ChildIndexMask returns the per-cell coverage mask: the index of the child
// covering each cell, or Uncovered. The mask is computed lazily from the
// children's projected footprints and cached; later children win where
// footprints overlap, matching append order.
func (n *Node) ChildIndexMask() *Mask3 {
	if n.mask != nil {
		return n.mask
	}
	m := NewMask3(n.ActiveDims)
	for i, c := range n.Children {
		start, end := n.ChildFootprint(c)
		m.FillBox(start, end, int32(i))
	}
	n.mask = m
	return m
}
