package grid

import "fmt"

// Helpers for building deterministic hierarchies. Used by the CLI demo mode
// and by tests; real datasets arrive through whatever frontend loads them
// into Nodes.

// UniformLeaf builds a childless grid whose field is constant everywhere.
func UniformLeaf(dims [3]int, left, right [3]float64, field string, value float64) *Node {
	n := NewNode(dims, left, right, 0, [3]int{})
	a := NewArray3(dims)
	a.Fill(value)
	if err := n.SetField(field, a); err != nil {
		panic(err) // dims match by construction
	}
	return n
}

// FuncLeaf builds a childless grid sampling f at each cell center.
func FuncLeaf(dims [3]int, left, right [3]float64, field string, f func(x, y, z float64) float64) *Node {
	n := NewNode(dims, left, right, 0, [3]int{})
	if err := n.FillField(field, f); err != nil {
		panic(err)
	}
	return n
}

// FillField attaches a cell-centered field sampling f at each cell center.
func (n *Node) FillField(field string, f func(x, y, z float64) float64) error {
	a := NewArray3(n.ActiveDims)
	dds := n.CellSize()
	for x := 0; x < n.ActiveDims[0]; x++ {
		wx := n.LeftEdge[0] + (float64(x)+0.5)*dds[0]
		for y := 0; y < n.ActiveDims[1]; y++ {
			wy := n.LeftEdge[1] + (float64(y)+0.5)*dds[1]
			for z := 0; z < n.ActiveDims[2]; z++ {
				wz := n.LeftEdge[2] + (float64(z)+0.5)*dds[2]
				a.Set(x, y, z, f(wx, wy, wz))
			}
		}
	}
	return n.SetField(field, a)
}

// RefineBox creates and attaches a child covering the parent cells [lo, hi),
// refined 2x per axis. The child has no fields; the caller fills them in.
func (n *Node) RefineBox(lo, hi [3]int) (*Node, error) {
	var cdims, cstart [3]int
	var cleft, cright [3]float64
	dds := n.CellSize()
	for i := 0; i < 3; i++ {
		if lo[i] < 0 || hi[i] > n.ActiveDims[i] || lo[i] >= hi[i] {
			return nil, fmt.Errorf("grid: refine box [%v, %v) outside dims %v", lo, hi, n.ActiveDims)
		}
		cdims[i] = (hi[i] - lo[i]) * RefinementFactor
		cstart[i] = (n.StartIndex[i] + lo[i]) * RefinementFactor
		cleft[i] = n.LeftEdge[i] + float64(lo[i])*dds[i]
		cright[i] = n.LeftEdge[i] + float64(hi[i])*dds[i]
	}

	c := NewNode(cdims, cleft, cright, n.Level+1, cstart)
	if err := n.AddChild(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Flatten returns the hierarchy rooted at n as a flat list in breadth-first
// order, the order a batch partitioning pass consumes.
func Flatten(root *Node) []*Node {
	var out []*Node
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		out = append(out, n)
		queue = append(queue, n.Children...)
	}
	return out
}
