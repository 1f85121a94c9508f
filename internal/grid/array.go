package grid

import (
	"fmt"
	"math"
)

// Array3 is a dense 3-D float64 array in row-major order (last axis fastest).
// It is the sample container for cell-centered fields, vertex-centered
// fields, and partition data.
type Array3 struct {
	Dims   [3]int
	Values []float64
}

// NewArray3 allocates a zero-filled array with the given dims.
// Panics on non-positive dims; array shapes are internal invariants, not
// user input.
func NewArray3(dims [3]int) *Array3 {
	for _, d := range dims {
		if d <= 0 {
			panic(fmt.Sprintf("grid: non-positive array dims %v", dims))
		}
	}
	return &Array3{
		Dims:   dims,
		Values: make([]float64, dims[0]*dims[1]*dims[2]),
	}
}

// FromValues wraps an existing flat slice. The slice length must equal the
// product of dims.
func FromValues(dims [3]int, values []float64) (*Array3, error) {
	n := dims[0] * dims[1] * dims[2]
	if dims[0] <= 0 || dims[1] <= 0 || dims[2] <= 0 {
		return nil, fmt.Errorf("grid: non-positive array dims %v", dims)
	}
	if len(values) != n {
		return nil, fmt.Errorf("grid: %d values for dims %v (want %d)", len(values), dims, n)
	}
	return &Array3{Dims: dims, Values: values}, nil
}

// Len returns the total element count.
func (a *Array3) Len() int {
	return len(a.Values)
}

func (a *Array3) index(x, y, z int) int {
	return (x*a.Dims[1]+y)*a.Dims[2] + z
}

// At returns the element at (x, y, z).
func (a *Array3) At(x, y, z int) float64 {
	return a.Values[a.index(x, y, z)]
}

// Set stores v at (x, y, z).
func (a *Array3) Set(x, y, z int, v float64) {
	a.Values[a.index(x, y, z)] = v
}

// Fill sets every element to v.
func (a *Array3) Fill(v float64) {
	for i := range a.Values {
		a.Values[i] = v
	}
}

// Copy returns an independently owned deep copy.
func (a *Array3) Copy() *Array3 {
	out := &Array3{Dims: a.Dims, Values: make([]float64, len(a.Values))}
	copy(out.Values, a.Values)
	return out
}

// SubCopy returns an owned copy of the half-open box [lo, hi). The bounds
// must lie within the array.
func (a *Array3) SubCopy(lo, hi [3]int) (*Array3, error) {
	var dims [3]int
	for i := 0; i < 3; i++ {
		if lo[i] < 0 || hi[i] > a.Dims[i] || lo[i] >= hi[i] {
			return nil, fmt.Errorf("grid: sub-box [%v, %v) outside dims %v", lo, hi, a.Dims)
		}
		dims[i] = hi[i] - lo[i]
	}

	out := NewArray3(dims)
	for x := lo[0]; x < hi[0]; x++ {
		for y := lo[1]; y < hi[1]; y++ {
			srcRow := a.index(x, y, lo[2])
			dstRow := out.index(x-lo[0], y-lo[1], 0)
			copy(out.Values[dstRow:dstRow+dims[2]], a.Values[srcRow:srcRow+dims[2]])
		}
	}
	return out, nil
}

// MinMax returns the smallest and largest element, ignoring nothing; NaN
// poisons the result the way it does in any float comparison chain, which is
// fine because callers check for NaN separately.
func (a *Array3) MinMax() (min, max float64) {
	min, max = a.Values[0], a.Values[0]
	for _, v := range a.Values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Log10 replaces every element with its base-10 logarithm in place and
// returns the number of elements that became NaN.
func (a *Array3) Log10() int {
	nan := 0
	for i, v := range a.Values {
		lv := math.Log10(v)
		a.Values[i] = lv
		if math.IsNaN(lv) {
			nan++
		}
	}
	return nan
}

// CountNaN returns the number of NaN elements.
func (a *Array3) CountNaN() int {
	n := 0
	for _, v := range a.Values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Mask3 is a dense 3-D int32 array with the same layout discipline as
// Array3. It backs the child index mask: element value is the index of the
// child covering a cell, or Uncovered.
type Mask3 struct {
	Dims   [3]int
	Values []int32
}

// Uncovered marks a cell not refined by any child.
const Uncovered int32 = -1

// NewMask3 allocates a mask with every cell marked Uncovered.
func NewMask3(dims [3]int) *Mask3 {
	for _, d := range dims {
		if d <= 0 {
			panic(fmt.Sprintf("grid: non-positive mask dims %v", dims))
		}
	}
	m := &Mask3{
		Dims:   dims,
		Values: make([]int32, dims[0]*dims[1]*dims[2]),
	}
	for i := range m.Values {
		m.Values[i] = Uncovered
	}
	return m
}

func (m *Mask3) index(x, y, z int) int {
	return (x*m.Dims[1]+y)*m.Dims[2] + z
}

// At returns the mask value at (x, y, z).
func (m *Mask3) At(x, y, z int) int32 {
	return m.Values[m.index(x, y, z)]
}

// Set stores v at (x, y, z).
func (m *Mask3) Set(x, y, z int, v int32) {
	m.Values[m.index(x, y, z)] = v
}

// FillBox sets every cell in the half-open box [lo, hi) to v, clipping the
// box to the mask bounds.
func (m *Mask3) FillBox(lo, hi [3]int, v int32) {
	for i := 0; i < 3; i++ {
		if lo[i] < 0 {
			lo[i] = 0
		}
		if hi[i] > m.Dims[i] {
			hi[i] = m.Dims[i]
		}
	}
	for x := lo[0]; x < hi[0]; x++ {
		for y := lo[1]; y < hi[1]; y++ {
			row := m.index(x, y, 0)
			for z := lo[2]; z < hi[2]; z++ {
				m.Values[row+z] = v
			}
		}
	}
}

// Uniform inspects the half-open box [lo, hi), clipped to the mask bounds.
// It returns the single value present and distinct = 1 when the box is
// uniform, distinct = 0 when the clipped box is empty, and distinct > 1 when
// the box straddles a coverage boundary.
func (m *Mask3) Uniform(lo, hi [3]int) (value int32, distinct int) {
	for i := 0; i < 3; i++ {
		if lo[i] < 0 {
			lo[i] = 0
		}
		if hi[i] > m.Dims[i] {
			hi[i] = m.Dims[i]
		}
		if lo[i] >= hi[i] {
			return 0, 0
		}
	}

	value = m.At(lo[0], lo[1], lo[2])
	distinct = 1
	for x := lo[0]; x < hi[0]; x++ {
		for y := lo[1]; y < hi[1]; y++ {
			row := m.index(x, y, 0)
			for z := lo[2]; z < hi[2]; z++ {
				if m.Values[row+z] != value {
					return value, 2
				}
			}
		}
	}
	return value, 1
}
