// Package voxelgrid indexes point indices by the fixed-size grid cell
// containing their coordinates.
package voxelgrid

import (
	"math"

	"github.com/seqsense/pcgol/mat"
)

// Cell is a voxel coordinate: floor(position/resolution) per axis.
type Cell [3]int

type VoxelGrid struct {
	voxels        map[Cell][]int
	resolutionInv float64
}

func New(resolution float32) *VoxelGrid {
	return &VoxelGrid{
		voxels:        make(map[Cell][]int),
		resolutionInv: 1 / float64(resolution),
	}
}

// Cell returns the grid cell containing p. ok is false if p has a
// non-finite coordinate; such points belong to no cell.
func (v *VoxelGrid) Cell(p mat.Vec3) (Cell, bool) {
	var c Cell
	for i := range p {
		f := float64(p[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Cell{}, false
		}
		c[i] = int(math.Floor(f * v.resolutionInv))
	}
	return c, true
}

func (v *VoxelGrid) Add(p mat.Vec3, index int) bool {
	c, ok := v.Cell(p)
	if !ok {
		return false
	}
	v.voxels[c] = append(v.voxels[c], index)
	return true
}

func (v *VoxelGrid) Get(p mat.Vec3) []int {
	c, ok := v.Cell(p)
	if !ok {
		return nil
	}
	return v.voxels[c]
}

func (v *VoxelGrid) GetByCell(c Cell) []int {
	return v.voxels[c]
}

// Len returns the number of occupied voxels.
func (v *VoxelGrid) Len() int {
	return len(v.voxels)
}
