// Package voxelgrid extracts connected components of points: all points
// whose voxels are 26-connected to the voxel of a seed point.
package voxelgrid

import (
	"github.com/seqsense/pcgol/mat"

	storage "github.com/pcl-go/pcl/pcd/storage/voxelgrid"
)

const initialSliceCap = 8192

var cursor [][3]int

func init() {
	for _, x := range []int{-1, 0, 1} {
		for _, y := range []int{-1, 0, 1} {
			for _, z := range []int{-1, 0, 1} {
				if x == 0 && y == 0 && z == 0 {
					continue
				}
				cursor = append(cursor, [3]int{x, y, z})
			}
		}
	}
}

type VoxelGrid struct {
	*storage.VoxelGrid
}

func New(resolution float32) *VoxelGrid {
	return &VoxelGrid{
		VoxelGrid: storage.New(resolution),
	}
}

// Segment returns the indices of all points connected to the voxel
// containing p.
func (v *VoxelGrid) Segment(p mat.Vec3) []int {
	pos, ok := v.Cell(p)
	if !ok {
		return nil
	}
	searched := make(map[storage.Cell]bool)
	next := make([]storage.Cell, 0, initialSliceCap)
	next = append(next, pos)
	indice := make([]int, 0, initialSliceCap)

	for len(next) > 0 {
		var pos storage.Cell
		pos, next = next[0], next[1:]
		if searched[pos] {
			continue
		}
		searched[pos] = true
		c := v.GetByCell(pos)
		if len(c) == 0 {
			continue
		}
		indice = append(indice, c...)

		for _, d := range cursor {
			n := storage.Cell{pos[0] + d[0], pos[1] + d[1], pos[2] + d[2]}
			if searched[n] {
				continue
			}
			next = append(next, n)
		}
	}
	return indice
}
