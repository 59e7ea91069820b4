// Package voxelgrid downsamples a cloud by grouping points into fixed-size
// grid cells and replacing each occupied cell by its centroid.
package voxelgrid

import (
	"errors"
	"math"

	"github.com/seqsense/pcgol/mat"

	"github.com/pcl-go/pcl/pcd"
	"github.com/pcl-go/pcl/pcd/filter"
)

// ErrLeafSize is returned when a leaf size component is zero, negative or
// not a number.
var ErrLeafSize = errors.New("voxelgrid: leaf size must be positive")

type Options struct {
	LeafSize mat.Vec3
}

type voxelGrid struct {
	Options
}

// New creates a downsampling filter with the given leaf size per axis.
func New(leafSize mat.Vec3) filter.Filter {
	return &voxelGrid{
		Options: Options{
			LeafSize: leafSize,
		},
	}
}

// NewUniform creates a downsampling filter with cubic cells.
func NewUniform(leafSize float32) filter.Filter {
	return New(mat.Vec3{leafSize, leafSize, leafSize})
}

type cell [3]int

// voxel accumulates one running centroid: the number of merged points and
// the per-scalar sums over every field of the schema.
type voxel struct {
	num int
	sum []float64
}

func (f *voxelGrid) Filter(pc *pcd.PointCloud) (*pcd.PointCloud, error) {
	for i := range f.LeafSize {
		if !(f.LeafSize[i] > 0) || math.IsInf(float64(f.LeafSize[i]), 0) {
			return nil, ErrLeafSize
		}
	}
	it, err := pc.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	fits := make([]pcd.FieldIterator, len(pc.Fields))
	for i, name := range pc.Fields {
		if fits[i], err = pc.FieldIterator(name); err != nil {
			return nil, err
		}
	}
	var nScalars int
	for i := range pc.Count {
		nScalars += pc.Count[i]
	}

	// Group points by their voxel, keeping the first-seen order of voxels
	// so that repeated runs produce identical output.
	voxels := make(map[cell]*voxel)
	var order []cell
	for ; it.IsValid(); it.Incr() {
		p := it.Vec3()
		if finiteVec3(p) {
			c := cell{
				int(math.Floor(float64(p[0]) / float64(f.LeafSize[0]))),
				int(math.Floor(float64(p[1]) / float64(f.LeafSize[1]))),
				int(math.Floor(float64(p[2]) / float64(f.LeafSize[2]))),
			}
			v, ok := voxels[c]
			if !ok {
				v = &voxel{sum: make([]float64, nScalars)}
				voxels[c] = v
				order = append(order, c)
			}
			v.num++
			k := 0
			for i, ft := range fits {
				for j := 0; j < pc.Count[i]; j++ {
					v.sum[k] += ft.Value(j)
					k++
				}
			}
		}
		for _, ft := range fits {
			ft.Incr()
		}
	}

	n := len(order)
	out := &pcd.PointCloud{
		PointCloudHeader: pc.Clone(),
		Points:           n,
		Data:             make([]byte, pc.Stride()*n),
	}
	out.Width = n
	out.Height = 1

	outs := make([]pcd.FieldIterator, len(pc.Fields))
	for i, name := range pc.Fields {
		if outs[i], err = out.FieldIterator(name); err != nil {
			return nil, err
		}
	}
	for _, c := range order {
		v := voxels[c]
		inv := 1 / float64(v.num)
		k := 0
		for i, ft := range outs {
			for j := 0; j < pc.Count[i]; j++ {
				m := v.sum[k] * inv
				if pc.Type[i] != "F" {
					m = math.Round(m)
				}
				ft.SetValue(j, m)
				k++
			}
			ft.Incr()
		}
	}
	return out, nil
}

func finiteVec3(p mat.Vec3) bool {
	for i := range p {
		v := float64(p[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
