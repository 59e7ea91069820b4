package pcd

import (
	"github.com/seqsense/pcgol/mat"
)

type Vec3RandomAccessor interface {
	Vec3At(int) mat.Vec3
	Len() int
}

// Vec3Accessor returns a random accessor over the cloud's coordinates.
func (pc *PointCloud) Vec3Accessor() (Vec3RandomAccessor, error) {
	it, err := pc.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	if fit, ok := it.(*float32Iterator); ok {
		return &vec3Slice{
			data:   fit.data,
			offset: fit.pos,
			stride: fit.stride,
			n:      pc.Points,
		}, nil
	}
	return &naiveVec3Accessor{pc: pc, n: pc.Points}, nil
}

type vec3Slice struct {
	data   []float32
	offset int
	stride int
	n      int
}

func (s *vec3Slice) Len() int {
	return s.n
}

func (s *vec3Slice) Vec3At(i int) mat.Vec3 {
	pos := s.offset + i*s.stride
	return mat.Vec3{s.data[pos], s.data[pos+1], s.data[pos+2]}
}

type naiveVec3Accessor struct {
	pc *PointCloud
	n  int
}

func (a *naiveVec3Accessor) Len() int {
	return a.n
}

func (a *naiveVec3Accessor) Vec3At(i int) mat.Vec3 {
	it, _ := a.pc.Vec3Iterator()
	for ; i > 0; i-- {
		it.Incr()
	}
	return it.Vec3()
}

type indiceVec3RandomAccessor struct {
	indice []int
	ra     Vec3RandomAccessor
}

func (i *indiceVec3RandomAccessor) Len() int {
	return len(i.indice)
}

func (i *indiceVec3RandomAccessor) Vec3At(j int) mat.Vec3 {
	return i.ra.Vec3At(i.indice[j])
}

// NewIndiceVec3RandomAccessor restricts an accessor to the given indices.
func NewIndiceVec3RandomAccessor(ra Vec3RandomAccessor, indice []int) Vec3RandomAccessor {
	return &indiceVec3RandomAccessor{
		ra:     ra,
		indice: indice,
	}
}
