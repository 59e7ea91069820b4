package voxelgrid

import (
	"reflect"
	"sort"
	"testing"

	"github.com/seqsense/pcgol/mat"

	"github.com/pcl-go/pcl/pcd"
	"github.com/pcl-go/pcl/pcd/internal/float"
)

func TestVoxelGrid_Segment(t *testing.T) {
	pc := &pcd.PointCloud{
		PointCloudHeader: pcd.PointCloudHeader{
			Fields: []string{"x", "y", "z"},
			Size:   []int{4, 4, 4},
			Type:   []string{"F", "F", "F"},
			Count:  []int{1, 1, 1},
			Width:  7,
			Height: 1,
		},
		Points: 7,
		Data: float.Float32SliceAsByteSlice([]float32{
			0.1, 0.1, 2.0, // 0: far in z
			0.6, 0.55, 0.5, // 1: seed voxel
			0.8, 0.5, 0.5, // 2: neighbour voxel
			1.1, 0.5, 0.5, // 3: transitively connected
			1.9, 0.5, 0.5, // 4: disconnected
			0.45, 0.45, 0.45, // 5: diagonal neighbour
			0.3, 0.3, 0.3, // 6: same voxel as 5
		}),
	}
	ra, err := pc.Vec3Accessor()
	if err != nil {
		t.Fatal(err)
	}

	v := New(0.25)
	for i := 0; i < ra.Len(); i++ {
		v.Add(ra.Vec3At(i), i)
	}

	indice := v.Segment(mat.Vec3{0.5, 0.5, 0.5})
	sort.Ints(indice)
	expected := []int{1, 2, 3, 5, 6}
	if !reflect.DeepEqual(expected, indice) {
		t.Errorf("Expected indice:\n%v\ngot:\n%v", expected, indice)
	}

	// A segment can be used as a view over the original cloud.
	seg := pcd.NewIndiceVec3RandomAccessor(ra, indice)
	if seg.Len() != len(expected) {
		t.Fatalf("Expected %d points, got %d", len(expected), seg.Len())
	}
	if p := seg.Vec3At(0); p != ra.Vec3At(1) {
		t.Errorf("Expected %v, got: %v", ra.Vec3At(1), p)
	}

	if ids := v.Segment(mat.Vec3{-5, -5, -5}); len(ids) != 0 {
		t.Errorf("Expected empty segment, got: %v", ids)
	}
}
