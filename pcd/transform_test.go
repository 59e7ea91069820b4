package pcd

import (
	"testing"

	"github.com/seqsense/pcgol/mat"

	"github.com/pcl-go/pcl/pcd/internal/float"
)

func TestTransform(t *testing.T) {
	pc := PointCloud{
		PointCloudHeader: PointCloudHeader{
			Fields: []string{"x", "y", "z"},
			Size:   []int{4, 4, 4},
			Type:   []string{"F", "F", "F"},
			Count:  []int{1, 1, 1},
			Width:  2,
			Height: 1,
		},
		Points: 2,
		Data: float.Float32SliceAsByteSlice([]float32{
			1, 2, 3,
			-1, 0, 2,
		}),
	}
	orig := append([]byte{}, pc.Data...)

	out, err := Transform(&pc, mat.Translate(10, -1, 0.5))
	if err != nil {
		t.Fatal(err)
	}

	it, err := out.Vec3Iterator()
	if err != nil {
		t.Fatal(err)
	}
	expected := []mat.Vec3{
		{11, 1, 3.5},
		{9, -1, 2.5},
	}
	for i, e := range expected {
		if !it.IsValid() {
			t.Fatalf("Iterator is invalid at position %d", i)
		}
		if v := it.Vec3(); v != e {
			t.Errorf("Expected point: %v, got: %v", e, v)
		}
		it.Incr()
	}

	// The input cloud must not be modified.
	if string(orig) != string(pc.Data) {
		t.Error("Transform modified the input cloud")
	}
}
