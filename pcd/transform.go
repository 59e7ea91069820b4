package pcd

import (
	"github.com/seqsense/pcgol/mat"
)

// Transform applies an affine transform to the coordinates of every point
// and returns the result as a new cloud. Non-coordinate fields are copied
// unchanged. The input cloud is not modified.
func Transform(pc *PointCloud, trans mat.Mat4) (*PointCloud, error) {
	out := &PointCloud{
		PointCloudHeader: pc.Clone(),
		Points:           pc.Points,
		Data:             append([]byte{}, pc.Data...),
	}
	it, err := out.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	for ; it.IsValid(); it.Incr() {
		it.SetVec3(trans.TransformAffine(it.Vec3()))
	}
	return out, nil
}
