package filter

import (
	"github.com/pcl-go/pcl/pcd"
)

type Filter interface {
	Filter(*pcd.PointCloud) (*pcd.PointCloud, error)
}
