package pcd

import (
	"github.com/pcl-go/pcl/pcd/internal/float"
)

// PointCloudHeader describes the field schema and organization of a cloud.
// Fields, Size, Type and Count are parallel slices; their order fixes both
// the ascii column order and the binary byte offsets.
type PointCloudHeader struct {
	Version   float32
	Fields    []string
	Size      []int
	Type      []string
	Count     []int
	Width     int
	Height    int
	Viewpoint []float32
}

func (h *PointCloudHeader) Clone() PointCloudHeader {
	return PointCloudHeader{
		Version:   h.Version,
		Fields:    append([]string{}, h.Fields...),
		Size:      append([]int{}, h.Size...),
		Type:      append([]string{}, h.Type...),
		Count:     append([]int{}, h.Count...),
		Width:     h.Width,
		Height:    h.Height,
		Viewpoint: append([]float32{}, h.Viewpoint...),
	}
}

// Stride returns the number of bytes per point record.
func (h *PointCloudHeader) Stride() int {
	var stride int
	for i := range h.Fields {
		stride += h.Count[i] * h.Size[i]
	}
	return stride
}

func (h *PointCloudHeader) HasField(name string) bool {
	for _, fn := range h.Fields {
		if fn == name {
			return true
		}
	}
	return false
}

// fieldIndex returns the position and byte offset of the named field.
func (h *PointCloudHeader) fieldIndex(name string) (index, offset int, ok bool) {
	for i, fn := range h.Fields {
		if fn == name {
			return i, offset, true
		}
		offset += h.Size[i] * h.Count[i]
	}
	return 0, 0, false
}

func validScalar(typ string, size int) bool {
	switch typ {
	case "I", "U":
		switch size {
		case 1, 2, 4, 8:
			return true
		}
	case "F":
		switch size {
		case 4, 8:
			return true
		}
	}
	return false
}

func (h *PointCloudHeader) validate() error {
	if len(h.Fields) == 0 {
		return &FormatError{Elem: "FIELDS", Msg: "no fields"}
	}
	if len(h.Size) != len(h.Fields) {
		return &FormatError{Elem: "SIZE", Msg: "doesn't match number of fields"}
	}
	if len(h.Type) != len(h.Fields) {
		return &FormatError{Elem: "TYPE", Msg: "doesn't match number of fields"}
	}
	if len(h.Count) != len(h.Fields) {
		return &FormatError{Elem: "COUNT", Msg: "doesn't match number of fields"}
	}
	for i, name := range h.Fields {
		for _, prev := range h.Fields[:i] {
			if prev == name {
				return &FormatError{Elem: "FIELDS", Msg: "duplicated field " + name}
			}
		}
		if !validScalar(h.Type[i], h.Size[i]) {
			return &FormatError{Elem: "TYPE", Msg: "unsupported scalar " + h.Type[i] + " of field " + name}
		}
		if h.Count[i] < 1 {
			return &FormatError{Elem: "COUNT", Msg: "non-positive count of field " + name}
		}
	}
	if len(h.Viewpoint) != 0 && len(h.Viewpoint) != 7 {
		return &FormatError{Elem: "VIEWPOINT", Msg: "must have 7 values"}
	}
	return nil
}

// PointCloud is an in-memory cloud: a schema plus Points records stored
// row-major in Data.
type PointCloud struct {
	PointCloudHeader
	Points int

	Data      []byte
	dataFloat []float32
}

// Validate checks that the schema, organization and backing buffer agree.
func (pc *PointCloud) Validate() error {
	if err := pc.PointCloudHeader.validate(); err != nil {
		return err
	}
	if pc.Width*pc.Height != pc.Points {
		return &FormatError{Elem: "POINTS", Msg: "doesn't match WIDTH*HEIGHT"}
	}
	if len(pc.Data) != pc.Points*pc.Stride() {
		return &FormatError{Elem: "DATA", Msg: "wrong data length"}
	}
	return nil
}

func (pc *PointCloud) Float32Iterator(name string) (Float32Iterator, error) {
	i, offset, ok := pc.fieldIndex(name)
	if !ok {
		return nil, ErrFieldNotFound
	}
	if pc.Size[i] != 4 {
		return nil, ErrFieldSize
	}
	if pc.Stride()&3 == 0 && offset&3 == 0 {
		// Aligned
		if pc.dataFloat == nil {
			pc.dataFloat = float.ByteSliceAsFloat32Slice(pc.Data)
		}
		return &float32Iterator{
			data:   pc.dataFloat,
			pos:    offset / 4,
			stride: pc.Stride() / 4,
		}, nil
	}
	return &binaryFloat32Iterator{
		binaryIterator: binaryIterator{
			data:   pc.Data,
			pos:    offset,
			stride: pc.Stride(),
			width:  4,
		},
	}, nil
}

func (pc *PointCloud) Float32Iterators(names ...string) ([]Float32Iterator, error) {
	var its []Float32Iterator
	for _, name := range names {
		it, err := pc.Float32Iterator(name)
		if err != nil {
			return nil, err
		}
		its = append(its, it)
	}
	return its, nil
}

func (pc *PointCloud) Uint32Iterator(name string) (Uint32Iterator, error) {
	i, offset, ok := pc.fieldIndex(name)
	if !ok {
		return nil, ErrFieldNotFound
	}
	if pc.Size[i] != 4 {
		return nil, ErrFieldSize
	}
	return &binaryUint32Iterator{
		binaryIterator: binaryIterator{
			data:   pc.Data,
			pos:    offset,
			stride: pc.Stride(),
			width:  4,
		},
	}, nil
}

// FieldIterator returns a schema-agnostic iterator over the named field,
// exposing its count scalars as float64.
func (pc *PointCloud) FieldIterator(name string) (FieldIterator, error) {
	i, offset, ok := pc.fieldIndex(name)
	if !ok {
		return nil, ErrFieldNotFound
	}
	return &fieldIterator{
		binaryIterator: binaryIterator{
			data:   pc.Data,
			pos:    offset,
			stride: pc.Stride(),
			width:  pc.Size[i] * pc.Count[i],
		},
		typ:  pc.Type[i],
		size: pc.Size[i],
	}, nil
}

func (pc *PointCloud) Vec3Iterator() (Vec3Iterator, error) {
	i, _, ok := pc.fieldIndex("x")
	if !ok || i+2 >= len(pc.Fields) ||
		pc.Fields[i+1] != "y" || pc.Fields[i+2] != "z" {
		return pc.naiveVec3Iterator()
	}
	for _, j := range []int{i, i + 1, i + 2} {
		if pc.Type[j] != "F" || pc.Size[j] != 4 || pc.Count[j] != 1 {
			return pc.naiveVec3Iterator()
		}
	}
	it, err := pc.Float32Iterator("x")
	if err != nil {
		return nil, err
	}
	vit, ok := it.(*float32Iterator)
	if !ok {
		return pc.naiveVec3Iterator()
	}
	return vit, nil
}

func (pc *PointCloud) naiveVec3Iterator() (Vec3Iterator, error) {
	its, err := pc.Float32Iterators("x", "y", "z")
	if err != nil {
		return nil, err
	}
	return naiveVec3Iterator{its[0], its[1], its[2]}, nil
}
