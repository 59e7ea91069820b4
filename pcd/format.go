package pcd

// Format is the DATA encoding of a PCD body.
type Format int

const (
	Ascii Format = iota
	Binary
	BinaryCompressed
)

func (f Format) String() string {
	switch f {
	case Ascii:
		return "ascii"
	case Binary:
		return "binary"
	case BinaryCompressed:
		return "binary_compressed"
	}
	return "unknown"
}
