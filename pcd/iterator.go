package pcd

import (
	"encoding/binary"
	"math"

	"github.com/seqsense/pcgol/mat"
)

type Float32Iterator interface {
	Incr()
	IsValid() bool
	Float32() float32
	SetFloat32(float32)
}

type Uint32Iterator interface {
	Incr()
	IsValid() bool
	Uint32() uint32
	SetUint32(uint32)
}

type Vec3Iterator interface {
	Incr()
	IsValid() bool
	Vec3() mat.Vec3
	SetVec3(mat.Vec3)
}

// FieldIterator iterates over one field of every point, exposing each of the
// field's count scalars as float64. Values of 64-bit integer fields beyond
// 2^53 lose precision; use the binary codec for exact round-trips.
type FieldIterator interface {
	Incr()
	IsValid() bool
	Value(i int) float64
	SetValue(i int, v float64)
}

type binaryIterator struct {
	data   []byte
	pos    int
	stride int
	width  int
}

func (i *binaryIterator) Incr() {
	i.pos += i.stride
}

func (i *binaryIterator) IsValid() bool {
	return i.pos+i.width <= len(i.data)
}

type binaryFloat32Iterator struct {
	binaryIterator
}

func (i *binaryFloat32Iterator) Float32() float32 {
	return math.Float32frombits(
		binary.LittleEndian.Uint32(i.data[i.pos : i.pos+4]),
	)
}

func (i *binaryFloat32Iterator) SetFloat32(v float32) {
	binary.LittleEndian.PutUint32(i.data[i.pos:i.pos+4], math.Float32bits(v))
}

type binaryUint32Iterator struct {
	binaryIterator
}

func (i *binaryUint32Iterator) Uint32() uint32 {
	return binary.LittleEndian.Uint32(i.data[i.pos : i.pos+4])
}

func (i *binaryUint32Iterator) SetUint32(v uint32) {
	binary.LittleEndian.PutUint32(i.data[i.pos:i.pos+4], v)
}

type float32Iterator struct {
	data   []float32
	pos    int
	stride int
}

func (i *float32Iterator) Incr() {
	i.pos += i.stride
}

func (i *float32Iterator) IsValid() bool {
	return i.pos < len(i.data)
}

func (i *float32Iterator) Float32() float32 {
	return i.data[i.pos]
}

func (i *float32Iterator) SetFloat32(v float32) {
	i.data[i.pos] = v
}

func (i *float32Iterator) Vec3() mat.Vec3 {
	return mat.Vec3{i.data[i.pos], i.data[i.pos+1], i.data[i.pos+2]}
}

func (i *float32Iterator) SetVec3(v mat.Vec3) {
	i.data[i.pos] = v[0]
	i.data[i.pos+1] = v[1]
	i.data[i.pos+2] = v[2]
}

type naiveVec3Iterator [3]Float32Iterator

func (i naiveVec3Iterator) IsValid() bool {
	return i[0].IsValid() && i[1].IsValid() && i[2].IsValid()
}

func (i naiveVec3Iterator) Incr() {
	i[0].Incr()
	i[1].Incr()
	i[2].Incr()
}

func (i naiveVec3Iterator) Vec3() mat.Vec3 {
	return mat.Vec3{i[0].Float32(), i[1].Float32(), i[2].Float32()}
}

func (i naiveVec3Iterator) SetVec3(v mat.Vec3) {
	i[0].SetFloat32(v[0])
	i[1].SetFloat32(v[1])
	i[2].SetFloat32(v[2])
}

type fieldIterator struct {
	binaryIterator
	typ  string
	size int
}

func (i *fieldIterator) Value(j int) float64 {
	return decodeScalar(i.data[i.pos+j*i.size:], i.typ, i.size)
}

func (i *fieldIterator) SetValue(j int, v float64) {
	encodeScalar(i.data[i.pos+j*i.size:], i.typ, i.size, v)
}

func decodeScalar(b []byte, typ string, size int) float64 {
	switch typ {
	case "F":
		if size == 8 {
			return math.Float64frombits(binary.LittleEndian.Uint64(b))
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case "I":
		switch size {
		case 1:
			return float64(int8(b[0]))
		case 2:
			return float64(int16(binary.LittleEndian.Uint16(b)))
		case 4:
			return float64(int32(binary.LittleEndian.Uint32(b)))
		default:
			return float64(int64(binary.LittleEndian.Uint64(b)))
		}
	default:
		switch size {
		case 1:
			return float64(b[0])
		case 2:
			return float64(binary.LittleEndian.Uint16(b))
		case 4:
			return float64(binary.LittleEndian.Uint32(b))
		default:
			return float64(binary.LittleEndian.Uint64(b))
		}
	}
}

func encodeScalar(b []byte, typ string, size int, v float64) {
	switch typ {
	case "F":
		if size == 8 {
			binary.LittleEndian.PutUint64(b, math.Float64bits(v))
			return
		}
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	case "I":
		n := int64(v)
		switch size {
		case 1:
			b[0] = byte(n)
		case 2:
			binary.LittleEndian.PutUint16(b, uint16(n))
		case 4:
			binary.LittleEndian.PutUint32(b, uint32(n))
		default:
			binary.LittleEndian.PutUint64(b, uint64(n))
		}
	default:
		if v < 0 {
			v = 0
		}
		n := uint64(v)
		switch size {
		case 1:
			b[0] = byte(n)
		case 2:
			binary.LittleEndian.PutUint16(b, uint16(n))
		case 4:
			binary.LittleEndian.PutUint32(b, uint32(n))
		default:
			binary.LittleEndian.PutUint64(b, n)
		}
	}
}
