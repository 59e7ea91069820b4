package pcd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	lzf "github.com/zhuyie/golzf"
)

var identityViewpoint = []float32{0, 0, 0, 1, 0, 0, 0}

// Write serializes the cloud in the requested DATA encoding. The output is
// the exact inverse of Parse: reading it back yields an equivalent cloud.
func Write(pc *PointCloud, w io.Writer, format Format) error {
	if err := pc.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err := writeHeader(pc, bw, format); err != nil {
		return err
	}

	var err error
	switch format {
	case Ascii:
		err = writeAscii(pc, bw)
	case Binary:
		_, err = bw.Write(pc.Data)
	case BinaryCompressed:
		err = writeCompressed(pc, bw)
	default:
		return &FormatError{Elem: "DATA", Msg: "unknown data format"}
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

func writeHeader(pc *PointCloud, bw *bufio.Writer, format Format) error {
	viewpoint := pc.Viewpoint
	if len(viewpoint) == 0 {
		viewpoint = identityViewpoint
	}
	vp := make([]string, len(viewpoint))
	for i, v := range viewpoint {
		vp[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	_, err := fmt.Fprintf(bw,
		"# .PCD v0.7 - Point Cloud Data file format\n"+
			"VERSION 0.7\n"+
			"FIELDS %s\n"+
			"SIZE %s\n"+
			"TYPE %s\n"+
			"COUNT %s\n"+
			"WIDTH %d\n"+
			"HEIGHT %d\n"+
			"VIEWPOINT %s\n"+
			"POINTS %d\n"+
			"DATA %s\n",
		strings.Join(pc.Fields, " "),
		joinInts(pc.Size),
		strings.Join(pc.Type, " "),
		joinInts(pc.Count),
		pc.Width,
		pc.Height,
		strings.Join(vp, " "),
		pc.Points,
		format,
	)
	return err
}

func joinInts(ns []int) string {
	ss := make([]string, len(ns))
	for i, n := range ns {
		ss[i] = strconv.Itoa(n)
	}
	return strings.Join(ss, " ")
}

func writeAscii(pc *PointCloud, bw *bufio.Writer) error {
	type column struct {
		offset int
		size   int
		typ    string
	}
	var cols []column
	offset := 0
	for i := range pc.Fields {
		for j := 0; j < pc.Count[i]; j++ {
			cols = append(cols, column{offset: offset, size: pc.Size[i], typ: pc.Type[i]})
			offset += pc.Size[i]
		}
	}

	stride := pc.Stride()
	for p := 0; p < pc.Points; p++ {
		rec := pc.Data[p*stride : (p+1)*stride]
		for i, c := range cols {
			if i > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(formatAsciiScalar(rec[c.offset:], c.typ, c.size)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

func formatAsciiScalar(b []byte, typ string, size int) string {
	switch typ {
	case "F":
		if size == 8 {
			return strconv.FormatFloat(
				math.Float64frombits(binary.LittleEndian.Uint64(b)), 'g', -1, 64)
		}
		return strconv.FormatFloat(
			float64(math.Float32frombits(binary.LittleEndian.Uint32(b))), 'g', -1, 32)
	case "I":
		switch size {
		case 1:
			return strconv.FormatInt(int64(int8(b[0])), 10)
		case 2:
			return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(b))), 10)
		case 4:
			return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(b))), 10)
		default:
			return strconv.FormatInt(int64(binary.LittleEndian.Uint64(b)), 10)
		}
	default:
		switch size {
		case 1:
			return strconv.FormatUint(uint64(b[0]), 10)
		case 2:
			return strconv.FormatUint(uint64(binary.LittleEndian.Uint16(b)), 10)
		case 4:
			return strconv.FormatUint(uint64(binary.LittleEndian.Uint32(b)), 10)
		default:
			return strconv.FormatUint(binary.LittleEndian.Uint64(b), 10)
		}
	}
}

func writeCompressed(pc *PointCloud, bw *bufio.Writer) error {
	// Reorder row-major records into the columnar layout expected by
	// binary_compressed, then LZF the whole payload.
	head := make([]int, len(pc.Fields))
	offset := make([]int, len(pc.Fields))
	width := make([]int, len(pc.Fields))
	var pos, off int
	for i := range pc.Fields {
		head[i] = pos
		offset[i] = off
		width[i] = pc.Size[i] * pc.Count[i]
		pos += width[i] * pc.Points
		off += width[i]
	}

	stride := pc.Stride()
	columnar := make([]byte, pc.Points*stride)
	for p := 0; p < pc.Points; p++ {
		for i := range head {
			w := width[i]
			from := p*stride + offset[i]
			to := head[i] + p*w
			copy(columnar[to:to+w], pc.Data[from:from+w])
		}
	}

	var compressed []byte
	if len(columnar) > 0 {
		buf := make([]byte, len(columnar)+len(columnar)/16+64+3)
		n, err := lzf.Compress(columnar, buf)
		if err != nil {
			return fmt.Errorf("pcd: compress: %w", err)
		}
		compressed = buf[:n]
	}

	if err := binary.Write(bw, binary.LittleEndian, int32(len(compressed))); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(len(columnar))); err != nil {
		return err
	}
	_, err := bw.Write(compressed)
	return err
}
