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

// Parse reads a PCD stream: the keyword header followed by an ascii, binary
// or binary_compressed body. Header keywords may appear in any order; DATA
// terminates the header. Blank lines, comments and unknown keywords are
// skipped.
func Parse(r io.Reader) (*PointCloud, error) {
	rb := bufio.NewReader(r)
	pc := &PointCloud{}

	var (
		format    Format
		hasFormat bool
		hasPoints bool
	)
	for !hasFormat {
		line, err := rb.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		atEOF := err == io.EOF
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			if atEOF {
				return nil, &FormatError{Elem: "DATA", Msg: "header ends before DATA"}
			}
			continue
		}
		if len(args) < 2 {
			return nil, &FormatError{Elem: args[0], Msg: "keyword without value"}
		}
		switch args[0] {
		case "VERSION":
			switch args[1] {
			case ".7", "0.7":
				pc.Version = 0.7
			default:
				return nil, &FormatError{Elem: "VERSION", Msg: "unsupported version " + args[1]}
			}
		case "FIELDS":
			pc.Fields = append([]string{}, args[1:]...)
		case "SIZE":
			pc.Size, err = atois(args[1:])
			if err != nil {
				return nil, &FormatError{Elem: "SIZE", Msg: err.Error()}
			}
		case "TYPE":
			pc.Type = append([]string{}, args[1:]...)
		case "COUNT":
			pc.Count, err = atois(args[1:])
			if err != nil {
				return nil, &FormatError{Elem: "COUNT", Msg: err.Error()}
			}
		case "WIDTH":
			pc.Width, err = strconv.Atoi(args[1])
			if err != nil {
				return nil, &FormatError{Elem: "WIDTH", Msg: err.Error()}
			}
		case "HEIGHT":
			pc.Height, err = strconv.Atoi(args[1])
			if err != nil {
				return nil, &FormatError{Elem: "HEIGHT", Msg: err.Error()}
			}
		case "VIEWPOINT":
			if len(args) != 8 {
				return nil, &FormatError{Elem: "VIEWPOINT", Msg: "must have 7 values"}
			}
			pc.Viewpoint = make([]float32, 7)
			for i, s := range args[1:] {
				f, err := strconv.ParseFloat(s, 32)
				if err != nil {
					return nil, &FormatError{Elem: "VIEWPOINT", Msg: err.Error()}
				}
				pc.Viewpoint[i] = float32(f)
			}
		case "POINTS":
			pc.Points, err = strconv.Atoi(args[1])
			if err != nil {
				return nil, &FormatError{Elem: "POINTS", Msg: err.Error()}
			}
			hasPoints = true
		case "DATA":
			switch args[1] {
			case "ascii":
				format = Ascii
			case "binary":
				format = Binary
			case "binary_compressed":
				format = BinaryCompressed
			default:
				return nil, &FormatError{Elem: "DATA", Msg: "unknown data format " + args[1]}
			}
			hasFormat = true
		}
	}

	if pc.Count == nil {
		pc.Count = make([]int, len(pc.Fields))
		for i := range pc.Count {
			pc.Count[i] = 1
		}
	}
	if err := pc.PointCloudHeader.validate(); err != nil {
		return nil, err
	}
	if !hasPoints {
		pc.Points = pc.Width * pc.Height
	}
	if pc.Width*pc.Height != pc.Points {
		return nil, &FormatError{
			Elem: "POINTS",
			Msg:  fmt.Sprintf("%d doesn't match WIDTH*HEIGHT = %d", pc.Points, pc.Width*pc.Height),
		}
	}

	switch format {
	case Ascii:
		if err := parseAscii(rb, pc); err != nil {
			return nil, err
		}
	case Binary:
		pc.Data = make([]byte, pc.Points*pc.Stride())
		if _, err := io.ReadFull(rb, pc.Data); err != nil {
			return nil, &FormatError{Elem: "DATA", Msg: "truncated binary body: " + err.Error()}
		}
	case BinaryCompressed:
		if err := parseCompressed(rb, pc); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

func atois(ss []string) ([]int, error) {
	out := make([]int, len(ss))
	for i, s := range ss {
		var err error
		out[i], err = strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseAscii(rb *bufio.Reader, pc *PointCloud) error {
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
	pc.Data = make([]byte, pc.Points*stride)
	for p := 0; p < pc.Points; {
		line, err := rb.ReadString('\n')
		if err == io.EOF && strings.TrimSpace(line) == "" {
			return &FormatError{Elem: "DATA", Msg: fmt.Sprintf("%d point records, expected %d", p, pc.Points)}
		}
		if err != nil && err != io.EOF {
			return err
		}
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != len(cols) {
			return &FormatError{
				Elem: "DATA",
				Msg:  fmt.Sprintf("point %d has %d values, expected %d", p, len(tokens), len(cols)),
			}
		}
		rec := pc.Data[p*stride : (p+1)*stride]
		for i, tok := range tokens {
			if err := parseAsciiScalar(rec[cols[i].offset:], tok, cols[i].typ, cols[i].size); err != nil {
				return &FormatError{Elem: "DATA", Msg: fmt.Sprintf("point %d: %v", p, err)}
			}
		}
		p++
	}
	return nil
}

func parseAsciiScalar(b []byte, tok, typ string, size int) error {
	switch typ {
	case "F":
		f, err := strconv.ParseFloat(tok, 8*size)
		if err != nil {
			return err
		}
		if size == 8 {
			binary.LittleEndian.PutUint64(b, math.Float64bits(f))
		} else {
			binary.LittleEndian.PutUint32(b, math.Float32bits(float32(f)))
		}
	case "I":
		n, err := strconv.ParseInt(tok, 10, 8*size)
		if err != nil {
			return err
		}
		putIntLE(b, size, uint64(n))
	default:
		n, err := strconv.ParseUint(tok, 10, 8*size)
		if err != nil {
			return err
		}
		putIntLE(b, size, n)
	}
	return nil
}

func putIntLE(b []byte, size int, n uint64) {
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

func parseCompressed(rb *bufio.Reader, pc *PointCloud) error {
	var nCompressed, nUncompressed int32
	if err := binary.Read(rb, binary.LittleEndian, &nCompressed); err != nil {
		return &FormatError{Elem: "DATA", Msg: "missing compressed size"}
	}
	if err := binary.Read(rb, binary.LittleEndian, &nUncompressed); err != nil {
		return &FormatError{Elem: "DATA", Msg: "missing uncompressed size"}
	}
	if nCompressed < 0 || nUncompressed < 0 {
		return &FormatError{Elem: "DATA", Msg: "negative body size"}
	}
	if int(nUncompressed) != pc.Points*pc.Stride() {
		return &FormatError{
			Elem: "DATA",
			Msg:  fmt.Sprintf("uncompressed size %d doesn't match %d points", nUncompressed, pc.Points),
		}
	}

	dec := make([]byte, nUncompressed)
	if nUncompressed > 0 {
		b := make([]byte, nCompressed)
		if _, err := io.ReadFull(rb, b); err != nil {
			return &FormatError{Elem: "DATA", Msg: "truncated compressed body: " + err.Error()}
		}
		n, err := lzf.Decompress(b, dec)
		if err != nil {
			return &FormatError{Elem: "DATA", Msg: "broken compressed body: " + err.Error()}
		}
		if n != int(nUncompressed) {
			return &FormatError{Elem: "DATA", Msg: "wrong uncompressed size"}
		}
	}

	// The decompressed payload is columnar: all values of the first field
	// for all points, then the second field, and so on.
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
	pc.Data = make([]byte, pc.Points*stride)
	for p := 0; p < pc.Points; p++ {
		for i := range head {
			w := width[i]
			to := p*stride + offset[i]
			from := head[i] + p*w
			copy(pc.Data[to:to+w], dec[from:from+w])
		}
	}
	return nil
}
