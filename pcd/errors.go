package pcd

import "errors"

// FormatError indicates a malformed or internally inconsistent PCD stream.
// Elem names the header keyword or body section that failed.
type FormatError struct {
	Elem string
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Elem == "" {
		return "pcd: " + e.Msg
	}
	return "pcd: " + e.Elem + ": " + e.Msg
}

var (
	ErrFieldNotFound = errors.New("pcd: invalid field name")
	ErrFieldSize     = errors.New("pcd: unexpected field size")
)
