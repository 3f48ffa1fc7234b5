// Package matfile provides MAT-File Level 5 container parsing.
//
// Level 5 is the binary format produced by MATLAB's save command (v6/v7
// without -v7.3) and the format the EMNIST archive ships its dataset in.
// This package parses the subset needed for dataset archives: numeric
// arrays, 1x1 struct arrays, character arrays, and zlib-compressed
// elements. Arrays are accessed by name and struct fields by field name
// rather than by nested positional indices.
//
// Format reference: "MAT-File Format" (MathWorks), Level 5.
package matfile

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ElementType identifies the storage type of a data element (mi types).
type ElementType uint32

// Data element types as defined in the Level 5 specification.
const (
	MiInt8       ElementType = 1
	MiUint8      ElementType = 2
	MiInt16      ElementType = 3
	MiUint16     ElementType = 4
	MiInt32      ElementType = 5
	MiUint32     ElementType = 6
	MiSingle     ElementType = 7
	MiDouble     ElementType = 9
	MiInt64      ElementType = 12
	MiUint64     ElementType = 13
	MiMatrix     ElementType = 14
	MiCompressed ElementType = 15
	MiUTF8       ElementType = 16
	MiUTF16      ElementType = 17
	MiUTF32      ElementType = 18
)

func (t ElementType) String() string {
	switch t {
	case MiInt8:
		return "miINT8"
	case MiUint8:
		return "miUINT8"
	case MiInt16:
		return "miINT16"
	case MiUint16:
		return "miUINT16"
	case MiInt32:
		return "miINT32"
	case MiUint32:
		return "miUINT32"
	case MiSingle:
		return "miSINGLE"
	case MiDouble:
		return "miDOUBLE"
	case MiInt64:
		return "miINT64"
	case MiUint64:
		return "miUINT64"
	case MiMatrix:
		return "miMATRIX"
	case MiCompressed:
		return "miCOMPRESSED"
	case MiUTF8:
		return "miUTF8"
	case MiUTF16:
		return "miUTF16"
	case MiUTF32:
		return "miUTF32"
	default:
		return fmt.Sprintf("miUNKNOWN(%d)", uint32(t))
	}
}

// Size returns the element size in bytes, or 0 for non-scalar types.
func (t ElementType) Size() int {
	switch t {
	case MiInt8, MiUint8, MiUTF8:
		return 1
	case MiInt16, MiUint16, MiUTF16:
		return 2
	case MiInt32, MiUint32, MiSingle, MiUTF32:
		return 4
	case MiDouble, MiInt64, MiUint64:
		return 8
	default:
		return 0
	}
}

// ArrayClass identifies the MATLAB class of an array (mx classes).
type ArrayClass uint8

// Array classes as defined in the Level 5 specification.
const (
	MxCell   ArrayClass = 1
	MxStruct ArrayClass = 2
	MxObject ArrayClass = 3
	MxChar   ArrayClass = 4
	MxSparse ArrayClass = 5
	MxDouble ArrayClass = 6
	MxSingle ArrayClass = 7
	MxInt8   ArrayClass = 8
	MxUint8  ArrayClass = 9
	MxInt16  ArrayClass = 10
	MxUint16 ArrayClass = 11
	MxInt32  ArrayClass = 12
	MxUint32 ArrayClass = 13
	MxInt64  ArrayClass = 14
	MxUint64 ArrayClass = 15
)

func (c ArrayClass) String() string {
	switch c {
	case MxCell:
		return "mxCELL"
	case MxStruct:
		return "mxSTRUCT"
	case MxObject:
		return "mxOBJECT"
	case MxChar:
		return "mxCHAR"
	case MxSparse:
		return "mxSPARSE"
	case MxDouble:
		return "mxDOUBLE"
	case MxSingle:
		return "mxSINGLE"
	case MxInt8:
		return "mxINT8"
	case MxUint8:
		return "mxUINT8"
	case MxInt16:
		return "mxINT16"
	case MxUint16:
		return "mxUINT16"
	case MxInt32:
		return "mxINT32"
	case MxUint32:
		return "mxUINT32"
	case MxInt64:
		return "mxINT64"
	case MxUint64:
		return "mxUINT64"
	default:
		return fmt.Sprintf("mxUNKNOWN(%d)", uint8(c))
	}
}

// Array flag bits stored in the array-flags subelement.
const (
	flagLogical = 0x02
	flagGlobal  = 0x04
	flagComplex = 0x08
)

// Version is the only Level 5 header version this package accepts.
const Version uint16 = 0x0100

// headerSize is the fixed size of the Level 5 file header.
const headerSize = 128

// Header holds the parsed file header.
type Header struct {
	// Description is the 116-byte human-readable header text, trimmed.
	Description string
	Version     uint16
}

// File is a parsed MAT file: a flat collection of named top-level arrays.
type File struct {
	Header Header
	Arrays []*Array

	order binary.ByteOrder
}

// Array returns the top-level array with the given name.
func (f *File) Array(name string) (*Array, error) {
	for _, a := range f.Arrays {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("matfile: no array %q (have %v)", name, f.names())
}

func (f *File) names() []string {
	names := make([]string, len(f.Arrays))
	for i, a := range f.Arrays {
		names[i] = a.Name
	}
	return names
}

// Array is a single MATLAB array. Numeric and char arrays carry their
// real-part storage in Data (column-major, encoded per Type); struct
// arrays carry their fields in Fields instead.
type Array struct {
	Name  string
	Class ArrayClass
	Dims  []int

	// Numeric / char arrays.
	Type ElementType // storage type of the real part, not the class
	Data []byte

	// Struct arrays (1x1 only).
	Fields map[string]*Array

	order binary.ByteOrder
}

// Rows returns the first dimension, or 0 for empty arrays.
func (a *Array) Rows() int {
	if len(a.Dims) == 0 {
		return 0
	}
	return a.Dims[0]
}

// Cols returns the second dimension, or 0 for empty arrays.
func (a *Array) Cols() int {
	if len(a.Dims) < 2 {
		return 0
	}
	return a.Dims[1]
}

// NumElements returns the product of all dimensions.
func (a *Array) NumElements() int {
	if len(a.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range a.Dims {
		n *= d
	}
	return n
}

// IsStruct reports whether the array is a struct array.
func (a *Array) IsStruct() bool { return a.Class == MxStruct }

// Field returns the named field of a struct array.
func (a *Array) Field(name string) (*Array, error) {
	if !a.IsStruct() {
		return nil, fmt.Errorf("matfile: array %q is %s, not a struct", a.Name, a.Class)
	}
	f, ok := a.Fields[name]
	if !ok {
		return nil, fmt.Errorf("matfile: struct %q has no field %q", a.Name, name)
	}
	return f, nil
}

// Bytes returns the raw column-major element storage. Callers must
// check Type before reinterpreting it.
func (a *Array) Bytes() []byte { return a.Data }

// FloatAt returns element (i, j) as float64. Storage is column-major,
// so element (i, j) lives at linear index j*Rows()+i.
func (a *Array) FloatAt(i, j int) float64 {
	return a.floatAtIndex(j*a.Rows() + i)
}

// IntAt returns element (i, j) truncated to int.
func (a *Array) IntAt(i, j int) int {
	return int(a.FloatAt(i, j))
}

func (a *Array) floatAtIndex(idx int) float64 {
	size := a.Type.Size()
	off := idx * size
	b := a.Data[off : off+size]
	switch a.Type {
	case MiInt8:
		return float64(int8(b[0]))
	case MiUint8, MiUTF8:
		return float64(b[0])
	case MiInt16:
		return float64(int16(a.order.Uint16(b)))
	case MiUint16, MiUTF16:
		return float64(a.order.Uint16(b))
	case MiInt32:
		return float64(int32(a.order.Uint32(b)))
	case MiUint32:
		return float64(a.order.Uint32(b))
	case MiSingle:
		return float64(math.Float32frombits(a.order.Uint32(b)))
	case MiDouble:
		return math.Float64frombits(a.order.Uint64(b))
	case MiInt64:
		return float64(int64(a.order.Uint64(b)))
	case MiUint64:
		return float64(a.order.Uint64(b))
	default:
		panic(fmt.Sprintf("matfile: FloatAt on storage type %s", a.Type))
	}
}
