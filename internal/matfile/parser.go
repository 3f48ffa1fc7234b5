package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse reads a Level 5 MAT file from r.
func Parse(r io.Reader) (*File, error) {
	p := &parser{r: r}
	return p.parse()
}

// ParseFile parses a Level 5 MAT file from disk.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() {
		_ = f.Close() // Ignore close error on read-only file.
	}()

	return Parse(f)
}

type parser struct {
	r     io.Reader
	order binary.ByteOrder
}

func (p *parser) parse() (*File, error) {
	file := &File{}

	if err := p.parseHeader(&file.Header); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	file.order = p.order

	for i := 0; ; i++ {
		typ, data, err := readElement(p.r, p.order)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read element %d: %w", i, err)
		}

		arr, err := p.parseTopLevel(typ, data)
		if err != nil {
			return nil, fmt.Errorf("parse element %d: %w", i, err)
		}
		file.Arrays = append(file.Arrays, arr)
	}

	return file, nil
}

func (p *parser) parseHeader(h *Header) error {
	var buf [headerSize]byte
	if _, err := io.ReadFull(p.r, buf[:]); err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	// The endianness indicator holds the int16 value of "MI". Read as
	// bytes it comes out "IM" for little-endian files, "MI" for
	// big-endian ones.
	switch {
	case buf[126] == 'I' && buf[127] == 'M':
		p.order = binary.LittleEndian
	case buf[126] == 'M' && buf[127] == 'I':
		p.order = binary.BigEndian
	default:
		return fmt.Errorf("invalid endian indicator: % X (expected MI)", buf[126:128])
	}

	h.Version = p.order.Uint16(buf[124:126])
	if h.Version != Version {
		return fmt.Errorf("unsupported version: 0x%04X (expected 0x%04X)", h.Version, Version)
	}

	h.Description = strings.TrimRight(string(buf[:116]), " \x00")
	return nil
}

// parseTopLevel parses one top-level element, transparently inflating
// compressed ones.
func (p *parser) parseTopLevel(typ ElementType, data []byte) (*Array, error) {
	if typ == MiCompressed {
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open compressed element: %w", err)
		}
		inflated, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("inflate element: %w", err)
		}
		if err := zr.Close(); err != nil {
			return nil, fmt.Errorf("inflate element: %w", err)
		}
		typ, data, err = readElement(bytes.NewReader(inflated), p.order)
		if err != nil {
			return nil, fmt.Errorf("read inflated element: %w", err)
		}
	}

	if typ != MiMatrix {
		return nil, fmt.Errorf("unexpected top-level element type %s", typ)
	}
	return p.parseMatrix(data)
}

func (p *parser) parseMatrix(data []byte) (*Array, error) {
	r := bytes.NewReader(data)
	arr := &Array{order: p.order}

	// Array flags: class in the low byte, flag bits in the next.
	typ, fdata, err := readElement(r, p.order)
	if err != nil {
		return nil, fmt.Errorf("read array flags: %w", err)
	}
	if typ != MiUint32 || len(fdata) < 8 {
		return nil, fmt.Errorf("bad array flags element: type %s, %d bytes", typ, len(fdata))
	}
	word := p.order.Uint32(fdata[0:4])
	arr.Class = ArrayClass(word & 0xFF)
	flags := uint8((word >> 8) & 0xFF)
	if flags&flagComplex != 0 {
		return nil, fmt.Errorf("complex arrays not supported")
	}

	// Dimensions.
	typ, ddata, err := readElement(r, p.order)
	if err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if typ != MiInt32 {
		return nil, fmt.Errorf("bad dimensions element type: %s", typ)
	}
	arr.Dims = make([]int, len(ddata)/4)
	for i := range arr.Dims {
		arr.Dims[i] = int(int32(p.order.Uint32(ddata[i*4:])))
	}

	// Name.
	typ, ndata, err := readElement(r, p.order)
	if err != nil {
		return nil, fmt.Errorf("read array name: %w", err)
	}
	if typ != MiInt8 {
		return nil, fmt.Errorf("bad array name element type: %s", typ)
	}
	arr.Name = string(ndata)

	switch arr.Class {
	case MxStruct:
		if err := p.parseStructFields(r, arr); err != nil {
			return nil, fmt.Errorf("parse struct %q: %w", arr.Name, err)
		}
	case MxCell, MxObject, MxSparse:
		return nil, fmt.Errorf("array %q: class %s not supported", arr.Name, arr.Class)
	default:
		// Numeric and char arrays: the real part may be stored in any
		// scalar element type, independent of the array class.
		typ, pdata, err := readElement(r, p.order)
		if err != nil {
			return nil, fmt.Errorf("read data of %q: %w", arr.Name, err)
		}
		if typ.Size() == 0 {
			return nil, fmt.Errorf("array %q: bad storage type %s", arr.Name, typ)
		}
		arr.Type = typ
		arr.Data = pdata
	}

	return arr, nil
}

func (p *parser) parseStructFields(r io.Reader, arr *Array) error {
	if arr.NumElements() != 1 {
		return fmt.Errorf("struct arrays larger than 1x1 not supported (dims %v)", arr.Dims)
	}

	// Field name length.
	typ, fldata, err := readElement(r, p.order)
	if err != nil {
		return fmt.Errorf("read field name length: %w", err)
	}
	if typ != MiInt32 || len(fldata) < 4 {
		return fmt.Errorf("bad field name length element: type %s, %d bytes", typ, len(fldata))
	}
	nameLen := int(int32(p.order.Uint32(fldata)))
	if nameLen <= 0 {
		return fmt.Errorf("bad field name length: %d", nameLen)
	}

	// Packed, NUL-padded field names.
	typ, names, err := readElement(r, p.order)
	if err != nil {
		return fmt.Errorf("read field names: %w", err)
	}
	if typ != MiInt8 {
		return fmt.Errorf("bad field names element type: %s", typ)
	}
	if len(names)%nameLen != 0 {
		return fmt.Errorf("field names length %d not a multiple of %d", len(names), nameLen)
	}

	nFields := len(names) / nameLen
	arr.Fields = make(map[string]*Array, nFields)
	for i := 0; i < nFields; i++ {
		name := strings.TrimRight(string(names[i*nameLen:(i+1)*nameLen]), "\x00")

		typ, edata, err := readElement(r, p.order)
		if err != nil {
			return fmt.Errorf("read field %q: %w", name, err)
		}
		if typ != MiMatrix {
			return fmt.Errorf("field %q: unexpected element type %s", name, typ)
		}
		sub, err := p.parseMatrix(edata)
		if err != nil {
			return fmt.Errorf("parse field %q: %w", name, err)
		}
		arr.Fields[name] = sub
	}

	return nil
}

// readElement reads one tagged data element, handling the packed
// small-element format and trailing 8-byte alignment padding.
func readElement(r io.Reader, order binary.ByteOrder) (ElementType, []byte, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil, io.EOF
		}
		return 0, nil, fmt.Errorf("read tag: %w", err)
	}

	first := order.Uint32(head[0:4])

	// Small data element format: size and type share the first word,
	// the payload sits in the second. No padding follows.
	if small := first >> 16; small != 0 {
		if small > 4 {
			return 0, nil, fmt.Errorf("small element size %d out of range", small)
		}
		data := make([]byte, small)
		copy(data, head[4:4+small])
		return ElementType(first & 0xFFFF), data, nil
	}

	typ := ElementType(first)
	size := order.Uint32(head[4:8])
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return 0, nil, fmt.Errorf("read %d data bytes: %w", size, err)
	}

	// Compressed elements are written without alignment padding.
	if typ != MiCompressed {
		if pad := (8 - int(size)%8) % 8; pad > 0 {
			if _, err := io.CopyN(io.Discard, r, int64(pad)); err != nil && !errors.Is(err, io.EOF) {
				return 0, nil, fmt.Errorf("skip padding: %w", err)
			}
		}
	}

	return typ, data, nil
}
