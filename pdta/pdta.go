// Package pdta implements the fixed-width record tables of the sound-bank
// hydra, the nine arrays of preset, instrument and sample rows stored in the
// pdta chunk.
//
// Each table kind is described by a Layout, an ordered list of typed fields
// with declared byte widths. A layout decodes a chunk payload into rows and
// encodes rows back into the exact same bytes, writing fields in declared
// order at declared widths.
package pdta

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// ErrMalformedTable reports a table payload whose length is zero or not a
// multiple of the declared row width, or a row value which cannot be stored
// at its declared width.
var ErrMalformedTable = errors.New("pdta: malformed table")

// Kind is the wire type of a single record field.
type Kind uint8

// Record field kinds.
const (
	// Unsigned little-endian integers.
	Uint8 Kind = iota
	Uint16
	Uint32
	// Signed little-endian integers.
	Int8
	Int16
	Int32
	// Fixed-length text, cut at the first zero byte and decoded as single
	// byte codepoints.
	Char
	// The two byte generator amount cell; see Amount.
	GenAmount
)

// A FieldSpec declares one field of a record layout.
type FieldSpec struct {
	// Field name, used by row accessors.
	Name string
	// Field width in bytes.
	Width int
	// Wire type of the field.
	Kind Kind
}

// A Layout declares the ordered, typed fields of one record table kind.
type Layout struct {
	// Chunk identifier of the table.
	Name string
	// Fixed row width in bytes, the sum of all field widths.
	RowWidth int
	fields   []FieldSpec
	index    map[string]int
}

// NewLayout returns a record layout with the given fields. The row width is
// the sum of the declared field widths.
func NewLayout(name string, fields ...FieldSpec) *Layout {
	l := &Layout{
		Name:   name,
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		l.RowWidth += f.Width
		l.index[f.Name] = i
	}
	return l
}

// Fields returns the declared fields of the layout in order.
func (l *Layout) Fields() []FieldSpec {
	return l.fields
}

func (l *Layout) fieldIndex(name string) int {
	i, ok := l.index[name]
	if !ok {
		panic(fmt.Sprintf("pdta: layout %q has no field %q", l.Name, name))
	}
	return i
}

// A Row is one decoded record of a fixed-width table. Index is the zero
// based position of the row within its table, used for cross-table
// references.
type Row struct {
	layout *Layout
	// Zero based row position within the table.
	Index int
	vals  []val
}

// val holds one decoded field value; integer and amount kinds use bits,
// text kinds use text.
type val struct {
	bits uint64
	text string
}

// NewRow returns a zero valued row of the layout.
func (l *Layout) NewRow() Row {
	return Row{layout: l, vals: make([]val, len(l.fields))}
}

// Uint returns the named unsigned integer field.
func (r Row) Uint(name string) uint64 {
	return r.vals[r.layout.fieldIndex(name)].bits
}

// Int returns the named signed integer field, sign extended from its
// declared width.
func (r Row) Int(name string) int64 {
	i := r.layout.fieldIndex(name)
	bits := r.vals[i].bits
	switch r.layout.fields[i].Width {
	case 1:
		return int64(int8(bits))
	case 2:
		return int64(int16(bits))
	default:
		return int64(int32(bits))
	}
}

// Text returns the named text field.
func (r Row) Text(name string) string {
	return r.vals[r.layout.fieldIndex(name)].text
}

// Amount returns the named generator amount field.
func (r Row) Amount(name string) Amount {
	return Amount(r.vals[r.layout.fieldIndex(name)].bits)
}

// SetUint sets the named unsigned integer field.
func (r *Row) SetUint(name string, v uint64) {
	r.vals[r.layout.fieldIndex(name)].bits = v
}

// SetInt sets the named signed integer field.
func (r *Row) SetInt(name string, v int64) {
	i := r.layout.fieldIndex(name)
	switch r.layout.fields[i].Width {
	case 1:
		r.vals[i].bits = uint64(uint8(v))
	case 2:
		r.vals[i].bits = uint64(uint16(v))
	default:
		r.vals[i].bits = uint64(uint32(v))
	}
}

// SetText sets the named text field.
func (r *Row) SetText(name, v string) {
	r.vals[r.layout.fieldIndex(name)].text = v
}

// SetAmount sets the named generator amount field.
func (r *Row) SetAmount(name string, v Amount) {
	r.vals[r.layout.fieldIndex(name)].bits = uint64(uint16(v))
}

// Decode decodes a table payload into rows. The payload length must be a
// non-zero multiple of the layout's row width; even a table with no
// semantic entries holds at least its terminator row.
func (l *Layout) Decode(payload []byte) ([]Row, error) {
	if len(payload) == 0 {
		return nil, errors.Wrapf(ErrMalformedTable, "%s: empty payload", l.Name)
	}
	if len(payload)%l.RowWidth != 0 {
		return nil, errors.Wrapf(ErrMalformedTable, "%s: payload length %d is not a multiple of row width %d", l.Name, len(payload), l.RowWidth)
	}
	rows := make([]Row, 0, len(payload)/l.RowWidth)
	for off := 0; off < len(payload); off += l.RowWidth {
		row := l.NewRow()
		row.Index = len(rows)
		b := payload[off : off+l.RowWidth]
		for i, f := range l.fields {
			switch f.Kind {
			case Char:
				text, err := decodeText(b[:f.Width])
				if err != nil {
					return nil, errors.Wrapf(ErrMalformedTable, "%s: row %d field %q: %v", l.Name, row.Index, f.Name, err)
				}
				row.vals[i].text = text
			default:
				row.vals[i].bits = getUint(b[:f.Width])
			}
			b = b[f.Width:]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Encode encodes rows into a table payload, the exact inverse of Decode.
func (l *Layout) Encode(rows []Row) ([]byte, error) {
	payload := make([]byte, 0, len(rows)*l.RowWidth)
	for j, row := range rows {
		for i, f := range l.fields {
			switch f.Kind {
			case Char:
				b, err := encodeText(row.vals[i].text, f.Width)
				if err != nil {
					return nil, errors.Wrapf(ErrMalformedTable, "%s: row %d field %q: %v", l.Name, j, f.Name, err)
				}
				payload = append(payload, b...)
			default:
				if bits := row.vals[i].bits; bits>>(8*uint(f.Width)) != 0 {
					return nil, errors.Wrapf(ErrMalformedTable, "%s: row %d field %q: value %d exceeds %d byte width", l.Name, j, f.Name, bits, f.Width)
				}
				payload = appendUint(payload, row.vals[i].bits, f.Width)
			}
		}
	}
	return payload, nil
}

// getUint reads a little-endian unsigned integer of len(b) bytes.
func getUint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// appendUint writes a little-endian unsigned integer at the given width.
func appendUint(payload []byte, v uint64, width int) []byte {
	for i := 0; i < width; i++ {
		payload = append(payload, byte(v))
		v >>= 8
	}
	return payload
}

// Bank names use single byte codepoints; ISO 8859-1 keeps the mapping
// bidirectional for the byte values above ASCII found in third-party files.
var (
	nameDecoder = charmap.ISO8859_1.NewDecoder()
	nameEncoder = charmap.ISO8859_1.NewEncoder()
)

// decodeText decodes a fixed-width text field, cut at the first zero byte.
func decodeText(b []byte) (string, error) {
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	s, err := nameDecoder.Bytes(b)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

// encodeText encodes a text field, padded with zero bytes to the fixed
// width.
func encodeText(s string, width int) ([]byte, error) {
	b, err := nameEncoder.Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	if len(b) > width {
		return nil, errors.Errorf("text %q exceeds field width %d", s, width)
	}
	return append(b, make([]byte, width-len(b))...), nil
}
