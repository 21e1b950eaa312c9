// Package tuple implements the fixed-schema row type stored in table heap
// pages: an ordered list of typed Values, serialized to a schema-derived
// fixed byte width so every tuple of a given schema occupies the same
// slot size — the same "no variable-length layout" simplification
// internal/bptpage makes for index entries, applied to rows.
package tuple

import "encoding/binary"

// Kind tags which field of a Value is meaningful.
type Kind uint8

const (
	KindInteger Kind = iota + 1
	KindVarchar
)

// VarcharMaxLen bounds every Varchar value so its on-page slot is fixed
// width; longer values are truncated on encode.
const VarcharMaxLen = 32

// Value is a single column's value. Exactly one of Integer/Varchar is
// meaningful, selected by Kind.
type Value struct {
	Kind    Kind
	Integer int64
	Varchar string
}

// Int constructs an Integer value.
func Int(v int64) Value { return Value{Kind: KindInteger, Integer: v} }

// Str constructs a Varchar value.
func Str(v string) Value { return Value{Kind: KindVarchar, Varchar: v} }

// Schema is an ordered list of column kinds shared by every Tuple of one
// table; it is the sole source of truth for a tuple's on-page width and
// layout.
type Schema []Kind

func fieldWidth(k Kind) int {
	switch k {
	case KindInteger:
		return 8
	case KindVarchar:
		return 4 + VarcharMaxLen
	default:
		return 0
	}
}

// Width returns the fixed byte width of any tuple conforming to s.
func (s Schema) Width() int {
	w := 0
	for _, k := range s {
		w += fieldWidth(k)
	}
	return w
}

// Tuple is a fixed-schema row: an ordered list of Values, one per column
// of its schema.
type Tuple struct {
	Values []Value
}

// Encode writes t's columns into buf (which must be at least s.Width()
// bytes) in schema order.
func (s Schema) Encode(t Tuple, buf []byte) {
	off := 0
	for i, k := range s {
		v := t.Values[i]
		switch k {
		case KindInteger:
			binary.LittleEndian.PutUint64(buf[off:off+8], uint64(v.Integer))
			off += 8
		case KindVarchar:
			b := []byte(v.Varchar)
			if len(b) > VarcharMaxLen {
				b = b[:VarcharMaxLen]
			}
			binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(b)))
			n := copy(buf[off+4:off+4+VarcharMaxLen], b)
			for i := off + 4 + n; i < off+4+VarcharMaxLen; i++ {
				buf[i] = 0
			}
			off += 4 + VarcharMaxLen
		}
	}
}

// Decode reads a Tuple conforming to s out of buf.
func (s Schema) Decode(buf []byte) Tuple {
	values := make([]Value, len(s))
	off := 0
	for i, k := range s {
		switch k {
		case KindInteger:
			values[i] = Int(int64(binary.LittleEndian.Uint64(buf[off : off+8])))
			off += 8
		case KindVarchar:
			n := binary.LittleEndian.Uint32(buf[off : off+4])
			values[i] = Str(string(buf[off+4 : off+4+int(n)]))
			off += 4 + VarcharMaxLen
		}
	}
	return Tuple{Values: values}
}
