package tuple

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := Schema{KindInteger, KindVarchar, KindInteger}
	buf := make([]byte, s.Width())

	in := Tuple{Values: []Value{Int(42), Str("hello"), Int(-7)}}
	s.Encode(in, buf)
	out := s.Decode(buf)

	assert.Equal(t, int64(42), out.Values[0].Integer)
	assert.Equal(t, "hello", out.Values[1].Varchar)
	assert.Equal(t, int64(-7), out.Values[2].Integer)
}

func TestEncodeTruncatesOverlongVarchar(t *testing.T) {
	s := Schema{KindVarchar}
	buf := make([]byte, s.Width())

	long := make([]byte, VarcharMaxLen+10)
	for i := range long {
		long[i] = 'x'
	}
	s.Encode(Tuple{Values: []Value{Str(string(long))}}, buf)
	out := s.Decode(buf)

	assert.Len(t, out.Values[0].Varchar, VarcharMaxLen)
}

func TestWidthSumsFieldWidths(t *testing.T) {
	s := Schema{KindInteger, KindInteger, KindVarchar}
	assert.Equal(t, 8+8+4+VarcharMaxLen, s.Width())
}
