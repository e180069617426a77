package utils

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrShortRead = errors.New("short read")

func WriteInt32(w io.Writer, v int32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func WriteUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func WriteInt64(w io.Writer, v int64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// WriteLengthPrefixed writes len(b) as an int32 followed by b.
func WriteLengthPrefixed(w io.Writer, b []byte) error {
	if err := WriteInt32(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ByteReader decodes known-length little-endian fields from an artifact that
// has been read into RAM, reporting exactly where a field ran past the end.
type ByteReader struct {
	b      []byte
	offset int
}

func NewByteReader(b []byte) *ByteReader {
	return &ByteReader{b: b}
}

func (r *ByteReader) Offset() int {
	return r.offset
}

func (r *ByteReader) Remaining() int {
	return len(r.b) - r.offset
}

func (r *ByteReader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative length %d at offset %d", n, r.offset)
	}
	if r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortRead, n, r.offset, r.Remaining())
	}
	chunk := r.b[r.offset : r.offset+n]
	r.offset += n
	return chunk, nil
}

func (r *ByteReader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *ByteReader) ReadUint32() (uint32, error) {
	chunk, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(chunk), nil
}

func (r *ByteReader) ReadInt64() (int64, error) {
	chunk, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(chunk)), nil
}
