// Package binformat provides small little-endian struct readers for
// the archive's fixed-layout binary headers. Reads are not
// allocation-free: Bytes and Magic allocate the slice they read into. It
// replaces the derive-macro approach the ironworks reference
// implementation uses (BinRead) with hand-written field-by-field reads,
// the same strategy icza/mpq uses for MPQ's headers: primitive fields
// read directly with encoding/binary rather than through reflection.
package binformat

import (
	"encoding/binary"
	"io"

	"github.com/go-sqpack/sqpack/xerrors"
)

// Reader reads little-endian fixed-layout fields from an underlying
// io.Reader, accumulating the first error encountered so call sites can
// chain reads without checking after every field.
type Reader struct {
	r   io.Reader
	err error
}

// NewReader wraps r for little-endian field reads.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered by any Read* call, if any.
func (r *Reader) Err() error {
	return r.err
}

// U8 reads a single byte.
func (r *Reader) U8() uint8 {
	var v uint8
	r.read(&v)
	return v
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() uint16 {
	var v uint16
	r.read(&v)
	return v
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() uint32 {
	var v uint32
	r.read(&v)
	return v
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() uint64 {
	var v uint64
	r.read(&v)
	return v
}

// Bytes reads exactly n raw bytes.
func (r *Reader) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

// Skip discards n bytes, e.g. reserved or padding regions.
func (r *Reader) Skip(n int) {
	if r.err != nil {
		return
	}
	_, r.err = io.CopyN(io.Discard, r.r, int64(n))
}

// Magic reads len(want) bytes and fails with xerrors.Invalid if they do
// not match.
func (r *Reader) Magic(where string, want []byte) {
	if r.err != nil {
		return
	}
	got := r.Bytes(len(want))
	if r.err != nil {
		return
	}
	for i := range want {
		if got[i] != want[i] {
			r.err = xerrors.Invalid(where, "bad magic")
			return
		}
	}
}

func (r *Reader) read(v interface{}) {
	if r.err != nil {
		return
	}
	r.err = binary.Read(r.r, binary.LittleEndian, v)
}

// Section is the repeated (offset, size, digest) triple used throughout
// the index and dat header formats. Only Offset and Size are consumed
// by the core; the 64-byte digest is skipped.
type Section struct {
	Offset uint32
	Size   uint32
}

// ReadSection reads a Section followed by its 64-byte SHA digest.
func (r *Reader) ReadSection() Section {
	s := Section{Offset: r.U32(), Size: r.U32()}
	r.Skip(64)
	return s
}
