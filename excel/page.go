package excel

import (
	"io"

	"github.com/go-sqpack/sqpack/binformat"
	"github.com/go-sqpack/sqpack/xerrors"
)

var exdMagic = []byte("EXDF")

// RowHeader precedes a row's packed bytes within a page's data blob
// (§3 "Row"). DataSize covers everything that follows it for this row:
// RowSize bytes for a Default-kind sheet, or RowCount repetitions of a
// SubrowHeader plus RowSize bytes for a Subrows-kind sheet.
type RowHeader struct {
	DataSize uint32
	RowCount uint16
}

// SubrowHeader precedes each subrow's fixed-column bytes within a
// Subrows-kind row.
type SubrowHeader struct {
	ID uint16
}

// rowDirEntry maps a row id to its byte offset within the page blob.
type rowDirEntry struct {
	RowID  uint32
	Offset uint32
}

// Page is one Exd page: a row directory in ascending row-id order plus
// the raw data blob it indexes into (§3 "Page (Exd)").
type Page struct {
	dir  []rowDirEntry
	data []byte
}

// ReadPage parses an Exd byte stream. raw must be the complete page
// payload, since row offsets are absolute within it.
func ReadPage(raw []byte) (*Page, error) {
	r := binformat.NewReader(byteReader(raw))
	r.Magic("exd page", exdMagic)
	r.Skip(2) // version
	r.Skip(2) // unknown
	indexSize := r.U32()
	r.Skip(4) // data size, redundant with len(raw)
	r.Skip(16)

	if err := r.Err(); err != nil {
		return nil, xerrors.Invalid("exd page", err.Error())
	}
	if indexSize%8 != 0 {
		return nil, xerrors.Invalidf("exd page", "row directory size %d is not a multiple of 8", indexSize)
	}

	dir := make([]rowDirEntry, indexSize/8)
	for i := range dir {
		dir[i] = rowDirEntry{RowID: r.U32(), Offset: r.U32()}
	}
	if err := r.Err(); err != nil {
		return nil, xerrors.Invalid("exd row directory", err.Error())
	}
	for i := 1; i < len(dir); i++ {
		if dir[i-1].RowID >= dir[i].RowID {
			return nil, xerrors.Invalidf("exd row directory", "row ids not strictly ascending at index %d", i)
		}
	}

	return &Page{dir: dir, data: raw}, nil
}

// RowIDs returns every row id present in this page, in directory order
// (ascending).
func (p *Page) RowIDs() []uint32 {
	ids := make([]uint32, len(p.dir))
	for i, e := range p.dir {
		ids[i] = e.RowID
	}
	return ids
}

func (p *Page) find(rowID uint32) (rowDirEntry, bool) {
	for _, e := range p.dir {
		if e.RowID == rowID {
			return e, true
		}
	}
	return rowDirEntry{}, false
}

func (p *Page) readHeader(offset uint32) (RowHeader, int, error) {
	if int(offset)+6 > len(p.data) {
		return RowHeader{}, 0, xerrors.Invalid("exd row", "row header out of bounds")
	}
	r := binformat.NewReader(byteReader(p.data[offset:]))
	h := RowHeader{DataSize: r.U32(), RowCount: r.U16()}
	if err := r.Err(); err != nil {
		return RowHeader{}, 0, xerrors.Invalid("exd row", err.Error())
	}
	return h, 6, nil
}

// SubrowCount returns how many subrows rowID has. For a Default-kind
// sheet this is always 1 once the row exists.
func (p *Page) SubrowCount(rowID uint32) (uint16, error) {
	entry, ok := p.find(rowID)
	if !ok {
		return 0, xerrors.NotFoundf("row %d", rowID)
	}
	h, _, err := p.readHeader(entry.Offset)
	if err != nil {
		return 0, err
	}
	return h.RowCount, nil
}

// Slice returns the fixed-column bytes for one row (Default kind) or
// one subrow (Subrows kind), sized to rowSize.
func (p *Page) Slice(rowID uint32, subrowID uint16, kind SheetKind, rowSize uint16) ([]byte, error) {
	entry, ok := p.find(rowID)
	if !ok {
		return nil, xerrors.NotFoundf("row %d", rowID)
	}
	h, headerLen, err := p.readHeader(entry.Offset)
	if err != nil {
		return nil, err
	}
	bodyStart := int(entry.Offset) + headerLen
	bodyEnd := bodyStart + int(h.DataSize)
	if bodyEnd > len(p.data) {
		return nil, xerrors.Invalid("exd row", "row body out of bounds")
	}
	body := p.data[bodyStart:bodyEnd]

	if kind != SheetKindSubrows {
		if subrowID > 0 {
			return nil, xerrors.NotFoundf("subrow %d in row %d: sheet is not Subrows kind", subrowID, rowID)
		}
		if len(body) < int(rowSize) {
			return nil, xerrors.Invalid("exd row", "row body shorter than row size")
		}
		return body[:rowSize], nil
	}

	if subrowID >= h.RowCount {
		return nil, xerrors.NotFoundf("subrow %d in row %d", subrowID, rowID)
	}
	stride := SubrowHeaderSize + int(rowSize)
	off := int(subrowID) * stride
	if off+stride > len(body) {
		return nil, xerrors.Invalid("exd subrow", "subrow out of bounds")
	}
	id := uint16(body[off]) | uint16(body[off+1])<<8
	if id != subrowID {
		return nil, xerrors.Invalidf("exd subrow", "subrow header id %d does not match requested subrow %d", id, subrowID)
	}
	return body[off+SubrowHeaderSize : off+stride], nil
}

// byteReader adapts a byte slice to io.Reader without giving up the
// underlying buffer, for use with binformat.Reader.
type byteSliceReader struct {
	b   []byte
	pos int
}

func byteReader(b []byte) *byteSliceReader { return &byteSliceReader{b: b} }

func (r *byteSliceReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}
