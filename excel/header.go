// Package excel implements the Excel sheet engine: header (Exh) and
// page (Exd) parsing, the Sheet type that binds sheet metadata to a
// Resource capability with header/page caching, and the row/subrow
// iterator. See SPEC_FULL.md §§3-5 for the format and caching contract
// this package implements.
package excel

import (
	"github.com/go-sqpack/sqpack/binformat"
	"github.com/go-sqpack/sqpack/xerrors"
)

var exhMagic = []byte("EXHF")

// SheetKind distinguishes a sheet whose rows are single logical
// records (Default) from one whose rows are fixed-size arrays of
// subrecords (Subrows) (GLOSSARY "Sheet kind Default / Subrows").
type SheetKind uint8

const (
	SheetKindUnknown SheetKind = 0
	SheetKindDefault SheetKind = 1
	SheetKindSubrows SheetKind = 2
)

// ColumnKind is the scalar type stored at a column's offset within a
// row's packed bytes.
type ColumnKind uint16

const (
	ColumnString ColumnKind = iota
	ColumnBool
	ColumnInt8
	ColumnUInt8
	ColumnInt16
	ColumnUInt16
	ColumnInt32
	ColumnUInt32
	ColumnFloat32
	ColumnInt64
	ColumnUInt64
	// PackedBool0-7 pack a single bit within the byte at Offset.
	ColumnPackedBool0
	ColumnPackedBool1
	ColumnPackedBool2
	ColumnPackedBool3
	ColumnPackedBool4
	ColumnPackedBool5
	ColumnPackedBool6
	ColumnPackedBool7
)

// ColumnDefinition describes one column's on-disk layout within a row.
type ColumnDefinition struct {
	Kind   ColumnKind
	Offset uint16
}

// PageDefinition describes the row-id range covered by one Exd page
// (§3 "Sheet header (Exh)").
type PageDefinition struct {
	StartID  uint32
	RowCount uint32
}

// languageNone is the stored code meaning "language-neutral" (§3, §4.F).
const languageNone uint8 = 0

// SubrowHeaderSize is the size, in bytes, of the per-subrow id prefix
// within a Subrows-kind row's blob (§3 "Row").
const SubrowHeaderSize = 2

// Header is a sheet's parsed Exh: kind, row size, columns, pages and
// the set of stored language codes (§4.F).
type Header struct {
	Kind      SheetKind
	RowSize   uint16
	RowCount  uint32
	Columns   []ColumnDefinition
	Pages     []PageDefinition
	languages map[uint8]struct{}
}

// ReadHeader parses an Exh byte stream.
func ReadHeader(r *binformat.Reader) (*Header, error) {
	r.Magic("exh header", exhMagic)
	r.Skip(2) // version

	rowSize := r.U16()
	columnCount := r.U16()
	pageCount := r.U16()
	languageCount := r.U16()
	r.Skip(1) // unknown
	kind := SheetKind(r.U8())
	r.Skip(2) // unknown
	rowCount := r.U32()
	r.Skip(8) // reserved

	if err := r.Err(); err != nil {
		return nil, xerrors.Invalid("exh header", err.Error())
	}

	columns := make([]ColumnDefinition, columnCount)
	for i := range columns {
		columns[i] = ColumnDefinition{Kind: ColumnKind(r.U16()), Offset: r.U16()}
	}

	pages := make([]PageDefinition, pageCount)
	for i := range pages {
		pages[i] = PageDefinition{StartID: r.U32(), RowCount: r.U32()}
	}

	languages := make(map[uint8]struct{}, languageCount)
	for i := uint16(0); i < languageCount; i++ {
		languages[r.U8()] = struct{}{}
	}

	if err := r.Err(); err != nil {
		return nil, xerrors.Invalid("exh header body", err.Error())
	}

	for _, col := range columns {
		if col.Offset > rowSize {
			return nil, xerrors.Invalidf("exh header", "column offset %d exceeds row size %d", col.Offset, rowSize)
		}
	}
	if err := validatePageOrdering(pages); err != nil {
		return nil, err
	}

	return &Header{
		Kind:      kind,
		RowSize:   rowSize,
		RowCount:  rowCount,
		Columns:   columns,
		Pages:     pages,
		languages: languages,
	}, nil
}

// validatePageOrdering enforces §3's invariant that page ranges are
// disjoint and sorted by start id.
func validatePageOrdering(pages []PageDefinition) error {
	for i := 1; i < len(pages); i++ {
		prevEnd := pages[i-1].StartID + pages[i-1].RowCount
		if prevEnd > pages[i].StartID {
			return xerrors.Invalidf("exh pages", "page %d (start %d) overlaps page %d (end %d)", i, pages[i].StartID, i-1, prevEnd)
		}
	}
	return nil
}

// ResolveLanguage maps a requested language code to the stored code to
// fetch pages with, falling back to the language-neutral code (§4.F).
func (h *Header) ResolveLanguage(requested uint8) (uint8, error) {
	if _, ok := h.languages[requested]; ok {
		return requested, nil
	}
	if _, ok := h.languages[languageNone]; ok {
		return languageNone, nil
	}
	return 0, xerrors.NotFoundf("language %d", requested)
}

// PageFor returns the page definition whose range contains rowID.
func (h *Header) PageFor(rowID uint32) (PageDefinition, bool) {
	for _, p := range h.Pages {
		if rowID >= p.StartID && rowID < p.StartID+p.RowCount {
			return p, true
		}
	}
	return PageDefinition{}, false
}
