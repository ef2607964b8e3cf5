package excel

import (
	"bytes"
	"encoding/binary"
	"sort"
	"strconv"

	"github.com/go-sqpack/sqpack/xerrors"
)

// buildHeader synthesizes a minimal Exh byte stream for tests.
func buildHeader(kind SheetKind, rowSize uint16, rowCount uint32, columns []ColumnDefinition, pages []PageDefinition, languages []uint8) []byte {
	var b bytes.Buffer
	b.Write(exhMagic)
	writeU16(&b, 3) // version
	writeU16(&b, rowSize)
	writeU16(&b, uint16(len(columns)))
	writeU16(&b, uint16(len(pages)))
	writeU16(&b, uint16(len(languages)))
	b.WriteByte(0) // unknown
	b.WriteByte(byte(kind))
	writeU16(&b, 0) // unknown
	writeU32(&b, rowCount)
	b.Write(make([]byte, 8)) // reserved

	for _, c := range columns {
		writeU16(&b, uint16(c.Kind))
		writeU16(&b, c.Offset)
	}
	for _, p := range pages {
		writeU32(&b, p.StartID)
		writeU32(&b, p.RowCount)
	}
	for _, l := range languages {
		b.WriteByte(l)
	}
	return b.Bytes()
}

// pageRow describes one row (and, for Subrows-kind pages, its
// subrows) to embed in a synthetic Exd page.
type pageRow struct {
	rowID   uint32
	subrows [][]byte // one entry for Default kind; N entries for Subrows kind
}

// buildPage synthesizes a minimal Exd byte stream for tests. rows must
// be supplied in ascending row id order.
func buildPage(kind SheetKind, rowSize uint16, rows []pageRow) []byte {
	type dirEnt struct {
		rowID  uint32
		offset uint32
	}

	headerLen := 4 + 2 + 2 + 4 + 4 + 16
	dirLen := len(rows) * 8
	var body bytes.Buffer
	var dir []dirEnt

	for _, row := range rows {
		offset := uint32(headerLen + dirLen + body.Len())
		dir = append(dir, dirEnt{rowID: row.rowID, offset: offset})

		var rowBody bytes.Buffer
		if kind == SheetKindSubrows {
			for i, sub := range row.subrows {
				writeU16(&rowBody, uint16(i))
				rowBody.Write(padTo(sub, int(rowSize)))
			}
		} else {
			rowBody.Write(padTo(row.subrows[0], int(rowSize)))
		}

		writeU32(&body, uint32(rowBody.Len()))
		writeU16(&body, uint16(len(row.subrows)))
		body.Write(rowBody.Bytes())
	}

	sort.Slice(dir, func(i, j int) bool { return dir[i].rowID < dir[j].rowID })

	var out bytes.Buffer
	out.Write(exdMagic)
	writeU16(&out, 2) // version
	writeU16(&out, 0) // unknown
	writeU32(&out, uint32(dirLen))
	writeU32(&out, uint32(body.Len()))
	out.Write(make([]byte, 16))
	for _, d := range dir {
		writeU32(&out, d.rowID)
		writeU32(&out, d.offset)
	}
	out.Write(body.Bytes())
	return out.Bytes()
}

func padTo(b []byte, n int) []byte {
	if len(b) >= n {
		return b[:n]
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func writeU16(b *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.Write(tmp[:])
}

func writeU32(b *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

// memResource is a Resource backed by in-memory maps, for tests.
type memResource struct {
	headers map[string][]byte
	pages   map[string][]byte // key: sheet|startID|lang
}

func newMemResource() *memResource {
	return &memResource{headers: map[string][]byte{}, pages: map[string][]byte{}}
}

func (m *memResource) Header(sheet string) ([]byte, error) {
	raw, ok := m.headers[sheet]
	if !ok {
		return nil, xerrors.NotFoundf("header %s", sheet)
	}
	return raw, nil
}

func (m *memResource) Page(sheet string, startID uint32, lang uint8) ([]byte, error) {
	raw, ok := m.pages[pageKey(sheet, startID, lang)]
	if !ok {
		return nil, xerrors.NotFoundf("page %s start %d lang %d", sheet, startID, lang)
	}
	return raw, nil
}

func pageKey(sheet string, startID uint32, lang uint8) string {
	return sheet + "|" + strconv.FormatUint(uint64(startID), 10) + "|" + strconv.FormatUint(uint64(lang), 10)
}
