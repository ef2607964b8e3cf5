package excel

import (
	"github.com/go-sqpack/sqpack/xerrors"
)

// Iterator walks every (row, subrow) pair a Sheet holds, in
// (page order, directory order, subrow ascending) order, skipping
// holes left by deleted rows without terminating early (§4.I, grounded
// on ironworks's excel/sheet/iterator.rs). Once constructed it owns no
// goroutines or file handles; Next is not safe for concurrent use from
// multiple goroutines on the same Iterator.
type Iterator struct {
	sheet *Sheet
	opts  RowOptions

	header *Header
	err    error
	done   bool

	pageIdx int
	page    *Page
	rowIdx  int

	curRowID  uint32
	subrowIdx uint16
	subrowMax uint16
}

// NewIterator builds an Iterator over every row sheet holds, using the
// sheet's default language.
func NewIterator(sheet *Sheet) *Iterator {
	return NewIteratorWithOptions(sheet, sheet.With())
}

// NewIteratorWithOptions is NewIterator with a language override.
func NewIteratorWithOptions(sheet *Sheet, opts RowOptions) *Iterator {
	it := &Iterator{sheet: sheet, opts: opts}
	it.header, it.err = sheet.Header()
	if it.err != nil {
		it.done = true
	}
	return it
}

// Err returns the error that stopped iteration, if any. A clean
// exhaustion (every row visited) leaves Err nil, and so does a stop
// caused by a NotFound error, such as a sheet header the Resource does
// not have.
func (it *Iterator) Err() error {
	if xerrors.IsNotFound(it.err) {
		return nil
	}
	return it.err
}

// Next advances to the next (row, subrow) pair and returns it. The
// second return is false once iteration is finished, whether by
// exhaustion or by a non-NotFound error (check Err to tell them
// apart).
func (it *Iterator) Next() (Row, bool) {
	for {
		if it.done {
			return Row{}, false
		}
		if it.page == nil {
			if !it.advancePage() {
				return Row{}, false
			}
			continue
		}

		ids := it.page.RowIDs()
		if it.rowIdx >= len(ids) {
			it.page = nil
			continue
		}

		if it.subrowMax == 0 && it.subrowIdx == 0 {
			it.curRowID = ids[it.rowIdx]
			count, err := it.page.SubrowCount(it.curRowID)
			if err != nil {
				if xerrors.IsNotFound(err) {
					// Row not found in the page directory: skip it,
					// always making forward progress.
					it.rowIdx++
					continue
				}
				it.err = err
				it.done = true
				return Row{}, false
			}
			it.subrowMax = count
		}

		row, err := it.page.Slice(it.curRowID, it.subrowIdx, it.header.Kind, it.header.RowSize)
		subrowID := it.subrowIdx
		it.subrowIdx++
		if it.subrowIdx >= it.subrowMax {
			it.subrowIdx = 0
			it.subrowMax = 0
			it.rowIdx++
		}
		if err != nil {
			if xerrors.IsNotFound(err) {
				continue
			}
			it.err = err
			it.done = true
			return Row{}, false
		}
		return Row{RowID: it.curRowID, SubrowID: subrowID, Data: row}, true
	}
}

// advancePage loads the next page in header order, applying the
// iterator's language override. Returns false once pages are
// exhausted or a non-NotFound error occurs.
func (it *Iterator) advancePage() bool {
	for it.pageIdx < len(it.header.Pages) {
		def := it.header.Pages[it.pageIdx]
		it.pageIdx++

		p, _, err := it.sheet.pageFor(def.StartID, it.opts)
		if err != nil {
			if xerrors.IsNotFound(err) {
				continue
			}
			it.err = err
			it.done = true
			return false
		}
		it.page = p
		it.rowIdx = 0
		it.subrowIdx = 0
		it.subrowMax = 0
		return true
	}
	it.done = true
	return false
}
