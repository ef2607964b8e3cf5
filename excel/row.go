package excel

// Row is one materialized row (or subrow) of fixed-column bytes,
// ready to be decoded against its sheet's Header.Columns.
type Row struct {
	RowID    uint32
	SubrowID uint16
	Data     []byte
}

// RowOptions overrides a single lookup's language without mutating the
// Sheet it was built from (SPEC_FULL.md "Row-options builder",
// grounded on ironworks's with()/RowOptions).
type RowOptions struct {
	Language *uint8
}

// WithLanguage returns a copy of opts requesting language code lang.
func (opts RowOptions) WithLanguage(lang uint8) RowOptions {
	opts.Language = &lang
	return opts
}
