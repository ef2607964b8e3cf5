package excel

// Resource is the capability a Sheet needs from its backing store: the
// raw Exh bytes for a sheet, and the raw Exd bytes for one page of one
// sheet in one stored language (§6 "External interfaces").
//
// Implementations should return an xerrors.NotFound error when the
// sheet or page does not exist, and xerrors.Resource for I/O failures,
// so Sheet and Iterator can tell a missing page from a broken
// store.
type Resource interface {
	Header(sheetName string) ([]byte, error)
	Page(sheetName string, startID uint32, storedLanguage uint8) ([]byte, error)
}
