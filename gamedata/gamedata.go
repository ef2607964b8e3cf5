// Package gamedata wires the archive's read path to the Excel sheet
// engine: it adapts sqpack.Archive's virtual-path Read into the
// excel.Resource capability a Sheet needs, and exposes a single
// Client a caller constructs once per archive root. Grounded on
// ironworks_excel's FfxivSqpackResource, which performs the same
// adaptation over ironworks_sqpack's File trait.
package gamedata

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/go-sqpack/sqpack/excel"
	"github.com/go-sqpack/sqpack/sqpack"
)

// languageSuffixes maps a stored language code to the path suffix
// FFXIV's own Exd file names use. Code 0 is language-neutral and
// carries no suffix. Unrecognized codes fall back to the bare numeric
// code so an unusual archive still resolves a path instead of failing
// closed.
var languageSuffixes = map[uint8]string{
	0: "",
	1: "_ja",
	2: "_en",
	3: "_de",
	4: "_fr",
	5: "_chs",
	6: "_cht",
	7: "_ko",
}

func languageSuffix(code uint8) string {
	if s, ok := languageSuffixes[code]; ok {
		return s
	}
	return fmt.Sprintf("_%d", code)
}

// archiveResource adapts an *sqpack.Archive to excel.Resource using
// the on-disk Exh/Exd virtual path convention: a sheet's header lives
// at "exd/<name>.exh" and a page at
// "exd/<name>_<start-id><language-suffix>.exd", both lower-cased to
// match the archive's case-insensitive path hashing (pathhash.Hash).
type archiveResource struct {
	archive *sqpack.Archive
}

// NewResource adapts archive to the excel.Resource capability a Sheet
// needs.
func NewResource(archive *sqpack.Archive) excel.Resource {
	return &archiveResource{archive: archive}
}

func (r *archiveResource) Header(sheetName string) ([]byte, error) {
	path := fmt.Sprintf("exd/%s.exh", strings.ToLower(sheetName))
	return r.archive.Read(path)
}

func (r *archiveResource) Page(sheetName string, startID uint32, storedLanguage uint8) ([]byte, error) {
	path := fmt.Sprintf("exd/%s_%d%s.exd", strings.ToLower(sheetName), startID, languageSuffix(storedLanguage))
	return r.archive.Read(path)
}

// Client is the top-level façade a caller constructs once per archive
// root: it owns the Archive and hands out Sheets bound to it.
type Client struct {
	archive  *sqpack.Archive
	resource excel.Resource
	log      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger propagated to both the archive and
// every Sheet the Client opens.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Open returns a Client rooted at the given archive directory.
func Open(root string, opts ...Option) *Client {
	c := &Client{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.archive = sqpack.New(root, sqpack.WithLogger(c.log))
	c.resource = NewResource(c.archive)
	return c
}

// File reads a raw file out of the archive by its virtual path,
// bypassing the Excel sheet engine entirely (§4.E).
func (c *Client) File(virtualPath string) ([]byte, error) {
	return c.archive.Read(virtualPath)
}

// Sheet opens the named sheet, with sheet-level caching independent of
// every other sheet opened from this Client.
func (c *Client) Sheet(name string, opts ...excel.Option) *excel.Sheet {
	allOpts := append([]excel.Option{excel.WithLogger(c.log)}, opts...)
	return excel.NewSheet(c.resource, name, allOpts...)
}

// Close releases the underlying archive's pooled file handles.
func (c *Client) Close() error {
	return c.archive.Close()
}
