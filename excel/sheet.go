package excel

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/go-sqpack/sqpack/binformat"
	"github.com/go-sqpack/sqpack/xerrors"
)

// pageCacheKey identifies a cached page by the start row id of its
// range and the stored (already-resolved) language code (§5 "Page
// cache").
type pageCacheKey struct {
	startID uint32
	lang    uint8
}

// Option configures a Sheet.
type Option func(*Sheet)

// WithLogger attaches a logger for cache population and load-failure
// events. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Sheet) { s.log = log }
}

// WithDefaultLanguage sets the language code Row/Subrow requests
// resolve against when no RowOptions override is given.
func WithDefaultLanguage(lang uint8) Option {
	return func(s *Sheet) { s.defaultLanguage = lang }
}

// WithMaterializer attaches a schema-driven row materializer, mirroring
// sheet.rs's generic `S: SheetMetadata` parameter and its
// `self.sheet_metadata.populate_row(row)` call at the end of
// subrow_with_options. fn runs over every row this Sheet returns; a
// sheet built without this option returns rows unmaterialized, exactly
// as read off the page.
func WithMaterializer(fn func(Row) (Row, error)) Option {
	return func(s *Sheet) { s.materialize = fn }
}

// Sheet binds a sheet name to a Resource, caching its header and pages
// (§4 components G-H). Header and page population are single-flighted
// so concurrent lookups of the same key run the loader exactly once
// (§5 "Caches").
type Sheet struct {
	name     string
	resource Resource
	log      *zap.Logger

	defaultLanguage uint8
	materialize     func(Row) (Row, error)

	headerOnce sync.Once
	headerErr  error
	header     *Header

	pageMu    sync.RWMutex
	pages     map[pageCacheKey]*Page
	pageGroup singleflight.Group
}

// NewSheet builds a Sheet for name, backed by resource.
func NewSheet(resource Resource, name string, opts ...Option) *Sheet {
	s := &Sheet{
		name:     name,
		resource: resource,
		log:      zap.NewNop(),
		pages:    make(map[pageCacheKey]*Page),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the sheet name this Sheet was constructed with.
func (s *Sheet) Name() string { return s.name }

// Header returns the sheet's parsed Exh, loading and caching it on
// first use. The header cache is a single slot: concurrent callers
// during the first load share one in-flight fetch via sync.Once,
// then every call after that returns the cached value (or the cached
// load error) directly.
func (s *Sheet) Header() (*Header, error) {
	s.headerOnce.Do(func() {
		raw, err := s.resource.Header(s.name)
		if err != nil {
			s.headerErr = err
			s.log.Warn("sheet header load failed", zap.String("sheet", s.name), zap.Error(err))
			return
		}
		h, err := ReadHeader(binformat.NewReader(byteReader(raw)))
		if err != nil {
			s.headerErr = err
			s.log.Warn("sheet header parse failed", zap.String("sheet", s.name), zap.Error(err))
			return
		}
		s.header = h
		s.log.Debug("sheet header loaded", zap.String("sheet", s.name))
	})
	return s.header, s.headerErr
}

// Columns exposes each column's offset and kind without decoding any
// row (SPEC_FULL.md "Column accessor on a sheet").
func (s *Sheet) Columns() ([]ColumnDefinition, error) {
	h, err := s.Header()
	if err != nil {
		return nil, err
	}
	return h.Columns, nil
}

// With returns a builder for a single lookup that may override the
// sheet's default language (SPEC_FULL.md "Row-options builder").
func (s *Sheet) With() RowOptions {
	return RowOptions{}
}

func (s *Sheet) pageFor(rowID uint32, opts RowOptions) (*Page, *Header, error) {
	h, err := s.Header()
	if err != nil {
		return nil, nil, err
	}
	def, ok := h.PageFor(rowID)
	if !ok {
		return nil, h, xerrors.NotFoundf("row %d in sheet %s", rowID, s.name)
	}

	requested := s.defaultLanguage
	if opts.Language != nil {
		requested = *opts.Language
	}
	stored, err := h.ResolveLanguage(requested)
	if err != nil {
		return nil, h, err
	}

	key := pageCacheKey{startID: def.StartID, lang: stored}

	s.pageMu.RLock()
	if p, ok := s.pages[key]; ok {
		s.pageMu.RUnlock()
		return p, h, nil
	}
	s.pageMu.RUnlock()

	groupKey := fmt.Sprintf("%d:%d", key.startID, key.lang)
	v, err, _ := s.pageGroup.Do(groupKey, func() (interface{}, error) {
		s.pageMu.RLock()
		if p, ok := s.pages[key]; ok {
			s.pageMu.RUnlock()
			return p, nil
		}
		s.pageMu.RUnlock()

		raw, err := s.resource.Page(s.name, def.StartID, stored)
		if err != nil {
			return nil, err
		}
		p, err := ReadPage(raw)
		if err != nil {
			return nil, err
		}

		s.pageMu.Lock()
		s.pages[key] = p
		s.pageMu.Unlock()
		s.log.Debug("sheet page loaded",
			zap.String("sheet", s.name), zap.Uint32("start_id", key.startID), zap.Uint8("lang", key.lang))
		return p, nil
	})
	if err != nil {
		return nil, h, err
	}
	return v.(*Page), h, nil
}

// Row returns rowID's fixed-column bytes for a Default-kind sheet,
// using the sheet's default language.
func (s *Sheet) Row(rowID uint32) (Row, error) {
	return s.RowWithOptions(rowID, s.With())
}

// RowWithOptions is Row with a per-call language override.
func (s *Sheet) RowWithOptions(rowID uint32, opts RowOptions) (Row, error) {
	p, h, err := s.pageFor(rowID, opts)
	if err != nil {
		return Row{}, err
	}
	data, err := p.Slice(rowID, 0, h.Kind, h.RowSize)
	if err != nil {
		return Row{}, err
	}
	return s.materializeRow(Row{RowID: rowID, Data: data})
}

// Subrow returns one subrow of a Subrows-kind sheet's row, using the
// sheet's default language (§4.H).
func (s *Sheet) Subrow(rowID uint32, subrowID uint16) (Row, error) {
	return s.SubrowWithOptions(rowID, subrowID, s.With())
}

// SubrowWithOptions is Subrow with a per-call language override.
func (s *Sheet) SubrowWithOptions(rowID uint32, subrowID uint16, opts RowOptions) (Row, error) {
	p, h, err := s.pageFor(rowID, opts)
	if err != nil {
		return Row{}, err
	}
	data, err := p.Slice(rowID, subrowID, h.Kind, h.RowSize)
	if err != nil {
		return Row{}, err
	}
	return s.materializeRow(Row{RowID: rowID, SubrowID: subrowID, Data: data})
}

// materializeRow runs the sheet's materializer, if any, over row.
// Per §4.H step 11, a materializer failure is surfaced as Invalid
// regardless of what kind of error it returns, since by this point the
// bytes themselves were read successfully — only their interpretation
// failed.
func (s *Sheet) materializeRow(row Row) (Row, error) {
	if s.materialize == nil {
		return row, nil
	}
	out, err := s.materialize(row)
	if err != nil {
		return Row{}, xerrors.Invalidf("sheet row", "materialize row %d: %s", row.RowID, err.Error())
	}
	return out, nil
}

// SubrowCount returns how many subrows rowID has.
func (s *Sheet) SubrowCount(rowID uint32) (uint16, error) {
	p, h, err := s.pageFor(rowID, s.With())
	if err != nil {
		return 0, err
	}
	if h.Kind != SheetKindSubrows {
		return 1, nil
	}
	return p.SubrowCount(rowID)
}
