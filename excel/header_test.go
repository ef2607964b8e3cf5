package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sqpack/sqpack/binformat"
)

func TestReadHeaderRoundTrip(t *testing.T) {
	raw := buildHeader(SheetKindDefault, 8, 10,
		[]ColumnDefinition{{Kind: ColumnUInt32, Offset: 0}, {Kind: ColumnString, Offset: 4}},
		[]PageDefinition{{StartID: 0, RowCount: 5}, {StartID: 100, RowCount: 5}},
		[]uint8{0, 1})

	h, err := ReadHeader(binformat.NewReader(byteReader(raw)))
	require.NoError(t, err)
	assert.Equal(t, SheetKindDefault, h.Kind)
	assert.Equal(t, uint16(8), h.RowSize)
	assert.Len(t, h.Columns, 2)
	assert.Len(t, h.Pages, 2)
}

func TestReadHeaderRejectsOverlappingPages(t *testing.T) {
	raw := buildHeader(SheetKindDefault, 8, 10, nil,
		[]PageDefinition{{StartID: 0, RowCount: 10}, {StartID: 5, RowCount: 5}}, []uint8{0})

	_, err := ReadHeader(binformat.NewReader(byteReader(raw)))
	require.Error(t, err)
}

func TestReadHeaderRejectsColumnOffsetPastRowSize(t *testing.T) {
	raw := buildHeader(SheetKindDefault, 4, 1,
		[]ColumnDefinition{{Kind: ColumnUInt32, Offset: 8}}, nil, []uint8{0})

	_, err := ReadHeader(binformat.NewReader(byteReader(raw)))
	require.Error(t, err)
}

func TestResolveLanguageFallsBackToNeutral(t *testing.T) {
	h := &Header{languages: map[uint8]struct{}{0: {}, 1: {}}}

	stored, err := h.ResolveLanguage(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), stored)

	stored, err = h.ResolveLanguage(2)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), stored, "unsupported language falls back to neutral code 0")
}

func TestResolveLanguageNotFoundWithoutNeutral(t *testing.T) {
	h := &Header{languages: map[uint8]struct{}{1: {}}}

	_, err := h.ResolveLanguage(2)
	require.Error(t, err)
}

func TestPageForFindsContainingRange(t *testing.T) {
	h := &Header{Pages: []PageDefinition{{StartID: 0, RowCount: 10}, {StartID: 100, RowCount: 10}}}

	_, ok := h.PageFor(5)
	assert.True(t, ok)
	_, ok = h.PageFor(50)
	assert.False(t, ok)
	_, ok = h.PageFor(105)
	assert.True(t, ok)
}
