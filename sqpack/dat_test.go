package sqpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-sqpack/sqpack/pathhash"
)

func TestReadFileDataRaw(t *testing.T) {
	dir := t.TempDir()
	want := []byte("hello from an uncompressed block")
	resolver := writeFixtureChunk(t, dir, "exd", []fixtureEntry{
		{virtualPath: "root.exl", content: want, compress: false},
	})

	idx, err := OpenIndex(resolver, defaultRepository, Category{Name: "exd", ID: 0x0A}, 0, "win32")
	require.NoError(t, err)

	loc, ok := idx.Lookup(pathhash.Hash("root.exl"))
	require.True(t, ok)
	loc.ChunkID = 0

	pool := newHandlePool(4, nil)
	defer pool.Close()

	got, err := ReadFileData(resolver, pool, defaultRepository, Category{Name: "exd", ID: 0x0A}, loc, "win32")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadFileDataDeflate(t *testing.T) {
	dir := t.TempDir()
	want := []byte("compressible compressible compressible compressible payload")
	resolver := writeFixtureChunk(t, dir, "exd", []fixtureEntry{
		{virtualPath: "companiontransient.exh", content: want, compress: true},
	})

	idx, err := OpenIndex(resolver, defaultRepository, Category{Name: "exd", ID: 0x0A}, 0, "win32")
	require.NoError(t, err)

	loc, ok := idx.Lookup(pathhash.Hash("companiontransient.exh"))
	require.True(t, ok)
	loc.ChunkID = 0

	pool := newHandlePool(4, nil)
	defer pool.Close()

	got, err := ReadFileData(resolver, pool, defaultRepository, Category{Name: "exd", ID: 0x0A}, loc, "win32")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadFileDataEmptyBlockIsEmpty(t *testing.T) {
	dir := t.TempDir()
	resolver := writeFixtureChunk(t, dir, "exd", []fixtureEntry{
		{virtualPath: "empty.exh", content: []byte{}, compress: false},
	})

	idx, err := OpenIndex(resolver, defaultRepository, Category{Name: "exd", ID: 0x0A}, 0, "win32")
	require.NoError(t, err)
	loc, ok := idx.Lookup(pathhash.Hash("empty.exh"))
	require.True(t, ok)
	loc.ChunkID = 0

	pool := newHandlePool(4, nil)
	defer pool.Close()

	got, err := ReadFileData(resolver, pool, defaultRepository, Category{Name: "exd", ID: 0x0A}, loc, "win32")
	require.NoError(t, err)
	assert.Empty(t, got)
}
