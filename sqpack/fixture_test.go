package sqpack

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/go-sqpack/sqpack/pathhash"
)

// fixtureEntry describes one file to embed in a synthetic archive
// chunk built by writeFixtureChunk.
type fixtureEntry struct {
	virtualPath string // relative path within the category, e.g. "root.exl"
	content     []byte
	compress    bool
}

// writeFixtureChunk writes a matching .index/.dat0 pair under dir for
// chunk 0 of the given category, containing entries. It returns the
// FSResolver rooted at dir.
func writeFixtureChunk(t *testing.T, dir string, category string, entries []fixtureEntry) *FSResolver {
	t.Helper()

	type located struct {
		hash   uint64
		offset uint32
	}
	var locs []located

	var dat bytes.Buffer
	for _, e := range entries {
		offset := alignTo8(uint32(dat.Len()))
		for dat.Len() < int(offset) {
			dat.WriteByte(0)
		}

		var block []byte
		var compressedSentinel uint32
		if e.compress {
			var cbuf bytes.Buffer
			fw, err := flate.NewWriter(&cbuf, flate.DefaultCompression)
			if err != nil {
				t.Fatalf("flate.NewWriter: %v", err)
			}
			if _, err := fw.Write(e.content); err != nil {
				t.Fatalf("flate write: %v", err)
			}
			fw.Close()
			block = cbuf.Bytes()
			compressedSentinel = uint32(len(block))
		} else {
			block = e.content
			compressedSentinel = blockCompressedSentinel
		}

		// block header: headerSize, pad, uncompressedSize, compressedSizeOrSentinel
		writeU32(&dat, 16)
		writeU32(&dat, 0)
		writeU32(&dat, uint32(len(e.content)))
		writeU32(&dat, compressedSentinel)
		dat.Write(block)

		fileStart := dat.Len() - 16 - len(block)
		// file header precedes the block: size, kind, uncompressedSize, pad, blockCount
		var fh bytes.Buffer
		writeU32(&fh, 32) // header size (5 fixed 4-byte fields + one 12-byte block descriptor)
		writeU32(&fh, kindStandard)
		writeU32(&fh, uint32(len(e.content)))
		writeU32(&fh, 0)
		writeU32(&fh, 1)
		// one block descriptor: offset (relative to base), compressedSize (packed size on disk), uncompressedSize
		writeU32(&fh, 0)
		writeU32(&fh, uint32(16+len(block)))
		writeU32(&fh, uint32(len(e.content)))

		// splice the file header in before the block we just wrote.
		rest := append([]byte{}, dat.Bytes()[fileStart:]...)
		dat.Truncate(fileStart)
		dat.Write(fh.Bytes())
		dat.Write(rest)

		hash := pathhash.Hash(e.virtualPath)
		locs = append(locs, located{hash: hash, offset: uint32(fileStart)})
	}

	sort.Slice(locs, func(i, j int) bool { return locs[i].hash < locs[j].hash })

	var entryTable bytes.Buffer
	for _, l := range locs {
		writeU64(&entryTable, l.hash)
		packed := (l.offset >> 3) << 4 // data_file_id 0, inverse of (packed>>4)<<3
		writeU32(&entryTable, packed)
		writeU32(&entryTable, 0) // pad
	}

	var idx bytes.Buffer
	writeU32(&idx, 1024)                            // size
	writeU32(&idx, 0)                                // version
	writeSection(&idx, 1024, uint32(entryTable.Len())) // index data section
	writeU32(&idx, 1)                                // data file count
	writeSection(&idx, 0, 0)                         // synonym
	writeSection(&idx, 0, 0)                         // empty block
	writeSection(&idx, 0, 0)                         // dir index
	writeU32(&idx, 0)                                // index type
	idx.Write(make([]byte, 656))                     // reserved
	idx.Write(make([]byte, 64))                      // digest
	idx.Write(entryTable.Bytes())

	if err := os.MkdirAll(filepath.Join(dir, "ffxiv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	resolver := NewFSResolver(dir)
	catID := knownCategories[category]
	idxPath := resolver.DatPath(defaultRepository, Category{Name: category, ID: catID}, 0, "win32", "index")
	if err := os.WriteFile(idxPath, idx.Bytes(), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}

	datPath := resolver.DatPath(defaultRepository, Category{Name: category, ID: catID}, 0, "win32", "dat0")
	if err := os.WriteFile(datPath, dat.Bytes(), 0o644); err != nil {
		t.Fatalf("write dat: %v", err)
	}

	return resolver
}

// writeShortFile writes a file too small to contain a valid header, to
// exercise the "malformed header" error paths.
func writeShortFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte{1, 2, 3}, 0o644)
}

func alignTo8(n uint32) uint32 {
	return (n + 7) &^ 7
}

func writeU32(b *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.Write(tmp[:])
}

func writeU64(b *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.Write(tmp[:])
}

func writeSection(b *bytes.Buffer, offset, size uint32) {
	writeU32(b, offset)
	writeU32(b, size)
	b.Write(make([]byte, 64))
}
