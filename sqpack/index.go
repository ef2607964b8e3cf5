package sqpack

import (
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/go-sqpack/sqpack/binformat"
	"github.com/go-sqpack/sqpack/xerrors"
)

// indexEntry is one (hash, packed) row of an Index's entry table (§3
// "Index entry").
type indexEntry struct {
	hash   uint64
	packed uint32
}

// Index is one chunk's loaded .index file: a flat, hash-ordered table
// mapping path hashes to (data-file id, offset) (§4.C).
type Index struct {
	entries []indexEntry
}

// OpenIndex loads the .index file for (repo, category, chunk) through
// resolver. It returns (nil, nil) if the file does not exist — chunk
// enumeration is expected to stop at the first such result — and a
// KindInvalid error if the file exists but fails to parse.
func OpenIndex(resolver PathResolver, repo Repository, category Category, chunk ChunkID, platform string) (*Index, error) {
	path := resolver.DatPath(repo, category, chunk, platform, "index")

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, xerrors.Resource("opening index file "+path, err)
	}
	defer f.Close()

	return parseIndex(f, path)
}

func parseIndex(r io.ReadSeeker, path string) (*Index, error) {
	br := binformat.NewReader(r)
	hdr, err := readIndexHeader(br)
	if err != nil {
		return nil, err
	}

	if _, err := r.Seek(int64(hdr.indexData.Offset), io.SeekStart); err != nil {
		return nil, xerrors.Resource("seeking to index entry table of "+path, err)
	}

	entryCount := hdr.indexData.Size / indexEntryBytes
	buf := make([]byte, hdr.indexData.Size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, xerrors.Resource("reading index entry table of "+path, err)
	}

	entries := make([]indexEntry, entryCount)
	for i := range entries {
		off := i * indexEntryBytes
		entries[i] = indexEntry{
			hash:   binary.LittleEndian.Uint64(buf[off : off+8]),
			packed: binary.LittleEndian.Uint32(buf[off+8 : off+12]),
			// remaining 4 bytes are padding, ignored.
		}
	}

	if !sort.SliceIsSorted(entries, func(i, j int) bool { return entries[i].hash < entries[j].hash }) {
		return nil, xerrors.Invalid("index entry table of "+path, "entries not sorted by hash")
	}

	return &Index{entries: entries}, nil
}

// Lookup finds the Location of the file with the given path hash. ok is
// false if no entry matches (§4.C "a missing entry is not an error").
// Synonym entries (bit 0 of packed set) are treated as a normal lookup,
// per §4.C: this core does not implement the separate collision chain.
func (ix *Index) Lookup(hash uint64) (loc Location, ok bool) {
	n := len(ix.entries)
	i := sort.Search(n, func(i int) bool { return ix.entries[i].hash >= hash })
	if i >= n || ix.entries[i].hash != hash {
		return Location{}, false
	}

	packed := ix.entries[i].packed
	return Location{
		DataFileID: uint8((packed >> 1) & 0x7),
		Offset:     (packed >> 4) << 3,
	}, true
}
