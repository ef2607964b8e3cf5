package sqpack

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/flate"

	"github.com/go-sqpack/sqpack/binformat"
	"github.com/go-sqpack/sqpack/xerrors"
)

// offsetReader is a sequential io.Reader anchored at an absolute file
// offset, backed by ReadAt so concurrent readers sharing the same
// pooled *os.File never race on a shared seek cursor.
type offsetReader struct {
	f   *os.File
	pos int64
}

func (o *offsetReader) Read(p []byte) (int, error) {
	n, err := o.f.ReadAt(p, o.pos)
	o.pos += int64(n)
	return n, err
}

// ReadFileData is the dat reader's single entry point (§4.D): it locates
// datN at loc.Offset, reads the file header, decompresses the block
// chain, and returns the concatenated uncompressed bytes.
func ReadFileData(resolver PathResolver, pool *handlePool, repo Repository, category Category, loc Location, platform string) ([]byte, error) {
	path := resolver.DatPath(repo, category, loc.ChunkID, platform, fmt.Sprintf("dat%d", loc.DataFileID))

	f, err := pool.Get(path)
	if err != nil {
		return nil, err
	}

	hdrReader := &offsetReader{f: f, pos: int64(loc.Offset)}
	br := binformat.NewReader(hdrReader)
	header, err := readFileHeader(br)
	if err != nil {
		return nil, err
	}

	base := int64(loc.Offset) + int64(header.size)

	buf := make([]byte, 0, header.uncompressedSize)
	for _, block := range header.blocks {
		payload, err := readBlock(f, base, block)
		if err != nil {
			return nil, err
		}
		buf = append(buf, payload...)
	}

	if uint32(len(buf)) != header.uncompressedSize {
		return nil, xerrors.Invalidf(path, "decoded %d bytes, expected %d", len(buf), header.uncompressedSize)
	}
	return buf, nil
}

// readBlock decodes one block of the chain: raw if its compressed-size
// field equals the sentinel, deflate otherwise (§3 "Block").
func readBlock(f *os.File, base int64, block blockDescriptor) ([]byte, error) {
	blockStart := base + int64(block.offset)
	hdrReader := &offsetReader{f: f, pos: blockStart}
	br := binformat.NewReader(hdrReader)
	bh, err := readBlockHeader(br)
	if err != nil {
		return nil, err
	}

	payloadStart := blockStart + int64(bh.headerSize)

	if bh.compressedSize == blockCompressedSentinel {
		raw := make([]byte, bh.uncompressedSize)
		if _, err := f.ReadAt(raw, payloadStart); err != nil {
			return nil, xerrors.Resource("reading raw block payload", err)
		}
		return raw, nil
	}

	compressed := io.NewSectionReader(f, payloadStart, int64(bh.compressedSize))
	fr := flate.NewReader(compressed)
	defer fr.Close()

	out := make([]byte, bh.uncompressedSize)
	if _, err := io.ReadFull(fr, out); err != nil {
		return nil, xerrors.Invalid("deflate block", err.Error())
	}
	return out, nil
}
