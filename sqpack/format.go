package sqpack

import (
	"github.com/go-sqpack/sqpack/binformat"
	"github.com/go-sqpack/sqpack/xerrors"
)

var (
	sqPackMagic = []byte("SqPack\x00\x00")
)

// platformID mirrors the reference archive's PlatformId enum. Only
// Win32 is in scope per §6; any other value is rejected.
type platformID uint8

const (
	platformWin32 platformID = 0
	platformPS3   platformID = 1
	platformPS4   platformID = 2
)

// sqPackHeader is the 1024-byte archive-level header. readSqPackHeader
// decodes only its magic, platform id and size, and validates the first
// two (§4.A, SPEC_FULL supplement 3); the index and dat read paths do
// not call it.
type sqPackHeader struct {
	platform platformID
	size     uint32
}

func readSqPackHeader(r *binformat.Reader) (sqPackHeader, error) {
	r.Magic("sqpack header", sqPackMagic)
	platform := platformID(r.U8())
	r.Skip(3) // reserved
	size := r.U32()
	r.Skip(8) // version, kind

	if err := r.Err(); err != nil {
		return sqPackHeader{}, xerrors.Invalid("sqpack header", err.Error())
	}
	if platform != platformWin32 {
		return sqPackHeader{}, xerrors.Invalidf("sqpack header", "unsupported platform %d", platform)
	}
	return sqPackHeader{platform: platform, size: size}, nil
}

// indexHeader is the 1024-byte header of a .index file. Only the
// section describing the entry table is consumed.
type indexHeader struct {
	indexData binformat.Section
}

func readIndexHeader(r *binformat.Reader) (indexHeader, error) {
	r.Skip(4) // size
	r.Skip(4) // version
	indexData := r.ReadSection()
	r.Skip(4) // data file count
	r.ReadSection() // synonym data
	r.ReadSection() // empty block data
	r.ReadSection() // dir index data
	r.Skip(4)       // index type
	r.Skip(656)     // reserved
	r.Skip(64)      // digest

	if err := r.Err(); err != nil {
		return indexHeader{}, xerrors.Invalid("index header", err.Error())
	}
	return indexHeader{indexData: indexData}, nil
}

// indexEntryBytes is the on-disk size of one (hash, packed, pad) index
// entry.
const indexEntryBytes = 16

// fileHeaderKind values; only kindStandard is implemented by this core.
const (
	kindStandard = 2
)

// fileHeader is the per-file header located by an Index lookup,
// describing the block chain that follows it (§3 "Dat file header").
type fileHeader struct {
	size              uint32
	kind              uint32
	uncompressedSize  uint32
	blockCount        uint32
	blocks            []blockDescriptor
}

type blockDescriptor struct {
	offset           uint32
	compressedSize   uint32
	uncompressedSize uint32
}

func readFileHeader(r *binformat.Reader) (fileHeader, error) {
	h := fileHeader{}
	h.size = r.U32()
	h.kind = r.U32()
	h.uncompressedSize = r.U32()
	r.Skip(4) // unknown/padding in some versions
	h.blockCount = r.U32()

	if err := r.Err(); err != nil {
		return fileHeader{}, xerrors.Invalid("dat file header", err.Error())
	}
	if h.kind != kindStandard {
		return fileHeader{}, xerrors.Invalidf("dat file header", "unsupported kind %d", h.kind)
	}

	h.blocks = make([]blockDescriptor, h.blockCount)
	for i := range h.blocks {
		h.blocks[i] = blockDescriptor{
			offset:           r.U32(),
			compressedSize:   r.U32(),
			uncompressedSize: r.U32(),
		}
	}
	if err := r.Err(); err != nil {
		return fileHeader{}, xerrors.Invalid("dat file header blocks", err.Error())
	}
	return h, nil
}

// blockCompressedSentinel marks a block payload as stored raw rather
// than deflate-compressed (§3 "Block").
const blockCompressedSentinel = 32000

// blockHeader is the 16-byte header preceding each block's payload.
type blockHeader struct {
	headerSize       uint32
	uncompressedSize uint32
	compressedSize   uint32
}

func readBlockHeader(r *binformat.Reader) (blockHeader, error) {
	headerSize := r.U32()
	r.Skip(4) // padding
	uncompressedSize := r.U32()
	compressedSize := r.U32()

	if err := r.Err(); err != nil {
		return blockHeader{}, xerrors.Invalid("block header", err.Error())
	}
	return blockHeader{
		headerSize:       headerSize,
		uncompressedSize: uncompressedSize,
		compressedSize:   compressedSize,
	}, nil
}
