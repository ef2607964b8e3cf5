// Package pathhash computes the 64-bit path keys SqPack indices use to
// locate files: a CRC-32 of the lowercased directory combined with a
// CRC-32 of the lowercased file name.
package pathhash

import (
	"hash/crc32"
	"strings"
)

// crcTable is the reflected, XorOut=0xFFFFFFFF polynomial zlib (and
// every SqPack-derived game client) uses for CRC-32. This is exactly
// the IEEE polynomial crc32.MakeTable builds with, so there is no third
// party CRC-32 implementation to reach for here (see DESIGN.md).
var crcTable = crc32.MakeTable(crc32.IEEE)

// Hash computes the 64-bit path key for a virtual path of the form
// "folder/sub/file.ext". The path is normalized by ASCII-lowercasing
// and split at the last '/'; a path with no '/' hashes with an empty
// folder component.
func Hash(path string) uint64 {
	folder, file := Split(path)
	return Combine(crc32.Checksum([]byte(folder), crcTable), crc32.Checksum([]byte(file), crcTable))
}

// Split lowercases path (ASCII only) and splits it at the last '/',
// returning the folder and file components separately. If there is no
// '/', folder is empty and file is the whole (lowercased) path.
func Split(path string) (folder, file string) {
	lower := toLowerASCII(path)
	idx := strings.LastIndexByte(lower, '/')
	if idx < 0 {
		return "", lower
	}
	return lower[:idx], lower[idx+1:]
}

// Combine packs a folder CRC and a file CRC into the 64-bit key a
// SqPack index stores: (crc32(folder) << 32) | crc32(file).
func Combine(folderCRC, fileCRC uint32) uint64 {
	return uint64(folderCRC)<<32 | uint64(fileCRC)
}

// toLowerASCII lowercases only ASCII letters, leaving every other byte
// (including non-ASCII UTF-8 continuation bytes) untouched, matching
// the original client's byte-oriented lowercasing.
func toLowerASCII(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}
