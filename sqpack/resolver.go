package sqpack

import (
	"fmt"
	"path/filepath"
)

// PathResolver is the capability the dat reader and index loader
// consume to turn a (repo, category, chunk) coordinate into a
// filesystem path (§6 "PathResolver capability").
type PathResolver interface {
	// DatPath returns the path of <category>.<chunk:02x>.<platform>.<ext>,
	// e.g. "040000.00.win32.dat0" or "...win32.index".
	DatPath(repo Repository, category Category, chunk ChunkID, platform string, extWithIndex string) string
}

// FSResolver is the reference PathResolver: a plain directory tree laid
// out as "<root>/<repo>/<category>.<chunk:02x>.<platform>.<ext>",
// matching §6 "Archive directory layout".
type FSResolver struct {
	Root string
}

// NewFSResolver returns a PathResolver rooted at root.
func NewFSResolver(root string) *FSResolver {
	return &FSResolver{Root: root}
}

// DatPath implements PathResolver.
func (f *FSResolver) DatPath(repo Repository, category Category, chunk ChunkID, platform, ext string) string {
	repoDir := repo.Name
	if repoDir == "" {
		repoDir = "ffxiv"
	}
	name := fmt.Sprintf("%06x.%02x.%s.%s", category.ID, uint8(chunk), platform, ext)
	return filepath.Join(f.Root, repoDir, name)
}
