// Package sqpack implements the read path of a packed game-data
// archive: binary header decoders, per-chunk index loading,
// block-compressed file reassembly, and the archive façade that ties
// them together. Path hashing comes from package pathhash. See SPEC_FULL.md §§3-7 for the format this
// package decodes.
package sqpack

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/go-sqpack/sqpack/pathhash"
	"github.com/go-sqpack/sqpack/xerrors"
)

// chunkSetKey identifies the ordered list of per-chunk indices loaded
// for one (repo, category) pair.
type chunkSetKey struct {
	repo     string
	category string
}

// defaultPlatform is the platform string embedded in .index/.dat file
// names when no WithPlatform option overrides it.
const defaultPlatform = "win32"

// Archive is the read-only façade over a packed game-data archive
// (§4.E). It owns every Index and pooled .dat handle for its lifetime;
// a Sheet or other caller never touches those directly.
type Archive struct {
	resolver PathResolver
	pool     *handlePool
	log      *zap.Logger
	platform string

	mu      sync.RWMutex
	indices map[chunkSetKey][]*Index // indices of chunks 0..n-1, up to (not including) the first missing chunk

	loadGroup singleflight.Group // keyed by chunkSetKey, serializes index-set population
}

// Option configures an Archive at construction time.
type Option func(*Archive)

// WithLogger attaches a zap logger; the default is a no-op logger, so
// the core stays silent unless a caller opts in (§1 logging is an
// external collaborator, not a required feature).
func WithLogger(log *zap.Logger) Option {
	return func(a *Archive) { a.log = log }
}

// WithHandleCacheSize bounds how many .datN descriptors stay open at
// once (§5 "File handles ... must be bounded; handle eviction is LRU").
func WithHandleCacheSize(n int) Option {
	return func(a *Archive) { a.pool = newHandlePool(n, a.log) }
}

// WithPlatform overrides the platform string embedded in .index/.dat
// file names ("win32" by default; also "ps4", "ps5" in real archives).
func WithPlatform(platform string) Option {
	return func(a *Archive) { a.platform = platform }
}

// New returns an Archive rooted at the given filesystem directory,
// using the default FSResolver layout (§6 "Archive directory layout").
func New(root string, opts ...Option) *Archive {
	return NewWithResolver(NewFSResolver(root), opts...)
}

// NewWithResolver returns an Archive using a caller-supplied
// PathResolver, for callers whose archive isn't a plain directory tree.
func NewWithResolver(resolver PathResolver, opts ...Option) *Archive {
	a := &Archive{
		resolver: resolver,
		log:      zap.NewNop(),
		platform: defaultPlatform,
		indices:  make(map[chunkSetKey][]*Index),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.pool == nil {
		a.pool = newHandlePool(defaultHandleCacheSize, a.log)
	}
	return a
}

// Read resolves a virtual path to its decompressed bytes (§4.E).
func (a *Archive) Read(virtualPath string) ([]byte, error) {
	category, repo, remainder, ok := splitVirtualPath(virtualPath)
	if !ok {
		return nil, xerrors.NotFoundf("path %q (unrecognized category)", virtualPath)
	}

	chunks, err := a.chunksFor(repo, category)
	if err != nil {
		return nil, err
	}

	hash := pathhash.Hash(remainder)
	for chunkID, idx := range chunks {
		if idx == nil {
			continue
		}
		if loc, ok := idx.Lookup(hash); ok {
			loc.ChunkID = ChunkID(chunkID)
			return ReadFileData(a.resolver, a.pool, repo, category, loc, a.platform)
		}
	}
	return nil, xerrors.NotFoundf("path %q", virtualPath)
}

// chunksFor returns the cached, ordered list of per-chunk indices for
// (repo, category), populating it on first access. Population is
// single-flighted so concurrent callers share one load (§5).
func (a *Archive) chunksFor(repo Repository, category Category) ([]*Index, error) {
	key := chunkSetKey{repo: repo.Name, category: category.Name}

	a.mu.RLock()
	if chunks, ok := a.indices[key]; ok {
		a.mu.RUnlock()
		return chunks, nil
	}
	a.mu.RUnlock()

	sfKey := key.repo + "\x00" + key.category
	result, err, _ := a.loadGroup.Do(sfKey, func() (interface{}, error) {
		// Re-check under the lock in case another caller's Do() won
		// the singleflight race but we were waiting on the RLock above.
		a.mu.RLock()
		if chunks, ok := a.indices[key]; ok {
			a.mu.RUnlock()
			return chunks, nil
		}
		a.mu.RUnlock()

		chunks, err := a.loadChunkSet(repo, category)
		if err != nil {
			return nil, err
		}

		a.mu.Lock()
		a.indices[key] = chunks
		a.mu.Unlock()
		return chunks, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*Index), nil
}

// loadChunkSet enumerates chunks 0..255 for (repo, category), stopping
// at the first missing one (§6 "Archive directory layout").
func (a *Archive) loadChunkSet(repo Repository, category Category) ([]*Index, error) {
	var chunks []*Index
	for c := 0; c <= 0xFF; c++ {
		idx, err := OpenIndex(a.resolver, repo, category, ChunkID(c), a.platform)
		if err != nil {
			return nil, err
		}
		if idx == nil {
			break
		}
		a.log.Debug("loaded index chunk",
			zap.String("category", category.Name),
			zap.String("repo", repo.Name),
			zap.Int("chunk", c),
		)
		chunks = append(chunks, idx)
	}
	return chunks, nil
}

// Close releases every pooled .dat handle. It does not invalidate
// cached indices; the Archive itself is not reusable afterward.
func (a *Archive) Close() error {
	a.pool.Close()
	return nil
}
