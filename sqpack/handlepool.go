package sqpack

import (
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/go-sqpack/sqpack/xerrors"
)

// defaultHandleCacheSize bounds how many .datN file descriptors stay
// open at once (§5 "File handles ... must be bounded").
const defaultHandleCacheSize = 64

// handlePool is a bounded, LRU-evicted cache of open *os.File handles
// keyed by filesystem path, grounded on hashicorp/golang-lru/v2 (used
// the same way by dolthub/dolt and SaveTheRbtz/zstd-seekable-format-go
// to bound native handle/descriptor counts). Safe for concurrent use:
// Get always returns a live handle and callers read with ReadAt rather
// than Seek+Read, so two goroutines sharing one *os.File never race.
type handlePool struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *os.File]
	log   *zap.Logger
}

func newHandlePool(size int, log *zap.Logger) *handlePool {
	if size <= 0 {
		size = defaultHandleCacheSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	hp := &handlePool{log: log}
	cache, _ := lru.NewWithEvict[string, *os.File](size, func(path string, f *os.File) {
		log.Debug("evicting dat handle", zap.String("path", path))
		f.Close()
	})
	hp.cache = cache
	return hp
}

// Get returns an open handle for path, opening and caching it on miss.
func (hp *handlePool) Get(path string) (*os.File, error) {
	hp.mu.Lock()
	defer hp.mu.Unlock()

	if f, ok := hp.cache.Get(path); ok {
		return f, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Resource("opening dat file "+path, err)
	}
	hp.cache.Add(path, f)
	return f, nil
}

// Close evicts and closes every pooled handle.
func (hp *handlePool) Close() {
	hp.mu.Lock()
	defer hp.mu.Unlock()
	hp.cache.Purge()
}
