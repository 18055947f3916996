// pattern: Imperative Shell

// Package batch runs a per-file resolver over a set of matched configuration
// files, deduplicating work and merging the partial graphs.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"tsgraph/internal/graph"
	"tsgraph/internal/logging"
)

// DefaultCacheSize is the number of resolved files remembered across batches.
const DefaultCacheSize = 1024

// Config controls batching behaviour.
type Config struct {
	Concurrency int // Max concurrent resolutions (default runtime.NumCPU())
	CacheSize   int // Cached resolutions across batches; 0 disables the cache
}

// Stats counts cache outcomes since the Batcher was created.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Batcher implements plugin.Batcher.
type Batcher struct {
	fs     afero.Fs
	cfg    Config
	cache  *lru.Cache[uint64, graph.Result]
	logger *logging.ScopedLogger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a Batcher reading file contents from fs.
func New(cfg Config, fs afero.Fs, logger *logging.ScopedLogger) (*Batcher, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	b := &Batcher{fs: fs, cfg: cfg, logger: logger}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[uint64, graph.Result](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create resolution cache: %w", err)
		}
		b.cache = cache
	}
	return b, nil
}

// CreateNodesFromFiles resolves every distinct file and merges the results.
// The first resolution error cancels the remaining work and is returned
// without a partial result.
func (b *Batcher) CreateNodesFromFiles(ctx context.Context, resolve graph.ResolveFunc, configFiles []string, fingerprint string, cctx graph.Context) (graph.Result, error) {
	files := dedupe(configFiles)
	results := make([]graph.Result, len(files))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(b.cfg.Concurrency)

	for i, file := range files {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}

			key, cacheable := b.cacheKey(file, fingerprint, cctx)
			if cacheable {
				if cached, ok := b.cache.Get(key); ok {
					b.hits.Add(1)
					results[i] = cached
					return nil
				}
			}

			result, err := resolve(egctx, file)
			if err != nil {
				return err
			}
			b.misses.Add(1)
			if cacheable {
				b.cache.Add(key, result)
			}
			results[i] = result
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return graph.Result{}, err
	}

	b.logger.Debug("batch resolved",
		"files", len(files),
		"duplicates", len(configFiles)-len(files),
		"cache_hits", b.hits.Load(),
		"cache_misses", b.misses.Load(),
	)
	return graph.Merge(results...), nil
}

// Stats returns the cache counters.
func (b *Batcher) Stats() Stats {
	return Stats{Hits: b.hits.Load(), Misses: b.misses.Load()}
}

// Purge drops every cached resolution.
func (b *Batcher) Purge() {
	if b.cache != nil {
		b.cache.Purge()
	}
}

// cacheKey hashes the file path, its content, the caller's fingerprint and
// the modification time of the containing directory. Adding, removing or
// renaming a sibling changes the directory mtime, so a changed listing is
// always a miss.
func (b *Batcher) cacheKey(configFile, fingerprint string, cctx graph.Context) (uint64, bool) {
	if b.cache == nil {
		return 0, false
	}

	abs := filepath.Join(cctx.WorkspaceRoot, filepath.FromSlash(configFile))
	content, err := afero.ReadFile(b.fs, abs)
	if err != nil {
		return 0, false
	}
	dirInfo, err := b.fs.Stat(filepath.Dir(abs))
	if err != nil {
		return 0, false
	}

	d := xxhash.New()
	_, _ = d.WriteString(cctx.WorkspaceRoot)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(configFile)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(content)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(fingerprint)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(strconv.FormatInt(dirInfo.ModTime().UnixNano(), 10))
	return d.Sum64(), true
}

// dedupe drops repeated paths, keeping first-seen order.
func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
