package indexing

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardbeagle/contextweaver/internal/syntax"
	"github.com/standardbeagle/contextweaver/internal/types"
)

// DefaultCacheSize bounds the number of files a ResultCache remembers
const DefaultCacheSize = 4096

// cacheEntry is immutable once stored; updates replace the entry
type cacheEntry struct {
	sourceHash uint64
	tree       *syntax.Tree

	// result is valid only for the universe fingerprint it was computed under,
	// since dependency edges depend on the types declared in other files
	universe uint64
	result   *types.FileAnalysisResult
}

// ResultCache keeps parse trees and analysis results between runs, keyed by
// relative path and validated by the xxhash of the source text. It lives in
// memory only and is safe for concurrent use.
type ResultCache struct {
	entries *lru.Cache[string, *cacheEntry]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewResultCache creates a cache holding at most size files
func NewResultCache(size int) (*ResultCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &ResultCache{entries: entries}, nil
}

// HashSource returns the fingerprint used to validate cached entries
func HashSource(source string) uint64 {
	return xxhash.Sum64String(source)
}

// UniverseFingerprint hashes a set of declared type names independent of order
func UniverseFingerprint(names map[string]struct{}) uint64 {
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)
	return xxhash.Sum64String(strings.Join(sorted, "\n"))
}

// Tree returns the cached parse tree of file when its source is unchanged
func (c *ResultCache) Tree(file types.SourceFile) (*syntax.Tree, bool) {
	e, ok := c.entries.Get(file.RelativePath)
	if !ok || e.sourceHash != HashSource(file.Source) || e.tree == nil {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.tree, true
}

// StoreTree records the parse tree of file, dropping any result computed for older source
func (c *ResultCache) StoreTree(file types.SourceFile, tree *syntax.Tree) {
	if tree == nil {
		return
	}
	hash := HashSource(file.Source)
	entry := &cacheEntry{sourceHash: hash, tree: tree}
	if old, ok := c.entries.Peek(file.RelativePath); ok && old.sourceHash == hash {
		entry.universe, entry.result = old.universe, old.result
	}
	c.entries.Add(file.RelativePath, entry)
}

// Result returns the cached analysis of file when both its source and the
// universe of declared types are unchanged
func (c *ResultCache) Result(file types.SourceFile, universe uint64) (*types.FileAnalysisResult, bool) {
	e, ok := c.entries.Get(file.RelativePath)
	if !ok || e.result == nil || e.sourceHash != HashSource(file.Source) || e.universe != universe {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return e.result, true
}

// StoreResult records the analysis of file computed under universe
func (c *ResultCache) StoreResult(file types.SourceFile, universe uint64, result *types.FileAnalysisResult) {
	hash := HashSource(file.Source)
	entry := &cacheEntry{sourceHash: hash, universe: universe, result: result}
	if old, ok := c.entries.Peek(file.RelativePath); ok && old.sourceHash == hash {
		entry.tree = old.tree
	}
	c.entries.Add(file.RelativePath, entry)
}

// Lookup returns any cached result for path regardless of freshness
func (c *ResultCache) Lookup(path string) (*types.FileAnalysisResult, bool) {
	e, ok := c.entries.Peek(path)
	if !ok || e.result == nil {
		return nil, false
	}
	return e.result, true
}

// Remove forgets path
func (c *ResultCache) Remove(path string) {
	c.entries.Remove(path)
}

// Len returns the number of cached files
func (c *ResultCache) Len() int {
	return c.entries.Len()
}

// Stats returns the hit and miss counters
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
