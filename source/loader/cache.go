package loader

import (
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"

	"desmosc/source/ast"
	"desmosc/source/compiler"
)

const DEFAULT_CACHE_SIZE = 128

// CachingLoader remembers what another loader has parsed, by path and by source. Statements are
// never modified once parsed, so the cached ones can be handed out again.
type CachingLoader struct {
	inner compiler.Loader
	cache *lru.Cache[string, ast.Statements]
}

func NewCachingLoader(inner compiler.Loader, size int) (*CachingLoader, error) {
	cache, err := lru.New[string, ast.Statements](size)
	if err != nil {
		return nil, err
	}
	return &CachingLoader{inner: inner, cache: cache}, nil
}

func (cl *CachingLoader) Load(path string) (ast.Statements, bool) {
	key := "path:" + path
	if stmts, ok := cl.cache.Get(key); ok {
		return stmts, true
	}
	stmts, ok := cl.inner.Load(path)
	if ok {
		cl.cache.Add(key, stmts)
	}
	return stmts, ok
}

func (cl *CachingLoader) ParseSource(source string) (ast.Statements, bool) {
	sum := blake2b.Sum256([]byte(source))
	key := "source:" + hex.EncodeToString(sum[:])
	if stmts, ok := cl.cache.Get(key); ok {
		return stmts, true
	}
	stmts, ok := cl.inner.ParseSource(source)
	if ok {
		cl.cache.Add(key, stmts)
	}
	return stmts, ok
}

// Forget drops the cached parse of a path, e.g. because the file has changed.
func (cl *CachingLoader) Forget(path string) {
	cl.cache.Remove("path:" + path)
}

func (cl *CachingLoader) Len() int {
	return cl.cache.Len()
}
