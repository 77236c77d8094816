package path

import "sync"

// cache is the process-wide compiled-path cache keyed by the original path
// text (spec §5: "compiled-path cache ... process-wide, concurrent,
// write-through on first use"). It only ever grows: paths are never
// evicted, since the number of distinct paths is bounded by the template
// corpus, not by record volume.
var cache sync.Map // map[string]*Path

// Compile returns the compiled form of text, computing and caching it on
// first use. Concurrent first-use callers may each compile text once; the
// last writer to the map wins and all callers still observe a correct,
// equivalent *Path (get-or-compute, not get-or-block).
func Compile(text string) (*Path, error) {
	if v, ok := cache.Load(text); ok {
		return v.(*Path), nil
	}

	segments, err := compileText(text)
	if err != nil {
		return nil, err
	}

	p := &Path{Text: text, Segments: segments}
	cache.Store(text, p)
	return p, nil
}

// ClearCache empties the compiled-path cache. Intended for host teardown
// and for tests that assert on cache population.
func ClearCache() {
	cache.Range(func(key, _ any) bool {
		cache.Delete(key)
		return true
	})
}
