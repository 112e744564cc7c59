package filter

import (
	"container/list"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// queryCache remembers which candidate indexes matched recent queries,
// so extending a query ("ab" -> "abc") rescans only the previous match
// set instead of the whole window. It stores indexes, never candidates
// or scores: every hit is rescored fresh, which keeps cached ranks
// byte-identical to a full rescan.
//
// A fingerprint of the scanned window guards the whole cache; when the
// candidate snapshot changes, every entry is dropped. Entries are kept
// in LRU order with a small capacity (capacity 1 degenerates to plain
// last-query/last-results bookkeeping).
type queryCache struct {
	capacity int
	fp       uint64
	ll       *list.List // front = most recently used
	index    map[string]*list.Element
}

type cacheEntry struct {
	query string
	hits  []int
}

func newQueryCache(capacity int) *queryCache {
	if capacity < 1 {
		capacity = 1
	}
	return &queryCache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// lookup returns the match-index set of the longest cached query that
// the normalized query q extends, if the fingerprint still matches.
// A mismatched fingerprint drops everything and records the new one.
func (c *queryCache) lookup(fp uint64, q string) ([]int, bool) {
	if fp != c.fp {
		c.clear()
		c.fp = fp
		return nil, false
	}
	if q == "" {
		return nil, false
	}

	if el, ok := c.index[q]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*cacheEntry).hits, true
	}

	var best *list.Element
	for el := c.ll.Front(); el != nil; el = el.Next() {
		en := el.Value.(*cacheEntry)
		if en.query == "" || len(en.query) >= len(q) {
			continue
		}
		if !strings.HasPrefix(q, en.query) {
			continue
		}
		if best == nil || len(en.query) > len(best.Value.(*cacheEntry).query) {
			best = el
		}
	}
	if best == nil {
		return nil, false
	}
	c.ll.MoveToFront(best)
	return best.Value.(*cacheEntry).hits, true
}

// store records the match-index set for q under fingerprint fp. Empty
// match sets are not stored: reusing them is valid but pointless, and
// keeping only non-empty sets mirrors how consumers type through a
// miss and then backspace.
func (c *queryCache) store(fp uint64, q string, hits []int) {
	if q == "" || len(hits) == 0 {
		return
	}
	if fp != c.fp {
		c.clear()
		c.fp = fp
	}
	if el, ok := c.index[q]; ok {
		el.Value.(*cacheEntry).hits = hits
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&cacheEntry{query: q, hits: hits})
	c.index[q] = el
	for c.ll.Len() > c.capacity {
		back := c.ll.Back()
		c.ll.Remove(back)
		delete(c.index, back.Value.(*cacheEntry).query)
	}
}

func (c *queryCache) clear() {
	c.ll.Init()
	clear(c.index)
}

func (c *queryCache) invalidate() {
	c.clear()
	c.fp = 0
}

func (c *queryCache) len() int {
	return c.ll.Len()
}

// fingerprint hashes the identity (text and path) of the scanned
// window. Metadata stays out of the hash: cached entries hold indexes
// only, so metadata changes flow into rescoring for free.
func fingerprint(view []Candidate) uint64 {
	d := xxhash.New()
	for i := range view {
		_, _ = d.WriteString(view[i].Text)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(view[i].Path)
		_, _ = d.Write([]byte{'\n'})
	}
	return d.Sum64()
}
