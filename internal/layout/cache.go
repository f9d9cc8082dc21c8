package layout

// cache memoizes sizes within one query. It never outlives the query, so a
// later query always recomputes from the environment.
type cache struct {
	byType map[string]int
}

func newCache() *cache {
	return &cache{byType: make(map[string]int, 16)}
}

func (c *cache) get(name string) (int, bool) {
	if c == nil {
		return 0, false
	}
	n, ok := c.byType[name]
	return n, ok
}

func (c *cache) put(name string, size int) {
	if c == nil {
		return
	}
	c.byType[name] = size
}
