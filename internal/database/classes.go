package database

// classes partitions comparable keys into groups of mutually equal
// members. Groups are addressed by slot; a merged-away slot is nil.
type classes[K comparable] struct {
	groups [][]K
	index  map[K]int
}

func newClasses[K comparable]() *classes[K] {
	return &classes[K]{index: make(map[K]int)}
}

// union records a == b, merging the two groups if both exist. It reports
// whether anything changed.
func (c *classes[K]) union(a, b K) bool {
	if a == b {
		return false
	}
	ia, okA := c.index[a]
	ib, okB := c.index[b]
	switch {
	case okA && okB:
		if ia == ib {
			return false
		}
		if ib < ia {
			ia, ib = ib, ia
		}
		for _, k := range c.groups[ib] {
			c.index[k] = ia
		}
		c.groups[ia] = append(c.groups[ia], c.groups[ib]...)
		c.groups[ib] = nil
	case okA:
		c.groups[ia] = append(c.groups[ia], b)
		c.index[b] = ia
	case okB:
		c.groups[ib] = append(c.groups[ib], a)
		c.index[a] = ib
	default:
		c.index[a] = len(c.groups)
		c.index[b] = len(c.groups)
		c.groups = append(c.groups, []K{a, b})
	}
	return true
}

func (c *classes[K]) same(a, b K) bool {
	ia, okA := c.index[a]
	ib, okB := c.index[b]
	return okA && okB && ia == ib
}

// groupOf returns the members equal to k, including k.
func (c *classes[K]) groupOf(k K) []K {
	i, ok := c.index[k]
	if !ok {
		return nil
	}
	return append([]K(nil), c.groups[i]...)
}

// rekey rewrites every member through f. Members that collide are
// deduplicated and groups that come to share a member are merged. Groups
// left with fewer than two distinct members are dropped.
func (c *classes[K]) rekey(f func(K) K) {
	old := c.groups
	c.groups = nil
	c.index = make(map[K]int)
	for _, g := range old {
		if len(g) == 0 {
			continue
		}
		first := f(g[0])
		for _, k := range g[1:] {
			c.union(first, f(k))
		}
	}
	c.compact()
}

func (c *classes[K]) compact() {
	var live [][]K
	for _, g := range c.groups {
		if len(g) >= 2 {
			live = append(live, g)
		}
	}
	c.groups = live
	c.index = make(map[K]int)
	for i, g := range c.groups {
		for _, k := range g {
			c.index[k] = i
		}
	}
}

func (c *classes[K]) list() [][]K {
	var out [][]K
	for _, g := range c.groups {
		if len(g) >= 2 {
			out = append(out, append([]K(nil), g...))
		}
	}
	return out
}

func (c *classes[K]) size() int {
	n := 0
	for _, g := range c.groups {
		if len(g) >= 2 {
			n++
		}
	}
	return n
}
