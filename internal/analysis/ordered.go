package analysis

// OrderedCounter counts string keys and remembers the order in which they were
// first seen. Ties in Max are resolved by that order. A nil counter reads as empty.
type OrderedCounter struct {
	keys   []string
	counts map[string]int
}

func NewOrderedCounter() *OrderedCounter {
	return &OrderedCounter{counts: make(map[string]int)}
}

func (c *OrderedCounter) Inc(key string) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

func (c *OrderedCounter) Get(key string) int {
	if c == nil {
		return 0
	}
	return c.counts[key]
}

func (c *OrderedCounter) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the keys in first-seen order.
func (c *OrderedCounter) Keys() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Max returns the first key, in first-seen order, holding the highest count.
func (c *OrderedCounter) Max() (string, int, bool) {
	if c == nil || len(c.keys) == 0 {
		return "", 0, false
	}
	best := c.keys[0]
	for _, k := range c.keys[1:] {
		if c.counts[k] > c.counts[best] {
			best = k
		}
	}
	return best, c.counts[best], true
}
