// Package linecache provides a small most-recently-used cache that maps
// line numbers to the character offset where the line starts.
//
// The cache never answers a lookup on its own. It only hands back the
// closest known anchor so that a linear scan for a line or offset can
// start there instead of at the beginning of the buffer.
//
// Slot 0 always holds the entry (0, 0): line 0 starts at offset 0 in every
// buffer, including an empty one that only contains the end-of-file
// sentinel. That slot is never evicted, moved or invalidated.
package linecache

// DefaultCapacity is the number of slots, including the pinned slot.
const DefaultCapacity = 4

// Entry is a (line, offset) anchor. An entry with Line == -1 is unused.
type Entry struct {
	Line   int
	Offset int
}

// invalid marks an unused slot.
var invalid = Entry{Line: -1, Offset: -1}

// IsValid reports whether the entry holds a real anchor.
func (e Entry) IsValid() bool {
	return e.Line >= 0 && e.Offset >= 0
}

// Cache is a fixed-capacity MRU list of anchors.
// Cache is not safe for concurrent use; it is owned by a single buffer.
type Cache struct {
	slots []Entry
}

// New creates a cache with the given capacity. Capacities below 1 are
// raised to 1, which leaves only the pinned slot.
func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	c := &Cache{slots: make([]Entry, capacity)}
	c.Reset()
	return c
}

// Reset drops every anchor except the pinned one.
func (c *Cache) Reset() {
	c.slots[0] = Entry{Line: 0, Offset: 0}
	for i := 1; i < len(c.slots); i++ {
		c.slots[i] = invalid
	}
}

// Capacity returns the number of slots.
func (c *Cache) Capacity() int {
	return len(c.slots)
}

// NearestLine returns the anchor whose line is closest to, but not after,
// line. The returned entry becomes the most recently used.
func (c *Cache) NearestLine(line int) Entry {
	return c.nearest(func(e Entry) int { return line - e.Line })
}

// NearestOffset returns the anchor whose offset is closest to, but not
// after, offset. The returned entry becomes the most recently used.
func (c *Cache) NearestOffset(offset int) Entry {
	return c.nearest(func(e Entry) int { return offset - e.Offset })
}

func (c *Cache) nearest(distance func(Entry) int) Entry {
	best := 0
	bestDistance := -1
	for i, e := range c.slots {
		if !e.IsValid() {
			continue
		}
		d := distance(e)
		if d < 0 {
			continue
		}
		if bestDistance < 0 || d < bestDistance {
			best = i
			bestDistance = d
		}
	}
	entry := c.slots[best]
	c.makeHead(best)
	return entry
}

// makeHead moves slots[i] to slot 1, shifting the entries in between down.
func (c *Cache) makeHead(i int) {
	if i <= 1 {
		return
	}
	e := c.slots[i]
	copy(c.slots[2:i+1], c.slots[1:i])
	c.slots[1] = e
}

// Update records that line starts at offset. An existing entry for line is
// refreshed in place; otherwise the least recently used slot is evicted.
// Line 0 is always known and is ignored.
func (c *Cache) Update(line, offset int) {
	if line <= 0 || len(c.slots) == 1 {
		return
	}
	for i := 1; i < len(c.slots); i++ {
		if c.slots[i].Line == line {
			c.slots[i].Offset = offset
			return
		}
	}
	c.makeHead(len(c.slots) - 1)
	c.slots[1] = Entry{Line: line, Offset: offset}
}

// InvalidateFrom clears every anchor at or after offset. It must be called
// after any mutation that starts at offset.
func (c *Cache) InvalidateFrom(offset int) {
	for i := 1; i < len(c.slots); i++ {
		if c.slots[i].Offset >= offset {
			c.slots[i] = invalid
		}
	}
}

// Entries returns a copy of the slots in MRU order, pinned slot first.
func (c *Cache) Entries() []Entry {
	out := make([]Entry, len(c.slots))
	copy(out, c.slots)
	return out
}
