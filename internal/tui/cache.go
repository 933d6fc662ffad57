package tui

import clist "container/list"

type lruEntry struct {
	key     string
	content string
	size    int
}

// lruCache holds rendered previews up to a byte capacity, evicting the least recently
// used entries first.
type lruCache struct {
	capacityBytes int
	currentBytes  int
	ll            *clist.List
	items         map[string]*clist.Element
}

func newLRU(capacity int) *lruCache {
	return &lruCache{
		capacityBytes: capacity,
		ll:            clist.New(),
		items:         make(map[string]*clist.Element),
	}
}

func (c *lruCache) Get(key string) (string, bool) {
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*lruEntry).content, true
	}
	return "", false
}

func (c *lruCache) Add(key string, content string) {
	size := len(content)
	if size > c.capacityBytes {
		return
	}
	if el, ok := c.items[key]; ok {
		ent := el.Value.(*lruEntry)
		c.currentBytes += size - ent.size
		ent.content = content
		ent.size = size
		c.ll.MoveToFront(el)
	} else {
		c.items[key] = c.ll.PushFront(&lruEntry{key: key, content: content, size: size})
		c.currentBytes += size
	}
	for c.currentBytes > c.capacityBytes && c.ll.Len() > 0 {
		tail := c.ll.Back()
		ent := tail.Value.(*lruEntry)
		delete(c.items, ent.key)
		c.ll.Remove(tail)
		c.currentBytes -= ent.size
	}
}

func (c *lruCache) Len() int {
	return c.ll.Len()
}
