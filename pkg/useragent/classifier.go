package useragent

import "github.com/dmitrymomot/storekit/pkg/cache"

// Classifier memoises Classify results.
type Classifier struct {
	lru *cache.LRU[string, Agent]
}

// NewClassifier returns a Classifier caching up to size distinct user agents.
// A non-positive size disables caching.
func NewClassifier(size int) *Classifier {
	c := &Classifier{}
	if size > 0 {
		c.lru = cache.NewLRU[string, Agent](size)
	}
	return c
}

func (c *Classifier) Classify(ua string) Agent {
	if c == nil || c.lru == nil {
		return Classify(ua)
	}
	if a, ok := c.lru.Get(ua); ok {
		return a
	}
	a := Classify(ua)
	c.lru.Add(ua, a)
	return a
}
