// Package cache provides a small generic, thread-safe LRU cache.
//
// It is used to memoise pure computations keyed by request data, for example
// user-agent classification in pkg/useragent:
//
//	c := cache.NewLRU[string, useragent.Agent](512)
//	if a, ok := c.Get(raw); ok {
//	    return a
//	}
//	a := classify(raw)
//	c.Add(raw, a)
//
// Capacity must be positive; NewLRU panics otherwise.
package cache
