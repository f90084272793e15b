// Package useragent classifies HTTP User-Agent strings into the handful of
// traits a session listing needs: whether the client is a phone or a tablet,
// the device name, the platform and the browser family.
//
// Classification uses ordered keyword rules over the lower-cased string and a
// couple of pre-compiled regular expressions; there is no external database.
// Rules are checked top to bottom, so more specific tokens (Edge, Opera,
// Samsung Internet) are listed before the engines they embed (Chrome, Safari).
//
//	a := useragent.Classify(r.UserAgent())
//	if a.IsMobileOrTablet() {
//	    // ...
//	}
//
// Classifier memoises results in an LRU cache (pkg/cache) for servers that see
// the same handful of user agents over and over.
package useragent
