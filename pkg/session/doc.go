// Package session implements server-side sessions whose ids are namespaced by
// owner, plus a per-user index of active sessions kept in a key-value store.
//
// # Ids
//
// A session id has the form
//
//	sessions:{userID|guest}:{40 random characters}
//
// The random suffix has the fixed length IDLength, so the owner prefix can be
// stripped or located regardless of its length. Records live in the store at
// "{cachePrefix}:{id}".
//
// # Index
//
// For every authenticated user the Index keeps a set at
// "{cachePrefix}:sessions:{userID}" whose members are the full record keys of
// that user's sessions. Records expire on their own (TTL); keys whose record
// is gone are pruned the next time the set is listed. Saving writes the record
// first and registers its key second, so a listing never observes a key for a
// record that was never written.
//
// The index only works when Config.Driver is "redis" and a KeyValue is
// configured; otherwise every index operation is a no-op and sessions still
// work, just without cross-device listing.
//
// # Payload format
//
// Records are stored in two layers. The inner layer is the session document,
// a JSON object holding "meta" and the application values. The outer layer is
// the store encoding: the inner bytes wrapped as a JSON string literal. Both
// layers are always encoded and decoded together by EncodeRecord and
// DecodeRecord.
//
// # Usage
//
//	kv := redis.NewKV(client)
//	mgr := session.New(session.NewKVHandler(kv, cfg.CachePrefix, cfg.Lifetime),
//	    session.WithKeyValue(kv),
//	    session.WithConfig(cfg),
//	    session.WithLogger(log),
//	)
//
//	sess := mgr.Start(ctx, idFromCookie)
//	sess.Touch(r.UserAgent())
//	if err := sess.Migrate(ctx, true, &userID); err != nil { ... }
//	if err := sess.Save(ctx); err != nil { ... }
//
//	list, err := sess.CurrentUserSessions(ctx, session.User(userID))
//
// Read failures never reach the caller: a missing or corrupt record yields a
// fresh guest session.
package session
