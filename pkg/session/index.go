package session

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Index tracks the record keys of every authenticated user's sessions in one
// set per user. A nil KeyValue disables it.
type Index struct {
	kv      KeyValue
	prefix  string
	pattern *regexp.Regexp
}

// ParsedKey is the result of ParseKey. Both fields are zero when the key does
// not belong to an authenticated user's session.
type ParsedKey struct {
	UserID *int64
	ID     string
}

func NewIndex(kv KeyValue, cachePrefix string) *Index {
	return &Index{
		kv:      kv,
		prefix:  cachePrefix,
		pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(cachePrefix) + `:sessions:([0-9]+):(.{` + strconv.Itoa(IDLength) + `})$`),
	}
}

// Enabled reports whether index operations reach the store.
func (x *Index) Enabled() bool {
	return x != nil && x.kv != nil
}

func (x *Index) KeyPrefix(userID *int64) string {
	return KeyPrefix(userID)
}

// ListKey is the set holding userID's record keys.
func (x *Index) ListKey(userID *int64) string {
	return x.prefix + ":" + KeyPrefix(userID)
}

// FullKey is the store key of the record with the given session id.
func (x *Index) FullKey(id string) string {
	return x.prefix + ":" + id
}

// Keys lists the record keys registered for userID in ascending order.
func (x *Index) Keys(ctx context.Context, userID *int64) ([]string, error) {
	if !x.Enabled() {
		return nil, nil
	}
	keys, err := x.kv.SMembers(ctx, x.ListKey(userID))
	if err != nil {
		return nil, err
	}
	slices.Sort(keys)
	return keys, nil
}

// ParseKey extracts the owner and the random id from a full record key.
// Keys that do not match, guest keys included, yield a zero ParsedKey.
func (x *Index) ParseKey(key string) ParsedKey {
	m := x.pattern.FindStringSubmatch(key)
	if m == nil {
		return ParsedKey{}
	}
	uid, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return ParsedKey{}
	}
	return ParsedKey{UserID: &uid, ID: m[2]}
}

// Add registers a full record key for userID.
func (x *Index) Add(ctx context.Context, userID int64, fullKey string) error {
	if !x.Enabled() {
		return nil
	}
	return x.kv.SAdd(ctx, x.ListKey(&userID), fullKey)
}

// SessionID is the session id a full record key was built from, or empty when
// key is outside the cache prefix.
func (x *Index) SessionID(key string) string {
	id, ok := strings.CutPrefix(key, x.prefix+":")
	if !ok {
		return ""
	}
	return id
}

// RemoveKey unregisters key and deletes its record. When userID is nil the
// owner is parsed from the key. Both steps always run; their errors are joined.
func (x *Index) RemoveKey(ctx context.Context, userID *int64, key string) error {
	if !x.Enabled() {
		return nil
	}
	if userID == nil {
		userID = x.ParseKey(key).UserID
	}

	var errs []error
	if userID != nil {
		errs = append(errs, x.kv.SRem(ctx, x.ListKey(userID), key))
	}
	errs = append(errs, x.kv.Del(ctx, key))
	return errors.Join(errs...)
}

// RemoveFullID is RemoveKey for a session id.
func (x *Index) RemoveFullID(ctx context.Context, userID *int64, id string) error {
	return x.RemoveKey(ctx, userID, x.FullKey(id))
}

// DestroyAll deletes every record registered for userID and the set itself
// in a single DEL.
func (x *Index) DestroyAll(ctx context.Context, userID int64) error {
	if !x.Enabled() {
		return nil
	}
	keys, err := x.Keys(ctx, &userID)
	if err != nil {
		return err
	}
	return x.kv.Del(ctx, append([]string{x.ListKey(&userID)}, keys...)...)
}

// Payloads fetches the raw records named by keys in one MGET; entries are nil
// for records that no longer exist.
func (x *Index) Payloads(ctx context.Context, keys []string) ([][]byte, error) {
	if !x.Enabled() || len(keys) == 0 {
		return nil, nil
	}
	return x.kv.MGet(ctx, keys...)
}
