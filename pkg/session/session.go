package session

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/storekit/pkg/logger"
)

// Session is the per-request handle on one session record. It is not safe
// for concurrent use.
type Session struct {
	m      *Manager
	id     string
	record Record
	exists bool
}

// Info describes one of a user's sessions for display.
type Info struct {
	ID        string    `json:"id"`
	LastVisit time.Time `json:"last_visit"`
	Agent     string    `json:"agent"`
	Verified  bool      `json:"verified"`
	Mobile    bool      `json:"mobile"`
	Device    string    `json:"device"`
	Platform  string    `json:"platform"`
	Browser   string    `json:"browser"`
	Current   bool      `json:"current"`
}

func (s *Session) ID() string {
	return s.id
}

// Exists reports whether the record was loaded from or saved to the store.
func (s *Session) Exists() bool {
	return s.exists
}

func (s *Session) IsGuest() bool {
	return IsGuestID(s.id)
}

func (s *Session) Record() *Record {
	return &s.record
}

func (s *Session) Get(key string) (any, bool) {
	return s.record.Get(key)
}

func (s *Session) Set(key string, value any) {
	s.record.Set(key, value)
}

func (s *Session) Delete(key string) {
	s.record.Delete(key)
}

// Touch stamps the visit time and the client's User-Agent.
func (s *Session) Touch(agent string) {
	s.record.Touch(s.m.now(), agent)
}

// IDWithoutKeyPrefix returns the random part of the current id.
func (s *Session) IDWithoutKeyPrefix() string {
	return StripKeyPrefix(s.id)
}

// IsCurrentSession compares only the random parts, so both bare and
// namespaced ids are accepted.
func (s *Session) IsCurrentSession(id string) bool {
	return s.IDWithoutKeyPrefix() == StripKeyPrefix(id)
}

// Owner returns the user the current id is namespaced under, nil for guests.
func (s *Session) Owner() *int64 {
	return ownerOf(s.id)
}

func ownerOf(id string) *int64 {
	raw, ok := strings.CutPrefix(CurrentKeyPrefix(id), "sessions:")
	if !ok {
		return nil
	}
	uid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &uid
}

// Migrate moves the session data to a fresh id owned by userID (nil for a
// guest). With destroy set the old record is deleted and, for a user
// session, unregistered from its owner's index.
func (s *Session) Migrate(ctx context.Context, destroy bool, userID *int64) error {
	var errs []error
	if destroy {
		if !s.IsGuest() {
			errs = append(errs, s.m.index.RemoveFullID(ctx, nil, s.id))
		}
		errs = append(errs, s.m.handler.Destroy(ctx, s.id))
	}

	if err := s.resetID(userID); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Regenerate rotates the id while keeping the current owner.
func (s *Session) Regenerate(ctx context.Context, destroy bool) error {
	return s.Migrate(ctx, destroy, s.Owner())
}

// Invalidate drops all data, destroys the record and continues as a guest.
func (s *Session) Invalidate(ctx context.Context) error {
	s.record = NewRecord()
	return s.Migrate(ctx, true, nil)
}

func (s *Session) resetID(userID *int64) error {
	s.exists = false
	id, err := GenerateID(userID)
	if err != nil {
		return err
	}
	s.id = id
	return nil
}

// Save writes the record and then registers it in the owner's index. The
// order guarantees indexed keys always point at written records.
func (s *Session) Save(ctx context.Context) error {
	if s.record.Meta == nil {
		s.record.Touch(s.m.now(), "")
	}

	payload, err := EncodeRecord(s.record)
	if err != nil {
		return err
	}
	if err := s.m.handler.Write(ctx, s.id, payload); err != nil {
		return err
	}
	s.exists = true

	if s.IsGuest() {
		return nil
	}
	owner := s.Owner()
	if owner == nil {
		return nil
	}
	return s.m.index.Add(ctx, *owner, s.m.index.FullKey(s.id))
}

// CurrentUserSessions lists the sessions of the authenticated user, most
// recently active first; equal visit times are ordered by id. Keys whose
// record has expired are removed from the index. It returns nil for guests
// and when the index is disabled.
func (s *Session) CurrentUserSessions(ctx context.Context, auth Auth) ([]Info, error) {
	if !auth.IsAuthenticated() || !s.m.index.Enabled() {
		return nil, nil
	}
	userID := auth.UserID

	// Flush first so the current session's metadata is fresh.
	if err := s.Save(ctx); err != nil {
		return nil, err
	}

	keys, err := s.m.index.Keys(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []Info{}, nil
	}

	payloads, err := s.m.payloads(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make([]Info, 0, len(keys))
	for i, key := range keys {
		var payload []byte
		if i < len(payloads) {
			payload = payloads[i]
		}

		if payload == nil {
			if err := s.m.index.RemoveKey(ctx, userID, key); err != nil {
				s.m.log.WarnContext(ctx, "failed to prune expired session key",
					logger.UserID(*userID), logger.SessionKey(key), logger.Error(err))
			} else {
				s.m.log.DebugContext(ctx, "pruned expired session key",
					logger.UserID(*userID), logger.SessionKey(key))
			}
			continue
		}

		rec, err := DecodeRecord(payload)
		if err != nil {
			s.m.log.DebugContext(ctx, "skipping undecodable session",
				logger.SessionKey(key), logger.Error(err))
			continue
		}
		if rec.Meta == nil {
			continue
		}

		agent := s.m.classifier.Classify(rec.Meta.Agent)
		out = append(out, Info{
			ID:        StripKeyPrefix(key),
			LastVisit: time.Unix(rec.Meta.LastVisit, 0),
			Agent:     rec.Meta.Agent,
			Verified:  rec.Meta.Verified,
			Mobile:    agent.IsMobileOrTablet(),
			Device:    agent.Device,
			Platform:  agent.Platform,
			Browser:   agent.Browser,
			Current:   s.IsCurrentSession(key),
		})
	}

	slices.SortFunc(out, func(a, b Info) int {
		if c := b.LastVisit.Compare(a.LastVisit); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return out, nil
}

// DestroyUserSession deletes one of the authenticated user's sessions by its
// random id. It returns false without touching the store for guests.
func (s *Session) DestroyUserSession(ctx context.Context, sessionID string, auth Auth) (bool, error) {
	if !auth.IsAuthenticated() {
		return false, nil
	}

	fullID := KeyPrefix(auth.UserID) + ":" + StripKeyPrefix(sessionID)
	err := errors.Join(
		s.m.handler.Destroy(ctx, fullID),
		s.m.index.RemoveFullID(ctx, auth.UserID, fullID),
	)
	if err != nil {
		return true, err
	}

	s.m.log.DebugContext(ctx, "user session destroyed",
		logger.UserID(*auth.UserID), logger.SessionKey(fullID))
	return true, nil
}
