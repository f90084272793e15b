package session

import (
	"crypto/rand"
	"errors"
	"strconv"
	"strings"
)

// IDLength is the fixed length of the random part of a session id.
const IDLength = 40

const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// Largest multiple of len(idAlphabet) that fits in a byte; bytes at or
	// above it are discarded so every character is equally likely.
	idByteLimit = 256 - 256%len(idAlphabet)

	guestPrefix = "sessions:guest"
)

// KeyPrefix returns the owner namespace of a session id, without the cache prefix.
func KeyPrefix(userID *int64) string {
	if userID == nil {
		return guestPrefix
	}
	return "sessions:" + strconv.FormatInt(*userID, 10)
}

// GenerateID returns KeyPrefix(userID) + ":" + IDLength random characters.
func GenerateID(userID *int64) (string, error) {
	suffix, err := randomString(IDLength)
	if err != nil {
		return "", err
	}
	return KeyPrefix(userID) + ":" + suffix, nil
}

func randomString(n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", errors.Join(ErrTokenGeneration, err)
		}
		for _, b := range buf {
			if int(b) >= idByteLimit {
				continue
			}
			out = append(out, idAlphabet[int(b)%len(idAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// StripKeyPrefix returns the random part of a session id. Ids shorter than
// IDLength are returned unchanged.
func StripKeyPrefix(id string) string {
	if len(id) <= IDLength {
		return id
	}
	return id[len(id)-IDLength:]
}

// CurrentKeyPrefix returns the owner namespace of id, e.g. "sessions:42".
// It is empty when id is too short to carry one.
func CurrentKeyPrefix(id string) string {
	if len(id) <= IDLength {
		return ""
	}
	return id[:len(id)-IDLength-1]
}

// IsGuestID reports whether id belongs to the guest namespace.
func IsGuestID(id string) bool {
	return strings.HasPrefix(id, guestPrefix+":")
}
