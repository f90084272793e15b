package session

import "errors"

var (
	// ErrCorruptPayload indicates a stored record could not be decoded
	ErrCorruptPayload = errors.New("session.corrupt_payload")

	// ErrTokenGeneration indicates the random id source failed
	ErrTokenGeneration = errors.New("session.token_generation_failed")
)
