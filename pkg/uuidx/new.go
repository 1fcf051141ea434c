// Package uuidx wraps uuid generation so callers never handle the error
// path of v7 generation.
package uuidx

import "github.com/google/uuid"

// New returns a time-ordered v7 UUID, falling back to v4 when the clock
// source misbehaves.
func New() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// NewString returns New formatted as a string.
func NewString() string {
	return New().String()
}
