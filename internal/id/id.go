package id

import "github.com/google/uuid"

// GenerateID creates a random (v4) UUID string for sessions, turns and
// evaluations.
func GenerateID() string {
	return uuid.NewString()
}

// Valid reports whether s is a well-formed ID. Handlers use it to reject
// garbage path parameters before touching the store.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
