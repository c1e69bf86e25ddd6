package uid

import "github.com/google/uuid"

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// NewWithPrefix generates a new unique identifier with a fixed prefix,
// used for synthetic catalog ids.
func NewWithPrefix(prefix string) string {
	return prefix + uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
