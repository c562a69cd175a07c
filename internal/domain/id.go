package domain

import "github.com/google/uuid"

// generateID creates a new unique identifier for tasks and sessions.
func generateID() string {
	return uuid.New().String()
}
