package app

import "github.com/google/uuid"

// generateID produces a random identifier for new tenants.
// Isolated here so the ID strategy can evolve independently.
func generateID() string {
	return uuid.NewString()
}
