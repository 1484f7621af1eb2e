package types

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fekt2016/eaz-back-sub005/pkg/enums"
)

// Actor is the tagged union identifying who initiated a mutation. Ledger
// entries and refund records persist it instead of a dynamically-typed
// reference so the processing principal is always resolvable.
type Actor struct {
	Type enums.ActorType `json:"actor_type"`
	ID   uuid.UUID       `json:"actor_id"`
}

// System is the actor recorded for mutations no human triggered.
func System() Actor {
	return Actor{Type: enums.ActorTypeSystem}
}

// Admin builds an admin actor.
func Admin(id uuid.UUID) Actor {
	return Actor{Type: enums.ActorTypeAdmin, ID: id}
}

// Validate checks the tag; a nil ID is only allowed for the system actor.
func (a Actor) Validate() error {
	if !a.Type.IsValid() {
		return fmt.Errorf("invalid actor type %q", a.Type)
	}
	if a.Type != enums.ActorTypeSystem && a.ID == uuid.Nil {
		return fmt.Errorf("actor id required for %s", a.Type)
	}
	return nil
}
