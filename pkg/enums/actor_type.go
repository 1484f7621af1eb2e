package enums

import "fmt"

// ActorType identifies the kind of principal that initiated a mutation.
type ActorType string

const (
	ActorTypeAdmin  ActorType = "admin"
	ActorTypeSeller ActorType = "seller"
	ActorTypeUser   ActorType = "user"
	ActorTypeSystem ActorType = "system"
)

var validActorTypes = []ActorType{
	ActorTypeAdmin,
	ActorTypeSeller,
	ActorTypeUser,
	ActorTypeSystem,
}

// IsValid reports whether the value is a known ActorType.
func (t ActorType) IsValid() bool {
	for _, candidate := range validActorTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseActorType converts raw input into an ActorType.
func ParseActorType(value string) (ActorType, error) {
	for _, candidate := range validActorTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor type %q", value)
}
