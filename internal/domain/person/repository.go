package person

import "context"

// Directory is the read-only person directory.
type Directory interface {
	GetByID(ctx context.Context, id string, personType Type) (Person, error)
	// ListActive returns active persons; an empty personType means every type.
	ListActive(ctx context.Context, personType Type) ([]Person, error)
}
