package ports

// EntityHandler validates and normalizes a raw recognized value for one
// entity type. An error means the value is rejected and the slot is
// re-prompted; it is a routing decision, not a fault.
type EntityHandler interface {
	Normalize(raw string) (string, error)
}

// EntityHandlerFunc adapts a plain function to the EntityHandler interface.
type EntityHandlerFunc func(raw string) (string, error)

// Normalize implements EntityHandler.
func (f EntityHandlerFunc) Normalize(raw string) (string, error) {
	return f(raw)
}
