package schematic

import (
	"fmt"

	"circuit-designer/pkg/geometry"
)

// EndpointKind discriminates the two things a wire may attach to.
type EndpointKind int

// Endpoint kinds.
const (
	EndpointPin EndpointKind = iota
	EndpointJunction
)

// Endpoint identifies a wire attachment point by opaque identifiers rather
// than live references, so a deleted entity invalidates a lookup instead of
// leaving a dangling pointer. The struct is comparable; two endpoints are
// the same attachment point iff they compare equal.
type Endpoint struct {
	Kind     EndpointKind `json:"kind"`
	Gate     string       `json:"gate,omitempty"`     // pin endpoints
	Role     PinRole      `json:"role,omitempty"`     // pin endpoints
	Index    int          `json:"index,omitempty"`    // pin endpoints
	Junction string       `json:"junction,omitempty"` // junction endpoints
}

// PinEndpoint builds an endpoint referencing a gate pin.
func PinEndpoint(gateID string, role PinRole, index int) Endpoint {
	return Endpoint{Kind: EndpointPin, Gate: gateID, Role: role, Index: index}
}

// JunctionEndpoint builds an endpoint referencing a junction.
func JunctionEndpoint(id string) Endpoint {
	return Endpoint{Kind: EndpointJunction, Junction: id}
}

// IsPin reports whether the endpoint references a gate pin.
func (e Endpoint) IsPin() bool { return e.Kind == EndpointPin }

// IsJunction reports whether the endpoint references a junction.
func (e Endpoint) IsJunction() bool { return e.Kind == EndpointJunction }

func (e Endpoint) String() string {
	if e.IsJunction() {
		return e.Junction
	}
	return fmt.Sprintf("%s.%s[%d]", e.Gate, e.Role, e.Index)
}

// Junction is a wire-splitting point with no logical identity beyond
// electrical branching.
type Junction struct {
	ID       string           `json:"id"`
	Position geometry.Point2D `json:"position"`
	Wires    []string         `json:"wires,omitempty"`
}

// Wire is an undirected edge between two endpoints. The A/B order carries no
// meaning but is preserved for deterministic serialization.
type Wire struct {
	ID string   `json:"id"`
	A  Endpoint `json:"a"`
	B  Endpoint `json:"b"`
}

// Other returns the endpoint opposite to e, or the zero endpoint if e is not
// one of the wire's endpoints.
func (w *Wire) Other(e Endpoint) Endpoint {
	switch e {
	case w.A:
		return w.B
	case w.B:
		return w.A
	default:
		return Endpoint{}
	}
}
