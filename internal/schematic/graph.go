package schematic

import (
	"errors"
	"fmt"
	"sync"

	"circuit-designer/pkg/geometry"
)

// ErrNotFound reports a command targeting an entity no longer present.
// Callers treat it as a no-op.
var ErrNotFound = errors.New("entity not found")

// Graph is the mutable circuit container. Entities are stored in ID-keyed
// maps with parallel ID slices preserving creation order; the serializer
// depends on that order for deterministic output. A single RWMutex makes
// every mutation atomic with respect to readers, so the periodic preview
// poll never observes a half-applied cascade.
type Graph struct {
	mu sync.RWMutex

	gates     map[string]*Gate
	gateOrder []string

	junctions     map[string]*Junction
	junctionOrder []string

	wires     map[string]*Wire
	wireOrder []string

	nextGate     int
	nextJunction int
	nextWire     int
}

// NewGraph creates an empty circuit graph.
func NewGraph() *Graph {
	return &Graph{
		gates:     make(map[string]*Gate),
		junctions: make(map[string]*Junction),
		wires:     make(map[string]*Wire),
	}
}

// AddGate creates a gate of the given kind at the given position and builds
// its pins. inputs <= 0 selects the kind's default; NOT gates always get a
// single input, every other kind at least two.
func (g *Graph) AddGate(kind GateKind, pos geometry.Point2D, inputs int) *Gate {
	g.mu.Lock()
	defer g.mu.Unlock()

	if inputs <= 0 {
		inputs = kind.DefaultInputs()
	}
	if kind == KindNOT {
		inputs = 1
	} else if inputs < 2 {
		inputs = 2
	}

	g.nextGate++
	gate := &Gate{
		ID:       fmt.Sprintf("gate-%d", g.nextGate),
		Kind:     kind,
		Position: pos,
		Inputs:   inputs,
		Pins:     buildPins(inputs),
	}
	g.gates[gate.ID] = gate
	g.gateOrder = append(g.gateOrder, gate.ID)
	return gate
}

// RotateGate advances the gate's orientation by 90 degrees. Pin offsets stay
// local; world positions pick up the new orientation on the next query, so
// incident wires re-resolve their geometry without any topology change.
// Returns ErrNotFound if the gate does not exist.
func (g *Graph) RotateGate(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	gate, ok := g.gates[id]
	if !ok {
		return fmt.Errorf("rotate %s: %w", id, ErrNotFound)
	}
	gate.Rotation = (gate.Rotation + 90) % 360
	return nil
}

// MoveGate sets the gate's position.
func (g *Graph) MoveGate(id string, pos geometry.Point2D) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	gate, ok := g.gates[id]
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrNotFound)
	}
	gate.Position = pos
	return nil
}

// RemoveGate removes the gate, cascading: incident wires first (each wire is
// unregistered from its other endpoint), then the pins with the gate itself.
func (g *Graph) RemoveGate(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	gate, ok := g.gates[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}

	for i := range gate.Pins {
		for _, wid := range append([]string(nil), gate.Pins[i].Wires...) {
			g.removeWireLocked(wid)
		}
	}

	delete(g.gates, id)
	g.gateOrder = removeString(g.gateOrder, id)
	g.pruneJunctionsLocked()
	return nil
}

// AddJunction creates a junction at the given position.
func (g *Graph) AddJunction(pos geometry.Point2D) *Junction {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextJunction++
	j := &Junction{
		ID:       fmt.Sprintf("junction-%d", g.nextJunction),
		Position: pos,
	}
	g.junctions[j.ID] = j
	g.junctionOrder = append(g.junctionOrder, j.ID)
	return j
}

// MoveJunction sets the junction's position.
func (g *Graph) MoveJunction(id string, pos geometry.Point2D) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	j, ok := g.junctions[id]
	if !ok {
		return fmt.Errorf("move %s: %w", id, ErrNotFound)
	}
	j.Position = pos
	return nil
}

// RemoveJunction removes the junction and cascades over its incident wires.
func (g *Graph) RemoveJunction(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeJunctionLocked(id)
}

func (g *Graph) removeJunctionLocked(id string) error {
	j, ok := g.junctions[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}

	for _, wid := range append([]string(nil), j.Wires...) {
		g.removeWireLocked(wid)
	}

	delete(g.junctions, id)
	g.junctionOrder = removeString(g.junctionOrder, id)
	g.pruneJunctionsLocked()
	return nil
}

// AddWire validates the connection and, if legal, creates a wire and
// registers it in both endpoints' incidence lists.
func (g *Graph) AddWire(a, b Endpoint) (*Wire, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.validateLocked(a, b); err != nil {
		return nil, err
	}

	g.nextWire++
	w := &Wire{
		ID: fmt.Sprintf("wire-%d", g.nextWire),
		A:  a,
		B:  b,
	}
	g.wires[w.ID] = w
	g.wireOrder = append(g.wireOrder, w.ID)
	g.registerLocked(a, w.ID)
	g.registerLocked(b, w.ID)
	return w, nil
}

// RemoveWire unregisters the wire from both endpoints and deletes it.
// Junctions left with no incident wires are pruned.
func (g *Graph) RemoveWire(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.wires[id]; !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	g.removeWireLocked(id)
	g.pruneJunctionsLocked()
	return nil
}

func (g *Graph) removeWireLocked(id string) {
	w, ok := g.wires[id]
	if !ok {
		return
	}
	g.unregisterLocked(w.A, id)
	g.unregisterLocked(w.B, id)
	delete(g.wires, id)
	g.wireOrder = removeString(g.wireOrder, id)
}

// pruneJunctionsLocked drops junctions whose incidence lists emptied during
// a removal cascade. Junctions only ever come into existence together with a
// wire, so an empty list means the node is dead weight on the canvas.
func (g *Graph) pruneJunctionsLocked() {
	for _, id := range append([]string(nil), g.junctionOrder...) {
		if j := g.junctions[id]; j != nil && len(j.Wires) == 0 {
			delete(g.junctions, id)
			g.junctionOrder = removeString(g.junctionOrder, id)
		}
	}
}

func (g *Graph) registerLocked(e Endpoint, wireID string) {
	if list := g.incidenceLocked(e); list != nil {
		*list = append(*list, wireID)
	}
}

func (g *Graph) unregisterLocked(e Endpoint, wireID string) {
	if list := g.incidenceLocked(e); list != nil {
		*list = removeString(*list, wireID)
	}
}

// incidenceLocked returns the incidence list backing an endpoint, or nil if
// the referenced entity is gone.
func (g *Graph) incidenceLocked(e Endpoint) *[]string {
	switch e.Kind {
	case EndpointPin:
		gate, ok := g.gates[e.Gate]
		if !ok {
			return nil
		}
		pin := gate.Pin(e.Role, e.Index)
		if pin == nil {
			return nil
		}
		return &pin.Wires
	case EndpointJunction:
		j, ok := g.junctions[e.Junction]
		if !ok {
			return nil
		}
		return &j.Wires
	default:
		return nil
	}
}

func (g *Graph) endpointExistsLocked(e Endpoint) bool {
	return g.incidenceLocked(e) != nil
}

// EndpointExists reports whether the endpoint still resolves to a live
// entity.
func (g *Graph) EndpointExists(e Endpoint) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.endpointExistsLocked(e)
}

// EndpointPosition resolves an endpoint to its world position.
func (g *Graph) EndpointPosition(e Endpoint) (geometry.Point2D, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.endpointPositionLocked(e)
}

func (g *Graph) endpointPositionLocked(e Endpoint) (geometry.Point2D, error) {
	switch e.Kind {
	case EndpointPin:
		gate, ok := g.gates[e.Gate]
		if !ok {
			return geometry.Point2D{}, fmt.Errorf("endpoint %s: %w", e, ErrNotFound)
		}
		pin := gate.Pin(e.Role, e.Index)
		if pin == nil {
			return geometry.Point2D{}, fmt.Errorf("endpoint %s: %w", e, ErrNotFound)
		}
		return gate.PinPosition(pin), nil
	case EndpointJunction:
		j, ok := g.junctions[e.Junction]
		if !ok {
			return geometry.Point2D{}, fmt.Errorf("endpoint %s: %w", e, ErrNotFound)
		}
		return j.Position, nil
	default:
		return geometry.Point2D{}, fmt.Errorf("endpoint %s: %w", e, ErrNotFound)
	}
}

// IncidentWires returns the IDs of wires touching the endpoint.
func (g *Graph) IncidentWires(e Endpoint) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	list := g.incidenceLocked(e)
	if list == nil {
		return nil
	}
	return append([]string(nil), *list...)
}

// Gate returns a gate by ID.
func (g *Graph) Gate(id string) (*Gate, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	gate, ok := g.gates[id]
	return gate, ok
}

// Junction returns a junction by ID.
func (g *Graph) Junction(id string) (*Junction, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	j, ok := g.junctions[id]
	return j, ok
}

// Wire returns a wire by ID.
func (g *Graph) Wire(id string) (*Wire, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	w, ok := g.wires[id]
	return w, ok
}

// Gates returns all gates in creation order.
func (g *Graph) Gates() []*Gate {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]*Gate, 0, len(g.gateOrder))
	for _, id := range g.gateOrder {
		if gate := g.gates[id]; gate != nil {
			result = append(result, gate)
		}
	}
	return result
}

// Junctions returns all junctions in creation order.
func (g *Graph) Junctions() []*Junction {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]*Junction, 0, len(g.junctionOrder))
	for _, id := range g.junctionOrder {
		if j := g.junctions[id]; j != nil {
			result = append(result, j)
		}
	}
	return result
}

// Wires returns all wires in creation order.
func (g *Graph) Wires() []*Wire {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]*Wire, 0, len(g.wireOrder))
	for _, id := range g.wireOrder {
		if w := g.wires[id]; w != nil {
			result = append(result, w)
		}
	}
	return result
}

// GateCount returns the number of gates.
func (g *Graph) GateCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.gates)
}

// JunctionCount returns the number of junctions.
func (g *Graph) JunctionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.junctions)
}

// WireCount returns the number of wires.
func (g *Graph) WireCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.wires)
}

// Hit test tolerances in canvas units.
const (
	PinHitRadius      = 8.0
	JunctionHitRadius = 7.0
	WireHitTolerance  = 5.0
)

// HitTestEndpoint finds the pin or junction at the given point. Pins are
// checked first across all gates in creation order, then junctions.
func (g *Graph) HitTestEndpoint(p geometry.Point2D) (Endpoint, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, id := range g.gateOrder {
		gate := g.gates[id]
		for i := range gate.Pins {
			pin := &gate.Pins[i]
			if gate.PinPosition(pin).Distance(p) <= PinHitRadius {
				return PinEndpoint(gate.ID, pin.Role, pin.Index), true
			}
		}
	}
	for _, id := range g.junctionOrder {
		if g.junctions[id].Position.Distance(p) <= JunctionHitRadius {
			return JunctionEndpoint(id), true
		}
	}
	return Endpoint{}, false
}

// HitTestEntity finds the selectable entity at the given point: junctions
// first (small, precise hits), then gate bodies, then wires.
func (g *Graph) HitTestEntity(p geometry.Point2D) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, id := range g.junctionOrder {
		if g.junctions[id].Position.Distance(p) <= JunctionHitRadius {
			return id, true
		}
	}
	for _, id := range g.gateOrder {
		if g.gates[id].Bounds().Contains(p) {
			return id, true
		}
	}
	for _, id := range g.wireOrder {
		w := g.wires[id]
		a, errA := g.endpointPositionLocked(w.A)
		b, errB := g.endpointPositionLocked(w.B)
		if errA != nil || errB != nil {
			continue
		}
		if geometry.PointToSegmentDistance(p, a, b) <= WireHitTolerance {
			return id, true
		}
	}
	return "", false
}

// RemoveEntity removes whatever entity the ID names, with the appropriate
// cascade. Unknown IDs are reported as ErrNotFound.
func (g *Graph) RemoveEntity(id string) error {
	g.mu.RLock()
	_, isGate := g.gates[id]
	_, isJunction := g.junctions[id]
	_, isWire := g.wires[id]
	g.mu.RUnlock()

	switch {
	case isGate:
		return g.RemoveGate(id)
	case isJunction:
		return g.RemoveJunction(id)
	case isWire:
		return g.RemoveWire(id)
	default:
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
}

func removeString(slice []string, s string) []string {
	for i, v := range slice {
		if v == s {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
