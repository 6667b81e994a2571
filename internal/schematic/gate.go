// Package schematic provides the circuit graph model: gates, pins, junctions,
// and wires, with identifier-keyed storage and connection validation.
package schematic

import (
	"fmt"
	"strings"

	"circuit-designer/pkg/geometry"
)

// GateKind identifies the logic function of a gate.
type GateKind int

// Supported gate kinds.
const (
	KindAND GateKind = iota
	KindOR
	KindNOT
	KindNAND
	KindNOR
	KindXOR
	KindXNOR
)

// Kinds lists all gate kinds in display order.
var Kinds = []GateKind{KindAND, KindOR, KindNOT, KindNAND, KindNOR, KindXOR, KindXNOR}

func (k GateKind) String() string {
	switch k {
	case KindAND:
		return "AND"
	case KindOR:
		return "OR"
	case KindNOT:
		return "NOT"
	case KindNAND:
		return "NAND"
	case KindNOR:
		return "NOR"
	case KindXOR:
		return "XOR"
	case KindXNOR:
		return "XNOR"
	default:
		return fmt.Sprintf("{GateKind %d}", int(k))
	}
}

// Name returns the lowercase kind name used for identifiers.
func (k GateKind) Name() string {
	return strings.ToLower(k.String())
}

// ParseKind parses a gate kind name (case-insensitive).
func ParseKind(s string) (GateKind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown gate kind %q", s)
}

// DefaultInputs returns the default input pin count for the kind:
// 1 for NOT, 2 for everything else.
func (k GateKind) DefaultInputs() int {
	if k == KindNOT {
		return 1
	}
	return 2
}

// Gate body dimensions in canvas units. The grid default is 25, so a gate
// spans two grid cells.
const (
	GateWidth  = 50.0
	GateHeight = 50.0
)

// PinRole distinguishes input from output pins.
type PinRole int

// Pin roles.
const (
	RoleInput PinRole = iota
	RoleOutput
)

func (r PinRole) String() string {
	if r == RoleOutput {
		return "output"
	}
	return "input"
}

// Pin is a connection terminal owned by a gate. Offset is local to the gate
// and unrotated; world positions are derived through the gate's rotation on
// every query, so rotating a gate never touches pin state. Wires holds the
// IDs of incident wires.
type Pin struct {
	Role   PinRole          `json:"role"`
	Index  int              `json:"index"`
	Offset geometry.Point2D `json:"offset"`
	Wires  []string         `json:"wires,omitempty"`
}

// Gate is a logic element placed on the canvas.
type Gate struct {
	ID       string           `json:"id"`
	Kind     GateKind         `json:"kind"`
	Position geometry.Point2D `json:"position"`
	Inputs   int              `json:"inputs"`
	Rotation int              `json:"rotation"` // degrees, multiple of 90
	Pins     []Pin            `json:"pins"`
}

// buildPins lays out the pins for a gate: inputs evenly distributed along
// the left edge (a fixed two-slot layout for the common two-input case),
// one output centered on the right edge.
func buildPins(inputs int) []Pin {
	pins := make([]Pin, 0, inputs+1)
	halfW := GateWidth / 2

	switch inputs {
	case 1:
		pins = append(pins, Pin{Role: RoleInput, Index: 0, Offset: geometry.Point2D{X: -halfW}})
	case 2:
		pins = append(pins,
			Pin{Role: RoleInput, Index: 0, Offset: geometry.Point2D{X: -halfW, Y: -GateHeight / 4}},
			Pin{Role: RoleInput, Index: 1, Offset: geometry.Point2D{X: -halfW, Y: GateHeight / 4}},
		)
	default:
		for i := 0; i < inputs; i++ {
			y := -GateHeight/2 + GateHeight*(float64(i)+0.5)/float64(inputs)
			pins = append(pins, Pin{Role: RoleInput, Index: i, Offset: geometry.Point2D{X: -halfW, Y: y}})
		}
	}

	pins = append(pins, Pin{Role: RoleOutput, Index: 0, Offset: geometry.Point2D{X: halfW}})
	return pins
}

// Pin returns the pin with the given role and index, or nil.
func (g *Gate) Pin(role PinRole, index int) *Pin {
	for i := range g.Pins {
		if g.Pins[i].Role == role && g.Pins[i].Index == index {
			return &g.Pins[i]
		}
	}
	return nil
}

// InputCount returns the number of input pins.
func (g *Gate) InputCount() int {
	n := 0
	for i := range g.Pins {
		if g.Pins[i].Role == RoleInput {
			n++
		}
	}
	return n
}

// PinPosition returns the world position of a pin: the gate position plus
// the pin offset rotated by the gate's current orientation.
func (g *Gate) PinPosition(p *Pin) geometry.Point2D {
	return g.Position.Add(p.Offset.RotateQuarter(g.Rotation / 90))
}

// Bounds returns the gate body rectangle in world coordinates. The body is
// square, so it is rotation-invariant.
func (g *Gate) Bounds() geometry.Rect {
	return geometry.NewRect(
		g.Position.X-GateWidth/2,
		g.Position.Y-GateHeight/2,
		GateWidth,
		GateHeight,
	)
}
