package latex

import (
	"fmt"

	"circuit-designer/internal/schematic"
	"circuit-designer/pkg/geometry"
)

// OutputScale maps canvas units to TikZ coordinate units. One TikZ unit
// spans one gate width.
const OutputScale = 50.0

// outputTransform maps canvas coordinates to TikZ coordinates: scale down by
// OutputScale and flip the vertical axis, since the canvas Y grows downward
// and the TikZ Y grows upward.
var outputTransform = geometry.Scaling(1/OutputScale, -1/OutputScale)

var symbols = map[schematic.GateKind]string{
	schematic.KindAND:  "and gate US",
	schematic.KindOR:   "or gate US",
	schematic.KindNOT:  "not gate US",
	schematic.KindNAND: "nand gate US",
	schematic.KindNOR:  "nor gate US",
	schematic.KindXOR:  "xor gate US",
	schematic.KindXNOR: "xnor gate US",
}

// BuildDocument walks the graph in creation order and produces the structured
// document form. The result is a pure function of the graph's construction
// history, so repeated calls on an unchanged graph are byte-identical once
// rendered.
func BuildDocument(g *schematic.Graph) *Document {
	doc := &Document{}

	gates := g.Gates()
	kindCount := make(map[schematic.GateKind]int)
	for _, gate := range gates {
		kindCount[gate.Kind]++
	}

	// Identifier assignment: the bare kind name when unique, otherwise the
	// kind name suffixed with the gate's 1-based position among all gates.
	gateIDs := make(map[string]string, len(gates))
	gateInputs := make(map[string]int, len(gates))
	for i, gate := range gates {
		id := gate.Kind.Name()
		if kindCount[gate.Kind] > 1 {
			id = fmt.Sprintf("%s%d", id, i+1)
		}
		gateIDs[gate.ID] = id
		gateInputs[gate.ID] = gate.InputCount()
		pos := outputTransform.Apply(gate.Position)
		doc.Gates = append(doc.Gates, GateStatement{
			ID:       id,
			Symbol:   symbols[gate.Kind],
			Inputs:   gate.InputCount(),
			Rotation: gate.Rotation,
			X:        pos.X,
			Y:        pos.Y,
		})
	}

	junctionIDs := make(map[string]string)
	for i, j := range g.Junctions() {
		id := fmt.Sprintf("junction%d", i+1)
		junctionIDs[j.ID] = id
		pos := outputTransform.Apply(j.Position)
		doc.Junctions = append(doc.Junctions, JunctionStatement{
			ID: id,
			X:  pos.X,
			Y:  pos.Y,
		})
	}

	for _, w := range g.Wires() {
		from, ok := resolveAnchor(w.A, gateIDs, gateInputs, junctionIDs)
		if !ok {
			continue
		}
		to, ok := resolveAnchor(w.B, gateIDs, gateInputs, junctionIDs)
		if !ok {
			continue
		}
		doc.Connections = append(doc.Connections, ConnectionStatement{From: from, To: to})
	}

	return doc
}

// Serialize renders the graph as LaTeX source text.
func Serialize(g *schematic.Graph) string {
	return BuildDocument(g).Render()
}

// resolveAnchor turns a wire endpoint into its textual TikZ reference. A
// stale endpoint that no longer maps to a serialized entity reports false so
// the caller can drop the connection instead of emitting a broken reference.
func resolveAnchor(e schematic.Endpoint, gateIDs map[string]string, gateInputs map[string]int, junctionIDs map[string]string) (string, bool) {
	if e.IsJunction() {
		id, ok := junctionIDs[e.Junction]
		return id, ok
	}
	id, ok := gateIDs[e.Gate]
	if !ok {
		return "", false
	}
	if e.Role == schematic.RoleOutput {
		return id + ".output", true
	}
	// Single-input gates use the bare anchor name; multi-input gates index
	// from 1.
	if gateInputs[e.Gate] == 1 {
		return id + ".input", true
	}
	return fmt.Sprintf("%s.input %d", id, e.Index+1), true
}
