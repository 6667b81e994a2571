package latex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circuit-designer/internal/schematic"
	"circuit-designer/pkg/geometry"
)

func pt(x, y float64) geometry.Point2D {
	return geometry.Point2D{X: x, Y: y}
}

func TestSerializeEmpty(t *testing.T) {
	g := schematic.NewGraph()
	out := Serialize(g)

	assert.Equal(t, Preamble+"\n"+Epilogue+"\n", out)
	assert.NotContains(t, out, "%Gates")
	assert.NotContains(t, out, "%Junctions")
	assert.NotContains(t, out, "%Connections")
}

func TestSerializeSingleKinds(t *testing.T) {
	g := schematic.NewGraph()
	and := g.AddGate(schematic.KindAND, pt(0, 0), 0)
	or := g.AddGate(schematic.KindOR, pt(100, 0), 0)
	_, err := g.AddWire(
		schematic.PinEndpoint(and.ID, schematic.RoleOutput, 0),
		schematic.PinEndpoint(or.ID, schematic.RoleInput, 0),
	)
	require.NoError(t, err)

	out := Serialize(g)

	// One gate per kind, so identifiers carry no suffix.
	assert.Contains(t, out, `\node[and gate US, draw] (and) at (0, 0) {};`)
	assert.Contains(t, out, `\node[or gate US, draw] (or) at (2, 0) {};`)
	assert.Contains(t, out, `\draw (and.output) -- (or.input 1);`)
	assert.Contains(t, out, "%Gates\n")
	assert.Contains(t, out, "%Connections\n")
	assert.NotContains(t, out, "%Junctions")
}

func TestSerializeDuplicateKinds(t *testing.T) {
	g := schematic.NewGraph()
	g.AddGate(schematic.KindAND, pt(0, 0), 0)
	g.AddGate(schematic.KindOR, pt(100, 0), 0)
	g.AddGate(schematic.KindAND, pt(200, 0), 0)

	doc := BuildDocument(g)
	require.Len(t, doc.Gates, 3)

	// Both AND gates are suffixed with their global index; the lone OR
	// stays bare.
	assert.Equal(t, "and1", doc.Gates[0].ID)
	assert.Equal(t, "or", doc.Gates[1].ID)
	assert.Equal(t, "and3", doc.Gates[2].ID)
}

func TestSerializeCoordinates(t *testing.T) {
	g := schematic.NewGraph()
	g.AddGate(schematic.KindXOR, pt(125, 75), 0)

	out := Serialize(g)

	// Canvas units divide by 50 and Y flips sign.
	assert.Contains(t, out, `(xor) at (2.5, -1.5)`)
}

func TestSerializeAxisCoordinates(t *testing.T) {
	// Entities on the X axis exercise the vertical flip at Y=0; the sign
	// flip must not leak IEEE negative zero into the output.
	g := schematic.NewGraph()
	and := g.AddGate(schematic.KindAND, pt(0, 0), 0)
	j := g.AddJunction(pt(100, 0))
	_, err := g.AddWire(
		schematic.PinEndpoint(and.ID, schematic.RoleOutput, 0),
		schematic.JunctionEndpoint(j.ID),
	)
	require.NoError(t, err)

	out := Serialize(g)
	assert.Contains(t, out, `(and) at (0, 0)`)
	assert.Contains(t, out, `(junction1) at (2, 0)`)
	assert.NotContains(t, out, "-0")
}

func TestSerializeQualifiers(t *testing.T) {
	t.Run("input count beyond two", func(t *testing.T) {
		g := schematic.NewGraph()
		g.AddGate(schematic.KindNAND, pt(0, 0), 3)
		assert.Contains(t, Serialize(g), `\node[nand gate US, draw, logic gate inputs=3] (nand) at (0, 0) {};`)
	})

	t.Run("two inputs carry no qualifier", func(t *testing.T) {
		g := schematic.NewGraph()
		g.AddGate(schematic.KindNAND, pt(0, 0), 0)
		assert.NotContains(t, Serialize(g), "logic gate inputs")
	})

	t.Run("rotation", func(t *testing.T) {
		g := schematic.NewGraph()
		gate := g.AddGate(schematic.KindAND, pt(0, 0), 0)
		require.NoError(t, g.RotateGate(gate.ID))
		assert.Contains(t, Serialize(g), `\node[and gate US, draw, rotate=90] (and) at (0, 0) {};`)
	})
}

func TestSerializeSingleInputAnchor(t *testing.T) {
	g := schematic.NewGraph()
	and := g.AddGate(schematic.KindAND, pt(0, 0), 0)
	not := g.AddGate(schematic.KindNOT, pt(100, 0), 0)
	_, err := g.AddWire(
		schematic.PinEndpoint(and.ID, schematic.RoleOutput, 0),
		schematic.PinEndpoint(not.ID, schematic.RoleInput, 0),
	)
	require.NoError(t, err)

	out := Serialize(g)
	assert.Contains(t, out, `\draw (and.output) -- (not.input);`)
	assert.NotContains(t, out, "not.input 1")
}

func TestSerializeJunctions(t *testing.T) {
	g := schematic.NewGraph()
	and := g.AddGate(schematic.KindAND, pt(0, 0), 0)
	j := g.AddJunction(pt(150, 50))
	_, err := g.AddWire(
		schematic.PinEndpoint(and.ID, schematic.RoleOutput, 0),
		schematic.JunctionEndpoint(j.ID),
	)
	require.NoError(t, err)

	out := Serialize(g)
	assert.Contains(t, out, "%Junctions\n")
	assert.Contains(t, out, `\node[circle, fill, inner sep=1.5pt] (junction1) at (3, -1) {};`)
	assert.Contains(t, out, `\draw (and.output) -- (junction1);`)
}

func TestSerializeDeterministic(t *testing.T) {
	build := func() *schematic.Graph {
		g := schematic.NewGraph()
		a := g.AddGate(schematic.KindAND, pt(0, 0), 0)
		b := g.AddGate(schematic.KindAND, pt(100, 100), 0)
		n := g.AddGate(schematic.KindNOT, pt(200, 0), 0)
		j := g.AddJunction(pt(150, 0))
		_, _ = g.AddWire(schematic.PinEndpoint(a.ID, schematic.RoleOutput, 0), schematic.JunctionEndpoint(j.ID))
		_, _ = g.AddWire(schematic.JunctionEndpoint(j.ID), schematic.PinEndpoint(n.ID, schematic.RoleInput, 0))
		_, _ = g.AddWire(schematic.PinEndpoint(b.ID, schematic.RoleOutput, 0), schematic.PinEndpoint(a.ID, schematic.RoleInput, 0))
		return g
	}

	first := Serialize(build())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Serialize(build()))
	}
}

func TestDocumentMatchesText(t *testing.T) {
	g := schematic.NewGraph()
	a := g.AddGate(schematic.KindAND, pt(0, 0), 0)
	b := g.AddGate(schematic.KindOR, pt(100, 50), 0)
	_, err := g.AddWire(
		schematic.PinEndpoint(a.ID, schematic.RoleOutput, 0),
		schematic.PinEndpoint(b.ID, schematic.RoleInput, 1),
	)
	require.NoError(t, err)

	doc := BuildDocument(g)
	text := Serialize(g)

	// Every statement in the document form appears verbatim in the text.
	for _, gs := range doc.Gates {
		assert.Contains(t, text, gs.Render())
	}
	for _, cs := range doc.Connections {
		assert.Contains(t, text, cs.Render())
	}
	assert.Contains(t, text, `\draw (and.output) -- (or.input 2);`)

	// Sections appear in order.
	gatesIdx := strings.Index(text, "%Gates")
	connIdx := strings.Index(text, "%Connections")
	require.GreaterOrEqual(t, gatesIdx, 0)
	require.GreaterOrEqual(t, connIdx, 0)
	assert.Less(t, gatesIdx, connIdx)
}

func TestResolveAnchorStaleEndpoints(t *testing.T) {
	gateIDs := map[string]string{"g1": "and"}
	gateInputs := map[string]int{"g1": 2}
	junctionIDs := map[string]string{"j1": "junction1"}

	t.Run("known references resolve", func(t *testing.T) {
		ref, ok := resolveAnchor(schematic.PinEndpoint("g1", schematic.RoleInput, 1), gateIDs, gateInputs, junctionIDs)
		require.True(t, ok)
		assert.Equal(t, "and.input 2", ref)

		ref, ok = resolveAnchor(schematic.JunctionEndpoint("j1"), gateIDs, gateInputs, junctionIDs)
		require.True(t, ok)
		assert.Equal(t, "junction1", ref)
	})

	t.Run("unknown gate reports false", func(t *testing.T) {
		_, ok := resolveAnchor(schematic.PinEndpoint("gone", schematic.RoleOutput, 0), gateIDs, gateInputs, junctionIDs)
		assert.False(t, ok)
	})

	t.Run("unknown junction reports false", func(t *testing.T) {
		_, ok := resolveAnchor(schematic.JunctionEndpoint("gone"), gateIDs, gateInputs, junctionIDs)
		assert.False(t, ok)
	})

	t.Run("wire with stale endpoint is dropped", func(t *testing.T) {
		g := schematic.NewGraph()
		a := g.AddGate(schematic.KindAND, pt(0, 0), 0)
		b := g.AddGate(schematic.KindNOT, pt(200, 0), 0)
		_, err := g.AddWire(
			schematic.PinEndpoint(a.ID, schematic.RoleOutput, 0),
			schematic.PinEndpoint(b.ID, schematic.RoleInput, 0),
		)
		require.NoError(t, err)

		doc := BuildDocument(g)
		require.Len(t, doc.Connections, 1)

		// A connection whose endpoint no longer resolves must be omitted
		// rather than rendered as a dangling reference.
		stale := &Document{}
		for _, w := range g.Wires() {
			ids := map[string]string{b.ID: "not"}
			inputs := map[string]int{b.ID: 1}
			if from, ok := resolveAnchor(w.A, ids, inputs, nil); ok {
				if to, ok := resolveAnchor(w.B, ids, inputs, nil); ok {
					stale.Connections = append(stale.Connections, ConnectionStatement{From: from, To: to})
				}
			}
		}
		assert.Empty(t, stale.Connections)
		assert.NotContains(t, stale.Render(), `\draw`)
	})
}
