package schematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"circuit-designer/pkg/geometry"
)

func pt(x, y float64) geometry.Point2D {
	return geometry.Point2D{X: x, Y: y}
}

func TestAddGate(t *testing.T) {
	t.Run("default inputs", func(t *testing.T) {
		g := NewGraph()
		and := g.AddGate(KindAND, pt(100, 100), 0)
		require.NotNil(t, and)
		assert.Equal(t, 2, and.InputCount())
		assert.Len(t, and.Pins, 3)

		not := g.AddGate(KindNOT, pt(200, 100), 0)
		assert.Equal(t, 1, not.InputCount())
	})

	t.Run("not gate forces single input", func(t *testing.T) {
		g := NewGraph()
		not := g.AddGate(KindNOT, pt(0, 0), 4)
		assert.Equal(t, 1, not.InputCount())
	})

	t.Run("multi input layout", func(t *testing.T) {
		g := NewGraph()
		and := g.AddGate(KindAND, pt(0, 0), 4)
		require.Equal(t, 4, and.InputCount())

		// Inputs sit evenly along the left edge, output centered right.
		for i := 0; i < 4; i++ {
			pin := and.Pin(RoleInput, i)
			require.NotNil(t, pin)
			assert.Equal(t, -GateWidth/2, pin.Offset.X)
		}
		out := and.Pin(RoleOutput, 0)
		require.NotNil(t, out)
		assert.Equal(t, pt(GateWidth/2, 0), out.Offset)
	})

	t.Run("sequential ids in creation order", func(t *testing.T) {
		g := NewGraph()
		a := g.AddGate(KindAND, pt(0, 0), 0)
		b := g.AddGate(KindOR, pt(100, 0), 0)
		assert.NotEqual(t, a.ID, b.ID)

		gates := g.Gates()
		require.Len(t, gates, 2)
		assert.Equal(t, a.ID, gates[0].ID)
		assert.Equal(t, b.ID, gates[1].ID)
	})
}

func TestRotateGate(t *testing.T) {
	t.Run("four rotations are identity", func(t *testing.T) {
		g := NewGraph()
		gate := g.AddGate(KindNAND, pt(100, 100), 0)
		in0 := gate.PinPosition(gate.Pin(RoleInput, 0))

		for i := 0; i < 4; i++ {
			require.NoError(t, g.RotateGate(gate.ID))
		}
		assert.Equal(t, 0, gate.Rotation)
		assert.Equal(t, in0, gate.PinPosition(gate.Pin(RoleInput, 0)))
		assert.Len(t, gate.Pins, 3)
	})

	t.Run("quarter turn moves output pin", func(t *testing.T) {
		g := NewGraph()
		gate := g.AddGate(KindAND, pt(100, 100), 0)
		require.NoError(t, g.RotateGate(gate.ID))
		assert.Equal(t, 90, gate.Rotation)

		// Output was right of center; after one clockwise quarter turn it
		// sits below center.
		out := gate.PinPosition(gate.Pin(RoleOutput, 0))
		assert.InDelta(t, 100, out.X, 1e-9)
		assert.InDelta(t, 125, out.Y, 1e-9)
	})

	t.Run("unknown gate", func(t *testing.T) {
		g := NewGraph()
		err := g.RotateGate("gate-99")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRemoveGateCascade(t *testing.T) {
	g := NewGraph()
	a := g.AddGate(KindAND, pt(0, 0), 0)
	b := g.AddGate(KindOR, pt(200, 0), 0)
	c := g.AddGate(KindNOT, pt(400, 0), 0)

	_, err := g.AddWire(PinEndpoint(a.ID, RoleOutput, 0), PinEndpoint(b.ID, RoleInput, 0))
	require.NoError(t, err)
	keep, err := g.AddWire(PinEndpoint(b.ID, RoleOutput, 0), PinEndpoint(c.ID, RoleInput, 0))
	require.NoError(t, err)

	require.NoError(t, g.RemoveGate(a.ID))

	// Only the wire touching the removed gate goes with it.
	assert.Equal(t, 2, g.GateCount())
	assert.Equal(t, 1, g.WireCount())
	_, ok := g.Wire(keep.ID)
	assert.True(t, ok)

	// The surviving input pin is free again for bookkeeping purposes.
	assert.Empty(t, g.IncidentWires(PinEndpoint(b.ID, RoleInput, 0)))
}

func TestJunctionPruning(t *testing.T) {
	t.Run("junction survives while wired", func(t *testing.T) {
		g := NewGraph()
		a := g.AddGate(KindAND, pt(0, 0), 0)
		j := g.AddJunction(pt(100, 0))
		_, err := g.AddWire(PinEndpoint(a.ID, RoleOutput, 0), JunctionEndpoint(j.ID))
		require.NoError(t, err)
		assert.Equal(t, 1, g.JunctionCount())
	})

	t.Run("junction dropped when last wire goes", func(t *testing.T) {
		g := NewGraph()
		a := g.AddGate(KindAND, pt(0, 0), 0)
		j := g.AddJunction(pt(100, 0))
		w, err := g.AddWire(PinEndpoint(a.ID, RoleOutput, 0), JunctionEndpoint(j.ID))
		require.NoError(t, err)

		require.NoError(t, g.RemoveWire(w.ID))
		assert.Equal(t, 0, g.JunctionCount())
	})

	t.Run("gate removal prunes stranded junction", func(t *testing.T) {
		g := NewGraph()
		a := g.AddGate(KindAND, pt(0, 0), 0)
		j := g.AddJunction(pt(100, 0))
		_, err := g.AddWire(PinEndpoint(a.ID, RoleOutput, 0), JunctionEndpoint(j.ID))
		require.NoError(t, err)

		require.NoError(t, g.RemoveGate(a.ID))
		assert.Equal(t, 0, g.JunctionCount())
		assert.Equal(t, 0, g.WireCount())
	})
}

func TestHitTestEndpoint(t *testing.T) {
	g := NewGraph()
	gate := g.AddGate(KindAND, pt(100, 100), 0)

	t.Run("finds pin within radius", func(t *testing.T) {
		out := gate.PinPosition(gate.Pin(RoleOutput, 0))
		ep, ok := g.HitTestEndpoint(pt(out.X+3, out.Y+3))
		require.True(t, ok)
		assert.True(t, ep.IsPin())
		assert.Equal(t, gate.ID, ep.Gate)
		assert.Equal(t, RoleOutput, ep.Role)
	})

	t.Run("misses outside radius", func(t *testing.T) {
		_, ok := g.HitTestEndpoint(pt(500, 500))
		assert.False(t, ok)
	})

	t.Run("finds junction", func(t *testing.T) {
		j := g.AddJunction(pt(300, 300))
		ep, ok := g.HitTestEndpoint(pt(302, 298))
		require.True(t, ok)
		assert.True(t, ep.IsJunction())
		assert.Equal(t, j.ID, ep.Junction)
	})
}

func TestHitTestEntity(t *testing.T) {
	g := NewGraph()
	a := g.AddGate(KindAND, pt(100, 100), 0)
	b := g.AddGate(KindOR, pt(300, 100), 0)
	w, err := g.AddWire(PinEndpoint(a.ID, RoleOutput, 0), PinEndpoint(b.ID, RoleInput, 0))
	require.NoError(t, err)

	t.Run("gate body", func(t *testing.T) {
		id, ok := g.HitTestEntity(pt(100, 100))
		require.True(t, ok)
		assert.Equal(t, a.ID, id)
	})

	t.Run("wire midpoint", func(t *testing.T) {
		// The wire runs between the two facing pins; hit-test near its middle.
		pa, _ := g.EndpointPosition(w.A)
		pb, _ := g.EndpointPosition(w.B)
		mid := pa.Add(pb).Scale(0.5)
		id, ok := g.HitTestEntity(pt(mid.X, mid.Y+2))
		require.True(t, ok)
		assert.Equal(t, w.ID, id)
	})

	t.Run("empty canvas", func(t *testing.T) {
		_, ok := g.HitTestEntity(pt(900, 900))
		assert.False(t, ok)
	})
}

func TestRemoveEntity(t *testing.T) {
	g := NewGraph()
	a := g.AddGate(KindAND, pt(0, 0), 0)
	b := g.AddGate(KindOR, pt(200, 0), 0)
	w, err := g.AddWire(PinEndpoint(a.ID, RoleOutput, 0), PinEndpoint(b.ID, RoleInput, 0))
	require.NoError(t, err)

	t.Run("wire removal frees the input", func(t *testing.T) {
		require.NoError(t, g.RemoveEntity(w.ID))
		assert.Equal(t, 0, g.WireCount())

		_, err := g.AddWire(PinEndpoint(a.ID, RoleOutput, 0), PinEndpoint(b.ID, RoleInput, 0))
		assert.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		assert.ErrorIs(t, g.RemoveEntity("nope"), ErrNotFound)
	})
}
