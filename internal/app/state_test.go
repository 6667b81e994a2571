package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatexEngineSelection(t *testing.T) {
	t.Run("defaults to pdflatex", func(t *testing.T) {
		s := NewState()
		assert.Equal(t, DefaultLatexEngine, s.LatexEngine())
	})

	t.Run("override sticks", func(t *testing.T) {
		s := NewState()
		s.SetLatexEngine("lualatex")
		assert.Equal(t, "lualatex", s.LatexEngine())
	})

	t.Run("empty override falls back to the default", func(t *testing.T) {
		s := NewState()
		s.SetLatexEngine("lualatex")
		s.SetLatexEngine("")
		assert.Equal(t, DefaultLatexEngine, s.LatexEngine())
	})
}

func TestEventBus(t *testing.T) {
	s := NewState()

	var got []interface{}
	s.On(EventCircuitChanged, func(data interface{}) {
		got = append(got, data)
	})

	// Session edits flow through the bus via the SetOnChange hook.
	assert.NoError(t, s.Session.SetToolName("wire"))
	s.Emit(EventCircuitChanged, "ping")

	assert.Equal(t, []interface{}{nil, "ping"}, got)
}
