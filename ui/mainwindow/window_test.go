package mainwindow

import (
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"circuit-designer/internal/app"
	"circuit-designer/ui/prefs"
)

func TestCloseSavesPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	p := prefs.LoadFrom(path)

	state := app.NewState()
	mw := New(test.NewApp(), state, p)

	state.Snap.SetGridSpacing(40)
	state.Snap.SetGridEnabled(false)
	state.SetLatexEngine("lualatex")

	mw.Close()

	reloaded := prefs.LoadFrom(path)
	assert.Equal(t, 40.0, reloaded.FloatWithFallback(prefs.KeyGridSpacing, 0))
	assert.False(t, reloaded.Bool(prefs.KeyGridEnabled, true))
	assert.Equal(t, "lualatex", reloaded.String(prefs.KeyLatexEngine))
}

func TestCloseTwiceDoesNotPanic(t *testing.T) {
	p := prefs.LoadFrom(filepath.Join(t.TempDir(), "preferences.json"))
	mw := New(test.NewApp(), app.NewState(), p)

	mw.Close()
	mw.Close()
}

func TestApplyPrefsReadsLatexEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	p := prefs.LoadFrom(path)
	p.SetString(prefs.KeyLatexEngine, "xelatex")

	state := app.NewState()
	mw := New(test.NewApp(), state, p)
	defer mw.Close()

	assert.Equal(t, "xelatex", state.LatexEngine())
}
