// Package canvas provides the interactive circuit drawing surface.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"circuit-designer/internal/app"
	"circuit-designer/internal/session"
	"circuit-designer/pkg/geometry"
)

const (
	minZoom  = 0.25
	maxZoom  = 4.0
	zoomStep = 1.25
)

// CircuitCanvas renders the circuit into a raster and forwards pointer
// gestures to the interactive session. The raster redraws from the live graph
// on every refresh, so wires follow their endpoints automatically.
type CircuitCanvas struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	zoom float64

	// Modifier state mirrored from the window's key handlers.
	mods session.Modifiers

	dragging bool

	// Guide placement mode: the next click drops a guide instead of going to
	// the session. "h", "v", or "".
	guideMode string

	onStatus func(msg string)
}

// New creates the circuit canvas over the shared application state.
func New(state *app.State) *CircuitCanvas {
	cc := &CircuitCanvas{state: state, zoom: 1.0}
	cc.raster = fynecanvas.NewRaster(cc.draw)
	cc.raster.ScaleMode = fynecanvas.ImageScalePixels
	cc.raster.SetMinSize(fyne.NewSize(800, 600))
	cc.ExtendBaseWidget(cc)

	state.On(app.EventCircuitChanged, func(interface{}) {
		cc.Refresh()
	})
	state.On(app.EventGuidesChanged, func(interface{}) {
		cc.Refresh()
	})
	return cc
}

// CreateRenderer implements fyne.Widget.
func (cc *CircuitCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(cc.raster)
}

// SetOnStatus registers a status-line callback.
func (cc *CircuitCanvas) SetOnStatus(fn func(msg string)) {
	cc.onStatus = fn
}

// SetModifiers mirrors the keyboard modifier state tracked by the window.
func (cc *CircuitCanvas) SetModifiers(mods session.Modifiers) {
	cc.mods = mods
}

// EnableGuideMode arms guide placement: the next click adds a horizontal
// ("h") or vertical ("v") guide at the click position.
func (cc *CircuitCanvas) EnableGuideMode(axis string) {
	cc.guideMode = axis
	if cc.onStatus != nil {
		cc.onStatus("click to place guide")
	}
}

// SetZoom sets the zoom level, clamped to the supported range.
func (cc *CircuitCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	cc.zoom = zoom
	cc.Refresh()
}

// Zoom returns the current zoom level.
func (cc *CircuitCanvas) Zoom() float64 { return cc.zoom }

// ZoomIn steps the zoom level up.
func (cc *CircuitCanvas) ZoomIn() { cc.SetZoom(cc.zoom * zoomStep) }

// ZoomOut steps the zoom level down.
func (cc *CircuitCanvas) ZoomOut() { cc.SetZoom(cc.zoom / zoomStep) }

// Scrolled zooms with the mouse wheel.
func (cc *CircuitCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		cc.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		cc.ZoomOut()
	}
}

// point maps a widget position to canvas coordinates.
func (cc *CircuitCanvas) point(pos fyne.Position) geometry.Point2D {
	return geometry.Point2D{X: float64(pos.X) / cc.zoom, Y: float64(pos.Y) / cc.zoom}
}

// Tapped handles left-click events.
func (cc *CircuitCanvas) Tapped(ev *fyne.PointEvent) {
	p := cc.point(ev.Position)

	if cc.guideMode != "" {
		if cc.guideMode == "h" {
			cc.state.Snap.AddHorizontalGuide(p.Y)
		} else {
			cc.state.Snap.AddVerticalGuide(p.X)
		}
		cc.guideMode = ""
		cc.state.Emit(app.EventGuidesChanged, nil)
		return
	}

	cc.state.Session.PointerDown(p, session.ButtonLeft, cc.mods)
	cc.state.Session.PointerUp(p)
}

// TappedSecondary handles right-click events, which cancel an in-progress
// connection.
func (cc *CircuitCanvas) TappedSecondary(ev *fyne.PointEvent) {
	cc.state.Session.PointerDown(cc.point(ev.Position), session.ButtonRight, cc.mods)
}

// Dragged drives move-drags through the session.
func (cc *CircuitCanvas) Dragged(ev *fyne.DragEvent) {
	p := cc.point(ev.Position)
	if !cc.dragging {
		cc.dragging = true
		start := geometry.Point2D{
			X: p.X - float64(ev.Dragged.DX)/cc.zoom,
			Y: p.Y - float64(ev.Dragged.DY)/cc.zoom,
		}
		cc.state.Session.PointerDown(start, session.ButtonLeft, cc.mods)
	}
	cc.state.Session.PointerMove(p, cc.mods)
}

// DragEnd implements fyne.Draggable.
func (cc *CircuitCanvas) DragEnd() {
	cc.dragging = false
	cc.state.Session.PointerUp(geometry.Point2D{})
}

// MouseIn implements desktop.Hoverable.
func (cc *CircuitCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved floats the preview edge while a connection is in progress.
func (cc *CircuitCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if !cc.state.Session.Connecting() {
		return
	}
	cc.state.Session.PointerMove(cc.point(ev.Position), cc.mods)
}

// MouseOut implements desktop.Hoverable.
func (cc *CircuitCanvas) MouseOut() {}

var _ fyne.Tappable = (*CircuitCanvas)(nil)
var _ fyne.SecondaryTappable = (*CircuitCanvas)(nil)
var _ fyne.Draggable = (*CircuitCanvas)(nil)
var _ fyne.Scrollable = (*CircuitCanvas)(nil)
var _ desktop.Hoverable = (*CircuitCanvas)(nil)

// draw is referenced by the raster; the implementation lives in drawing.go.
func (cc *CircuitCanvas) draw(w, h int) image.Image {
	return cc.render(w, h)
}
