// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"circuit-designer/internal/align"
	"circuit-designer/internal/app"
	"circuit-designer/internal/schematic"
	"circuit-designer/internal/session"
	"circuit-designer/internal/version"
	"circuit-designer/ui/canvas"
	"circuit-designer/ui/prefs"
)

// previewInterval is how often the LaTeX preview re-serializes the circuit.
const previewInterval = time.Second

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs

	canvas    *canvas.CircuitCanvas
	preview   *widget.Entry
	statusBar *widget.Label

	mods session.Modifiers

	stopPreview chan struct{}
	closeOnce   sync.Once
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, appPrefs *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Circuit Designer")

	mw := &MainWindow{
		Window:      win,
		app:         fyneApp,
		state:       state,
		prefs:       appPrefs,
		stopPreview: make(chan struct{}),
	}

	mw.applyPrefs()
	mw.setupUI()
	mw.setupMenus()
	mw.setupKeys()
	mw.setupEventHandlers()
	mw.startPreview()

	// Window-manager close requests go through Close so preferences land on
	// disk and the preview poll shuts down.
	win.SetCloseIntercept(mw.Close)

	return mw
}

// applyPrefs pushes persisted settings into the snap service and the
// application state.
func (mw *MainWindow) applyPrefs() {
	snap := mw.state.Snap
	snap.SetGridSpacing(mw.prefs.FloatWithFallback(prefs.KeyGridSpacing, snap.GridSpacing()))
	snap.SetGridEnabled(mw.prefs.Bool(prefs.KeyGridEnabled, true))
	snap.SetGuideSnapEnabled(mw.prefs.Bool(prefs.KeyGuideEnabled, true))
	if engine := mw.prefs.String(prefs.KeyLatexEngine); engine != "" {
		mw.state.SetLatexEngine(engine)
	}
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.state)
	mw.canvas.SetOnStatus(mw.updateStatus)

	mw.preview = widget.NewMultiLineEntry()
	mw.preview.Wrapping = fyne.TextWrapOff
	mw.preview.Disable()
	mw.preview.SetText(mw.state.LatexSource())

	mw.statusBar = widget.NewLabel("Ready")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,   // top
		nil,       // bottom
		nil,       // left
		nil,       // right
		mw.canvas, // center
	)

	split := container.NewHSplit(canvasArea, container.NewScroll(mw.preview))
	split.SetOffset(0.7)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1200, 800))
}

// createToolbar creates the tool selection bar: the select and wire tools
// plus one placement button per gate kind.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	items := []fyne.CanvasObject{
		widget.NewButton("Select", func() { mw.selectTool("select") }),
		widget.NewButton("Wire", func() { mw.selectTool("wire") }),
		widget.NewSeparator(),
	}
	for _, kind := range schematic.Kinds {
		k := kind
		items = append(items, widget.NewButton(k.String(), func() {
			mw.selectTool("place:" + k.Name())
		}))
	}
	return container.NewHBox(items...)
}

func (mw *MainWindow) selectTool(name string) {
	if err := mw.state.Session.SetToolName(name); err != nil {
		mw.updateStatus(err.Error())
		return
	}
	mw.updateStatus("tool: " + name)
	mw.state.Emit(app.EventToolChanged, name)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Export LaTeX...", mw.onExportLatex),
		fyne.NewMenuItem("Export PDF", mw.onExportPDF),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			mw.Close()
			mw.app.Quit()
		}),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Delete Selection", mw.onDelete),
		fyne.NewMenuItem("Rotate Selection", mw.onRotate),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Align Gates", mw.onAlign),
		fyne.NewMenuItem("Distribute Gates", mw.onDistribute),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.canvas.ZoomIn() }),
		fyne.NewMenuItem("Zoom Out", func() { mw.canvas.ZoomOut() }),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.SetZoom(1) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Grid Snap", mw.onToggleGrid),
		fyne.NewMenuItem("Toggle Guide Snap", mw.onToggleGuides),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Add Horizontal Guide", func() { mw.canvas.EnableGuideMode("h") }),
		fyne.NewMenuItem("Add Vertical Guide", func() { mw.canvas.EnableGuideMode("v") }),
		fyne.NewMenuItem("Clear Guides", mw.onClearGuides),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mainMenu := fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mainMenu)
}

// setupKeys wires keyboard commands and tracks modifier state for the wire
// tool's branch and orthogonal gestures.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.state.Session.Cancel()
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.onDelete()
		case fyne.KeyR:
			mw.onRotate()
		}
	})

	if deskCanvas, ok := mw.Canvas().(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			mw.setModifier(ev.Name, true)
		})
		deskCanvas.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			mw.setModifier(ev.Name, false)
		})
	}
}

func (mw *MainWindow) setModifier(key fyne.KeyName, down bool) {
	switch key {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		mw.mods.Ortho = down
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		mw.mods.Branch = down
	default:
		return
	}
	mw.canvas.SetModifiers(mw.mods)
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventExportFinished, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Exported: " + path)
		}
	})
	mw.state.On(app.EventExportFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.updateStatus("Export failed: " + err.Error())
		}
	})
}

// startPreview polls the circuit at 1 Hz and re-serializes it into the
// preview pane. The poll only reads the graph, so it is safe to run between
// event handlers.
func (mw *MainWindow) startPreview() {
	go func() {
		ticker := time.NewTicker(previewInterval)
		defer ticker.Stop()
		last := ""
		for {
			select {
			case <-mw.stopPreview:
				return
			case <-ticker.C:
				src := mw.state.LatexSource()
				if src == last {
					continue
				}
				last = src
				mw.preview.SetText(src)
				mw.state.Emit(app.EventPreviewUpdated, src)
			}
		}
	}()
}

// Close stops the preview poll, persists preferences, and closes the window.
// Safe to call more than once; the teardown runs on the first call only.
func (mw *MainWindow) Close() {
	mw.closeOnce.Do(func() {
		close(mw.stopPreview)
		mw.savePrefs()
	})
	mw.Window.Close()
}

func (mw *MainWindow) savePrefs() {
	snap := mw.state.Snap
	mw.prefs.SetFloat(prefs.KeyGridSpacing, snap.GridSpacing())
	mw.prefs.SetBool(prefs.KeyGridEnabled, snap.GridEnabled())
	mw.prefs.SetBool(prefs.KeyGuideEnabled, snap.GuideSnapEnabled())
	mw.prefs.SetString(prefs.KeyLatexEngine, mw.state.LatexEngine())
	if err := mw.prefs.Save(); err != nil {
		mw.updateStatus("failed to save preferences: " + err.Error())
	}
}

func (mw *MainWindow) onExportLatex() {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		defer writer.Close()
		path := writer.URI().Path()
		if err := mw.state.ExportSource(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(prefs.KeyExportDir, filepath.Dir(path))
	}, mw.Window)
}

func (mw *MainWindow) onExportPDF() {
	workDir := mw.prefs.String(prefs.KeyExportDir)
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "circuit-designer")
	}

	mw.updateStatus("Running pdflatex...")
	go func() {
		pdfPath, err := mw.state.ExportPDF(context.Background(), workDir, "circuit")
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("PDF written: " + pdfPath)
	}()
}

func (mw *MainWindow) onDelete() {
	mw.state.Session.DeleteSelection()
}

func (mw *MainWindow) onRotate() {
	if mw.state.Session.RotateSelection() == 0 {
		mw.updateStatus("nothing to rotate")
	}
}

func (mw *MainWindow) onAlign() {
	if err := align.Gates(mw.state.Graph, mw.state.Session.Selection()); err != nil {
		mw.updateStatus("align failed: " + err.Error())
		return
	}
	mw.state.Emit(app.EventCircuitChanged, nil)
}

func (mw *MainWindow) onDistribute() {
	if err := align.Distribute(mw.state.Graph, mw.state.Session.Selection()); err != nil {
		mw.updateStatus("distribute failed: " + err.Error())
		return
	}
	mw.state.Emit(app.EventCircuitChanged, nil)
}

func (mw *MainWindow) onToggleGrid() {
	snap := mw.state.Snap
	snap.SetGridEnabled(!snap.GridEnabled())
	mw.state.Emit(app.EventGuidesChanged, nil)
}

func (mw *MainWindow) onToggleGuides() {
	snap := mw.state.Snap
	snap.SetGuideSnapEnabled(!snap.GuideSnapEnabled())
	mw.state.Emit(app.EventGuidesChanged, nil)
}

func (mw *MainWindow) onClearGuides() {
	mw.state.Snap.ClearGuides()
	mw.state.Emit(app.EventGuidesChanged, nil)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About",
		fmt.Sprintf("Circuit Designer v%s\nTikZ logic circuit editor\ncommit %s", version.Version, version.GitCommit),
		mw.Window)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}
