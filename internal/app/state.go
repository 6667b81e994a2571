// Package app ties the editor's collaborators together: the shared graph,
// the snap service, the interactive session, and an event bus the UI layers
// subscribe to.
package app

import (
	"context"
	"fmt"
	"sync"

	"circuit-designer/internal/latex"
	"circuit-designer/internal/schematic"
	"circuit-designer/internal/session"
	"circuit-designer/internal/snap"
	"circuit-designer/internal/typeset"
)

// EventType identifies application events.
type EventType int

const (
	EventCircuitChanged EventType = iota
	EventToolChanged
	EventSelectionChanged
	EventGuidesChanged
	EventPreviewUpdated
	EventExportFinished
	EventExportFailed
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the shared editor state and wires the collaborators together.
// The graph is the single source of truth; everything else reads from it.
type State struct {
	mu sync.RWMutex

	Graph   *schematic.Graph
	Snap    *snap.Service
	Session *session.Session

	engine      *typeset.Engine
	latexEngine string

	listeners map[EventType][]EventListener
}

// DefaultLatexEngine is the typesetting executable used when no preference
// has been set.
const DefaultLatexEngine = "pdflatex"

// NewState creates the application state with an empty circuit.
func NewState() *State {
	s := &State{
		Graph:     schematic.NewGraph(),
		Snap:      snap.NewService(),
		listeners: make(map[EventType][]EventListener),
	}
	s.Session = session.New(s.Graph, s.Snap)
	s.Session.SetOnChange(func() {
		s.Emit(EventCircuitChanged, nil)
	})
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LatexSource serializes the current circuit. Safe to call from the preview
// poll at any time; the graph hands back a consistent snapshot.
func (s *State) LatexSource() string {
	return latex.Serialize(s.Graph)
}

// Document returns the structured form of the current circuit.
func (s *State) Document() *latex.Document {
	return latex.BuildDocument(s.Graph)
}

// ExportSource writes the current circuit's LaTeX source to path.
func (s *State) ExportSource(path string) error {
	if err := typeset.ExportSource(s.LatexSource(), path); err != nil {
		s.Emit(EventExportFailed, err)
		return err
	}
	s.Emit(EventExportFinished, path)
	return nil
}

// ExportPDF runs the external typesetting toolchain over the current circuit
// and returns the produced PDF path. Toolchain failures surface as an error
// and an EventExportFailed; the circuit itself is never touched.
func (s *State) ExportPDF(ctx context.Context, workDir, name string) (string, error) {
	engine, err := s.typesetEngine(workDir)
	if err != nil {
		s.Emit(EventExportFailed, err)
		return "", err
	}
	result, err := engine.Compile(ctx, s.LatexSource(), name)
	if err != nil {
		s.Emit(EventExportFailed, err)
		return "", err
	}
	if !result.Success {
		err := fmt.Errorf("typesetting failed: %v", result.Errors)
		s.Emit(EventExportFailed, err)
		return "", err
	}
	s.Emit(EventExportFinished, result.PDFPath)
	return result.PDFPath, nil
}

// SetLatexEngine selects the typesetting executable for future PDF exports.
// An empty name falls back to DefaultLatexEngine. Changing the engine drops
// any cached toolchain handle so the next export picks up the new executable.
func (s *State) SetLatexEngine(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == s.latexEngine {
		return
	}
	s.latexEngine = name
	s.engine = nil
}

// LatexEngine returns the typesetting executable future PDF exports will use.
func (s *State) LatexEngine() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latexEngine == "" {
		return DefaultLatexEngine
	}
	return s.latexEngine
}

func (s *State) typesetEngine(workDir string) (*typeset.Engine, error) {
	name := s.LatexEngine()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine != nil {
		return s.engine, nil
	}
	engine, err := typeset.New(name, workDir)
	if err != nil {
		return nil, err
	}
	s.engine = engine
	return engine, nil
}
