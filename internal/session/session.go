// Package session drives the interactive editing state machine: tool
// selection, gate placement, wire drawing with junction branching, selection,
// drag-moves, deletion, and rotation. It is deliberately independent of the
// widget toolkit so the whole gesture grammar is testable without a window.
package session

import (
	"fmt"
	"log"
	"strings"

	"circuit-designer/internal/schematic"
	"circuit-designer/internal/snap"
	"circuit-designer/pkg/geometry"
)

// Tool identifies the active interaction tool.
type Tool int

// Tools.
const (
	ToolSelect Tool = iota
	ToolPlace
	ToolWire
)

func (t Tool) String() string {
	switch t {
	case ToolPlace:
		return "place"
	case ToolWire:
		return "wire"
	default:
		return "select"
	}
}

// Button identifies a pointer button.
type Button int

// Pointer buttons.
const (
	ButtonLeft Button = iota
	ButtonRight
)

// Modifiers carries the modifier-key state of a pointer event. Branch is the
// junction-insert modifier for wire drawing; Ortho constrains the gesture to
// the dominant axis.
type Modifiers struct {
	Branch bool
	Ortho  bool
}

// Session is the tool state machine. All mutations of the graph happen
// synchronously inside a single event call; a rejected gesture never leaves
// the session in an inconsistent state.
type Session struct {
	graph *schematic.Graph
	snap  *snap.Service

	tool      Tool
	placeKind schematic.GateKind

	// Wire tool sub-state: connectFrom is non-nil while a connection is in
	// progress; preview is the floating end of the ephemeral preview edge.
	connectFrom *schematic.Endpoint
	preview     geometry.Point2D

	selection map[string]bool

	// Drag state for the select tool.
	dragID     string
	dragOffset geometry.Point2D

	onChange func()
}

// New creates a session over the given graph and snap service, starting on
// the select tool.
func New(graph *schematic.Graph, snapSvc *snap.Service) *Session {
	return &Session{
		graph:     graph,
		snap:      snapSvc,
		selection: make(map[string]bool),
	}
}

// SetOnChange registers a callback invoked after every committed mutation or
// visual-state change.
func (s *Session) SetOnChange(fn func()) {
	s.onChange = fn
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Tool returns the active tool.
func (s *Session) Tool() Tool { return s.tool }

// PlaceKind returns the gate kind the place tool will create.
func (s *Session) PlaceKind() schematic.GateKind { return s.placeKind }

// SetTool switches to the select or wire tool. Switching tools cancels any
// in-progress connection.
func (s *Session) SetTool(t Tool) {
	s.cancelConnection()
	s.tool = t
	s.changed()
}

// SetPlaceTool switches to the place tool for the given gate kind.
func (s *Session) SetPlaceTool(kind schematic.GateKind) {
	s.cancelConnection()
	s.tool = ToolPlace
	s.placeKind = kind
	s.changed()
}

// SetToolName selects a tool from its identifier string: "select", "wire",
// or "place:<kind>" (e.g. "place:nand").
func (s *Session) SetToolName(name string) error {
	switch {
	case name == "select":
		s.SetTool(ToolSelect)
	case name == "wire":
		s.SetTool(ToolWire)
	case strings.HasPrefix(name, "place:"):
		kind, err := schematic.ParseKind(strings.TrimPrefix(name, "place:"))
		if err != nil {
			return fmt.Errorf("tool %q: %w", name, err)
		}
		s.SetPlaceTool(kind)
	default:
		return fmt.Errorf("unknown tool %q", name)
	}
	return nil
}

// Connecting reports whether a wire connection is in progress.
func (s *Session) Connecting() bool { return s.connectFrom != nil }

// ConnectSource returns the endpoint a pending connection starts from.
func (s *Session) ConnectSource() (schematic.Endpoint, bool) {
	if s.connectFrom == nil {
		return schematic.Endpoint{}, false
	}
	return *s.connectFrom, true
}

// PreviewLine returns the endpoints of the ephemeral preview edge while a
// connection is in progress.
func (s *Session) PreviewLine() (from, to geometry.Point2D, ok bool) {
	if s.connectFrom == nil {
		return geometry.Point2D{}, geometry.Point2D{}, false
	}
	pos, err := s.graph.EndpointPosition(*s.connectFrom)
	if err != nil {
		return geometry.Point2D{}, geometry.Point2D{}, false
	}
	return pos, s.preview, true
}

// Selection returns the IDs of the selected entities.
func (s *Session) Selection() []string {
	ids := make([]string, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	return ids
}

// Selected reports whether the entity is selected.
func (s *Session) Selected(id string) bool { return s.selection[id] }

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	if len(s.selection) == 0 {
		return
	}
	s.selection = make(map[string]bool)
	s.changed()
}

// PointerDown handles a pointer press at point p in canvas coordinates.
func (s *Session) PointerDown(p geometry.Point2D, btn Button, mods Modifiers) {
	if btn == ButtonRight {
		if s.connectFrom != nil {
			s.Cancel()
		}
		return
	}

	switch s.tool {
	case ToolPlace:
		s.graph.AddGate(s.placeKind, s.snap.Resolve(p), 0)
		s.changed()
	case ToolWire:
		s.wireDown(p, mods)
	default:
		s.selectDown(p)
	}
}

// wireDown is the wire tool's pointer-down transition table.
func (s *Session) wireDown(p geometry.Point2D, mods Modifiers) {
	if s.connectFrom == nil {
		if ep, ok := s.graph.HitTestEndpoint(p); ok {
			s.connectFrom = &ep
			s.preview = p
			s.changed()
		}
		return
	}

	if ep, ok := s.graph.HitTestEndpoint(p); ok {
		// Attempt the connection; the preview is discarded either way and
		// an illegal pair is silently dropped.
		if _, err := s.graph.AddWire(*s.connectFrom, ep); err != nil {
			log.Printf("connection rejected: %v", err)
		}
		s.connectFrom = nil
		s.changed()
		return
	}

	if !mods.Branch {
		s.Cancel()
		return
	}

	// Branch gesture: commit a junction at the (optionally axis-constrained)
	// snapped click point, wire up to it, and keep connecting from there.
	from := *s.connectFrom
	fromPos, err := s.graph.EndpointPosition(from)
	if err != nil {
		log.Printf("branch source vanished: %v", err)
		s.Cancel()
		return
	}

	var target geometry.Point2D
	if mods.Ortho {
		target = s.snap.ResolveConstrained(fromPos, p)
	} else {
		target = s.snap.Resolve(p)
	}

	j := s.graph.AddJunction(target)
	if _, err := s.graph.AddWire(from, schematic.JunctionEndpoint(j.ID)); err != nil {
		log.Printf("branch rejected: %v", err)
		if rmErr := s.graph.RemoveJunction(j.ID); rmErr != nil {
			log.Printf("branch cleanup: %v", rmErr)
		}
		s.Cancel()
		return
	}

	next := schematic.JunctionEndpoint(j.ID)
	s.connectFrom = &next
	s.preview = target
	s.changed()
}

// selectDown handles pointer-down for the select tool: hit an entity to
// select it and begin a move-drag, or clear the selection on empty canvas.
func (s *Session) selectDown(p geometry.Point2D) {
	id, ok := s.graph.HitTestEntity(p)
	if !ok {
		s.ClearSelection()
		return
	}

	if !s.selection[id] {
		s.selection = map[string]bool{id: true}
	}

	if gate, isGate := s.graph.Gate(id); isGate {
		s.dragID = id
		s.dragOffset = gate.Position.Sub(p)
	} else if j, isJunction := s.graph.Junction(id); isJunction {
		s.dragID = id
		s.dragOffset = j.Position.Sub(p)
	}
	s.changed()
}

// PointerMove handles pointer motion. While connecting it floats the preview
// edge (axis-constrained if requested, never snapped); during a move-drag it
// repositions the dragged entity, which implicitly refreshes the geometry of
// incident wires since wires derive from live endpoint positions.
func (s *Session) PointerMove(p geometry.Point2D, mods Modifiers) {
	if s.connectFrom != nil {
		if mods.Ortho {
			if fromPos, err := s.graph.EndpointPosition(*s.connectFrom); err == nil {
				p = snap.Constrain(fromPos, p)
			}
		}
		s.preview = p
		s.changed()
		return
	}

	if s.dragID == "" {
		return
	}
	pos := s.snap.Resolve(p.Add(s.dragOffset))
	if err := s.graph.MoveGate(s.dragID, pos); err != nil {
		if err := s.graph.MoveJunction(s.dragID, pos); err != nil {
			s.dragID = ""
			return
		}
	}
	s.changed()
}

// PointerUp ends a move-drag.
func (s *Session) PointerUp(geometry.Point2D) {
	s.dragID = ""
}

// Cancel aborts an in-progress connection and discards the preview edge.
// Bound to Escape and right-click.
func (s *Session) Cancel() {
	if s.cancelConnection() {
		s.changed()
	}
}

func (s *Session) cancelConnection() bool {
	if s.connectFrom == nil {
		return false
	}
	s.connectFrom = nil
	return true
}

// DeleteSelection removes every selected entity with its cascade: gates take
// their pins and incident wires, junctions take incident wires, wires only
// unregister from their endpoints.
func (s *Session) DeleteSelection() {
	if len(s.selection) == 0 {
		return
	}
	for id := range s.selection {
		if err := s.graph.RemoveEntity(id); err != nil {
			// Already gone via another entity's cascade.
			log.Printf("delete %s: %v", id, err)
		}
	}
	s.selection = make(map[string]bool)
	s.dragID = ""
	s.changed()
}

// RotateSelection rotates every selected gate by 90 degrees and returns how
// many gates were rotated. A selection without gates is reported as a no-op.
func (s *Session) RotateSelection() int {
	rotated := 0
	for id := range s.selection {
		if err := s.graph.RotateGate(id); err == nil {
			rotated++
		}
	}
	if rotated == 0 {
		log.Printf("rotate: no gates in selection")
		return 0
	}
	s.changed()
	return rotated
}
