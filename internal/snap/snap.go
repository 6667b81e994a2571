// Package snap resolves raw pointer coordinates against the grid and guide
// lines. The service is a pure transform over shared, externally mutated
// configuration: the session writes grid settings and guides, everything
// else only reads.
package snap

import (
	"math"
	"sync"

	"circuit-designer/pkg/geometry"
)

const (
	// DefaultGridSpacing is the grid cell size in canvas units.
	DefaultGridSpacing = 25.0
	// MinGridSpacing is the smallest spacing the service accepts.
	MinGridSpacing = 5.0
	// GuideThreshold is how close (in canvas units) a grid-snapped
	// coordinate must be to a guide line for the guide to win.
	GuideThreshold = 10.0
)

// Service holds the grid configuration and the guide lines, and resolves
// raw points against them.
type Service struct {
	mu sync.RWMutex

	gridSpacing  float64
	gridEnabled  bool
	guideEnabled bool

	// Guide positions in creation order. Vertical guides snap the X axis,
	// horizontal guides the Y axis; the first guide within threshold wins.
	horizontal []float64
	vertical   []float64
}

// NewService creates a service with the default grid and both snap modes
// enabled.
func NewService() *Service {
	return &Service{
		gridSpacing:  DefaultGridSpacing,
		gridEnabled:  true,
		guideEnabled: true,
	}
}

// SetGridSpacing sets the grid cell size, clamped to MinGridSpacing.
func (s *Service) SetGridSpacing(spacing float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if spacing < MinGridSpacing {
		spacing = MinGridSpacing
	}
	s.gridSpacing = spacing
}

// GridSpacing returns the current grid cell size.
func (s *Service) GridSpacing() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gridSpacing
}

// SetGridEnabled enables or disables grid snapping.
func (s *Service) SetGridEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gridEnabled = enabled
}

// GridEnabled reports whether grid snapping is on.
func (s *Service) GridEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gridEnabled
}

// SetGuideSnapEnabled enables or disables guide-line snapping.
func (s *Service) SetGuideSnapEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guideEnabled = enabled
}

// GuideSnapEnabled reports whether guide-line snapping is on.
func (s *Service) GuideSnapEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guideEnabled
}

// AddHorizontalGuide adds a horizontal guide line at the given Y position.
func (s *Service) AddHorizontalGuide(y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.horizontal = append(s.horizontal, y)
}

// AddVerticalGuide adds a vertical guide line at the given X position.
func (s *Service) AddVerticalGuide(x float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vertical = append(s.vertical, x)
}

// RemoveHorizontalGuide removes the first horizontal guide at exactly y.
func (s *Service) RemoveHorizontalGuide(y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.horizontal = removeFloat(s.horizontal, y)
}

// RemoveVerticalGuide removes the first vertical guide at exactly x.
func (s *Service) RemoveVerticalGuide(x float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vertical = removeFloat(s.vertical, x)
}

// ClearGuides removes all guide lines.
func (s *Service) ClearGuides() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.horizontal = nil
	s.vertical = nil
}

// Guides returns copies of the guide position lists in creation order.
func (s *Service) Guides() (horizontal, vertical []float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.horizontal...),
		append([]float64(nil), s.vertical...)
}

// Resolve maps a raw point to its snapped position. Grid snapping truncates
// each axis to the containing grid cell (toward zero, matching the editor's
// historical behavior: 12, 12.5, and 13 all land on 0 with the default
// grid); guide snapping then replaces an axis value with the exact position
// of the first guide within GuideThreshold of it.
func (s *Service) Resolve(raw geometry.Point2D) geometry.Point2D {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := raw
	if s.gridEnabled {
		p.X = math.Trunc(p.X/s.gridSpacing) * s.gridSpacing
		p.Y = math.Trunc(p.Y/s.gridSpacing) * s.gridSpacing
	}
	if s.guideEnabled {
		for _, x := range s.vertical {
			if math.Abs(p.X-x) <= GuideThreshold {
				p.X = x
				break
			}
		}
		for _, y := range s.horizontal {
			if math.Abs(p.Y-y) <= GuideThreshold {
				p.Y = y
				break
			}
		}
	}
	return p
}

// Constrain projects target onto the dominant axis of displacement from
// reference: the axis with the larger absolute delta wins, ties favor
// horizontal.
func Constrain(reference, target geometry.Point2D) geometry.Point2D {
	dx := math.Abs(target.X - reference.X)
	dy := math.Abs(target.Y - reference.Y)
	if dy > dx {
		return geometry.Point2D{X: reference.X, Y: target.Y}
	}
	return geometry.Point2D{X: target.X, Y: reference.Y}
}

// ResolveConstrained applies the axis constraint relative to reference and
// then the usual grid/guide resolution.
func (s *Service) ResolveConstrained(reference, target geometry.Point2D) geometry.Point2D {
	return s.Resolve(Constrain(reference, target))
}

func removeFloat(slice []float64, v float64) []float64 {
	for i, x := range slice {
		if x == v {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}
