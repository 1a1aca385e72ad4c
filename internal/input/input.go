// Package input turns platform pointer and touch events into canvas-local
// start, move and end calls.
package input

import (
	"image"

	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"

	"github.com/example/notecanvas/internal/primitive"
)

// Handler receives gestures in canvas-local coordinates. tool.Machine
// implements it.
type Handler interface {
	Start(p primitive.Point)
	Move(p primitive.Point)
	End()
}

// BoundsFunc reports where the canvas currently sits in the coordinate space
// events are delivered in.
type BoundsFunc func() image.Rectangle

// Mapper converts event coordinates to canvas-local ones. Bounds is called on
// every event so a canvas that scrolls, moves or is resized between events
// maps correctly.
type Mapper struct {
	Bounds BoundsFunc
	// Zoom is the number of event units per canvas unit. Zero means 1.
	Zoom float64
	// Page, when set, is the canvas size in canvas units. The zoom is then
	// taken from the current bounds on each event and Zoom is ignored.
	Page image.Point
}

// Map subtracts the canvas origin from (x, y) and undoes the zoom.
func (m Mapper) Map(x, y float64) primitive.Point {
	var b image.Rectangle
	if m.Bounds != nil {
		b = m.Bounds()
	}
	zx, zy := m.Zoom, m.Zoom
	if m.Page.X > 0 && m.Page.Y > 0 && !b.Empty() {
		zx = float64(b.Dx()) / float64(m.Page.X)
		zy = float64(b.Dy()) / float64(m.Page.Y)
	}
	if zx <= 0 {
		zx = 1
	}
	if zy <= 0 {
		zy = 1
	}
	return primitive.Point{X: (x - float64(b.Min.X)) / zx, Y: (y - float64(b.Min.Y)) / zy}
}

// PointerKind classifies a generic pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	// PointerCancel is delivered when the platform takes the pointer away.
	// The gesture ends as if released.
	PointerCancel
)

// mouseID is the pointer id used for mouse events, which carry none.
const mouseID int64 = -1

// Capture tracks which pointer owns the current gesture and forwards its
// events to a Handler. Events from any other pointer are dropped until the
// owner lifts, so a second finger cannot start an overlapping gesture.
type Capture struct {
	mapper Mapper
	h      Handler
	active bool
	owner  int64
}

// NewCapture forwards mapped events to h.
func NewCapture(h Handler, m Mapper) *Capture {
	return &Capture{h: h, mapper: m}
}

// Active reports whether a gesture is in progress.
func (c *Capture) Active() bool { return c.active }

// SetMapper replaces the coordinate mapping, for example after a resize.
func (c *Capture) SetMapper(m Mapper) { c.mapper = m }

// Pointer is the generic entry point; id distinguishes simultaneous pointers.
func (c *Capture) Pointer(kind PointerKind, x, y float64, id int64) {
	switch kind {
	case PointerDown:
		if c.active {
			return
		}
		c.active = true
		c.owner = id
		c.h.Start(c.mapper.Map(x, y))
	case PointerMove:
		if !c.active || id != c.owner {
			return
		}
		c.h.Move(c.mapper.Map(x, y))
	case PointerUp, PointerCancel:
		if !c.active || id != c.owner {
			return
		}
		c.active = false
		c.h.End()
	}
}

// Mouse handles a mobile mouse event. Only the left button draws.
func (c *Capture) Mouse(e mouse.Event) {
	x, y := float64(e.X), float64(e.Y)
	switch e.Direction {
	case mouse.DirPress:
		if e.Button == mouse.ButtonLeft {
			c.Pointer(PointerDown, x, y, mouseID)
		}
	case mouse.DirRelease:
		if e.Button == mouse.ButtonLeft {
			c.Pointer(PointerUp, x, y, mouseID)
		}
	case mouse.DirNone:
		c.Pointer(PointerMove, x, y, mouseID)
	}
}

// Touch handles a mobile touch event. The first sequence to begin owns the
// gesture.
func (c *Capture) Touch(e touch.Event) {
	x, y := float64(e.X), float64(e.Y)
	id := int64(e.Sequence)
	switch e.Type {
	case touch.TypeBegin:
		c.Pointer(PointerDown, x, y, id)
	case touch.TypeMove:
		c.Pointer(PointerMove, x, y, id)
	case touch.TypeEnd:
		c.Pointer(PointerUp, x, y, id)
	}
}
