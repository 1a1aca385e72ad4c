// Package primitive defines the drawing elements kept by a canvas document.
package primitive

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"unicode/utf8"
)

// Kind identifies which variant a Primitive carries.
type Kind int

const (
	KindStroke Kind = iota
	KindRect
	KindText
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindStroke:
		return "stroke"
	case KindRect:
		return "rect"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DefaultRectThreshold is the smallest side, in canvas pixels, a rectangle
// must exceed to be committed.
const DefaultRectThreshold = 2

// TextCharAspect approximates the advance of one character as a fraction of
// the font size. Hit testing uses it instead of real glyph metrics, so
// proportional fonts will not line up exactly.
const TextCharAspect = 0.6

var (
	ErrTooSmall  = errors.New("primitive: rectangle below minimum size")
	ErrNotFinite = errors.New("primitive: coordinates must be finite")
	ErrEmptyText = errors.New("primitive: text is empty")
	ErrNoImage   = errors.New("primitive: image has no pixels")
)

// Point is a position in canvas-local coordinates.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Stroke is a freehand path. Eraser strokes clear what lies beneath them when
// rendered; their data is otherwise identical to an ink stroke.
type Stroke struct {
	Points []Point
	Color  color.RGBA
	Width  float64
	Eraser bool
}

// Rect is an outlined axis-aligned rectangle with a non-negative size.
type Rect struct {
	X, Y, W, H float64
	Color      color.RGBA
	Width      float64
}

// Text is a single-line label anchored at its top-left corner.
type Text struct {
	X, Y     float64
	Body     string
	FontSize float64
	Color    color.RGBA
}

// Image is a bitmap stamped onto the canvas at its top-left corner and
// drawn scaled to W by H.
type Image struct {
	X, Y, W, H float64
	Src        image.Image
}

// Primitive is one committed or in-progress drawing element. Exactly one of
// the variant pointers matching Kind is set. Values are treated as immutable;
// use Apply to derive a patched copy.
type Primitive struct {
	ID   string
	Z    int
	Kind Kind

	Stroke *Stroke
	Rect   *Rect
	Text   *Text
	Image  *Image
}

// NewStroke starts a stroke at p. A stroke with a single point is a dot.
func NewStroke(p Point, col color.RGBA, width float64, eraser bool) (Primitive, error) {
	if !finite(p.X, p.Y, width) {
		return Primitive{}, ErrNotFinite
	}
	if width <= 0 {
		width = 1
	}
	return Primitive{Kind: KindStroke, Stroke: &Stroke{
		Points: []Point{p},
		Color:  col,
		Width:  width,
		Eraser: eraser,
	}}, nil
}

// NewRect builds a rectangle spanning the two corners. Drags in any direction
// are normalised. Sides not larger than threshold are rejected.
func NewRect(x0, y0, x1, y1 float64, col color.RGBA, width, threshold float64) (Primitive, error) {
	if !finite(x0, y0, x1, y1, width) {
		return Primitive{}, ErrNotFinite
	}
	w := x1 - x0
	h := y1 - y0
	if math.Abs(w) <= threshold || math.Abs(h) <= threshold {
		return Primitive{}, ErrTooSmall
	}
	if w < 0 {
		x0, w = x1, -w
	}
	if h < 0 {
		y0, h = y1, -h
	}
	if width <= 0 {
		width = 1
	}
	return Primitive{Kind: KindRect, Rect: &Rect{X: x0, Y: y0, W: w, H: h, Color: col, Width: width}}, nil
}

// NewText builds a text label with its top-left corner at (x, y).
func NewText(x, y float64, body string, size float64, col color.RGBA) (Primitive, error) {
	if !finite(x, y, size) {
		return Primitive{}, ErrNotFinite
	}
	if strings.TrimSpace(body) == "" {
		return Primitive{}, ErrEmptyText
	}
	if size <= 0 {
		size = 16
	}
	return Primitive{Kind: KindText, Text: &Text{X: x, Y: y, Body: body, FontSize: size, Color: col}}, nil
}

// NewImage places src with its top-left corner at (x, y). Images larger than
// maxW by maxH are scaled down to fit, keeping their aspect ratio; smaller
// images keep their natural size. A non-positive limit disables that bound.
func NewImage(x, y float64, src image.Image, maxW, maxH float64) (Primitive, error) {
	if !finite(x, y) {
		return Primitive{}, ErrNotFinite
	}
	if src == nil || src.Bounds().Empty() {
		return Primitive{}, ErrNoImage
	}
	w, h := FitWithin(float64(src.Bounds().Dx()), float64(src.Bounds().Dy()), maxW, maxH)
	return Primitive{Kind: KindImage, Image: &Image{X: x, Y: y, W: w, H: h, Src: src}}, nil
}

// FitWithin scales (w, h) down uniformly so that it fits inside (maxW, maxH).
func FitWithin(w, h, maxW, maxH float64) (float64, float64) {
	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = maxW / w
	}
	if maxH > 0 && h*scale > maxH {
		scale = maxH / h
	}
	return w * scale, h * scale
}

// AppendPoint returns a copy of a stroke primitive with p added to its path.
func (p Primitive) AppendPoint(pt Point) Primitive {
	if p.Stroke == nil {
		return p
	}
	s := *p.Stroke
	s.Points = append(append(make([]Point, 0, len(s.Points)+1), s.Points...), pt)
	p.Stroke = &s
	return p
}

// Contains reports whether pt lies on the primitive for selection purposes.
// Strokes are never hit. Text uses an approximate box of
// len(runes)*FontSize*TextCharAspect by FontSize.
func (p Primitive) Contains(pt Point) bool {
	switch p.Kind {
	case KindRect:
		r := p.Rect
		return inBox(pt, r.X, r.Y, r.W, r.H)
	case KindText:
		w, h := ApproxTextSize(p.Text.Body, p.Text.FontSize)
		return inBox(pt, p.Text.X, p.Text.Y, w, h)
	case KindImage:
		im := p.Image
		return inBox(pt, im.X, im.Y, im.W, im.H)
	default:
		return false
	}
}

// ApproxTextSize estimates the box covered by body at the given font size.
func ApproxTextSize(body string, size float64) (float64, float64) {
	return float64(utf8.RuneCountInString(body)) * size * TextCharAspect, size
}

// Bounds returns the integer box covering the primitive, including stroke
// width. Text uses the approximate box.
func (p Primitive) Bounds() image.Rectangle {
	var minX, minY, maxX, maxY, pad float64
	switch p.Kind {
	case KindStroke:
		s := p.Stroke
		if len(s.Points) == 0 {
			return image.Rectangle{}
		}
		minX, minY = s.Points[0].X, s.Points[0].Y
		maxX, maxY = minX, minY
		for _, pt := range s.Points[1:] {
			minX = math.Min(minX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxX = math.Max(maxX, pt.X)
			maxY = math.Max(maxY, pt.Y)
		}
		pad = s.Width / 2
	case KindRect:
		r := p.Rect
		minX, minY, maxX, maxY = r.X, r.Y, r.X+r.W, r.Y+r.H
		pad = r.Width / 2
	case KindText:
		w, h := ApproxTextSize(p.Text.Body, p.Text.FontSize)
		minX, minY, maxX, maxY = p.Text.X, p.Text.Y, p.Text.X+w, p.Text.Y+h
	case KindImage:
		im := p.Image
		minX, minY, maxX, maxY = im.X, im.Y, im.X+im.W, im.Y+im.H
	default:
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(minX-pad)), int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad)), int(math.Ceil(maxY+pad)),
	)
}

func inBox(pt Point, x, y, w, h float64) bool {
	return pt.X >= x && pt.X <= x+w && pt.Y >= y && pt.Y <= y+h
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
