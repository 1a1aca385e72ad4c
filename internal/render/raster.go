package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/example/notecanvas/internal/primitive"
)

// capSegments is the number of edges used to approximate a round cap.
const capSegments = 16

// Raster is a Surface backed by an RGBA image. Paths are filled through an
// anti-aliased coverage mask; in erase mode the mask clears destination
// pixels by compositing transparent black with draw.Src rather than painting
// a background colour.
type Raster struct {
	Dst     *image.RGBA
	erasing bool
}

var _ Surface = (*Raster)(nil)

// NewRaster wraps dst.
func NewRaster(dst *image.RGBA) *Raster { return &Raster{Dst: dst} }

func (r *Raster) BeginEraseComposite() { r.erasing = true }
func (r *Raster) EndEraseComposite()   { r.erasing = false }

// DrawStroke fills the stroke outline with round joins and caps.
func (r *Raster) DrawStroke(s primitive.Stroke) {
	if len(s.Points) == 0 {
		return
	}
	half := s.Width / 2
	if half < 0.5 {
		half = 0.5
	}
	p := newPath(strokeBounds(s.Points, half, r.Dst.Bounds()), r.Dst.Bounds())
	if p == nil {
		return
	}
	for i, pt := range s.Points {
		p.circle(pt.X, pt.Y, half)
		if i > 0 {
			p.segment(s.Points[i-1], pt, half)
		}
	}
	r.fill(p, s.Color)
}

// DrawRect strokes the rectangle outline centred on its edges.
func (r *Raster) DrawRect(rc primitive.Rect) {
	half := rc.Width / 2
	if half < 0.5 {
		half = 0.5
	}
	ox0, oy0 := rc.X-half, rc.Y-half
	ox1, oy1 := rc.X+rc.W+half, rc.Y+rc.H+half
	p := newPath(pixelBounds(ox0, oy0, ox1, oy1, r.Dst.Bounds()), r.Dst.Bounds())
	if p == nil {
		return
	}
	p.quad(ox0, oy0, ox1, oy0, ox1, oy1, ox0, oy1)
	ix0, iy0 := rc.X+half, rc.Y+half
	ix1, iy1 := rc.X+rc.W-half, rc.Y+rc.H-half
	if ix1 > ix0 && iy1 > iy0 {
		// Opposite winding punches the interior out.
		p.quad(ix0, iy0, ix0, iy1, ix1, iy1, ix1, iy0)
	}
	r.fill(p, rc.Color)
}

// DrawText renders the label with its top-left corner at (X, Y).
func (r *Raster) DrawText(t primitive.Text) {
	face, err := FaceForSize(t.FontSize)
	if err != nil {
		return
	}
	d := &font.Drawer{
		Dst:  r.Dst,
		Src:  image.NewUniform(t.Color),
		Face: face,
		Dot:  fixed.P(int(math.Round(t.X)), int(math.Round(t.Y))+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(t.Body)
}

// DrawImage scales the bitmap into its placement box.
func (r *Raster) DrawImage(im primitive.Image) {
	if im.Src == nil {
		return
	}
	dr := image.Rect(
		int(math.Round(im.X)), int(math.Round(im.Y)),
		int(math.Round(im.X+im.W)), int(math.Round(im.Y+im.H)),
	)
	if dr.Empty() {
		return
	}
	if r.erasing {
		draw.Draw(r.Dst, dr, image.Transparent, image.Point{}, draw.Src)
		return
	}
	xdraw.CatmullRom.Scale(r.Dst, dr, im.Src, im.Src.Bounds(), xdraw.Over, nil)
}

func (r *Raster) fill(p *path, col color.RGBA) {
	clip := p.bounds.Intersect(r.Dst.Bounds())
	if clip.Empty() {
		return
	}
	mask := image.NewAlpha(image.Rect(0, 0, p.bounds.Dx(), p.bounds.Dy()))
	p.z.DrawOp = draw.Src
	p.z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	mp := clip.Min.Sub(p.bounds.Min)
	if r.erasing {
		draw.DrawMask(r.Dst, clip, image.Transparent, image.Point{}, mask, mp, draw.Src)
		return
	}
	draw.DrawMask(r.Dst, clip, image.NewUniform(col), image.Point{}, mask, mp, draw.Over)
}

// path accumulates closed sub-paths into a coverage rasterizer covering the
// part of the shape that lands on the destination. Sub-paths that should
// union share one winding.
type path struct {
	z      *vector.Rasterizer
	bounds image.Rectangle
}

func newPath(bounds, dst image.Rectangle) *path {
	bounds = bounds.Inset(-1).Intersect(dst)
	if bounds.Empty() {
		return nil
	}
	return &path{z: vector.NewRasterizer(bounds.Dx(), bounds.Dy()), bounds: bounds}
}

func (p *path) pt(x, y float64) (float32, float32) {
	return float32(x - float64(p.bounds.Min.X)), float32(y - float64(p.bounds.Min.Y))
}

func (p *path) quad(x0, y0, x1, y1, x2, y2, x3, y3 float64) {
	p.z.MoveTo(p.pt(x0, y0))
	p.z.LineTo(p.pt(x1, y1))
	p.z.LineTo(p.pt(x2, y2))
	p.z.LineTo(p.pt(x3, y3))
	p.z.ClosePath()
}

// circle is traced with decreasing angle so its winding matches the quads
// emitted by segment.
func (p *path) circle(cx, cy, rad float64) {
	p.z.MoveTo(p.pt(cx+rad, cy))
	for i := 1; i < capSegments; i++ {
		a := -2 * math.Pi * float64(i) / capSegments
		p.z.LineTo(p.pt(cx+rad*math.Cos(a), cy+rad*math.Sin(a)))
	}
	p.z.ClosePath()
}

func (p *path) segment(a, b primitive.Point, half float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*half, dx/l*half
	p.quad(a.X+nx, a.Y+ny, b.X+nx, b.Y+ny, b.X-nx, b.Y-ny, a.X-nx, a.Y-ny)
}

func strokeBounds(pts []primitive.Point, half float64, dst image.Rectangle) image.Rectangle {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, pt := range pts[1:] {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return pixelBounds(minX-half, minY-half, maxX+half, maxY+half, dst)
}

// pixelBounds rounds a box outwards to whole pixels, clamped to dst grown by
// one pixel so far off-page coordinates never reach the int conversion.
func pixelBounds(x0, y0, x1, y1 float64, dst image.Rectangle) image.Rectangle {
	lim := dst.Inset(-1)
	return image.Rect(
		clampPixel(math.Floor(x0), lim.Min.X, lim.Max.X),
		clampPixel(math.Floor(y0), lim.Min.Y, lim.Max.Y),
		clampPixel(math.Ceil(x1), lim.Min.X, lim.Max.X),
		clampPixel(math.Ceil(y1), lim.Min.Y, lim.Max.Y),
	)
}

func clampPixel(v float64, lo, hi int) int {
	switch {
	case math.IsNaN(v) || v < float64(lo):
		return lo
	case v > float64(hi):
		return hi
	}
	return int(v)
}
