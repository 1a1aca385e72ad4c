package render

import (
	"image"
	"image/color"
	"image/draw"
)

// PageShadow describes the soft shadow drawn under the canvas page when it is
// presented on a desk colour, either in the window or in an exported frame.
type PageShadow struct {
	Blur    int
	Offset  image.Point
	Opacity float64
}

// DefaultPageShadow is a subtle shadow offset down and to the right.
func DefaultPageShadow() PageShadow {
	return PageShadow{Blur: 12, Offset: image.Pt(6, 8), Opacity: 0.35}
}

// OnDesk returns page centred with margin pixels of desk colour on every
// side and the shadow composited beneath it. The second result is where the
// page's top-left corner landed, so callers can translate pointer positions.
func OnDesk(page *image.RGBA, desk color.Color, margin int, sh PageShadow) (*image.RGBA, image.Point) {
	if margin < 0 {
		margin = 0
	}
	pb := page.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, pb.Dx()+2*margin, pb.Dy()+2*margin))
	draw.Draw(out, out.Bounds(), image.NewUniform(desk), image.Point{}, draw.Src)
	origin := image.Pt(margin, margin)
	pageRect := image.Rectangle{Min: origin, Max: origin.Add(pb.Size())}

	if a := clampUnit(sh.Opacity); a > 0 {
		mask := image.NewAlpha(out.Bounds())
		draw.Draw(mask, pageRect.Add(sh.Offset), image.Opaque, image.Point{}, draw.Src)
		boxBlur(mask, sh.Blur)
		shade := image.NewUniform(color.RGBA{A: uint8(a*255 + 0.5)})
		draw.DrawMask(out, out.Bounds(), shade, image.Point{}, mask, image.Point{}, draw.Over)
	}
	draw.Draw(out, pageRect, page, pb.Min, draw.Over)
	return out, origin
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// boxBlur blurs m in place with a separable running-sum box of the given
// radius, treating pixels outside the image as transparent.
func boxBlur(m *image.Alpha, radius int) {
	if radius <= 0 {
		return
	}
	w, h := m.Rect.Dx(), m.Rect.Dy()
	line := make([]uint8, max(w, h))
	run := func(get func(i int) uint8, set func(i int, v uint8), n int) {
		for i := 0; i < n; i++ {
			line[i] = get(i)
		}
		span := 2*radius + 1
		sum := 0
		for i := 0; i < radius && i < n; i++ {
			sum += int(line[i])
		}
		for i := 0; i < n; i++ {
			if j := i + radius; j < n {
				sum += int(line[j])
			}
			if j := i - radius - 1; j >= 0 {
				sum -= int(line[j])
			}
			set(i, uint8(sum/span))
		}
	}
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride:]
		run(func(i int) uint8 { return row[i] }, func(i int, v uint8) { row[i] = v }, w)
	}
	for x := 0; x < w; x++ {
		run(func(i int) uint8 { return m.Pix[i*m.Stride+x] }, func(i int, v uint8) { m.Pix[i*m.Stride+x] = v }, h)
	}
}
