package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/example/notecanvas/internal/primitive"
)

// Snapshot renders layers and the optional in-progress primitive into a new
// image of the given size, then places the result over bg. Layers are drawn
// onto a transparent buffer first so eraser strokes reveal bg rather than
// painting over it. A zero bg leaves the frame transparent.
func Snapshot(layers []primitive.Primitive, inProgress *primitive.Primitive, size image.Point, bg color.Color) *image.RGBA {
	bounds := image.Rectangle{Max: size}
	ink := image.NewRGBA(bounds)
	Draw(NewRaster(ink), layers, inProgress)
	if bg == nil {
		return ink
	}
	if _, _, _, a := bg.RGBA(); a == 0 {
		return ink
	}
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, bounds, ink, image.Point{}, draw.Over)
	return out
}
