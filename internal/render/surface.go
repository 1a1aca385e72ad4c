// Package render draws committed and in-progress primitives onto a target
// surface. Each platform supplies a Surface; Draw owns the ordering rules.
package render

import (
	"sort"

	"github.com/example/notecanvas/internal/primitive"
)

// Surface is the narrow drawing interface a platform implements.
// BeginEraseComposite switches the surface into a destructive mode where
// subsequent strokes clear existing pixels instead of painting colour;
// EndEraseComposite restores normal painting.
type Surface interface {
	DrawStroke(s primitive.Stroke)
	DrawRect(r primitive.Rect)
	DrawText(t primitive.Text)
	DrawImage(im primitive.Image)
	BeginEraseComposite()
	EndEraseComposite()
}

// Draw paints layers in ascending z order followed by the in-progress
// primitive, which always ends up on top.
func Draw(s Surface, layers []primitive.Primitive, inProgress *primitive.Primitive) {
	ordered := make([]primitive.Primitive, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Z < ordered[j].Z })
	for _, p := range ordered {
		drawOne(s, p)
	}
	if inProgress != nil {
		drawOne(s, *inProgress)
	}
}

func drawOne(s Surface, p primitive.Primitive) {
	switch p.Kind {
	case primitive.KindStroke:
		if p.Stroke.Eraser {
			s.BeginEraseComposite()
			s.DrawStroke(*p.Stroke)
			s.EndEraseComposite()
			return
		}
		s.DrawStroke(*p.Stroke)
	case primitive.KindRect:
		s.DrawRect(*p.Rect)
	case primitive.KindText:
		s.DrawText(*p.Text)
	case primitive.KindImage:
		s.DrawImage(*p.Image)
	}
}
