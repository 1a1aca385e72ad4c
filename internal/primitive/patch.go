package primitive

import "image/color"

// Patch lists the fields updateLayer may change. Nil fields are left alone.
// Fields that do not exist on a primitive's variant are ignored.
type Patch struct {
	Body     *string
	FontSize *float64
	Color    *color.RGBA
	X, Y     *float64
}

// BodyPatch returns a Patch replacing the text body.
func BodyPatch(body string) Patch { return Patch{Body: &body} }

// Apply returns a copy of p with the non-nil fields of patch merged in. The
// receiver's variant data is never modified.
func (p Primitive) Apply(patch Patch) Primitive {
	switch p.Kind {
	case KindText:
		t := *p.Text
		if patch.Body != nil {
			t.Body = *patch.Body
		}
		if patch.FontSize != nil && *patch.FontSize > 0 {
			t.FontSize = *patch.FontSize
		}
		if patch.Color != nil {
			t.Color = *patch.Color
		}
		if patch.X != nil {
			t.X = *patch.X
		}
		if patch.Y != nil {
			t.Y = *patch.Y
		}
		p.Text = &t
	case KindRect:
		r := *p.Rect
		if patch.Color != nil {
			r.Color = *patch.Color
		}
		if patch.X != nil {
			r.X = *patch.X
		}
		if patch.Y != nil {
			r.Y = *patch.Y
		}
		p.Rect = &r
	case KindStroke:
		s := *p.Stroke
		if patch.Color != nil && !s.Eraser {
			s.Color = *patch.Color
		}
		p.Stroke = &s
	case KindImage:
		im := *p.Image
		if patch.X != nil {
			im.X = *patch.X
		}
		if patch.Y != nil {
			im.Y = *patch.Y
		}
		p.Image = &im
	}
	return p
}
