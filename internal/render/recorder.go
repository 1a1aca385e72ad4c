package render

import (
	"fmt"
	"image/color"

	"github.com/example/notecanvas/internal/primitive"
)

// Op is one recorded Surface call.
type Op struct {
	Call  string
	Color color.RGBA
	Erase bool
	Text  string
}

func (o Op) String() string {
	if o.Text != "" {
		return fmt.Sprintf("%s(%q)", o.Call, o.Text)
	}
	return fmt.Sprintf("%s(#%02x%02x%02x%02x erase=%t)", o.Call, o.Color.R, o.Color.G, o.Color.B, o.Color.A, o.Erase)
}

// Recorder is a Surface that remembers the calls made on it.
type Recorder struct {
	Ops     []Op
	erasing bool
}

var _ Surface = (*Recorder)(nil)

func (r *Recorder) DrawStroke(s primitive.Stroke) {
	r.Ops = append(r.Ops, Op{Call: "stroke", Color: s.Color, Erase: r.erasing})
}

func (r *Recorder) DrawRect(rc primitive.Rect) {
	r.Ops = append(r.Ops, Op{Call: "rect", Color: rc.Color, Erase: r.erasing})
}

func (r *Recorder) DrawText(t primitive.Text) {
	r.Ops = append(r.Ops, Op{Call: "text", Color: t.Color, Erase: r.erasing, Text: t.Body})
}

func (r *Recorder) DrawImage(primitive.Image) {
	r.Ops = append(r.Ops, Op{Call: "image", Erase: r.erasing})
}

func (r *Recorder) BeginEraseComposite() {
	r.erasing = true
	r.Ops = append(r.Ops, Op{Call: "begin-erase"})
}

func (r *Recorder) EndEraseComposite() {
	r.erasing = false
	r.Ops = append(r.Ops, Op{Call: "end-erase"})
}

// Calls returns just the call names, in order.
func (r *Recorder) Calls() []string {
	out := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		out[i] = op.Call
	}
	return out
}
