//go:build js && wasm

// Package htmlcanvas draws primitives onto a browser <canvas> through its 2D
// context.
package htmlcanvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"image/png"
	"math"
	"syscall/js"

	"github.com/example/notecanvas/internal/primitive"
	"github.com/example/notecanvas/internal/render"
)

// Surface adapts a CanvasRenderingContext2D.
type Surface struct {
	ctx    js.Value
	images map[any]js.Value

	// Loaded, when set, runs once the browser finishes decoding an image
	// that an earlier frame had to skip.
	Loaded func()
}

var _ render.Surface = (*Surface)(nil)

// New returns a Surface for the given <canvas> element.
func New(canvas js.Value) *Surface {
	return &Surface{ctx: canvas.Call("getContext", "2d"), images: map[any]js.Value{}}
}

// Clear wipes the whole canvas.
func (s *Surface) Clear() {
	c := s.ctx.Get("canvas")
	s.ctx.Call("clearRect", 0, 0, c.Get("width"), c.Get("height"))
}

func css(c color.RGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, float64(c.A)/255)
}

func (s *Surface) BeginEraseComposite() {
	s.ctx.Set("globalCompositeOperation", "destination-out")
}

func (s *Surface) EndEraseComposite() {
	s.ctx.Set("globalCompositeOperation", "source-over")
}

func (s *Surface) DrawStroke(st primitive.Stroke) {
	if len(st.Points) == 0 {
		return
	}
	s.ctx.Set("lineCap", "round")
	s.ctx.Set("lineJoin", "round")
	s.ctx.Set("lineWidth", st.Width)
	s.ctx.Set("strokeStyle", css(st.Color))
	s.ctx.Set("fillStyle", css(st.Color))
	if len(st.Points) == 1 {
		p := st.Points[0]
		s.ctx.Call("beginPath")
		s.ctx.Call("arc", p.X, p.Y, st.Width/2, 0, 2*math.Pi)
		s.ctx.Call("fill")
		return
	}
	s.ctx.Call("beginPath")
	s.ctx.Call("moveTo", st.Points[0].X, st.Points[0].Y)
	for _, p := range st.Points[1:] {
		s.ctx.Call("lineTo", p.X, p.Y)
	}
	s.ctx.Call("stroke")
}

func (s *Surface) DrawRect(r primitive.Rect) {
	s.ctx.Set("lineWidth", r.Width)
	s.ctx.Set("strokeStyle", css(r.Color))
	s.ctx.Call("strokeRect", r.X, r.Y, r.W, r.H)
}

func (s *Surface) DrawText(t primitive.Text) {
	s.ctx.Set("font", fmt.Sprintf("%gpx sans-serif", t.FontSize))
	s.ctx.Set("textBaseline", "top")
	s.ctx.Set("fillStyle", css(t.Color))
	s.ctx.Call("fillText", t.Body, t.X, t.Y)
}

// DrawImage draws the bitmap once the browser has decoded it. Until then the
// image is skipped and Loaded is called when it becomes ready.
func (s *Surface) DrawImage(im primitive.Image) {
	if im.Src == nil {
		return
	}
	el, ok := s.images[im.Src]
	if !ok {
		var buf bytes.Buffer
		if err := png.Encode(&buf, im.Src); err != nil {
			return
		}
		el = js.Global().Get("Image").New()
		var onload js.Func
		onload = js.FuncOf(func(this js.Value, args []js.Value) any {
			onload.Release()
			if s.Loaded != nil {
				s.Loaded()
			}
			return nil
		})
		el.Set("onload", onload)
		el.Set("src", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(buf.Bytes()))
		s.images[im.Src] = el
	}
	if !el.Get("complete").Bool() {
		return
	}
	s.ctx.Call("drawImage", el, im.X, im.Y, im.W, im.H)
}
