//go:build js && wasm

package input

import (
	"image"
	"math"
	"syscall/js"
)

// DOMBounds reads el.getBoundingClientRect() each time it is called.
func DOMBounds(el js.Value) BoundsFunc {
	return func() image.Rectangle {
		r := el.Call("getBoundingClientRect")
		x := int(math.Round(r.Get("left").Float()))
		y := int(math.Round(r.Get("top").Float()))
		w := int(math.Round(r.Get("width").Float()))
		h := int(math.Round(r.Get("height").Float()))
		return image.Rect(x, y, x+w, y+h)
	}
}

// BindDOM attaches pointer listeners to a <canvas> element and feeds them to
// c using clientX/clientY. after runs once each event has been handled, so
// the host can redraw. The returned function removes the listeners.
func BindDOM(el js.Value, c *Capture, after func()) (release func()) {
	kinds := map[string]PointerKind{
		"pointerdown":   PointerDown,
		"pointermove":   PointerMove,
		"pointerup":     PointerUp,
		"pointercancel": PointerCancel,
	}
	funcs := make(map[string]js.Func, len(kinds))
	for name, kind := range kinds {
		kind := kind
		fn := js.FuncOf(func(this js.Value, args []js.Value) any {
			ev := args[0]
			ev.Call("preventDefault")
			id := int64(ev.Get("pointerId").Int())
			if kind == PointerDown {
				el.Call("setPointerCapture", id)
			}
			c.Pointer(kind, ev.Get("clientX").Float(), ev.Get("clientY").Float(), id)
			if after != nil {
				after()
			}
			return nil
		})
		funcs[name] = fn
		el.Call("addEventListener", name, fn)
	}
	return func() {
		for name, fn := range funcs {
			el.Call("removeEventListener", name, fn)
			fn.Release()
		}
	}
}
