//go:build js && wasm

// Command notecanvas-web hosts the canvas in a browser page. The page must
// contain <canvas id="notecanvas">; its width and height attributes set the
// page size. Ctrl+S downloads a PNG and Ctrl+O picks an image to place.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"log"
	"syscall/js"

	"github.com/example/notecanvas/internal/canvas"
	"github.com/example/notecanvas/internal/export"
	"github.com/example/notecanvas/internal/input"
	"github.com/example/notecanvas/internal/render/htmlcanvas"
	"github.com/example/notecanvas/internal/theme"
	"github.com/example/notecanvas/internal/tool"
)

var toolKeys = map[string]tool.Tool{
	"p": tool.ToolPen,
	"e": tool.ToolEraser,
	"r": tool.ToolRectangle,
	"t": tool.ToolText,
	"s": tool.ToolSelect,
}

// download hands the payload to the browser as a file.
func download(ctx context.Context, p export.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a := js.Global().Get("document").Call("createElement", "a")
	a.Set("href", "data:"+p.Format.ContentType()+";base64,"+base64.StdEncoding.EncodeToString(p.Data))
	a.Set("download", p.Name)
	a.Call("click")
	return nil
}

// imagePicker adds a hidden file input. Chosen files are read into memory
// and passed to load.
func imagePicker(doc js.Value, load func([]byte)) (pick func(), release func()) {
	in := doc.Call("createElement", "input")
	in.Set("type", "file")
	in.Set("accept", "image/png,image/jpeg,image/gif")
	in.Get("style").Set("display", "none")
	doc.Get("body").Call("appendChild", in)

	var onData js.Func
	onData = js.FuncOf(func(this js.Value, args []js.Value) any {
		arr := js.Global().Get("Uint8Array").New(args[0])
		data := make([]byte, arr.Get("length").Int())
		js.CopyBytesToGo(data, arr)
		load(data)
		return nil
	})
	onChange := js.FuncOf(func(this js.Value, args []js.Value) any {
		files := in.Get("files")
		if files.Get("length").Int() == 0 {
			return nil
		}
		files.Index(0).Call("arrayBuffer").Call("then", onData)
		in.Set("value", "")
		return nil
	})
	in.Call("addEventListener", "change", onChange)
	return func() { in.Call("click") }, func() {
		in.Call("removeEventListener", "change", onChange)
		onChange.Release()
		onData.Release()
		in.Call("remove")
	}
}

func main() {
	doc := js.Global().Get("document")
	el := doc.Call("getElementById", "notecanvas")
	if el.IsNull() || el.IsUndefined() {
		log.Printf("notecanvas: page has no <canvas id=\"notecanvas\">")
		return
	}
	w, h := el.Get("width").Int(), el.Get("height").Int()
	c := canvas.New(
		canvas.WithSize(w, h),
		canvas.WithBackground(color.RGBA{255, 255, 255, 255}),
		canvas.WithOnSave(export.SaverFunc(download)),
	)
	surface := htmlcanvas.New(el)
	m := c.Machine()

	redraw := func() {
		surface.Clear()
		c.Draw(surface)
	}
	surface.Loaded = redraw
	after := func() {
		if req, ok := m.PendingText(); ok {
			v := js.Global().Call("prompt", "Label", req.Initial)
			if v.IsNull() {
				m.CancelText()
			} else if _, err := m.ConfirmText(v.String()); err != nil {
				log.Printf("confirm text: %v", err)
			}
		}
		redraw()
	}

	capture := input.NewCapture(c, input.Mapper{Bounds: input.DOMBounds(el), Page: image.Pt(w, h)})
	release := input.BindDOM(el, capture, after)
	defer release()

	pick, releasePicker := imagePicker(doc, func(data []byte) {
		m.LoadImage(context.Background(), bytes.NewReader(data))
		go func() {
			if err := m.WaitDecode(context.Background()); err != nil {
				log.Printf("image: %v", err)
			}
			redraw()
		}()
	})
	defer releasePicker()

	onKey := js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := args[0]
		key := ev.Get("key").String()
		if ev.Get("ctrlKey").Bool() {
			switch key {
			case "s":
				ev.Call("preventDefault")
				if _, err := c.Save(context.Background(), export.FormatPNG); err != nil {
					log.Printf("save: %v", err)
				}
			case "o":
				ev.Call("preventDefault")
				pick()
			case "l":
				ev.Call("preventDefault")
				c.Clear()
			}
			redraw()
			return nil
		}
		switch key {
		case "Escape":
			m.Cancel()
			c.Store().ClearSelection()
		case "Delete", "Backspace":
			m.DeleteSelected()
		case "[":
			m.SetWidth(m.Settings().Width - 1)
		case "]":
			m.SetWidth(m.Settings().Width + 1)
		case "+", "=":
			m.SetFontSize(m.Settings().FontSize + theme.FontStep)
		case "-":
			m.SetFontSize(m.Settings().FontSize - theme.FontStep)
		default:
			if t, ok := toolKeys[key]; ok {
				m.SetTool(t)
			} else if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(theme.Palette) {
				m.SetColor(theme.Palette[key[0]-'1'])
			}
		}
		redraw()
		return nil
	})
	defer onKey.Release()
	doc.Call("addEventListener", "keydown", onKey)

	redraw()
	select {}
}
