package main

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"golang.org/x/image/colornames"
	"golang.org/x/mobile/event/key"

	"github.com/example/notecanvas/internal/canvas"
	"github.com/example/notecanvas/internal/export"
	"github.com/example/notecanvas/internal/input"
	"github.com/example/notecanvas/internal/primitive"
	"github.com/example/notecanvas/internal/theme"
	"github.com/example/notecanvas/internal/tool"
)

func testWindow(t *testing.T, opts ...canvas.Option) *window {
	t.Helper()
	w := newWindow(nil, 10, export.FormatPNG)
	t.Cleanup(w.cancel)
	opts = append([]canvas.Option{
		canvas.WithSize(100, 80),
		canvas.WithOnBack(w.close),
		canvas.WithToolOptions(tool.WithTextRequestHandler(w.beginText)),
	}, opts...)
	w.attach(canvas.New(opts...))
	return w
}

func press(w *window, r rune, code key.Code, mods key.Modifiers) {
	w.key(key.Event{Rune: r, Code: code, Modifiers: mods, Direction: key.DirPress})
}

func TestWindowToolAndPaletteKeys(t *testing.T) {
	w := testWindow(t)
	m := w.c.Machine()
	press(w, 'R', key.CodeR, 0)
	if got := m.Settings().Tool; got != tool.ToolRectangle {
		t.Fatalf("tool %v", got)
	}
	press(w, '2', key.Code2, 0)
	if got := m.Settings().Color; got != colornames.Crimson {
		t.Fatalf("colour %v", got)
	}
	before := m.Settings().Width
	press(w, ']', key.CodeRightSquareBracket, 0)
	if got := m.Settings().Width; got != before+1 {
		t.Fatalf("width %v, want %v", got, before+1)
	}
	size := m.Settings().FontSize
	press(w, '+', key.CodeEqualSign, key.ModShift)
	press(w, '+', key.CodeEqualSign, key.ModShift)
	press(w, '-', key.CodeHyphenMinus, 0)
	if got := m.Settings().FontSize; got != size+theme.FontStep {
		t.Fatalf("font size %v, want %v", got, size+theme.FontStep)
	}
}

func TestWindowTypesLabel(t *testing.T) {
	w := testWindow(t)
	press(w, 't', key.CodeT, 0)
	// The page sits at the margin, so window (15, 15) is page (5, 5).
	w.capture.Pointer(input.PointerDown, 15, 15, 1)
	w.capture.Pointer(input.PointerUp, 15, 15, 1)
	for _, r := range "hix" {
		press(w, r, 0, 0)
	}
	press(w, 0, key.CodeDeleteBackspace, 0)
	press(w, 0, key.CodeReturnEnter, 0)

	ls := w.c.Store().Layers()
	if len(ls) != 1 || ls[0].Kind != primitive.KindText {
		t.Fatalf("layers %+v", ls)
	}
	if got := ls[0].Text; got.Body != "hi" || got.X != 5 || got.Y != 5 {
		t.Fatalf("label %+v", *got)
	}
}

func TestWindowToolKeysIgnoredWhileTyping(t *testing.T) {
	w := testWindow(t)
	press(w, 't', key.CodeT, 0)
	w.capture.Pointer(input.PointerDown, 20, 20, 1)
	w.capture.Pointer(input.PointerUp, 20, 20, 1)
	press(w, 'p', key.CodeP, 0)
	if got := w.c.Machine().Settings().Tool; got != tool.ToolText {
		t.Fatalf("tool changed to %v while typing", got)
	}
	press(w, 0, key.CodeEscape, 0)
	if _, ok := w.c.Machine().PendingText(); ok {
		t.Fatal("escape left text pending")
	}
	if w.c.Store().Len() != 0 {
		t.Fatal("cancelled label committed")
	}
}

func TestWindowQuitRunsBack(t *testing.T) {
	w := testWindow(t)
	press(w, 'q', key.CodeQ, 0)
	if !w.quit {
		t.Fatal("q did not close the window")
	}
}

func TestWindowSaveReportsBack(t *testing.T) {
	targets := make(chan saveTarget, 1)
	saver := export.SaverFunc(func(ctx context.Context, p export.Payload) error {
		tgt, _ := ctx.Value(targetKey{}).(saveTarget)
		targets <- tgt
		if p.Format != export.FormatPNG {
			t.Errorf("format %s", p.Format)
		}
		return nil
	})
	w := newWindow(nil, 10, export.FormatPDF)
	t.Cleanup(w.cancel)
	w.attach(canvas.New(canvas.WithSize(20, 20), canvas.WithOnSave(saver)))
	events := make(chan any, 4)
	w.post = func(e any) { events <- e }

	press(w, 'c', key.CodeC, key.ModControl)
	select {
	case got := <-targets:
		if got != targetClipboard {
			t.Fatalf("target %v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("saver not called")
	}
	for {
		select {
		case e := <-events:
			ev, ok := e.(savedEvent)
			if !ok {
				continue
			}
			if ev.err != nil || ev.target != targetClipboard {
				t.Fatalf("event %+v", ev)
			}
			w.saved(ev)
			if w.message != "copied to clipboard" {
				t.Fatalf("message %q", w.message)
			}
			return
		case <-time.After(5 * time.Second):
			t.Fatal("no saved event")
		}
	}
}

func TestWindowPaint(t *testing.T) {
	w := testWindow(t, canvas.WithBackground(color.RGBA{255, 255, 255, 255}))
	m := w.c.Machine()
	m.SetTool(tool.ToolRectangle)
	m.SetColor(color.RGBA{255, 0, 0, 255})
	m.SetWidth(2)
	w.capture.Pointer(input.PointerDown, 20, 20, 1)
	w.capture.Pointer(input.PointerMove, 60, 50, 1)
	w.capture.Pointer(input.PointerUp, 60, 50, 1)

	dst := image.NewRGBA(image.Rect(0, 0, 120, 100+statusHeight))
	w.paint(dst)
	if got := dst.RGBAAt(0, 0); got != w.theme.Desk {
		t.Fatalf("desk %v", got)
	}
	if got := dst.RGBAAt(20, 30); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("rect edge %v", got)
	}
	if got := dst.RGBAAt(40, 35); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("page %v", got)
	}
	if got := dst.RGBAAt(dst.Bounds().Dx()-1, dst.Bounds().Dy()-1); got != w.theme.Page {
		t.Fatalf("status bar %v", got)
	}
}

func TestWindowPaintTransparentPageShowsChecker(t *testing.T) {
	w := testWindow(t, canvas.WithBackground(color.RGBA{}))
	dst := image.NewRGBA(image.Rect(0, 0, 120, 100+statusHeight))
	w.paint(dst)
	a := dst.RGBAAt(10, 10)
	b := dst.RGBAAt(10+checkerSize, 10)
	if a != w.theme.CheckerLight || b != w.theme.CheckerDark {
		t.Fatalf("checker %v %v", a, b)
	}
}
