package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log"
	"os"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/notecanvas/internal/canvas"
	"github.com/example/notecanvas/internal/clipboard"
	"github.com/example/notecanvas/internal/export"
	"github.com/example/notecanvas/internal/input"
	"github.com/example/notecanvas/internal/primitive"
	"github.com/example/notecanvas/internal/render"
	"github.com/example/notecanvas/internal/theme"
	"github.com/example/notecanvas/internal/tool"
)

const (
	statusHeight = 20
	checkerSize  = 8
	flashFor     = 3 * time.Second
)

var toolKeys = map[rune]tool.Tool{
	'p': tool.ToolPen,
	'e': tool.ToolEraser,
	'r': tool.ToolRectangle,
	't': tool.ToolText,
	's': tool.ToolSelect,
}

// savedEvent reports a finished background save back to the event loop.
type savedEvent struct {
	target saveTarget
	err    error
}

// window is the interactive canvas: a page on a desk with a status line
// underneath. Everything except the save and decode goroutines runs on the
// shiny event loop.
type window struct {
	theme   *theme.Theme
	margin  int
	shadow  render.PageShadow
	format  export.Format
	docPath string
	maxW    float64
	maxH    float64

	c       *canvas.Canvas
	capture *input.Capture
	origin  image.Point
	hover   primitive.Point
	hovered bool

	text []rune

	message      string
	messageUntil time.Time

	ctx    context.Context
	cancel context.CancelFunc
	post   func(any)
	quit   bool
	err    error
}

func newWindow(t *theme.Theme, margin int, f export.Format) *window {
	if t == nil {
		t = theme.Default()
	}
	if margin < 0 {
		margin = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &window{
		theme:  t,
		margin: margin,
		shadow: render.DefaultPageShadow(),
		format: f,
		maxW:   tool.DefaultMaxImageWidth,
		maxH:   tool.DefaultMaxImageHeight,
		origin: image.Pt(margin, margin),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (w *window) attach(c *canvas.Canvas) {
	w.c = c
	w.capture = input.NewCapture(c, input.Mapper{Bounds: w.pageBounds})
}

func (w *window) pageBounds() image.Rectangle {
	return image.Rectangle{Min: w.origin, Max: w.origin.Add(w.c.Size())}
}

// sender returns a function that posts to the event loop, or does nothing
// when no loop is running. Goroutines take it before they start.
func (w *window) sender() func(any) {
	if post := w.post; post != nil {
		return post
	}
	return func(any) {}
}

func (w *window) close() { w.quit = true }

func (w *window) flash(format string, args ...any) {
	w.message = fmt.Sprintf(format, args...)
	w.messageUntil = time.Now().Add(flashFor)
	send := w.sender()
	time.AfterFunc(flashFor, func() { send(paint.Event{}) })
}

func (w *window) beginText(req tool.TextRequest) {
	w.text = []rune(req.Initial)
}

func (w *window) main(s screen.Screen) {
	sz := w.c.Size().Add(image.Pt(2*w.margin, 2*w.margin+statusHeight))
	win, err := s.NewWindow(&screen.NewWindowOptions{Width: sz.X, Height: sz.Y, Title: "notecanvas"})
	if err != nil {
		w.err = fmt.Errorf("new window: %w", err)
		return
	}
	defer win.Release()
	defer w.cancel()
	buf, err := s.NewBuffer(sz)
	if err != nil {
		w.err = fmt.Errorf("new buffer: %w", err)
		return
	}
	defer func() { buf.Release() }()
	w.post = win.Send
	defer func() { w.post = nil }()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-w.c.Changed():
				win.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	if w.c.Machine().Phase() == tool.PhaseDecoding {
		w.watchDecode()
	}

	for !w.quit {
		switch e := win.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			next := e.Size()
			if next.X <= 0 || next.Y <= 0 || next == buf.Size() {
				continue
			}
			nb, err := s.NewBuffer(next)
			if err != nil {
				log.Printf("resize buffer: %v", err)
				continue
			}
			buf.Release()
			buf = nb
			win.Send(paint.Event{})
		case paint.Event:
			w.paint(buf.RGBA())
			win.Upload(image.Point{}, buf, buf.Bounds())
			win.Publish()
		case mouse.Event:
			w.hover = input.Mapper{Bounds: w.pageBounds}.Map(float64(e.X), float64(e.Y))
			w.hovered = true
			w.capture.Mouse(e)
			win.Send(paint.Event{})
		case touch.Event:
			w.capture.Touch(e)
			win.Send(paint.Event{})
		case key.Event:
			w.key(e)
			win.Send(paint.Event{})
		case tool.Decoded:
			w.decoded(e)
			win.Send(paint.Event{})
		case savedEvent:
			w.saved(e)
			win.Send(paint.Event{})
		case error:
			log.Printf("window: %v", e)
		}
	}
}

func (w *window) key(e key.Event) {
	if e.Direction != key.DirPress {
		return
	}
	m := w.c.Machine()
	if _, ok := m.PendingText(); ok {
		w.textKey(e)
		return
	}
	if e.Modifiers&key.ModControl != 0 {
		switch e.Code {
		case key.CodeS:
			w.save(targetFile)
		case key.CodeC:
			w.save(targetClipboard)
		case key.CodeU:
			w.save(targetUpload)
		case key.CodeV:
			w.pasteImage()
		case key.CodeD:
			w.writeDocument()
		case key.CodeL:
			w.c.Clear()
		}
		return
	}
	switch e.Code {
	case key.CodeEscape:
		m.Cancel()
		w.c.Store().ClearSelection()
		return
	case key.CodeDeleteForward, key.CodeDeleteBackspace:
		m.DeleteSelected()
		return
	case key.CodeLeftSquareBracket:
		m.SetWidth(m.Settings().Width - 1)
		return
	case key.CodeRightSquareBracket:
		m.SetWidth(m.Settings().Width + 1)
		return
	}
	r := unicode.ToLower(e.Rune)
	if t, ok := toolKeys[r]; ok {
		m.SetTool(t)
		return
	}
	if r >= '1' && int(r-'1') < len(theme.Palette) {
		m.SetColor(theme.Palette[r-'1'])
		return
	}
	switch r {
	case '+', '=':
		m.SetFontSize(m.Settings().FontSize + theme.FontStep)
		return
	case '-':
		m.SetFontSize(m.Settings().FontSize - theme.FontStep)
		return
	}
	if r == 'q' {
		w.c.Back()
	}
}

func (w *window) textKey(e key.Event) {
	m := w.c.Machine()
	switch {
	case e.Code == key.CodeReturnEnter:
		if _, err := m.ConfirmText(string(w.text)); err != nil {
			log.Printf("confirm text: %v", err)
		}
		w.text = nil
	case e.Code == key.CodeEscape:
		m.CancelText()
		w.text = nil
	case e.Code == key.CodeDeleteBackspace:
		if len(w.text) > 0 {
			w.text = w.text[:len(w.text)-1]
		}
	case e.Modifiers&key.ModControl != 0 && e.Code == key.CodeV:
		s, err := clipboard.ReadText()
		if err != nil {
			w.flash("paste: %v", err)
			return
		}
		w.text = append(w.text, []rune(s)...)
	case e.Rune > 0 && unicode.IsPrint(e.Rune):
		w.text = append(w.text, e.Rune)
	}
}

func (w *window) save(t saveTarget) {
	f := w.format
	if t == targetClipboard {
		f = export.FormatPNG
	}
	done := w.c.SaveAsync(withTarget(w.ctx, t), f)
	send := w.sender()
	go func() { send(savedEvent{target: t, err: <-done}) }()
}

func (w *window) saved(e savedEvent) {
	if e.err != nil {
		w.flash("%s failed: %v", e.target, e.err)
		return
	}
	switch e.target {
	case targetClipboard:
		w.flash("copied to clipboard")
	case targetUpload:
		w.flash("uploaded")
	default:
		w.flash("saved")
	}
}

func (w *window) pasteImage() {
	data, err := clipboard.ReadPNG()
	if err != nil {
		w.flash("paste: %v", err)
		return
	}
	w.loadImage(bytes.NewReader(data))
}

// loadImage starts a background decode. The result comes back through the
// event loop once the window is running.
func (w *window) loadImage(r io.Reader) {
	w.c.Machine().LoadImage(w.ctx, r)
	w.watchDecode()
}

func (w *window) watchDecode() {
	ch := w.c.Machine().Decoded()
	if ch == nil || w.post == nil {
		return
	}
	send, ctx := w.post, w.ctx
	go func() {
		select {
		case d := <-ch:
			send(d)
		case <-ctx.Done():
		}
	}()
}

func (w *window) decoded(d tool.Decoded) {
	if w.c.Machine().Deliver(d) {
		w.flash("click to place the image")
		return
	}
	if d.Err != nil {
		w.flash("image: %v", d.Err)
	}
}

func (w *window) writeDocument() {
	if w.docPath == "" {
		w.flash("no document path; start with -doc")
		return
	}
	f, err := os.Create(w.docPath)
	if err != nil {
		w.flash("document: %v", err)
		return
	}
	err = w.c.WriteDocument(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		w.flash("document: %v", err)
		return
	}
	w.flash("wrote %s", w.docPath)
}

func (w *window) paint(dst *image.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(w.theme.Desk), image.Point{}, draw.Src)
	framed, origin := render.OnDesk(w.page(), w.theme.Desk, w.margin, w.shadow)
	w.origin = origin
	draw.Draw(dst, framed.Bounds(), framed, image.Point{}, draw.Src)
	w.drawStatus(dst)
}

// page renders the canvas frame with the window-only overlays on top.
func (w *window) page() *image.RGBA {
	c := w.c
	page := image.NewRGBA(image.Rectangle{Max: c.Size()})
	if c.Background().A == 0 {
		checker(page, w.theme.CheckerLight, w.theme.CheckerDark)
	}
	draw.Draw(page, page.Bounds(), c.Frame(), image.Point{}, draw.Over)

	if id, ok := c.Store().Selected(); ok {
		if p, ok := c.Store().Get(id); ok {
			outline(page, p.Bounds().Inset(-2), w.theme.Selection)
		}
	}
	m := c.Machine()
	if req, ok := m.PendingText(); ok {
		w.drawTextEntry(page, req)
	}
	if img, ok := m.PendingImage(); ok && w.hovered {
		b := img.Bounds()
		fw, fh := primitive.FitWithin(float64(b.Dx()), float64(b.Dy()), w.maxW, w.maxH)
		x, y := int(w.hover.X), int(w.hover.Y)
		outline(page, image.Rect(x, y, x+int(fw), y+int(fh)), w.theme.Preview)
	}
	return page
}

// drawTextEntry shows the label being typed with a caret. A label being
// re-edited is blanked first so the old body does not show through.
func (w *window) drawTextEntry(page *image.RGBA, req tool.TextRequest) {
	s := w.c.Machine().Settings()
	if req.EditID != "" {
		if old, ok := w.c.Store().Get(req.EditID); ok {
			s.FontSize = old.Text.FontSize
			s.Color = old.Text.Color
			if bg := w.c.Background(); bg.A != 0 {
				draw.Draw(page, old.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
			}
		}
	}
	p, err := primitive.NewText(req.Pos.X, req.Pos.Y, string(w.text)+"|", s.FontSize, s.Color)
	if err != nil {
		return
	}
	render.NewRaster(page).DrawText(*p.Text)
}

func (w *window) drawStatus(dst *image.RGBA) {
	b := dst.Bounds()
	bar := image.Rect(b.Min.X, b.Max.Y-statusHeight, b.Max.X, b.Max.Y)
	draw.Draw(dst, bar, image.NewUniform(w.theme.Page), image.Point{}, draw.Src)

	s := w.c.Machine().Settings()
	swatch := image.Rect(bar.Min.X+4, bar.Min.Y+4, bar.Min.X+16, bar.Max.Y-4)
	draw.Draw(dst, swatch, image.NewUniform(s.Color), image.Point{}, draw.Src)
	outline(dst, swatch, w.theme.Ink)

	line := fmt.Sprintf("%s  width %g  font %g  %s", s.Tool, s.Width, s.FontSize, theme.FormatColor(s.Color))
	if w.c.Saving() {
		line += "  saving"
	}
	if w.message != "" && time.Now().Before(w.messageUntil) {
		line += "  | " + w.message
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(w.theme.Ink),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(swatch.Max.X+8, bar.Max.Y-6),
	}
	d.DrawString(line)
}

func checker(dst *image.RGBA, light, dark color.RGBA) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += checkerSize {
		for x := b.Min.X; x < b.Max.X; x += checkerSize {
			col := light
			if ((x-b.Min.X)/checkerSize+(y-b.Min.Y)/checkerSize)%2 == 1 {
				col = dark
			}
			draw.Draw(dst, image.Rect(x, y, x+checkerSize, y+checkerSize).Intersect(b), image.NewUniform(col), image.Point{}, draw.Src)
		}
	}
}

// outline draws a one pixel border just inside r.
func outline(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	if r.Empty() {
		return
	}
	src := image.NewUniform(col)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(dst, edge.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
	}
}
