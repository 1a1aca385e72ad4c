package canvas

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/colornames"

	"github.com/example/notecanvas/internal/config"
	"github.com/example/notecanvas/internal/export"
	"github.com/example/notecanvas/internal/primitive"
	"github.com/example/notecanvas/internal/tool"
)

func drag(c *Canvas, pts ...primitive.Point) {
	c.Start(pts[0])
	for _, p := range pts[1:] {
		c.Move(p)
	}
	c.End()
}

func TestRectangleEndToEnd(t *testing.T) {
	c := New()
	m := c.Machine()
	m.SetTool(tool.ToolRectangle)
	m.SetColor(colornames.Red)
	m.SetWidth(2)
	drag(c, primitive.Pt(10, 10), primitive.Pt(50, 10), primitive.Pt(50, 40))

	got := c.Store().Layers()
	if len(got) != 1 {
		t.Fatalf("got %d layers, want 1", len(got))
	}
	want := primitive.Rect{X: 10, Y: 10, W: 40, H: 30, Color: colornames.Red, Width: 2}
	if got[0].Kind != primitive.KindRect || *got[0].Rect != want {
		t.Fatalf("layer %+v, want %+v", got[0].Rect, want)
	}
	if got[0].Z != 0 {
		t.Fatalf("z = %d, want 0", got[0].Z)
	}
}

func TestEraserRemovesPixelsFromFrame(t *testing.T) {
	c := New(WithSize(60, 50), WithBackground(color.RGBA{}))
	m := c.Machine()
	m.SetTool(tool.ToolRectangle)
	m.SetColor(colornames.Red)
	m.SetWidth(4)
	drag(c, primitive.Pt(10, 10), primitive.Pt(40, 30))

	before := c.Frame().RGBAAt(10, 20)
	if before.A == 0 {
		t.Fatal("rectangle edge not drawn")
	}

	m.SetTool(tool.ToolEraser)
	m.SetWidth(10)
	drag(c, primitive.Pt(10, 5), primitive.Pt(10, 35))
	after := c.Frame().RGBAAt(10, 20)
	if after.A != 0 {
		t.Fatalf("erased pixel %+v, want transparent", after)
	}
}

func TestFrameShowsPreview(t *testing.T) {
	c := New(WithSize(20, 20), WithBackground(color.RGBA{}))
	c.Machine().SetWidth(4)
	c.Start(primitive.Pt(10, 10))
	if got := c.Frame().RGBAAt(10, 10); got.A == 0 {
		t.Fatal("in-progress dot not rendered")
	}
	if c.Store().Len() != 0 {
		t.Fatal("preview committed early")
	}
}

type blockingSaver struct {
	started chan struct{}
	release chan struct{}
	got     []export.Payload
}

func (b *blockingSaver) Save(ctx context.Context, p export.Payload) error {
	b.got = append(b.got, p)
	close(b.started)
	<-b.release
	return nil
}

func TestSaveRejectsOverlap(t *testing.T) {
	s := &blockingSaver{started: make(chan struct{}), release: make(chan struct{})}
	c := New(WithOnSave(s))
	done := c.SaveAsync(context.Background(), export.FormatPNG)
	<-s.started
	if !c.Saving() {
		t.Fatal("Saving() = false during save")
	}
	if _, err := c.Save(context.Background(), export.FormatPNG); !errors.Is(err, ErrSaveInProgress) {
		t.Fatalf("overlapping save err = %v", err)
	}
	// Drawing stays possible while the save is in flight.
	drag(c, primitive.Pt(1, 1), primitive.Pt(5, 5))
	close(s.release)
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("save did not finish")
	}
	if c.Saving() {
		t.Fatal("busy flag not released")
	}
	if c.Store().Len() != 1 {
		t.Fatal("stroke drawn during save was lost")
	}
}

func TestSavePropagatesFailure(t *testing.T) {
	boom := errors.New("backend down")
	c := New(WithOnSave(export.SaverFunc(func(context.Context, export.Payload) error { return boom })))
	if _, err := c.Save(context.Background(), export.FormatPNG); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if c.Saving() {
		t.Fatal("busy flag left set after failure")
	}
}

func TestSaveEncodesCommittedLayersOnly(t *testing.T) {
	var got export.Payload
	c := New(WithSize(30, 20), WithOnSave(export.SaverFunc(func(_ context.Context, p export.Payload) error {
		got = p
		return nil
	})))
	c.Machine().SetWidth(6)
	c.Start(primitive.Pt(10, 10)) // left in progress
	if _, err := c.Save(context.Background(), export.FormatPNG); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(got.Data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 30, 20) {
		t.Fatalf("bounds %v", img.Bounds())
	}
	if r, g, b, _ := img.At(10, 10).RGBA(); r != 0xffff || g != 0xffff || b != 0xffff {
		t.Fatal("uncommitted preview was exported")
	}
}

func TestSaveWithoutTarget(t *testing.T) {
	if _, err := New().Save(context.Background(), export.FormatPNG); !errors.Is(err, ErrNoSaveTarget) {
		t.Fatalf("err = %v", err)
	}
}

func TestBackRunsCallbackAndKeepsLayers(t *testing.T) {
	called := false
	c := New(WithOnBack(func() { called = true }))
	drag(c, primitive.Pt(1, 1), primitive.Pt(2, 2))
	c.Start(primitive.Pt(3, 3))
	c.Back()
	if !called {
		t.Fatal("on-back not called")
	}
	if _, ok := c.Machine().InProgress(); ok {
		t.Fatal("gesture survived Back")
	}
	if c.Store().Len() != 1 {
		t.Fatal("Back changed committed layers")
	}
}

func TestClear(t *testing.T) {
	c := New()
	drag(c, primitive.Pt(1, 1), primitive.Pt(2, 2))
	c.Machine().SetTool(tool.ToolRectangle)
	drag(c, primitive.Pt(0, 0), primitive.Pt(20, 20))
	c.Machine().SetTool(tool.ToolSelect)
	c.Start(primitive.Pt(10, 0))
	c.End()
	if _, ok := c.Store().Selected(); !ok {
		t.Fatal("setup: nothing selected")
	}
	c.Clear()
	c.Clear()
	if c.Store().Len() != 0 {
		t.Fatal("layers remain after Clear")
	}
	if _, ok := c.Store().Selected(); ok {
		t.Fatal("selection remains after Clear")
	}
}

func TestWithConfig(t *testing.T) {
	cfg := config.New()
	cfg.Canvas.Width, cfg.Canvas.Height = 320, 240
	cfg.Canvas.Background = colornames.Ivory
	cfg.Tool.Color = colornames.Navy
	cfg.Tool.Width = 7
	cfg.Tool.RectThreshold = 10
	c := New(WithConfig(cfg))
	if c.Size() != image.Pt(320, 240) || c.Background() != colornames.Ivory {
		t.Fatalf("size %v background %v", c.Size(), c.Background())
	}
	s := c.Machine().Settings()
	if s.Color != colornames.Navy || s.Width != 7 {
		t.Fatalf("settings %+v", s)
	}
	c.Machine().SetTool(tool.ToolRectangle)
	drag(c, primitive.Pt(0, 0), primitive.Pt(8, 30))
	if c.Store().Len() != 0 {
		t.Fatal("configured rectangle threshold not applied")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	c := New(WithSize(100, 80))
	m := c.Machine()
	drag(c, primitive.Pt(1, 2), primitive.Pt(3, 4))
	m.SetTool(tool.ToolRectangle)
	m.SetColor(colornames.Red)
	drag(c, primitive.Pt(10, 10), primitive.Pt(40, 30))
	m.SetTool(tool.ToolText)
	c.Start(primitive.Pt(5, 50))
	if _, err := m.ConfirmText("hello"); err != nil {
		t.Fatal(err)
	}
	m.SetTool(tool.ToolEraser)
	drag(c, primitive.Pt(0, 0), primitive.Pt(9, 9))
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	c.Store().Add(primitive.Primitive{Kind: primitive.KindImage, Image: &primitive.Image{X: 60, Y: 60, W: 8, H: 4, Src: src}})

	var buf bytes.Buffer
	if err := c.WriteDocument(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"kind": "rect"`) {
		t.Fatalf("unexpected json:\n%s", buf.String())
	}

	d := New()
	if err := d.ReadDocument(&buf); err != nil {
		t.Fatal(err)
	}
	if d.Size() != image.Pt(100, 80) {
		t.Fatalf("size %v", d.Size())
	}
	a, b := c.Store().Layers(), d.Store().Layers()
	if len(a) != len(b) {
		t.Fatalf("%d layers loaded, want %d", len(b), len(a))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Kind != b[i].Kind || a[i].Z != b[i].Z {
			t.Errorf("layer %d: %+v vs %+v", i, a[i], b[i])
		}
	}
	if *b[1].Rect != *a[1].Rect {
		t.Errorf("rect %+v vs %+v", b[1].Rect, a[1].Rect)
	}
	if b[2].Text.Body != "hello" || !b[3].Stroke.Eraser {
		t.Errorf("text or eraser lost: %+v %+v", b[2].Text, b[3].Stroke)
	}
	if b[4].Image.Src.Bounds() != src.Bounds() {
		t.Errorf("image bounds %v", b[4].Image.Src.Bounds())
	}
}

func TestLoadDocumentRejectsBadLayer(t *testing.T) {
	for _, tc := range []struct {
		name  string
		layer Layer
	}{
		{"unknown kind", Layer{ID: "x", Kind: "blob"}},
		{"flat rect", Layer{ID: "r", Kind: "rect", Color: "#ff0000", X: 5, Y: 5, W: 0, H: -3, Width: 2}},
		{"stroke without points", Layer{ID: "s", Kind: "stroke", Color: "#000000", Width: 2}},
		{"image without size", Layer{ID: "i", Kind: "image", PNG: tinyPNG(t)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			drag(c, primitive.Pt(1, 1), primitive.Pt(2, 2))
			err := c.LoadDocument(Document{Version: 1, Layers: []Layer{tc.layer}})
			if err == nil {
				t.Fatal("expected error")
			}
			if c.Store().Len() != 1 {
				t.Fatal("failed load modified the canvas")
			}
		})
	}
}

func TestLoadDocumentNormalisesLayers(t *testing.T) {
	c := New()
	err := c.LoadDocument(Document{Version: 1, Layers: []Layer{
		{ID: "r", Kind: "rect", Color: "#ff0000", X: 40, Y: 30, W: -30, H: -20},
		{ID: "s", Kind: "stroke", Color: "#000000", Points: [][2]float64{{1, 1}, {4, 4}}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	ls := c.Store().Layers()
	if r := *ls[0].Rect; r.X != 10 || r.Y != 10 || r.W != 30 || r.H != 20 || r.Width <= 0 {
		t.Fatalf("rect %+v", r)
	}
	if ls[0].ID != "r" || ls[1].ID != "s" {
		t.Fatalf("ids %q %q", ls[0].ID, ls[1].ID)
	}
	if s := ls[1].Stroke; s.Width <= 0 || len(s.Points) != 2 {
		t.Fatalf("stroke %+v", *s)
	}
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
