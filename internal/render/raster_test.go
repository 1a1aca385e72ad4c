package render

import (
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/example/notecanvas/internal/primitive"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func mustRect(t *testing.T, x0, y0, x1, y1 float64, col color.RGBA, width float64) primitive.Primitive {
	t.Helper()
	p, err := primitive.NewRect(x0, y0, x1, y1, col, width, primitive.DefaultRectThreshold)
	if err != nil {
		t.Fatalf("NewRect: %v", err)
	}
	return p
}

func eraserLine(t *testing.T, from, to primitive.Point, width float64) primitive.Primitive {
	t.Helper()
	p, err := primitive.NewStroke(from, color.RGBA{A: 255}, width, true)
	if err != nil {
		t.Fatalf("NewStroke: %v", err)
	}
	return p.AppendPoint(to)
}

func TestEraserClearsPixels(t *testing.T) {
	rect := mustRect(t, 10, 10, 40, 30, red, 4)
	rect.Z = 0
	size := image.Pt(60, 50)

	before := Snapshot([]primitive.Primitive{rect}, nil, size, nil)
	if got := before.RGBAAt(10, 20); got.A == 0 || got.R == 0 {
		t.Fatalf("rectangle edge not painted: %+v", got)
	}

	erase := eraserLine(t, primitive.Pt(10, 5), primitive.Pt(10, 35), 10)
	erase.Z = 1
	after := Snapshot([]primitive.Primitive{rect, erase}, nil, size, nil)
	if got := after.RGBAAt(10, 20); got.A != 0 {
		t.Fatalf("erased pixel still has alpha %d", got.A)
	}
	if got := after.RGBAAt(25, 10); got != before.RGBAAt(25, 10) || got.A == 0 {
		t.Fatalf("pixel outside eraser changed: %+v", got)
	}
}

func TestEraserRevealsBackground(t *testing.T) {
	rect := mustRect(t, 10, 10, 40, 30, red, 4)
	erase := eraserLine(t, primitive.Pt(10, 5), primitive.Pt(10, 35), 10)
	erase.Z = 1
	out := Snapshot([]primitive.Primitive{rect, erase}, nil, image.Pt(60, 50), color.White)
	if got := out.RGBAAt(10, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("expected background under eraser, got %+v", got)
	}
}

func TestEraserInProgressClears(t *testing.T) {
	rect := mustRect(t, 10, 10, 40, 30, red, 4)
	erase := eraserLine(t, primitive.Pt(10, 5), primitive.Pt(10, 35), 10)
	out := Snapshot([]primitive.Primitive{rect}, &erase, image.Pt(60, 50), nil)
	if got := out.RGBAAt(10, 20); got.A != 0 {
		t.Fatalf("in-progress eraser left alpha %d", got.A)
	}
}

func TestDrawOrdersByZThenInProgress(t *testing.T) {
	a := mustRect(t, 0, 0, 10, 10, red, 1)
	a.Z = 0
	b, err := primitive.NewText(5, 5, "B", 12, blue)
	if err != nil {
		t.Fatal(err)
	}
	b.Z = 1
	c := mustRect(t, 2, 2, 20, 20, blue, 1)
	c.Z = 2
	pen, err := primitive.NewStroke(primitive.Pt(1, 1), red, 2, false)
	if err != nil {
		t.Fatal(err)
	}

	var rec Recorder
	Draw(&rec, []primitive.Primitive{c, a, b}, &pen)
	want := []string{"rect", "text", "rect", "stroke"}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls %v, want %v", got, want)
	}
	if rec.Ops[0].Color != red || rec.Ops[2].Color != blue {
		t.Fatalf("unexpected order: %v", rec.Ops)
	}
	if rec.Ops[1].Text != "B" {
		t.Fatalf("text op %v", rec.Ops[1])
	}
}

func TestDrawBracketsEraser(t *testing.T) {
	erase := eraserLine(t, primitive.Pt(0, 0), primitive.Pt(5, 5), 4)
	var rec Recorder
	Draw(&rec, []primitive.Primitive{erase}, nil)
	want := []string{"begin-erase", "stroke", "end-erase"}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls %v, want %v", got, want)
	}
	if !rec.Ops[1].Erase {
		t.Fatal("stroke not recorded in erase mode")
	}
}

func TestStrokeDotPaints(t *testing.T) {
	dot, err := primitive.NewStroke(primitive.Pt(10, 10), blue, 6, false)
	if err != nil {
		t.Fatal(err)
	}
	out := Snapshot([]primitive.Primitive{dot}, nil, image.Pt(20, 20), nil)
	if got := out.RGBAAt(10, 10); got.B == 0 || got.A == 0 {
		t.Fatalf("dot centre not painted: %+v", got)
	}
	if got := out.RGBAAt(0, 0); got.A != 0 {
		t.Fatalf("corner painted: %+v", got)
	}
}

func TestRectOutlineLeavesInteriorEmpty(t *testing.T) {
	rect := mustRect(t, 10, 10, 40, 30, red, 2)
	out := Snapshot([]primitive.Primitive{rect}, nil, image.Pt(60, 50), nil)
	if got := out.RGBAAt(25, 20); got.A != 0 {
		t.Fatalf("interior painted: %+v", got)
	}
}

func TestStrokeOffCanvasIsIgnored(t *testing.T) {
	s, err := primitive.NewStroke(primitive.Pt(-500, -500), red, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	s = s.AppendPoint(primitive.Pt(-400, -450))
	out := Snapshot([]primitive.Primitive{s}, nil, image.Pt(10, 10), nil)
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 0 {
			t.Fatal("off-canvas stroke painted pixels")
		}
	}
}

func TestStrokeFarOffPageOnlyPaintsPage(t *testing.T) {
	s, err := primitive.NewStroke(primitive.Pt(10, 10), red, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	s = s.AppendPoint(primitive.Pt(1e8, 1e8))
	out := Snapshot([]primitive.Primitive{s}, nil, image.Pt(40, 40), nil)
	if got := out.RGBAAt(20, 20); got.R == 0 || got.A == 0 {
		t.Fatalf("diagonal not painted: %+v", got)
	}
	if got := out.RGBAAt(35, 5); got.A != 0 {
		t.Fatalf("pixel off the diagonal painted: %+v", got)
	}
}

func TestRectFarOffPageOnlyPaintsPage(t *testing.T) {
	rect := mustRect(t, 5, 5, 1e7, 1e7, red, 2)
	out := Snapshot([]primitive.Primitive{rect}, nil, image.Pt(40, 40), nil)
	if got := out.RGBAAt(5, 20); got.R == 0 || got.A == 0 {
		t.Fatalf("left edge not painted: %+v", got)
	}
	if got := out.RGBAAt(20, 20); got.A != 0 {
		t.Fatalf("interior painted: %+v", got)
	}
	if got := out.RGBAAt(39, 39); got.A != 0 {
		t.Fatalf("far corner painted: %+v", got)
	}
}

func TestTextPaints(t *testing.T) {
	txt, err := primitive.NewText(2, 2, "WWW", 16, red)
	if err != nil {
		t.Fatal(err)
	}
	out := Snapshot([]primitive.Primitive{txt}, nil, image.Pt(60, 30), nil)
	painted := false
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 0 {
			painted = true
			break
		}
	}
	if !painted {
		t.Fatal("text left the frame empty")
	}
}

func TestImageScaledIntoBox(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetRGBA(x, y, blue)
		}
	}
	im := primitive.Primitive{Kind: primitive.KindImage, Image: &primitive.Image{X: 5, Y: 5, W: 10, H: 10, Src: src}}
	out := Snapshot([]primitive.Primitive{im}, nil, image.Pt(20, 20), nil)
	if got := out.RGBAAt(10, 10); got != blue {
		t.Fatalf("image centre %+v", got)
	}
	if got := out.RGBAAt(2, 2); got.A != 0 {
		t.Fatalf("outside image %+v", got)
	}
}

func TestFaceForSizeCaches(t *testing.T) {
	a, err := FaceForSize(18)
	if err != nil {
		t.Fatal(err)
	}
	b, err := FaceForSize(18)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("face not cached")
	}
	w, h, base, err := MeasureText("hello", 18)
	if err != nil {
		t.Fatal(err)
	}
	if w <= 0 || h <= 0 || base <= 0 || base > h {
		t.Fatalf("metrics w=%d h=%d base=%d", w, h, base)
	}
}
