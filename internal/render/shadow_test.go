package render

import (
	"image"
	"image/color"
	"testing"
)

func TestOnDeskPlacesPageAtMargin(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 255, A: 255}
	page.SetRGBA(0, 0, red)

	out, origin := OnDesk(page, color.White, 20, PageShadow{})
	if got, want := out.Bounds(), image.Rect(0, 0, 50, 50); !got.Eq(want) {
		t.Fatalf("bounds %v, want %v", got, want)
	}
	if origin != image.Pt(20, 20) {
		t.Fatalf("origin %v", origin)
	}
	if got := out.RGBAAt(20, 20); got != red {
		t.Fatalf("page pixel %+v", got)
	}
	if got := out.RGBAAt(2, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("desk pixel %+v", got)
	}
}

func TestOnDeskShadowDarkensBelowPage(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 10, 10))
	out, _ := OnDesk(page, color.White, 20, PageShadow{Blur: 2, Offset: image.Pt(4, 4), Opacity: 1})
	// Just past the bottom-right corner of the transparent page.
	if got := out.RGBAAt(32, 32); got.R == 255 {
		t.Fatalf("expected shadow under page offset, got %+v", got)
	}
	if got := out.RGBAAt(2, 2); got.R != 255 {
		t.Fatalf("shadow leaked to far corner: %+v", got)
	}
}

func TestBoxBlurSpreads(t *testing.T) {
	m := image.NewAlpha(image.Rect(0, 0, 9, 1))
	m.Pix[4] = 255
	boxBlur(m, 1)
	if m.Pix[3] == 0 || m.Pix[5] == 0 {
		t.Fatalf("blur did not spread: %v", m.Pix)
	}
	if m.Pix[0] != 0 {
		t.Fatalf("blur spread too far: %v", m.Pix)
	}
}
