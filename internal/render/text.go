package render

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

var (
	fontOnce  sync.Once
	fontErr   error
	regular   *sfnt.Font
	faceCache sync.Map // map[float64]font.Face
)

func loadFont() {
	regular, fontErr = opentype.Parse(goregular.TTF)
	if fontErr != nil {
		fontErr = fmt.Errorf("parse font: %w", fontErr)
	}
}

// FaceForSize returns a cached Go Regular face at size points (72 DPI, so one
// point is one canvas pixel).
func FaceForSize(size float64) (font.Face, error) {
	fontOnce.Do(loadFont)
	if fontErr != nil {
		return nil, fontErr
	}
	if size <= 0 {
		size = 16
	}
	size = math.Round(size*4) / 4
	if face, ok := faceCache.Load(size); ok {
		return face.(font.Face), nil
	}
	face, err := opentype.NewFace(regular, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := faceCache.LoadOrStore(size, face)
	return actual.(font.Face), nil
}

// MeasureText returns the rendered width and line height of text, and the
// offset of the baseline from the top.
func MeasureText(text string, size float64) (width, height, baseline int, err error) {
	face, err := FaceForSize(size)
	if err != nil {
		return 0, 0, 0, err
	}
	d := &font.Drawer{Face: face}
	width = d.MeasureString(text).Ceil()
	m := face.Metrics()
	baseline = m.Ascent.Ceil()
	height = baseline + m.Descent.Ceil()
	return width, height, baseline, nil
}
