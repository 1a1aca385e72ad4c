// Package theme holds the colours the canvas window is painted with.
package theme

import (
	"embed"
	"image/color"

	"golang.org/x/image/colornames"
)

// EmbeddedThemes ships the built-in theme files.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS

// Palette is the ink colours the number keys 1-8 select.
var Palette = []color.RGBA{
	colornames.Black,
	colornames.Crimson,
	colornames.Royalblue,
	colornames.Forestgreen,
	colornames.Darkorange,
	colornames.Purple,
	colornames.Gray,
	colornames.White,
}

// FontStep is how much one font size key changes the label size.
const FontStep = 2

// Theme is the window palette. Page is the colour the open window gives a
// fresh page, and so what its saves are flattened onto; it also fills the
// status line.
type Theme struct {
	Name string

	Desk      color.RGBA // area around the page
	Page      color.RGBA
	Ink       color.RGBA // initial pen colour
	Selection color.RGBA // outline around the selected primitive
	Preview   color.RGBA // outline of a pending image placement

	// Shown under a transparent page.
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:         "light",
		Desk:         color.RGBA{200, 200, 200, 255},
		Page:         color.RGBA{255, 255, 255, 255},
		Ink:          color.RGBA{0, 0, 0, 255},
		Selection:    color.RGBA{30, 120, 255, 255},
		Preview:      color.RGBA{30, 120, 255, 160},
		CheckerLight: color.RGBA{220, 220, 220, 255},
		CheckerDark:  color.RGBA{192, 192, 192, 255},
	}
}
