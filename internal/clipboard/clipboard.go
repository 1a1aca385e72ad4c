// Package clipboard moves PNG images and text between the canvas and the
// system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
)

var (
	errNoDisplay = errors.New("clipboard: DISPLAY or WAYLAND_DISPLAY must be set")
	// ErrEmpty is returned when the clipboard holds nothing of the asked type.
	ErrEmpty = errors.New("clipboard: no data of the requested type")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// WriteImage publishes img as PNG.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	return WritePNG(buf.Bytes())
}

// ReadImage decodes a PNG image from the clipboard.
func ReadImage() (image.Image, error) {
	data, err := ReadPNG()
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(data))
}
