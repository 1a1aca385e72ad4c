// Package export encodes rendered canvases and hands them to a destination:
// a directory, a websocket backend or the clipboard.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Format is an export encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ErrUnsupportedFormat is returned for unknown formats and for destinations
// that cannot take the requested one.
var ErrUnsupportedFormat = errors.New("export: unsupported format")

// ParseFormat accepts "png" or "pdf" in any case, with or without a dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatPNG, FormatPDF:
		return f, nil
	case "":
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Ext is the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType is the MIME type of the encoding.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}

// Encode writes img to w in format f. PDF output is a single page the size
// of the image, in points, with the image embedded as PNG.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatPDF:
		return encodePDF(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

func encodePDF(w io.Writer, img image.Image) error {
	var raster bytes.Buffer
	if err := png.Encode(&raster, img); err != nil {
		return err
	}
	b := img.Bounds()
	wd, ht := float64(b.Dx()), float64(b.Dy())
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	pdf.SetCreator("notecanvas", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("canvas", opts, &raster)
	pdf.ImageOptions("canvas", 0, 0, wd, ht, false, opts, 0, "")
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return pdf.Output(w)
}

// Payload is an encoded canvas ready to be saved.
type Payload struct {
	Name   string
	Format Format
	Width  int
	Height int
	Data   []byte
}

// NewPayload encodes img. An empty name gets a timestamped default.
func NewPayload(img image.Image, f Format, name string) (Payload, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return Payload{}, err
	}
	if name == "" {
		name = DefaultName(time.Now(), f)
	}
	b := img.Bounds()
	return Payload{Name: name, Format: f, Width: b.Dx(), Height: b.Dy(), Data: buf.Bytes()}, nil
}

// DefaultName returns a file name like notecanvas-20260102-150405.png.
func DefaultName(t time.Time, f Format) string {
	return "notecanvas-" + t.Format("20060102-150405") + f.Ext()
}

// Saver delivers a payload somewhere. Failures are returned to the caller;
// savers do not retry.
type Saver interface {
	Save(ctx context.Context, p Payload) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, p Payload) error

func (f SaverFunc) Save(ctx context.Context, p Payload) error { return f(ctx, p) }

// Multi saves to every saver in turn and joins their errors.
func Multi(savers ...Saver) Saver {
	return SaverFunc(func(ctx context.Context, p Payload) error {
		var errs []error
		for _, s := range savers {
			if err := s.Save(ctx, p); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
