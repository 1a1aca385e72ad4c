package canvas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/example/notecanvas/internal/primitive"
	"github.com/example/notecanvas/internal/theme"
)

// DocumentVersion is written into every Document.
const DocumentVersion = 1

// Document is the JSON form of a canvas: page settings plus every committed
// layer in z order.
type Document struct {
	Version    int     `json:"version"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Background string  `json:"background,omitempty"`
	Layers     []Layer `json:"layers"`
}

// Layer is one primitive. Fields not used by its kind are omitted. Colours
// are #RRGGBB[AA]; images are PNG bytes.
type Layer struct {
	ID       string       `json:"id"`
	Kind     string       `json:"kind"`
	Color    string       `json:"color,omitempty"`
	Width    float64      `json:"width,omitempty"`
	Points   [][2]float64 `json:"points,omitempty"`
	Eraser   bool         `json:"eraser,omitempty"`
	X        float64      `json:"x,omitempty"`
	Y        float64      `json:"y,omitempty"`
	W        float64      `json:"w,omitempty"`
	H        float64      `json:"h,omitempty"`
	Text     string       `json:"text,omitempty"`
	FontSize float64      `json:"fontSize,omitempty"`
	PNG      []byte       `json:"png,omitempty"`
}

// Document snapshots the committed layers.
func (c *Canvas) Document() (Document, error) {
	d := Document{
		Version: DocumentVersion,
		Width:   c.size.X,
		Height:  c.size.Y,
	}
	if c.background.A != 0 {
		d.Background = theme.FormatColor(c.background)
	}
	for _, p := range c.store.Layers() {
		l, err := toLayer(p)
		if err != nil {
			return Document{}, fmt.Errorf("layer %s: %w", p.ID, err)
		}
		d.Layers = append(d.Layers, l)
	}
	return d, nil
}

// LoadDocument replaces the canvas content with d. Anything in progress is
// discarded. On error the canvas is left unchanged.
func (c *Canvas) LoadDocument(d Document) error {
	if d.Version > DocumentVersion {
		return fmt.Errorf("document version %d is newer than %d", d.Version, DocumentVersion)
	}
	ps := make([]primitive.Primitive, 0, len(d.Layers))
	for i, l := range d.Layers {
		p, err := fromLayer(l)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		ps = append(ps, p)
	}
	bg := c.background
	if d.Background != "" {
		col, err := theme.ParseColor(d.Background)
		if err != nil {
			return fmt.Errorf("background: %w", err)
		}
		bg = col
	}
	c.machine.Cancel()
	if d.Width > 0 && d.Height > 0 {
		c.size = image.Pt(d.Width, d.Height)
	}
	c.background = bg
	c.store.Load(ps)
	return nil
}

// WriteDocument encodes the canvas as indented JSON.
func (c *Canvas) WriteDocument(w io.Writer) error {
	d, err := c.Document()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ReadDocument decodes JSON from r and loads it.
func (c *Canvas) ReadDocument(r io.Reader) error {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return c.LoadDocument(d)
}

func toLayer(p primitive.Primitive) (Layer, error) {
	l := Layer{ID: p.ID, Kind: p.Kind.String()}
	switch p.Kind {
	case primitive.KindStroke:
		s := p.Stroke
		l.Color, l.Width, l.Eraser = theme.FormatColor(s.Color), s.Width, s.Eraser
		l.Points = make([][2]float64, len(s.Points))
		for i, pt := range s.Points {
			l.Points[i] = [2]float64{pt.X, pt.Y}
		}
	case primitive.KindRect:
		r := p.Rect
		l.X, l.Y, l.W, l.H = r.X, r.Y, r.W, r.H
		l.Color, l.Width = theme.FormatColor(r.Color), r.Width
	case primitive.KindText:
		t := p.Text
		l.X, l.Y, l.Text, l.FontSize = t.X, t.Y, t.Body, t.FontSize
		l.Color = theme.FormatColor(t.Color)
	case primitive.KindImage:
		im := p.Image
		l.X, l.Y, l.W, l.H = im.X, im.Y, im.W, im.H
		var buf bytes.Buffer
		if err := png.Encode(&buf, im.Src); err != nil {
			return Layer{}, err
		}
		l.PNG = buf.Bytes()
	}
	return l, nil
}

func fromLayer(l Layer) (primitive.Primitive, error) {
	p := primitive.Primitive{ID: l.ID}
	switch l.Kind {
	case primitive.KindStroke.String():
		if len(l.Points) == 0 {
			return p, fmt.Errorf("stroke has no points")
		}
		col, err := theme.ParseColor(l.Color)
		if err != nil {
			return p, err
		}
		s, err := primitive.NewStroke(primitive.Pt(l.Points[0][0], l.Points[0][1]), col, l.Width, l.Eraser)
		if err != nil {
			return p, err
		}
		pts := make([]primitive.Point, len(l.Points))
		for i, xy := range l.Points {
			if math.IsNaN(xy[0]) || math.IsInf(xy[0], 0) || math.IsNaN(xy[1]) || math.IsInf(xy[1], 0) {
				return p, primitive.ErrNotFinite
			}
			pts[i] = primitive.Pt(xy[0], xy[1])
		}
		s.Stroke.Points = pts
		s.ID = l.ID
		p = s
	case primitive.KindRect.String():
		col, err := theme.ParseColor(l.Color)
		if err != nil {
			return p, err
		}
		r, err := primitive.NewRect(l.X, l.Y, l.X+l.W, l.Y+l.H, col, l.Width, 0)
		if err != nil {
			return p, err
		}
		r.ID = l.ID
		p = r
	case primitive.KindText.String():
		col, err := theme.ParseColor(l.Color)
		if err != nil {
			return p, err
		}
		t, err := primitive.NewText(l.X, l.Y, l.Text, l.FontSize, col)
		if err != nil {
			return p, err
		}
		t.ID = l.ID
		p = t
	case primitive.KindImage.String():
		src, err := png.Decode(bytes.NewReader(l.PNG))
		if err != nil {
			return p, fmt.Errorf("image: %w", err)
		}
		im, err := primitive.NewImage(l.X, l.Y, src, 0, 0)
		if err != nil {
			return p, err
		}
		if l.W <= 0 || l.H <= 0 || math.IsInf(l.W, 0) || math.IsInf(l.H, 0) {
			return p, fmt.Errorf("image size %gx%g", l.W, l.H)
		}
		im.Image.W, im.Image.H = l.W, l.H
		im.ID = l.ID
		p = im
	default:
		return p, fmt.Errorf("unknown kind %q", l.Kind)
	}
	return p, nil
}
