// Package script replays recorded tool and pointer events against a canvas.
// The CLI uses it to render notes headlessly; tests use it to drive whole
// scenarios.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/notecanvas/internal/canvas"
	"github.com/example/notecanvas/internal/input"
	"github.com/example/notecanvas/internal/theme"
	"github.com/example/notecanvas/internal/tool"
)

// ErrUnknownOp is returned for an event whose op is not recognised.
var ErrUnknownOp = errors.New("script: unknown op")

// Script is a page description followed by events.
type Script struct {
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Background string  `json:"background,omitempty"`
	Events     []Event `json:"events"`

	// Dir resolves relative image paths. Load sets it to the script's
	// directory.
	Dir string `json:"-"`
}

// Event is one step. Which fields matter depends on Op:
//
//	tool        Tool
//	color       Color
//	width       Width
//	font_size   Size
//	down, move  X, Y, Pointer
//	up, cancel  Pointer
//	stroke      Points (down, moves, up in one step)
//	text        Text (answers the pending text request)
//	cancel_text
//	image       Path or PNG; decodes and waits, ready for the next down
//	delete      removes the selection
//	clear
type Event struct {
	Op      string       `json:"op"`
	Tool    string       `json:"tool,omitempty"`
	Color   string       `json:"color,omitempty"`
	Width   float64      `json:"width,omitempty"`
	Size    float64      `json:"size,omitempty"`
	X       float64      `json:"x,omitempty"`
	Y       float64      `json:"y,omitempty"`
	Pointer int64        `json:"pointer,omitempty"`
	Points  [][2]float64 `json:"points,omitempty"`
	Text    string       `json:"text,omitempty"`
	Path    string       `json:"path,omitempty"`
	PNG     []byte       `json:"png,omitempty"`
}

// Parse decodes a script. Unknown fields are rejected so typos surface.
func Parse(r io.Reader) (Script, error) {
	var s Script
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	return s, nil
}

// Load reads and parses the script at path.
func Load(path string) (Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return Script{}, err
	}
	defer f.Close()
	s, err := Parse(f)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	s.Dir = filepath.Dir(path)
	return s, nil
}

// Options returns the canvas options the script's page settings imply.
func (s Script) Options() ([]canvas.Option, error) {
	var opts []canvas.Option
	if s.Width > 0 && s.Height > 0 {
		opts = append(opts, canvas.WithSize(s.Width, s.Height))
	}
	if s.Background != "" {
		col, err := theme.ParseColor(s.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		opts = append(opts, canvas.WithBackground(col))
	}
	return opts, nil
}

// Run replays every event against c, stopping at the first failure.
func (s Script) Run(ctx context.Context, c *canvas.Canvas) error {
	p := &player{s: s, c: c, in: input.NewCapture(c, input.Mapper{})}
	for i, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.step(ctx, ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", i, ev.Op, err)
		}
	}
	return nil
}

type player struct {
	s  Script
	c  *canvas.Canvas
	in *input.Capture
}

func (p *player) step(ctx context.Context, ev Event) error {
	m := p.c.Machine()
	switch ev.Op {
	case "tool":
		t, err := tool.ParseTool(ev.Tool)
		if err != nil {
			return err
		}
		m.SetTool(t)
	case "color":
		col, err := theme.ParseColor(ev.Color)
		if err != nil {
			return err
		}
		m.SetColor(col)
	case "width":
		m.SetWidth(ev.Width)
	case "font_size":
		m.SetFontSize(ev.Size)
	case "down":
		p.in.Pointer(input.PointerDown, ev.X, ev.Y, ev.Pointer)
	case "move":
		p.in.Pointer(input.PointerMove, ev.X, ev.Y, ev.Pointer)
	case "up":
		p.in.Pointer(input.PointerUp, ev.X, ev.Y, ev.Pointer)
	case "cancel":
		p.in.Pointer(input.PointerCancel, ev.X, ev.Y, ev.Pointer)
	case "stroke":
		if len(ev.Points) == 0 {
			return errors.New("stroke needs at least one point")
		}
		for i, xy := range ev.Points {
			kind := input.PointerMove
			if i == 0 {
				kind = input.PointerDown
			}
			p.in.Pointer(kind, xy[0], xy[1], ev.Pointer)
		}
		last := ev.Points[len(ev.Points)-1]
		p.in.Pointer(input.PointerUp, last[0], last[1], ev.Pointer)
	case "text":
		_, err := m.ConfirmText(ev.Text)
		return err
	case "cancel_text":
		m.CancelText()
	case "image":
		r, err := p.imageSource(ev)
		if err != nil {
			return err
		}
		m.LoadImage(ctx, r)
		return m.WaitDecode(ctx)
	case "delete":
		m.DeleteSelected()
	case "clear":
		p.c.Clear()
	default:
		return fmt.Errorf("%w %q", ErrUnknownOp, ev.Op)
	}
	return nil
}

func (p *player) imageSource(ev Event) (io.Reader, error) {
	if len(ev.PNG) > 0 {
		return bytes.NewReader(ev.PNG), nil
	}
	if ev.Path == "" {
		return nil, errors.New("image needs path or png")
	}
	path := ev.Path
	if !filepath.IsAbs(path) && p.s.Dir != "" {
		path = filepath.Join(p.s.Dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
