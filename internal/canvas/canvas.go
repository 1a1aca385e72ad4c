// Package canvas ties the layer store, tool machine and renderer together
// into the drawing component a host embeds.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"sync/atomic"

	"github.com/example/notecanvas/internal/config"
	"github.com/example/notecanvas/internal/export"
	"github.com/example/notecanvas/internal/layers"
	"github.com/example/notecanvas/internal/primitive"
	"github.com/example/notecanvas/internal/render"
	"github.com/example/notecanvas/internal/tool"
)

var (
	// ErrSaveInProgress is returned when Save is called while an earlier
	// save has not finished.
	ErrSaveInProgress = errors.New("canvas: save already in progress")
	// ErrNoSaveTarget is returned by Save when no on-save collaborator is set.
	ErrNoSaveTarget = errors.New("canvas: no save target")
)

// DefaultSize is the page size used when none is configured.
var DefaultSize = image.Pt(800, 600)

// Canvas is a single drawing surface. Pointer, tool and text calls must come
// from one goroutine; only saving runs in the background.
type Canvas struct {
	size       image.Point
	background color.RGBA

	store   *layers.Store
	machine *tool.Machine

	onSave export.Saver
	onBack func()
	saving atomic.Bool

	storeOpts []layers.Option
	toolOpts  []tool.Option
}

// Option configures a Canvas during creation.
type Option func(*Canvas)

// WithSize sets the page size in pixels.
func WithSize(w, h int) Option {
	return func(c *Canvas) {
		if w > 0 && h > 0 {
			c.size = image.Pt(w, h)
		}
	}
}

// WithBackground sets the colour frames are flattened onto. A zero alpha
// keeps frames transparent.
func WithBackground(col color.RGBA) Option { return func(c *Canvas) { c.background = col } }

// WithOnSave sets the collaborator that receives exported payloads.
func WithOnSave(s export.Saver) Option { return func(c *Canvas) { c.onSave = s } }

// WithOnBack sets the callback run when the user leaves the canvas.
func WithOnBack(fn func()) Option { return func(c *Canvas) { c.onBack = fn } }

// WithLayerOptions passes options through to the layer store.
func WithLayerOptions(opts ...layers.Option) Option {
	return func(c *Canvas) { c.storeOpts = append(c.storeOpts, opts...) }
}

// WithToolOptions passes options through to the tool machine.
func WithToolOptions(opts ...tool.Option) Option {
	return func(c *Canvas) { c.toolOpts = append(c.toolOpts, opts...) }
}

// WithConfig applies page, palette and image settings from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(c *Canvas) {
		if cfg == nil {
			return
		}
		WithSize(cfg.Canvas.Width, cfg.Canvas.Height)(c)
		c.background = cfg.Canvas.Background
		s := tool.DefaultSettings()
		s.Color = cfg.Tool.Color
		if cfg.Tool.Width > 0 {
			s.Width = cfg.Tool.Width
		}
		if cfg.Tool.FontSize > 0 {
			s.FontSize = cfg.Tool.FontSize
		}
		c.toolOpts = append(c.toolOpts,
			tool.WithSettings(s),
			tool.WithRectThreshold(cfg.Tool.RectThreshold),
			tool.WithMaxImageSize(cfg.Image.MaxWidth, cfg.Image.MaxHeight),
		)
	}
}

// New creates an empty Canvas.
func New(opts ...Option) *Canvas {
	c := &Canvas{size: DefaultSize, background: color.RGBA{255, 255, 255, 255}}
	for _, o := range opts {
		o(c)
	}
	c.store = layers.New(c.storeOpts...)
	c.machine = tool.New(c.store, c.toolOpts...)
	return c
}

// Store exposes the committed layers.
func (c *Canvas) Store() *layers.Store { return c.store }

// Machine exposes the tool state machine for palette and text calls.
func (c *Canvas) Machine() *tool.Machine { return c.machine }

// Size is the page size.
func (c *Canvas) Size() image.Point { return c.size }

// Background is the colour frames are flattened onto.
func (c *Canvas) Background() color.RGBA { return c.background }

// Changed fires after the committed layers change.
func (c *Canvas) Changed() <-chan struct{} { return c.store.Changed() }

// Start begins a gesture at page point p with the current tool.
func (c *Canvas) Start(p primitive.Point) { c.machine.Start(p) }

// Move extends the gesture in progress.
func (c *Canvas) Move(p primitive.Point) { c.machine.Move(p) }

// End finishes the gesture, committing whatever it produced.
func (c *Canvas) End() { c.machine.End() }

// Frame renders the committed layers plus any preview onto the background.
func (c *Canvas) Frame() *image.RGBA {
	return c.render(c.background)
}

// Ink renders without a background, leaving unpainted and erased pixels
// transparent.
func (c *Canvas) Ink() *image.RGBA {
	return c.render(color.RGBA{})
}

func (c *Canvas) render(bg color.RGBA) *image.RGBA {
	var preview *primitive.Primitive
	if p, ok := c.machine.InProgress(); ok {
		preview = &p
	}
	return render.Snapshot(c.store.Layers(), preview, c.size, bg)
}

// Draw renders onto an arbitrary surface.
func (c *Canvas) Draw(s render.Surface) {
	var preview *primitive.Primitive
	if p, ok := c.machine.InProgress(); ok {
		preview = &p
	}
	render.Draw(s, c.store.Layers(), preview)
}

// Save renders the committed layers, encodes them and hands the payload to
// the on-save collaborator, returning its error. A save started while
// another is running fails with ErrSaveInProgress.
func (c *Canvas) Save(ctx context.Context, f export.Format) (export.Payload, error) {
	p, err := c.begin(f)
	if err != nil {
		return export.Payload{}, err
	}
	defer c.saving.Store(false)
	return p, c.deliver(ctx, p)
}

// SaveAsync is Save with the delivery run on its own goroutine so the canvas
// stays interactive. Rendering happens before it returns. The channel
// receives exactly one result.
func (c *Canvas) SaveAsync(ctx context.Context, f export.Format) <-chan error {
	done := make(chan error, 1)
	p, err := c.begin(f)
	if err != nil {
		done <- err
		return done
	}
	go func() {
		defer c.saving.Store(false)
		done <- c.deliver(ctx, p)
	}()
	return done
}

// Saving reports whether a save is in flight.
func (c *Canvas) Saving() bool { return c.saving.Load() }

func (c *Canvas) begin(f export.Format) (export.Payload, error) {
	if c.onSave == nil {
		return export.Payload{}, ErrNoSaveTarget
	}
	if !c.saving.CompareAndSwap(false, true) {
		return export.Payload{}, ErrSaveInProgress
	}
	img := render.Snapshot(c.store.Layers(), nil, c.size, c.background)
	p, err := export.NewPayload(img, f, "")
	if err != nil {
		c.saving.Store(false)
		return export.Payload{}, fmt.Errorf("encode: %w", err)
	}
	return p, nil
}

func (c *Canvas) deliver(ctx context.Context, p export.Payload) error {
	if err := c.onSave.Save(ctx, p); err != nil {
		log.Printf("save: %v", err)
		return err
	}
	return nil
}

// Back runs the on-back callback. Nothing is persisted.
func (c *Canvas) Back() {
	c.machine.Cancel()
	if c.onBack != nil {
		c.onBack()
	}
}

// Clear drops every layer, the selection and anything in progress.
func (c *Canvas) Clear() {
	c.machine.Cancel()
	c.store.Clear()
}
