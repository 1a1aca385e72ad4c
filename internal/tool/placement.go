package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/notecanvas/internal/primitive"
)

// ErrNoDecode is returned by WaitDecode when no image is being decoded.
var ErrNoDecode = errors.New("tool: no image decode in flight")

// Default bounds a stamped image is scaled down to fit.
const (
	DefaultMaxImageWidth  = 400
	DefaultMaxImageHeight = 400
)

// Decoded carries the result of a background image decode.
type Decoded struct {
	gen   int
	Image image.Image
	Err   error
}

type placement struct {
	gen      int
	decodeCh chan Decoded
	cancel   context.CancelFunc
	pending  image.Image

	maxW, maxH float64
	decode     func(io.Reader) (image.Image, error)
}

func newPlacement() placement {
	return placement{
		maxW:   DefaultMaxImageWidth,
		maxH:   DefaultMaxImageHeight,
		decode: DecodeImage,
	}
}

func (pl *placement) reset() {
	if pl.cancel != nil {
		pl.cancel()
	}
	pl.gen++
	pl.cancel = nil
	pl.decodeCh = nil
	pl.pending = nil
}

// WithMaxImageSize sets the box stamped images are scaled down to fit.
// Non-positive sides keep their default.
func WithMaxImageSize(w, h float64) Option {
	return func(m *Machine) {
		if w > 0 {
			m.maxW = w
		}
		if h > 0 {
			m.maxH = h
		}
	}
}

// WithDecoder replaces the image decoder.
func WithDecoder(fn func(io.Reader) (image.Image, error)) Option {
	return func(m *Machine) { m.decode = fn }
}

// DecodeImage reads r fully and decodes it as PNG, JPEG, GIF, BMP, TIFF or WebP.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// LoadImage switches to the image tool and decodes r in the background. The
// result arrives on Decoded and must be handed to Deliver from the goroutine
// driving the machine. Switching tools before delivery discards the image.
func (m *Machine) LoadImage(ctx context.Context, r io.Reader) {
	m.SetTool(ToolImage)
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan Decoded, 1)
	gen := m.gen
	m.cancel = cancel
	m.decodeCh = ch
	m.phase = PhaseDecoding
	decode := m.decode
	go func() {
		img, err := decode(r)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		ch <- Decoded{gen: gen, Image: img, Err: err}
	}()
}

// Decoded returns the channel the in-flight decode reports on, or nil when
// nothing is being decoded.
func (m *Machine) Decoded() <-chan Decoded { return m.decodeCh }

// Deliver applies a decode result. It reports whether an image is now waiting
// to be placed. Stale results from a cancelled decode are ignored; failures
// are logged and leave the machine idle.
func (m *Machine) Deliver(d Decoded) bool {
	if m.phase != PhaseDecoding || d.gen != m.gen {
		return false
	}
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = nil
	m.decodeCh = nil
	if d.Err != nil {
		log.Printf("tool: image decode: %v", d.Err)
		m.phase = PhaseIdle
		return false
	}
	m.pending = d.Image
	m.phase = PhasePendingPlacement
	return true
}

// WaitDecode blocks until the in-flight decode finishes and delivers it.
func (m *Machine) WaitDecode(ctx context.Context) error {
	ch := m.decodeCh
	if ch == nil {
		return ErrNoDecode
	}
	select {
	case d := <-ch:
		m.Deliver(d)
		return d.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PendingImage returns the decoded image waiting for placement.
func (m *Machine) PendingImage() (image.Image, bool) {
	return m.pending, m.phase == PhasePendingPlacement && m.pending != nil
}

func (m *Machine) place(p primitive.Point) {
	img := m.pending
	m.placement.reset()
	m.phase = PhaseIdle
	prim, err := primitive.NewImage(p.X, p.Y, img, m.maxW, m.maxH)
	if err != nil {
		log.Printf("tool: image discarded: %v", err)
		return
	}
	m.store.Add(prim)
}
