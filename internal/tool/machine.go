package tool

import (
	"errors"
	"image/color"
	"log"
	"slices"

	"github.com/example/notecanvas/internal/layers"
	"github.com/example/notecanvas/internal/primitive"
)

// ErrNoTextPending is returned when text is confirmed outside a text request.
var ErrNoTextPending = errors.New("tool: no text entry pending")

// TextRequest asks the host to collect text at Pos. EditID is set when an
// existing label is being re-edited; Initial then holds its current body.
type TextRequest struct {
	Pos     primitive.Point
	EditID  string
	Initial string
}

// Machine routes start/move/end events to primitive construction. It must be
// driven from a single goroutine; the only background work is image decoding,
// whose result is handed back through Decoded and Deliver.
type Machine struct {
	store    *layers.Store
	settings Settings
	phase    Phase

	inProgress    primitive.Primitive
	hasInProgress bool
	anchor        primitive.Point
	cursor        primitive.Point

	text *TextRequest

	placement

	rectThreshold float64
	onText        func(TextRequest)
}

// Option modifies a Machine during creation.
type Option func(*Machine)

// WithSettings sets the initial palette values.
func WithSettings(s Settings) Option { return func(m *Machine) { m.settings = s } }

// WithRectThreshold sets the minimum side a rectangle must exceed.
func WithRectThreshold(px float64) Option { return func(m *Machine) { m.rectThreshold = px } }

// WithTextRequestHandler registers a callback fired whenever text entry is
// requested. The host answers with ConfirmText or CancelText.
func WithTextRequestHandler(fn func(TextRequest)) Option {
	return func(m *Machine) { m.onText = fn }
}

// New creates a Machine that commits into store.
func New(store *layers.Store, opts ...Option) *Machine {
	m := &Machine{
		store:         store,
		settings:      DefaultSettings(),
		rectThreshold: primitive.DefaultRectThreshold,
	}
	m.placement = newPlacement()
	for _, o := range opts {
		o(m)
	}
	return m
}

// Settings returns the current palette values.
func (m *Machine) Settings() Settings { return m.settings }

// Phase reports the current gesture phase.
func (m *Machine) Phase() Phase { return m.phase }

// InProgress returns the primitive being authored, if any, for preview.
func (m *Machine) InProgress() (primitive.Primitive, bool) {
	return m.inProgress, m.hasInProgress
}

// PendingText returns the outstanding text request, if any.
func (m *Machine) PendingText() (TextRequest, bool) {
	if m.text == nil {
		return TextRequest{}, false
	}
	return *m.text, true
}

// SetTool switches tools. Any unresolved gesture, text request or pending
// image is discarded; committed primitives are untouched. Leaving the select
// tool clears the selection.
func (m *Machine) SetTool(t Tool) {
	m.Cancel()
	if t != ToolSelect {
		m.store.ClearSelection()
	}
	m.settings.Tool = t
}

// SetColor changes the colour used for new primitives.
func (m *Machine) SetColor(c color.RGBA) { m.settings.Color = c }

// SetWidth changes the stroke width used for new primitives.
func (m *Machine) SetWidth(w float64) {
	if w > 0 {
		m.settings.Width = w
	}
}

// SetFontSize changes the font size used for new text.
func (m *Machine) SetFontSize(size float64) {
	if size > 0 {
		m.settings.FontSize = size
	}
}

// Cancel abandons whatever is in progress and returns to idle.
func (m *Machine) Cancel() {
	switch m.phase {
	case PhaseAuthoring:
		log.Printf("tool: discarding in-progress %s", m.inProgress.Kind)
	case PhaseTextPending:
		log.Printf("tool: discarding pending text request")
	case PhaseDecoding, PhasePendingPlacement:
		log.Printf("tool: discarding pending image")
	}
	m.resetGesture()
	m.placement.reset()
}

func (m *Machine) resetGesture() {
	m.phase = PhaseIdle
	m.inProgress = primitive.Primitive{}
	m.hasInProgress = false
	m.text = nil
}

// Start begins a gesture at p. It is ignored while another gesture or a text
// request is unresolved.
func (m *Machine) Start(p primitive.Point) {
	switch m.phase {
	case PhaseIdle:
	case PhasePendingPlacement:
		m.place(p)
		return
	default:
		return
	}
	switch m.settings.Tool {
	case ToolPen, ToolEraser:
		s, err := primitive.NewStroke(p, m.settings.Color, m.settings.Width, m.settings.Tool == ToolEraser)
		if err != nil {
			return
		}
		m.inProgress, m.hasInProgress = s, true
		m.phase = PhaseAuthoring
	case ToolRectangle:
		m.anchor = p
		m.previewRect(p)
		m.phase = PhaseAuthoring
	case ToolText:
		m.requestText(TextRequest{Pos: p})
	case ToolSelect:
		m.phase = PhaseSelecting
		m.selectAt(p)
	}
}

// Move extends the current gesture to p.
func (m *Machine) Move(p primitive.Point) {
	if m.phase != PhaseAuthoring {
		return
	}
	switch m.inProgress.Kind {
	case primitive.KindStroke:
		m.inProgress.Stroke.Points = append(m.inProgress.Stroke.Points, p)
	case primitive.KindRect:
		m.previewRect(p)
	}
}

// End finishes the current gesture, committing a valid primitive.
func (m *Machine) End() {
	switch m.phase {
	case PhaseAuthoring:
		m.commit()
		m.resetGesture()
	case PhaseSelecting:
		m.phase = PhaseIdle
	}
}

func (m *Machine) commit() {
	if !m.hasInProgress {
		return
	}
	switch m.inProgress.Kind {
	case primitive.KindStroke:
		p, s := m.inProgress, *m.inProgress.Stroke
		s.Points = slices.Clone(s.Points)
		p.Stroke = &s
		m.store.Add(p)
	case primitive.KindRect:
		r := m.inProgress.Rect
		p, err := primitive.NewRect(m.anchor.X, m.anchor.Y, m.cursor.X, m.cursor.Y, r.Color, r.Width, m.rectThreshold)
		if err != nil {
			log.Printf("tool: rectangle discarded: %v", err)
			return
		}
		m.store.Add(p)
	}
}

// previewRect rebuilds the rectangle preview from the anchor to p without
// enforcing the minimum size.
func (m *Machine) previewRect(p primitive.Point) {
	r, err := primitive.NewRect(m.anchor.X, m.anchor.Y, p.X, p.Y, m.settings.Color, m.settings.Width, -1)
	if err != nil {
		return
	}
	m.inProgress, m.hasInProgress = r, true
	m.cursor = p
}

func (m *Machine) selectAt(p primitive.Point) {
	hit, ok := m.store.FindAtPoint(p.X, p.Y)
	if !ok {
		m.store.ClearSelection()
		return
	}
	if cur, selected := m.store.Selected(); selected && cur == hit.ID && hit.Kind == primitive.KindText {
		m.requestText(TextRequest{Pos: primitive.Pt(hit.Text.X, hit.Text.Y), EditID: hit.ID, Initial: hit.Text.Body})
		return
	}
	m.store.Select(hit.ID)
}

func (m *Machine) requestText(req TextRequest) {
	m.text = &req
	m.phase = PhaseTextPending
	if m.onText != nil {
		m.onText(req)
	}
}

// ConfirmText answers the pending text request. New labels are committed with
// the current colour and font size; re-edits patch the existing label. Blank
// text behaves like CancelText. The returned id is empty when nothing changed.
func (m *Machine) ConfirmText(body string) (string, error) {
	if m.phase != PhaseTextPending || m.text == nil {
		return "", ErrNoTextPending
	}
	req := *m.text
	m.resetGesture()
	if req.EditID != "" {
		if _, err := primitive.NewText(0, 0, body, 1, m.settings.Color); err != nil {
			return "", nil
		}
		if _, ok := m.store.Get(req.EditID); !ok {
			return "", nil
		}
		m.store.Update(req.EditID, primitive.BodyPatch(body))
		return req.EditID, nil
	}
	p, err := primitive.NewText(req.Pos.X, req.Pos.Y, body, m.settings.FontSize, m.settings.Color)
	if err != nil {
		return "", nil
	}
	return m.store.Add(p), nil
}

// CancelText drops the pending text request.
func (m *Machine) CancelText() {
	if m.phase == PhaseTextPending {
		m.resetGesture()
	}
}

// DeleteSelected removes the selected primitive, if any.
func (m *Machine) DeleteSelected() bool {
	id, ok := m.store.Selected()
	if !ok {
		return false
	}
	m.store.Remove(id)
	return true
}
