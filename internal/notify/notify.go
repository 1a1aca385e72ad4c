// Package notify announces finished saves, uploads and clipboard copies as
// desktop notifications.
package notify

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/notecanvas/internal/platform"
)

// Event identifies what triggered a notification.
type Event string

const (
	EventSave   Event = "save"
	EventUpload Event = "upload"
	EventCopy   Event = "copy"
)

// Preferences holds the title and per-event message templates. Each template
// receives one %s with the event detail.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built-in wording.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "notecanvas",
		Templates: map[Event]string{
			EventSave:   "Saved %s",
			EventUpload: "Uploaded %s",
			EventCopy:   "Copied %s to clipboard",
		},
	}
}

// ApplyEnv overrides the title from NOTECANVAS_NOTIFY_TITLE.
func (p Preferences) ApplyEnv() Preferences {
	if v := strings.TrimSpace(os.Getenv("NOTECANVAS_NOTIFY_TITLE")); v != "" {
		p.Title = v
	}
	return p
}

// SendFunc delivers one notification.
type SendFunc func(title, body string, opts platform.Options) error

// Notifier sends notifications for the events that have been enabled. A nil
// Notifier is valid and silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    SendFunc
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithSender replaces the platform notification call.
func WithSender(fn SendFunc) Option { return func(n *Notifier) { n.send = fn } }

// New creates a Notifier with every event disabled.
func New(prefs Preferences, opts ...Option) *Notifier {
	n := &Notifier{prefs: prefs, enabled: map[Event]bool{}, send: platform.Notify}
	n.prefs.Templates = make(map[Event]string, len(prefs.Templates))
	for k, v := range prefs.Templates {
		n.prefs.Templates[k] = v
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Enable turns notifications for event on or off.
func (n *Notifier) Enable(event Event, on bool) {
	if n == nil {
		return
	}
	n.enabled[event] = on
}

// Save announces a file written to path, using the file itself as the icon.
func (n *Notifier) Save(path string) {
	opts := platform.Options{}
	detail := path
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if strings.EqualFold(filepath.Ext(abs), ".png") {
			opts.IconPath = abs
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// Upload announces a payload accepted by a remote endpoint.
func (n *Notifier) Upload(detail string) { n.dispatch(EventUpload, detail, platform.Options{}) }

// Copy announces a clipboard copy.
func (n *Notifier) Copy(detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "canvas"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if n == nil || !n.enabled[event] {
		return
	}
	tmpl := strings.TrimSpace(n.prefs.Templates[event])
	if tmpl == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(tmpl, strings.TrimSpace(detail)))
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notification %s: %v", event, err)
	}
}
