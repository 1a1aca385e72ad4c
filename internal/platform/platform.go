// Package platform wraps the host's desktop notification service.
package platform

// AppName is reported to notification daemons as the sending application.
const AppName = "notecanvas"

// Options configures how a notification is displayed.
type Options struct {
	// IconPath points to an image shown alongside the message when the
	// notification service supports it.
	IconPath string
	// Timeout in milliseconds; zero lets the service decide.
	Timeout int32
}
