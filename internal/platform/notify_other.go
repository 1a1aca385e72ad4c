//go:build !linux && !darwin

package platform

// Notify does nothing where no notification service is wired up.
func Notify(title, body string, opts Options) error { return nil }
