//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
)

// Notify posts to Notification Center through osascript.
func Notify(title, body string, opts Options) error {
	return exec.Command("osascript", "-e",
		fmt.Sprintf("display notification %q with title %q", body, title)).Run()
}
