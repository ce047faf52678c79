//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
)

// Notify posts a banner through Notification Center by driving osascript.
// AppleScript's display notification has no icon parameter, so
// opts.IconPath is ignored here.
func Notify(title, body string, opts Options) error {
	_ = opts
	script := fmt.Sprintf("display notification %q with title %q", body, title)
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, out)
	}
	return nil
}
