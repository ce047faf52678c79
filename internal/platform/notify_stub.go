//go:build !linux && !darwin && !windows

package platform

// Notify does nothing on platforms without a notification backend. Saves
// and copies still succeed; the banner is the only thing lost.
func Notify(title, body string, opts Options) error {
	_, _, _ = title, body, opts
	return nil
}
