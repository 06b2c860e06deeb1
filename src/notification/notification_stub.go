//go:build !windows

package notification

// showMessage is a no-op here; Notify and ShowBlockingError already logged.
func showMessage(title, message string, isError bool) {}
