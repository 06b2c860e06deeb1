package notification

import (
	"log"
)

const maxMessageRunes = 600

// Notifier reports session problems to the user with a native message box
// where one exists and the log everywhere.
type Notifier struct{}

// Notify shows the message without blocking the caller.
func (Notifier) Notify(title, message string) {
	message = truncate(message)
	log.Printf("notification: %s: %s", title, message)
	go showMessage(title, message, false)
}

// ShowBlockingError shows an error and returns once the user dismissed it.
func ShowBlockingError(title, message string) {
	message = truncate(message)
	log.Printf("notification: %s: %s", title, message)
	showMessage(title, message, true)
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageRunes {
		return s
	}
	return string(r[:maxMessageRunes]) + "..."
}
