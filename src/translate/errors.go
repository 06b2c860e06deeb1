package translate

import (
	"errors"
	"fmt"
)

var (
	ErrSession           = errors.New("browser session error")
	ErrNavigationTimeout = errors.New("page did not finish loading")
	ErrElementNotFound   = errors.New("page element not found")
	ErrTimeout           = errors.New("translation did not arrive in time")

	ErrClosed          = errors.New("translation client closed")
	ErrUnknownProvider = errors.New("unknown translation provider")
	ErrSeparatorInText = errors.New("text contains the batch separator")
)

// Error describes a failed browser interaction. Kind is one of the first four
// sentinels above.
type Error struct {
	Kind     error
	Provider string
	Op       string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("translate %s: %s: %v", e.Provider, e.Op, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func (e *Error) Remediation() string {
	switch e.Kind {
	case ErrSession:
		return "Could not drive the browser. Make sure a WebDriver (chromedriver or geckodriver) is running at WEBDRIVER_URL."
	case ErrNavigationTimeout:
		return "The translation page took too long to load. Check your internet connection."
	case ErrElementNotFound:
		return "The translation page layout was not recognized. The provider may have changed its page; try the other provider."
	}
	return ""
}

// sessionBroken reports whether the browser should be discarded and redialed.
func sessionBroken(err error) bool {
	return errors.Is(err, ErrSession)
}
