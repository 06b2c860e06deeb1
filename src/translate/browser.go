package translate

import "context"

// Element is the subset of a WebDriver element the client drives.
type Element interface {
	SendKeys(keys string) error
	// Clear selects all content and deletes it with keystrokes, which works
	// for contenteditable widgets where WebDriver's clear does not.
	Clear() error
	Text() (string, error)
	IsDisplayed() (bool, error)
	IsEnabled() (bool, error)
}

// Browser is the subset of a WebDriver session the client drives.
type Browser interface {
	Get(url string) error
	CurrentURL() (string, error)
	FindElements(css string) ([]Element, error)
	ExecuteScript(script string) (any, error)
	Quit() error
}

// Dialer opens a new browser session.
type Dialer func(ctx context.Context) (Browser, error)
