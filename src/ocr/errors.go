package ocr

import (
	"errors"
	"fmt"
	"strings"
)

const installGuide = "https://tesseract-ocr.github.io/tessdoc/Installation.html"

var (
	ErrEngineMissing   = errors.New("tesseract is not available")
	ErrLanguageMissing = errors.New("tesseract language data is not installed")
	ErrRecognition     = errors.New("text recognition failed")
)

// Error is returned by the OCR service. Kind is one of the sentinels above and
// matches with errors.Is.
type Error struct {
	Kind error
	Lang string
	Path string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("ocr: ")
	b.WriteString(e.Kind.Error())
	if e.Lang != "" {
		fmt.Fprintf(&b, " (lang %s)", e.Lang)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Fatal reports whether the error ends the whole batch rather than one region.
func (e *Error) Fatal() bool {
	return e.Kind == ErrEngineMissing || e.Kind == ErrLanguageMissing
}

// Remediation is user guidance for environment problems.
func (e *Error) Remediation() string {
	switch e.Kind {
	case ErrEngineMissing:
		return "Tesseract is not installed in your system. Please follow the instructions at " + installGuide
	case ErrLanguageMissing:
		return fmt.Sprintf("The Tesseract language pack %q is not installed. Install it or pick another OCR language. See %s", e.Lang, installGuide)
	}
	return ""
}

// classify maps raw engine failures to an Error.
func classify(err error, lang, path string) *Error {
	var oe *Error
	if errors.As(err, &oe) {
		return oe
	}
	msg := err.Error()
	kind := ErrRecognition
	switch {
	case strings.Contains(msg, "Failed loading language"),
		strings.Contains(msg, "traineddata"),
		strings.Contains(msg, "Error opening data file"):
		kind = ErrLanguageMissing
	case strings.Contains(msg, "TessBaseAPI"),
		strings.Contains(msg, "libtesseract"):
		kind = ErrEngineMissing
	}
	return &Error{Kind: kind, Lang: lang, Path: path, Err: err}
}
