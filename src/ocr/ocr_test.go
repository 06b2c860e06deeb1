package ocr

import (
	"context"
	"errors"
	"image"
	"os/exec"
	"sync"
	"testing"

	"game-translator/src/profile"
	"game-translator/src/region"
	"game-translator/src/screenshot"
)

type fakeEngine struct {
	mu     sync.Mutex
	texts  map[string]string
	errs   map[string]error
	tokens []Token
	calls  int
}

func (f *fakeEngine) Text(path, lang string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[path]; err != nil {
		return "", err
	}
	return f.texts[path], nil
}

func (f *fakeEngine) Tokens(path, lang string) ([]Token, error) {
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	return f.tokens, nil
}

func (f *fakeEngine) Probe(lang string) error {
	if lang == "missing" {
		return errors.New("Error opening data file missing.traineddata")
	}
	return nil
}

func tok(text string, x, y, w, h int, conf float64) Token {
	return Token{Text: text, Box: image.Rect(x, y, x+w, y+h), Confidence: conf}
}

func TestReconstruct(t *testing.T) {
	tokens := []Token{
		tok("Hello", 10, 20, 40, 12, 0.9),
		tok("World", 55, 18, 45, 14, 0.8),
		{Confidence: -1},
		tok("Bye", 10, 50, 30, 10, 0.7),
		{Confidence: -1},
	}
	got := Reconstruct(tokens)
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d: %+v", len(got), got)
	}
	want := []region.Region{
		{X: 10, Y: 20, Width: 85, Height: 14, Text: "Hello World"},
		{X: 10, Y: 50, Width: 30, Height: 10, Text: "Bye"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReconstructSkipsEmptyLines(t *testing.T) {
	tokens := []Token{
		{Confidence: -1},
		tok(" ", 0, 0, 5, 5, 0.5),
		{Confidence: 0},
		tok("x", 1, 1, 2, 2, 0.5),
	}
	if got := Reconstruct(tokens); len(got) != 0 {
		t.Errorf("expected no lines (last line is never closed), got %+v", got)
	}
}

func TestRecognizeRegionsKeepsOrder(t *testing.T) {
	eng := &fakeEngine{
		texts: map[string]string{"a.png": " first\n", "c.png": "third"},
		errs:  map[string]error{"b.png": errors.New("page segmentation failed")},
	}
	s := NewService(eng, Options{Workers: 2})
	crops := []screenshot.Crop{
		{Index: 0, Region: region.New(0, 0, 10, 10), Path: "a.png"},
		{Index: 1, Region: region.New(20, 0, 10, 10), Path: "b.png"},
		{Index: 2, Region: region.New(40, 0, 10, 10), Skipped: true},
		{Index: 3, Region: region.New(60, 0, 10, 10), Path: "c.png"},
	}
	got, err := s.RecognizeRegions(context.Background(), crops, profile.OCR("eng"))
	if err != nil {
		t.Fatalf("RecognizeRegions: %v", err)
	}
	texts := region.Texts(got)
	want := []string{"first", "", "", "third"}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("text[%d] = %q, want %q", i, texts[i], want[i])
		}
	}
	if got[3].X != 60 {
		t.Errorf("region geometry lost: %+v", got[3])
	}
	if eng.calls != 3 {
		t.Errorf("expected 3 engine calls, got %d", eng.calls)
	}
}

func TestRecognizeRegionsFatalErrors(t *testing.T) {
	eng := &fakeEngine{errs: map[string]error{"a.png": errors.New("Failed loading language 'xyz'")}}
	s := NewService(eng, Options{Workers: 1})
	_, err := s.RecognizeRegions(context.Background(),
		[]screenshot.Crop{{Path: "a.png", Region: region.New(0, 0, 5, 5)}}, profile.OCR("xyz"))
	if !errors.Is(err, ErrLanguageMissing) {
		t.Fatalf("expected ErrLanguageMissing, got %v", err)
	}
	var oe *Error
	if !errors.As(err, &oe) || oe.Remediation() == "" {
		t.Errorf("expected remediation text, got %v", err)
	}
}

func TestRecognizeFrame(t *testing.T) {
	eng := &fakeEngine{tokens: []Token{tok("a", 0, 0, 5, 5, 90), {Confidence: -1}}}
	got, err := NewService(eng, Options{}).RecognizeFrame(context.Background(), "frame.png", profile.OCR("eng"))
	if err != nil {
		t.Fatalf("RecognizeFrame: %v", err)
	}
	if len(got) != 1 || got[0].Text != "a" {
		t.Errorf("unexpected lines: %+v", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"Error opening data file /usr/share/tessdata/jpn.traineddata", ErrLanguageMissing},
		{"failed to initialize TessBaseAPI with code -1: ", ErrEngineMissing},
		{"empty page", ErrRecognition},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := classify(errors.New(tt.msg), "jpn", ""); !errors.Is(got, tt.want) {
				t.Errorf("classify(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	s := NewService(&fakeEngine{}, Options{})
	if err := s.Check(profile.OCR("eng")); err != nil {
		t.Errorf("Check(eng): %v", err)
	}
	if err := s.Check(profile.OcrProfile{Code: "missing"}); !errors.Is(err, ErrLanguageMissing) {
		t.Errorf("Check(missing) = %v", err)
	}
}

func TestTesseractProbe(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed")
	}
	if err := (Tesseract{}).Probe("eng"); err != nil {
		t.Logf("probe failed (eng language data may be missing): %v", err)
	}
}
