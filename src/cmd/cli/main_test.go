package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"game-translator/src/config"
	"game-translator/src/region"
	"game-translator/src/screenshot"
)

func TestPNGValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name:    "ValidPNG",
			data:    []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00},
			wantErr: false,
		},
		{
			name:    "InvalidMagic",
			data:    []byte{0x00, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a},
			wantErr: true,
		},
		{
			name:    "TooShort",
			data:    []byte{0x89, 'P', 'N', 'G'},
			wantErr: true,
		},
		{
			name:    "Empty",
			data:    []byte{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePNG(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePNG() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRegions(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []region.Region
		wantErr bool
	}{
		{name: "Empty", in: "", want: nil},
		{name: "One", in: "10,10,100,50", want: []region.Region{region.New(10, 10, 100, 50)}},
		{name: "TwoWithSpaces", in: " 0,0,10,10 ; 20, 0, 10, 10;", want: []region.Region{region.New(0, 0, 10, 10), region.New(20, 0, 10, 10)}},
		{name: "NegativeSizeNormalized", in: "50,50,-10,-10", want: []region.Region{region.New(40, 40, 10, 10)}},
		{name: "WrongArity", in: "1,2,3", wantErr: true},
		{name: "NotANumber", in: "a,2,3,4", wantErr: true},
		{name: "NoArea", in: "1,2,0,4", wantErr: true},
		{name: "Overlap", in: "0,0,10,10;5,5,10,10", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRegions(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("region %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSessionConfig(t *testing.T) {
	c := &config.Config{OCRLang: "eng", TranslationLang: "en", Provider: "google"}

	cfg, err := sessionConfig(c, cliOptions{ocrLang: "jpn_vert", targetLang: "nt"}, nil)
	if err != nil {
		t.Fatalf("sessionConfig: %v", err)
	}
	if !cfg.UseFullFrame || cfg.OCR.Code != "jpn_vert" || !cfg.Translation.Disabled() || cfg.Provider != "google" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !cfg.Vertical() {
		t.Error("untranslated vertical OCR should render vertically")
	}

	cfg, err = sessionConfig(c, cliOptions{provider: "deepl"}, []region.Region{region.New(0, 0, 5, 5)})
	if err != nil {
		t.Fatalf("sessionConfig: %v", err)
	}
	if cfg.UseFullFrame || cfg.Translation.Code != "en" || cfg.Provider != "deepl" {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, err := sessionConfig(c, cliOptions{targetLang: "xx-not-a-language"}, nil); err == nil {
		t.Error("expected error for an unknown translation language")
	}
}

func TestImageCapturer(t *testing.T) {
	svc := screenshot.NewDesktop()
	dir := t.TempDir()
	svc.SetTempDir(dir)
	img := imaging.New(64, 32, color.White)
	c := &imageCapturer{svc: svc, img: img}

	if !c.Exists(screenshot.Target{}) {
		t.Fatal("image capturer should always have a target")
	}
	set, err := c.CaptureRegions(context.Background(), screenshot.Target{}, []region.Region{region.New(0, 0, 16, 16), region.New(100, 100, 5, 5)})
	if err != nil {
		t.Fatalf("CaptureRegions: %v", err)
	}
	if set.Bounds != img.Bounds() || len(set.Crops) != 2 || !set.Crops[1].Skipped {
		t.Errorf("unexpected crop set %+v", set)
	}
	set.Release()

	full, err := c.CaptureFull(context.Background(), screenshot.Target{})
	if err != nil {
		t.Fatalf("CaptureFull: %v", err)
	}
	if len(full.Crops) != 1 || full.Crops[0].Region != region.New(0, 0, 64, 32) {
		t.Errorf("unexpected frame crop %+v", full.Crops)
	}
	full.Release()

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %d", len(entries))
	}
}

func TestOutputResult(t *testing.T) {
	res := Result{Source: "in.png", Regions: []region.Region{region.New(1, 1, 2, 2).WithText("hi")}, Text: "hi"}

	var plain bytes.Buffer
	if err := outputResult(&plain, res, false); err != nil {
		t.Fatal(err)
	}
	if plain.String() != "hi\n" {
		t.Errorf("plain output %q", plain.String())
	}

	var js bytes.Buffer
	if err := outputResult(&js, res, true); err != nil {
		t.Fatal(err)
	}
	var back Result
	if err := json.Unmarshal(js.Bytes(), &back); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if back.Text != "hi" || len(back.Regions) != 1 || back.Regions[0].Text != "hi" {
		t.Errorf("decoded %+v", back)
	}
}

func TestFileFlagRequired(t *testing.T) {
	err := runWithArgs([]string{"translate-image", "--json"})
	if err == nil || !strings.Contains(err.Error(), "file") {
		t.Fatalf("expected missing --file error, got %v", err)
	}
}

func TestReadImageErrors(t *testing.T) {
	if _, err := readImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for a missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readImage(bad); err == nil {
		t.Error("expected error for a non-PNG file")
	}
}

// TestTranslateImageNoTranslation runs the whole command on a generated
// image. It needs tesseract with English data and skips otherwise.
func TestTranslateImageNoTranslation(t *testing.T) {
	if os.Getenv("GAME_TRANSLATOR_OCR_TESTS") != "1" {
		t.Skip("set GAME_TRANSLATOR_OCR_TESTS=1 to run the tesseract-backed test")
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed")
	}

	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	if err := imaging.Save(imaging.New(200, 80, color.White), in); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.png")
	var stdout bytes.Buffer
	err := runWithOptions(context.Background(), cliOptions{
		filePath:   in,
		outPath:    out,
		regions:    "10,10,100,50",
		targetLang: "nt",
		ocrLang:    "eng",
		jsonOutput: true,
	}, &stdout)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	composite, err := imaging.Open(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if composite.Bounds() != image.Rect(0, 0, 200, 80) {
		t.Errorf("output bounds %v", composite.Bounds())
	}
	var res Result
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(res.Regions) != 1 {
		t.Errorf("regions %v", res.Regions)
	}
}
