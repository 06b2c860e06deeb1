package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"game-translator/src/profile"
	"game-translator/src/region"
	"game-translator/src/render"
	"game-translator/src/screenshot"
)

var ErrNoRegions = errors.New("no regions configured and full frame mode is off")

type Capturer interface {
	Exists(t screenshot.Target) bool
	CaptureRegions(ctx context.Context, t screenshot.Target, regions []region.Region) (*screenshot.CropSet, error)
	CaptureFull(ctx context.Context, t screenshot.Target) (*screenshot.CropSet, error)
}

type Recognizer interface {
	Check(p profile.OcrProfile) error
	RecognizeRegions(ctx context.Context, crops []screenshot.Crop, p profile.OcrProfile) ([]region.Region, error)
	RecognizeFrame(ctx context.Context, path string, p profile.OcrProfile) ([]region.Region, error)
}

type Translator interface {
	Warmup(ctx context.Context, provider, source, target string) error
	TranslateRegions(ctx context.Context, ocr profile.OcrProfile, target profile.TranslationProfile, provider string, regions []region.Region) ([]region.Region, error)
}

type Renderer interface {
	Render(bounds image.Rectangle, regions []region.Region, vertical bool) *render.Frame
}

// Config is the part of a session one iteration needs. It is copied per
// iteration so edits made while a cycle runs never reach it.
type Config struct {
	Target       screenshot.Target
	Regions      []region.Region
	UseFullFrame bool
	OCR          profile.OcrProfile
	Translation  profile.TranslationProfile
	Provider     string
}

func (c Config) Clone() Config {
	c.Regions = region.Clone(c.Regions)
	return c
}

// Vertical reports whether frames are drawn in columns. Only untranslated
// vertical text keeps its orientation.
func (c Config) Vertical() bool { return c.OCR.IsVertical && c.Translation.Disabled() }

// Pipeline runs capture, OCR, translation and rendering in order.
type Pipeline struct {
	Capture   Capturer
	OCR       Recognizer
	Translate Translator
	Render    Renderer

	// DebugDir, when set, receives a PNG of every rendered frame.
	DebugDir string
}

// Check is the pre-flight run before a session starts.
func (p *Pipeline) Check(ctx context.Context, cfg Config) error {
	if !cfg.UseFullFrame && len(cfg.Regions) == 0 {
		return ErrNoRegions
	}
	if !p.Capture.Exists(cfg.Target) {
		return fmt.Errorf("%w: %s", screenshot.ErrTargetNotFound, cfg.Target)
	}
	if err := p.OCR.Check(cfg.OCR); err != nil {
		return err
	}
	if cfg.Translation.Disabled() {
		return nil
	}
	return p.Translate.Warmup(ctx, cfg.Provider, cfg.OCR.SourceCode(), cfg.Translation.Code)
}

// Run performs one iteration and returns the rendered frame.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*render.Frame, error) {
	start := time.Now()

	var (
		set     *screenshot.CropSet
		regions []region.Region
		err     error
	)
	if cfg.UseFullFrame {
		set, err = p.Capture.CaptureFull(ctx, cfg.Target)
		if err != nil {
			return nil, err
		}
		defer set.Release()
		regions, err = p.OCR.RecognizeFrame(ctx, set.Crops[0].Path, cfg.OCR)
	} else {
		if len(cfg.Regions) == 0 {
			return nil, ErrNoRegions
		}
		set, err = p.Capture.CaptureRegions(ctx, cfg.Target, cfg.Regions)
		if err != nil {
			return nil, err
		}
		defer set.Release()
		regions, err = p.OCR.RecognizeRegions(ctx, set.Crops, cfg.OCR)
	}
	set.Release()
	if err != nil {
		return nil, err
	}
	ocrDone := time.Now()

	translated, err := p.Translate.TranslateRegions(ctx, cfg.OCR, cfg.Translation, cfg.Provider, regions)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	translateDone := time.Now()

	frame := p.Render.Render(set.Bounds, translated, cfg.Vertical())
	log.Printf("pipeline: %d regions, capture+ocr=%v translate=%v render=%v",
		len(translated), ocrDone.Sub(start).Round(time.Millisecond),
		translateDone.Sub(ocrDone).Round(time.Millisecond), time.Since(translateDone).Round(time.Millisecond))

	if p.DebugDir != "" {
		p.saveDebug(frame)
	}
	return frame, nil
}

func (p *Pipeline) saveDebug(frame *render.Frame) {
	if err := os.MkdirAll(p.DebugDir, 0o755); err != nil {
		log.Printf("pipeline: debug dir: %v", err)
		return
	}
	path, err := frame.SaveDebug(p.DebugDir)
	if err != nil {
		log.Printf("pipeline: %v", err)
		return
	}
	log.Printf("pipeline: frame saved to %s", path)
}
