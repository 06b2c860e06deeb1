package runtimeinit

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"game-translator/src/clipboard"
	"game-translator/src/config"
	"game-translator/src/ocr"
	"game-translator/src/pipeline"
	"game-translator/src/profile"
	"game-translator/src/render"
	"game-translator/src/screenshot"
	"game-translator/src/translate"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// Clipboard initializes the clipboard; failure only disables copying.
	Clipboard bool
	// Profiles opens the profile database.
	Profiles bool
}

// Runtime holds the services built from configuration. Nothing in it is a
// package global; callers pass it on explicitly.
type Runtime struct {
	Config     *config.Config
	Capture    *screenshot.Service
	OCR        *ocr.Service
	Translator *translate.Client
	Renderer   *render.Renderer
	Pipeline   *pipeline.Pipeline
	Profiles   *profile.Store
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	if _, err := translate.ProviderByName(cfg.Provider); err != nil {
		return nil, err
	}
	style, err := render.NewStyle(cfg.OverlayBackground, cfg.OverlayBackgroundAlpha, cfg.OverlayTextColor, cfg.OverlayOutlineColor)
	if err != nil {
		return nil, fmt.Errorf("overlay colours: %w", err)
	}

	rt := &Runtime{
		Config:  cfg,
		Capture: screenshot.NewDesktop(),
		OCR: ocr.NewService(ocr.Tesseract{TessdataPrefix: cfg.TessdataPrefix}, ocr.Options{
			Workers:    cfg.OCRWorkers,
			Preprocess: cfg.OCRPreprocess,
		}),
		Translator: translate.NewClient(translate.Options{
			Dial:              translate.NewWebDriverDialer(cfg.WebDriverURL, cfg.Browser, cfg.BrowserHeadless),
			NavigationTimeout: time.Duration(cfg.NavigationTimeoutSec) * time.Second,
			ResponseTimeout:   time.Duration(cfg.NavigationTimeoutSec) * time.Second,
		}),
		Renderer: render.NewRenderer(style, nil),
	}
	rt.Pipeline = &pipeline.Pipeline{
		Capture:   rt.Capture,
		OCR:       rt.OCR,
		Translate: rt.Translator,
		Render:    rt.Renderer,
		DebugDir:  cfg.DebugSaveFrames,
	}

	if opts.Profiles {
		if err := os.MkdirAll(filepath.Dir(cfg.ProfileDB), 0o755); err != nil {
			rt.Close()
			return nil, fmt.Errorf("profile directory: %w", err)
		}
		if rt.Profiles, err = profile.NewSQLite(cfg.ProfileDB); err != nil {
			rt.Close()
			return nil, fmt.Errorf("open profiles %s: %w", cfg.ProfileDB, err)
		}
	}
	if opts.Clipboard {
		if err := clipboard.Init(); err != nil {
			log.Printf("runtimeinit: clipboard disabled: %v", err)
		}
	}
	return rt, nil
}

// Close quits the browser session and closes the profile database.
func (rt *Runtime) Close() {
	if rt.Translator != nil {
		_ = rt.Translator.Close()
	}
	if rt.Profiles != nil {
		_ = rt.Profiles.Close()
	}
}

// ActiveProfile loads the configured profile, creating it from the
// configuration defaults the first time.
func (rt *Runtime) ActiveProfile() (*profile.Profile, error) {
	if rt.Profiles == nil {
		return nil, errors.New("profile store not opened")
	}
	p, err := rt.Profiles.Get(rt.Config.Profile)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, profile.ErrNotFound) {
		return nil, err
	}
	p = &profile.Profile{
		Title:               rt.Config.Profile,
		App:                 rt.Config.TargetApp,
		OCRLanguage:         rt.Config.OCRLang,
		TranslationLanguage: rt.Config.TranslationLang,
		Provider:            rt.Config.Provider,
	}
	if err := rt.Profiles.Save(p); err != nil {
		return nil, err
	}
	log.Printf("runtimeinit: created profile %q", p.Title)
	return p, nil
}

// ResolveTarget picks the first window of app, or the primary display when
// app is empty or has no window.
func (rt *Runtime) ResolveTarget(app string) (screenshot.Target, error) {
	targets, err := rt.Capture.ListTargets(app)
	if err != nil {
		return screenshot.Target{}, err
	}
	for _, t := range targets {
		if app != "" && !t.Display {
			return t, nil
		}
	}
	for _, t := range targets {
		if t.Display {
			if app != "" {
				log.Printf("runtimeinit: no window for %q, using %s", app, t)
			}
			return t, nil
		}
	}
	return screenshot.Target{}, screenshot.ErrTargetNotFound
}

// SessionConfig turns a profile into the configuration one session runs with.
func SessionConfig(p *profile.Profile, target screenshot.Target) (pipeline.Config, error) {
	tr, ok := profile.Translation(p.TranslationLanguage)
	if !ok {
		return pipeline.Config{}, fmt.Errorf("unknown translation language %q", p.TranslationLanguage)
	}
	return pipeline.Config{
		Target:       target,
		Regions:      p.Regions,
		UseFullFrame: p.UseFullFrame,
		OCR:          p.OCR(),
		Translation:  tr,
		Provider:     p.Provider,
	}, nil
}
