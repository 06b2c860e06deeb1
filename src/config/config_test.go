package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Setenv("WEBDRIVER_URL", "http://127.0.0.1:9515")
	t.Setenv("TRANSLATION_PROVIDER", "DeepL")
	t.Setenv("OCR_LANG", "jpn_vert")
	t.Setenv("LOOP_DELAY_SEC", "3")
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("HOTKEY_ACTION", "Ctrl+Shift+T")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.WebDriverURL != "http://127.0.0.1:9515" {
		t.Errorf("WebDriverURL = %q", cfg.WebDriverURL)
	}
	if cfg.Provider != "deepl" {
		t.Errorf("Provider = %q, want deepl", cfg.Provider)
	}
	if cfg.OCRLang != "jpn_vert" {
		t.Errorf("OCRLang = %q", cfg.OCRLang)
	}
	if cfg.LoopDelaySec != 3 {
		t.Errorf("LoopDelaySec = %d", cfg.LoopDelaySec)
	}
	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true")
	}
	if cfg.HotkeyAction != "Ctrl+Shift+T" {
		t.Errorf("HotkeyAction = %q", cfg.HotkeyAction)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"LOOP_DELAY_SEC", "NAVIGATION_TIMEOUT_SEC", "BROWSER_HEADLESS", "OVERLAY_BACKGROUND_ALPHA", "TRANSLATION_LANG"} {
		t.Setenv(k, "")
	}
	t.Setenv("ITERATION_DEADLINE_SEC", "-4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LoopDelaySec != 10 || cfg.NavigationTimeoutSec != 30 || cfg.IterationDeadlineSec != 60 {
		t.Errorf("unexpected timing defaults: %+v", cfg)
	}
	if !cfg.BrowserHeadless {
		t.Error("headless should default to true")
	}
	if cfg.OverlayBackgroundAlpha != 0.5 || cfg.TranslationLang != "en" {
		t.Errorf("unexpected defaults: alpha=%v lang=%q", cfg.OverlayBackgroundAlpha, cfg.TranslationLang)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.env")
	if err := os.WriteFile(path, []byte("PROFILE=visual-novel\nOCR_WORKERS=3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PROFILE", "")
	t.Setenv("OCR_WORKERS", "")
	os.Unsetenv("PROFILE")
	os.Unsetenv("OCR_WORKERS")

	cfg, err := LoadWithOptions(LoadOptions{EnvFile: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Profile != "visual-novel" || cfg.OCRWorkers != 3 {
		t.Errorf("env file not applied: profile=%q workers=%d", cfg.Profile, cfg.OCRWorkers)
	}

	cfg, err = LoadWithOptions(LoadOptions{EnvFile: path, ProfileOverride: "rpg"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Profile != "rpg" {
		t.Errorf("override ignored: %q", cfg.Profile)
	}

	if _, err := LoadWithOptions(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")}); err == nil {
		t.Error("expected error for a missing explicit env file")
	}
}
