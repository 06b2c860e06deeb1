package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileVar names a config file used when there is no .env next to the executable.
const EnvFileVar = "GAME_TRANSLATOR"

type LoadOptions struct {
	// EnvFile, when set, is loaded instead of the discovered .env.
	EnvFile         string
	ProfileOverride string
}

type Config struct {
	WebDriverURL         string
	Browser              string
	BrowserHeadless      bool
	Provider             string
	OCRLang              string
	TranslationLang      string
	LoopDelaySec         int
	NavigationTimeoutSec int
	IterationDeadlineSec int
	OCRWorkers           int
	OCRPreprocess        bool
	TessdataPrefix       string

	HotkeyAction      string
	HotkeyConfigure   string
	EnableFileLogging bool

	ProfileDB string
	Profile   string
	TargetApp string

	OverlayBackground      string
	OverlayBackgroundAlpha float64
	OverlayTextColor       string
	OverlayOutlineColor    string

	// DebugSaveFrames is a directory receiving every rendered frame; empty disables it.
	DebugSaveFrames string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions reads configuration in priority order: process environment,
// then the .env in the executable directory (or the file named by
// GAME_TRANSLATOR), then defaults.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	envPath := strings.TrimSpace(opts.EnvFile)
	if envPath == "" {
		envPath = resolveEnvPath()
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && opts.EnvFile != "" {
			return nil, err
		}
	}

	cfg := &Config{
		WebDriverURL:         getEnvWithDefault("WEBDRIVER_URL", "http://localhost:4444"),
		Browser:              strings.ToLower(getEnvWithDefault("BROWSER", "chrome")),
		BrowserHeadless:      getBool("BROWSER_HEADLESS", true),
		Provider:             strings.ToLower(getEnvWithDefault("TRANSLATION_PROVIDER", "google")),
		OCRLang:              getEnvWithDefault("OCR_LANG", "eng"),
		TranslationLang:      getEnvWithDefault("TRANSLATION_LANG", "en"),
		LoopDelaySec:         getPositiveInt("LOOP_DELAY_SEC", 10),
		NavigationTimeoutSec: getPositiveInt("NAVIGATION_TIMEOUT_SEC", 30),
		IterationDeadlineSec: getPositiveInt("ITERATION_DEADLINE_SEC", 60),
		OCRWorkers:           getPositiveInt("OCR_WORKERS", 0),
		OCRPreprocess:        getBool("OCR_PREPROCESS", true),
		TessdataPrefix:       os.Getenv("TESSDATA_PREFIX"),

		HotkeyAction:      getEnvWithDefault("HOTKEY_ACTION", "Ctrl+Alt+T"),
		HotkeyConfigure:   getEnvWithDefault("HOTKEY_CONFIGURE", "Ctrl+Alt+R"),
		EnableFileLogging: getBool("ENABLE_FILE_LOGGING", false),

		ProfileDB: getEnvWithDefault("PROFILE_DB", defaultProfileDB()),
		Profile:   getEnvWithDefault("PROFILE", "default"),
		TargetApp: os.Getenv("TARGET_APP"),

		OverlayBackground:      os.Getenv("OVERLAY_BACKGROUND"),
		OverlayBackgroundAlpha: getFloat("OVERLAY_BACKGROUND_ALPHA", 0.5),
		OverlayTextColor:       os.Getenv("OVERLAY_TEXT_COLOR"),
		OverlayOutlineColor:    os.Getenv("OVERLAY_OUTLINE_COLOR"),

		DebugSaveFrames: os.Getenv("DEBUG_SAVE_FRAMES"),
	}
	if p := strings.TrimSpace(opts.ProfileOverride); p != "" {
		cfg.Profile = p
	}
	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvFileVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func defaultProfileDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "profiles.db"
	}
	return filepath.Join(dir, "game-translator", "profiles.db")
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func getPositiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}
