package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"game-translator/src/config"
	"game-translator/src/pipeline"
	"game-translator/src/profile"
	"game-translator/src/region"
	"game-translator/src/runtimeinit"
	"game-translator/src/screenshot"
)

const (
	maxFileSizeMB = 20
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath   string
	outPath    string
	regions    string
	ocrLang    string
	targetLang string
	provider   string
	envFile    string
	jsonOutput bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args)
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"translate-image"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "translate-image",
		Short:         "OCR, translate and overlay a PNG screenshot",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	f.StringVarP(&opts.outPath, "out", "o", "", "Write the screenshot with the overlay drawn on it to this PNG")
	f.StringVar(&opts.regions, "regions", "", "Regions as x,y,w,h separated by ';' (default: whole image, line by line)")
	f.StringVar(&opts.ocrLang, "ocr-lang", "", "Tesseract language code (default OCR_LANG)")
	f.StringVar(&opts.targetLang, "to", "", "Translation language code, 'nt' to skip (default TRANSLATION_LANG)")
	f.StringVar(&opts.provider, "provider", "", "Translation provider: google or deepl (default TRANSLATION_PROVIDER)")
	f.StringVar(&opts.envFile, "env", "", "Path to .env file")
	f.BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(ctx context.Context, opts cliOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}

	regions, err := parseRegions(opts.regions)
	if err != nil {
		return err
	}
	img, err := readImage(opts.filePath)
	if err != nil {
		return err
	}

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{EnvFile: opts.envFile},
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, err := sessionConfig(rt.Config, opts, regions)
	if err != nil {
		return err
	}
	p := *rt.Pipeline
	p.Capture = &imageCapturer{svc: rt.Capture, img: img}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(rt.Config.IterationDeadlineSec)*time.Second)
	defer cancel()
	if err := p.Check(ctx, cfg); err != nil {
		return err
	}
	start := time.Now()
	frame, err := p.Run(ctx, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if opts.outPath != "" {
		if err := imaging.Save(frame.Composite(img), opts.outPath); err != nil {
			return fmt.Errorf("write %s: %w", opts.outPath, err)
		}
	}
	return outputResult(out, Result{
		Source:      opts.filePath,
		Output:      opts.outPath,
		OCR:         cfg.OCR.Code,
		Translation: cfg.Translation.Code,
		Regions:     frame.Regions,
		Text:        frame.Text(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Duration:    elapsed.Seconds(),
	}, opts.jsonOutput)
}

func sessionConfig(c *config.Config, opts cliOptions, regions []region.Region) (pipeline.Config, error) {
	ocrLang := firstNonEmpty(opts.ocrLang, c.OCRLang)
	target := firstNonEmpty(opts.targetLang, c.TranslationLang)
	tr, ok := profile.Translation(target)
	if !ok {
		return pipeline.Config{}, fmt.Errorf("unknown translation language %q", target)
	}
	return pipeline.Config{
		Target:       screenshot.Target{ID: 0, Display: true},
		Regions:      regions,
		UseFullFrame: len(regions) == 0,
		OCR:          profile.OCR(ocrLang),
		Translation:  tr,
		Provider:     firstNonEmpty(opts.provider, c.Provider),
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parseRegions reads "x,y,w,h;x,y,w,h". An empty string means no regions.
func parseRegions(s string) ([]region.Region, error) {
	var out []region.Region
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		if len(fields) != 4 {
			return nil, fmt.Errorf("region %q: want x,y,w,h", part)
		}
		var v [4]int
		for i, f := range fields {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("region %q: %w", part, err)
			}
			v[i] = n
		}
		r := region.New(v[0], v[1], v[2], v[3])
		if r.Empty() {
			return nil, fmt.Errorf("region %q has no area", part)
		}
		out = append(out, r)
	}
	if i, j, bad := region.AnyOverlap(out); bad {
		return nil, fmt.Errorf("regions %v and %v overlap", out[i], out[j])
	}
	return out, nil
}

func readImage(filePath string) (image.Image, error) {
	var (
		data []byte
		err  error
	)
	if filePath == "-" {
		data, err = io.ReadAll(io.LimitReader(os.Stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}
	if err := validatePNG(data); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func validatePNG(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

// imageCapturer serves a still image as the capture target.
type imageCapturer struct {
	svc *screenshot.Service
	img image.Image
}

func (c *imageCapturer) Exists(screenshot.Target) bool { return c.img != nil }

func (c *imageCapturer) CaptureRegions(ctx context.Context, _ screenshot.Target, regions []region.Region) (*screenshot.CropSet, error) {
	return c.svc.CropImage(c.img, regions)
}

func (c *imageCapturer) CaptureFull(ctx context.Context, _ screenshot.Target) (*screenshot.CropSet, error) {
	return c.svc.FrameFile(c.img)
}

type Result struct {
	Source      string          `json:"source"`
	Output      string          `json:"output,omitempty"`
	OCR         string          `json:"ocr_language"`
	Translation string          `json:"translation_language"`
	Regions     []region.Region `json:"regions"`
	Text        string          `json:"text"`
	Timestamp   string          `json:"timestamp"`
	Duration    float64         `json:"duration_seconds"`
}

func outputResult(out io.Writer, res Result, jsonOutput bool) error {
	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(res); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(out, res.Text)
	return nil
}
