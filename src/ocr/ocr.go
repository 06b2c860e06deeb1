package ocr

import (
	"context"
	"log"
	"runtime"
	"strings"
	"sync"

	"game-translator/src/logutil"
	"game-translator/src/profile"
	"game-translator/src/region"
	"game-translator/src/screenshot"
)

type Options struct {
	// Workers bounds parallel recognitions. Defaults to NumCPU.
	Workers int
	// Preprocess enables contrast/grayscale/upscale on per-region crops.
	Preprocess bool
}

// Service recognizes text in captured crops.
type Service struct {
	engine     Engine
	workers    int
	preprocess bool
}

func NewService(engine Engine, opts Options) *Service {
	if engine == nil {
		engine = Tesseract{}
	}
	n := opts.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return &Service{engine: engine, workers: n, preprocess: opts.Preprocess}
}

// Check verifies that the engine loads the profile's language.
func (s *Service) Check(p profile.OcrProfile) error {
	if err := s.engine.Probe(p.Code); err != nil {
		return classify(err, p.Code, "")
	}
	return nil
}

// RecognizeRegions runs OCR on each crop in parallel and returns one region
// per crop, in input order, with Text set. A failing crop yields empty text;
// engine or language problems abort the batch.
func (s *Service) RecognizeRegions(ctx context.Context, crops []screenshot.Crop, p profile.OcrProfile) ([]region.Region, error) {
	out := make([]region.Region, len(crops))
	errs := make([]*Error, len(crops))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, c := range crops {
		out[i] = c.Region.WithText("")
		if c.Skipped {
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		}
		wg.Add(1)
		go func(i int, c screenshot.Crop) {
			defer wg.Done()
			defer func() { <-sem }()
			text, err := s.recognize(c.Path, p.Code)
			if err != nil {
				errs[i] = classify(err, p.Code, c.Path)
				return
			}
			out[i].Text = text
		}(i, c)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, e := range errs {
		if e == nil {
			continue
		}
		if e.Fatal() {
			return nil, e
		}
		log.Printf("ocr: region %d %v: %v", i, out[i], e)
	}
	return out, nil
}

func (s *Service) recognize(path, lang string) (string, error) {
	if s.preprocess {
		if err := preprocessFile(path); err != nil {
			log.Printf("ocr: preprocess %s: %v", path, err)
		}
	}
	text, err := s.engine.Text(path, lang)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	log.Printf("ocr: %s -> %q", path, logutil.Sanitize(text))
	return text, nil
}

// RecognizeFrame runs whole-frame OCR and rebuilds one region per text line,
// in reading order, with coordinates in frame space.
func (s *Service) RecognizeFrame(ctx context.Context, path string, p profile.OcrProfile) ([]region.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens, err := s.engine.Tokens(path, p.Code)
	if err != nil {
		return nil, classify(err, p.Code, path)
	}
	lines := Reconstruct(tokens)
	log.Printf("ocr: frame %s -> %d tokens, %d lines", path, len(tokens), len(lines))
	return lines, nil
}
