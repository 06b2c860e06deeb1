package translate

import (
	"context"
	"log"
	"strings"

	"game-translator/src/profile"
	"game-translator/src/region"
)

// Separator marks region boundaries inside a batched request.
const Separator = "@@@"

const joiner = "\n" + Separator + "\n"

// JoinBatch joins the non-empty texts with the separator line and returns the
// indexes they came from. It fails with ErrSeparatorInText when any text
// already contains the marker, since the split would be ambiguous.
func JoinBatch(texts []string) (string, []int, error) {
	var (
		parts []string
		idx   []int
	)
	for i, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if strings.Contains(t, Separator) {
			return "", nil, ErrSeparatorInText
		}
		parts = append(parts, t)
		idx = append(idx, i)
	}
	return strings.Join(parts, joiner), idx, nil
}

// SplitBatch splits a translated batch on the separator and trims each part.
func SplitBatch(s string) []string {
	raw := strings.Split(s, Separator)
	out := make([]string, len(raw))
	for i, p := range raw {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// TranslateRegions translates every region's text with a single request and
// returns copies carrying the translations. Regions without text are left
// empty. With the No Translation target the regions are returned unchanged.
//
// The provider must keep the separator lines. When the number of parts that
// come back differs from the number sent, parts are assigned by position,
// unmatched regions keep their source text, and a warning is logged.
func (c *Client) TranslateRegions(ctx context.Context, ocr profile.OcrProfile, target profile.TranslationProfile, provider string, regions []region.Region) ([]region.Region, error) {
	out := region.Clone(regions)
	if target.Disabled() {
		return out, nil
	}
	source := ocr.SourceCode()

	joined, idx, err := JoinBatch(region.Texts(regions))
	if err != nil {
		log.Printf("translate: %v, translating %d regions one by one", err, len(regions))
		return c.translateEach(ctx, source, target.Code, provider, out)
	}
	if len(idx) == 0 {
		return out, nil
	}

	translated, err := c.Translate(ctx, provider, source, target.Code, joined)
	if err != nil {
		return nil, err
	}
	parts := SplitBatch(translated)
	if len(parts) != len(idx) {
		log.Printf("translate: WARNING sent %d parts, got %d back; assigning by position", len(idx), len(parts))
	}
	for i, ri := range idx {
		if i < len(parts) {
			out[ri].Text = parts[i]
		}
	}
	return out, nil
}

func (c *Client) translateEach(ctx context.Context, source, target, provider string, regions []region.Region) ([]region.Region, error) {
	for i := range regions {
		text := strings.TrimSpace(regions[i].Text)
		if text == "" {
			continue
		}
		translated, err := c.Translate(ctx, provider, source, target, text)
		if err != nil {
			return nil, err
		}
		regions[i].Text = translated
	}
	return regions, nil
}
