package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"game-translator/src/profile"
	"game-translator/src/region"
)

type fakePage struct {
	mu        sync.Mutex
	url       string
	input     string
	translate func(string) string
	gets      []string
	typed     []string
	hideInput bool
	quits     int
}

func (p *fakePage) Get(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	p.gets = append(p.gets, url)
	return nil
}

func (p *fakePage) CurrentURL() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.url == "" {
		return "about:blank", nil
	}
	return p.url, nil
}

func (p *fakePage) FindElements(css string) ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hideInput {
		return nil, nil
	}
	in, out := &fakeElement{page: p}, &fakeElement{page: p, output: true}
	switch css {
	case Google.InputCSS:
		return []Element{in}, nil
	case Google.OutputCSS:
		if p.input == "" {
			return nil, nil
		}
		return []Element{out}, nil
	case DeepL.InputCSS:
		return []Element{in, out}, nil
	}
	return nil, nil
}

func (p *fakePage) ExecuteScript(script string) (any, error) {
	if script == readyStateScript {
		return "complete", nil
	}
	return float64(0), nil
}

func (p *fakePage) Quit() error {
	p.mu.Lock()
	p.quits++
	p.mu.Unlock()
	return nil
}

type fakeElement struct {
	page   *fakePage
	output bool
}

func (e *fakeElement) SendKeys(keys string) error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.input += keys
	e.page.typed = append(e.page.typed, keys)
	return nil
}

func (e *fakeElement) Clear() error {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.input = ""
	return nil
}

func (e *fakeElement) Text() (string, error) {
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	if !e.output {
		return e.page.input, nil
	}
	if e.page.input == "" {
		return "", nil
	}
	fn := e.page.translate
	if fn == nil {
		return e.page.input, nil
	}
	return fn(e.page.input), nil
}

func (e *fakeElement) IsDisplayed() (bool, error) { return true, nil }
func (e *fakeElement) IsEnabled() (bool, error)   { return true, nil }

func newTestClient(page *fakePage, dials *int) *Client {
	return NewClient(Options{
		Dial: func(ctx context.Context) (Browser, error) {
			if dials != nil {
				*dials++
			}
			return page, nil
		},
		NavigationTimeout: 200 * time.Millisecond,
		ResponseTimeout:   200 * time.Millisecond,
		PollInterval:      time.Millisecond,
	})
}

func TestTranslateNavigatesOnlyWhenNeeded(t *testing.T) {
	page := &fakePage{translate: strings.ToUpper}
	c := newTestClient(page, nil)
	defer c.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := c.Translate(ctx, "google", "ja", "en", "hello")
		if err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if got != "HELLO" {
			t.Errorf("got %q, want HELLO", got)
		}
	}
	if len(page.gets) != 1 {
		t.Errorf("expected 1 navigation, got %v", page.gets)
	}
	if _, err := c.Translate(ctx, "google", "ja", "de", "hello"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(page.gets) != 2 {
		t.Errorf("expected a second navigation for a new pair, got %v", page.gets)
	}
	if page.input != "" {
		t.Errorf("input not cleared after translation: %q", page.input)
	}
}

func TestTranslateDeepL(t *testing.T) {
	page := &fakePage{translate: func(s string) string { return "de:" + s }}
	c := newTestClient(page, nil)
	defer c.Close()

	got, err := c.Translate(context.Background(), "deepl", "en", "de", "cat")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "de:cat" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(page.gets[0], "#en/de/") {
		t.Errorf("unexpected url %s", page.gets[0])
	}
}

func TestTranslateElementNotFound(t *testing.T) {
	page := &fakePage{hideInput: true}
	c := newTestClient(page, nil)
	defer c.Close()

	_, err := c.Translate(context.Background(), "google", "en", "ja", "x")
	if !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
	var te *Error
	if !errors.As(err, &te) || te.Remediation() == "" {
		t.Errorf("expected remediation on %v", err)
	}
}

func TestTranslateRedialsAfterSessionError(t *testing.T) {
	page := &fakePage{}
	calls := 0
	c := NewClient(Options{
		Dial: func(ctx context.Context) (Browser, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("connection refused")
			}
			return page, nil
		},
		PollInterval: time.Millisecond,
	})
	defer c.Close()

	_, err := c.Translate(context.Background(), "google", "en", "ja", "x")
	if !errors.Is(err, ErrSession) {
		t.Fatalf("expected ErrSession, got %v", err)
	}
	if _, err := c.Translate(context.Background(), "google", "en", "ja", "x"); err != nil {
		t.Fatalf("second Translate: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 dials, got %d", calls)
	}
}

func TestTranslateUnknownProvider(t *testing.T) {
	c := newTestClient(&fakePage{}, nil)
	defer c.Close()
	if _, err := c.Translate(context.Background(), "bing", "en", "ja", "x"); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestTranslateSerializesConcurrentCallers(t *testing.T) {
	page := &fakePage{translate: func(s string) string { return "t:" + s }}
	c := newTestClient(page, nil)
	defer c.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 6)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := fmt.Sprintf("line %d", i)
			got, err := c.Translate(context.Background(), "google", "en", "ja", text)
			if err != nil {
				errs <- err
				return
			}
			if got != "t:"+text {
				errs <- fmt.Errorf("got %q for %q", got, text)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestClosedClient(t *testing.T) {
	page := &fakePage{}
	c := newTestClient(page, nil)
	if _, err := c.Translate(context.Background(), "google", "en", "ja", "x"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	c.Close()
	c.Close()
	if page.quits != 1 {
		t.Errorf("expected browser quit once, got %d", page.quits)
	}
	if _, err := c.Translate(context.Background(), "google", "en", "ja", "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestBatchRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			page := &fakePage{}
			c := newTestClient(page, nil)
			defer c.Close()

			var regions []region.Region
			for i := 0; i < n; i++ {
				regions = append(regions, region.New(i*20, 0, 10, 10).WithText(fmt.Sprintf("text %d", i)))
			}
			got, err := c.TranslateRegions(context.Background(), profile.OCR("eng"), mustTarget(t, "ja"), "google", regions)
			if err != nil {
				t.Fatalf("TranslateRegions: %v", err)
			}
			for i := range regions {
				if got[i] != regions[i] {
					t.Errorf("region %d = %+v, want %+v", i, got[i], regions[i])
				}
			}
			if len(page.typed) != 1 {
				t.Errorf("expected a single request, got %d", len(page.typed))
			}
		})
	}
}

func TestBatchSkipsEmptyTexts(t *testing.T) {
	page := &fakePage{translate: strings.ToUpper}
	c := newTestClient(page, nil)
	defer c.Close()

	regions := []region.Region{
		region.New(0, 0, 5, 5).WithText("a"),
		region.New(10, 0, 5, 5),
		region.New(20, 0, 5, 5).WithText("b"),
	}
	got, err := c.TranslateRegions(context.Background(), profile.OCR("eng"), mustTarget(t, "ja"), "google", regions)
	if err != nil {
		t.Fatalf("TranslateRegions: %v", err)
	}
	if want := []string{"A", "", "B"}; strings.Join(region.Texts(got), ",") != strings.Join(want, ",") {
		t.Errorf("texts = %q, want %q", region.Texts(got), want)
	}
}

func TestBatchSeparatorCollisionFallsBack(t *testing.T) {
	page := &fakePage{}
	c := newTestClient(page, nil)
	defer c.Close()

	regions := []region.Region{
		region.New(0, 0, 5, 5).WithText("mail me @@@ home"),
		region.New(10, 0, 5, 5).WithText("second"),
	}
	if _, _, err := JoinBatch(region.Texts(regions)); !errors.Is(err, ErrSeparatorInText) {
		t.Fatalf("expected ErrSeparatorInText, got %v", err)
	}
	got, err := c.TranslateRegions(context.Background(), profile.OCR("eng"), mustTarget(t, "ja"), "google", regions)
	if err != nil {
		t.Fatalf("TranslateRegions: %v", err)
	}
	if got[0].Text != "mail me @@@ home" || got[1].Text != "second" {
		t.Errorf("unexpected texts %q", region.Texts(got))
	}
	if len(page.typed) != 2 {
		t.Errorf("expected one request per region, got %d", len(page.typed))
	}
}

func TestBatchCountMismatchAssignsByPosition(t *testing.T) {
	merge := func(s string) string { return strings.ReplaceAll(s, joiner, " ") }
	page := &fakePage{translate: merge}
	c := newTestClient(page, nil)
	defer c.Close()

	regions := []region.Region{
		region.New(0, 0, 5, 5).WithText("one"),
		region.New(10, 0, 5, 5).WithText("two"),
	}
	got, err := c.TranslateRegions(context.Background(), profile.OCR("eng"), mustTarget(t, "ja"), "google", regions)
	if err != nil {
		t.Fatalf("TranslateRegions: %v", err)
	}
	if got[0].Text != "one two" || got[1].Text != "two" {
		t.Errorf("unexpected texts %q", region.Texts(got))
	}
}

func TestNoTranslationSkipsBrowser(t *testing.T) {
	dials := 0
	c := newTestClient(&fakePage{}, &dials)
	defer c.Close()

	regions := []region.Region{region.New(0, 0, 5, 5).WithText("keep")}
	got, err := c.TranslateRegions(context.Background(), profile.OCR("eng"), mustTarget(t, profile.NoTranslation), "google", regions)
	if err != nil {
		t.Fatalf("TranslateRegions: %v", err)
	}
	if got[0].Text != "keep" || dials != 0 {
		t.Errorf("text=%q dials=%d", got[0].Text, dials)
	}
}

func TestProviderOnPage(t *testing.T) {
	tests := []struct {
		p       Provider
		current string
		want    bool
	}{
		{Google, "https://translate.google.com/?sl=ja&tl=en&op=translate", true},
		{Google, "https://translate.google.com/?tl=en&sl=ja", true},
		{Google, "https://translate.google.com/?sl=ja&tl=de", false},
		{Google, "https://example.com/?sl=ja&tl=en", false},
		{DeepL, "https://www.deepl.com/en/translator#ja/en/hello", true},
		{DeepL, "https://www.deepl.com/en/translator#ja/de/", false},
		{DeepL, "about:blank", false},
	}
	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			if got := tt.p.OnPage(tt.current, "ja", "en"); got != tt.want {
				t.Errorf("OnPage = %v, want %v", got, tt.want)
			}
		})
	}
}

func mustTarget(t *testing.T, code string) profile.TranslationProfile {
	t.Helper()
	p, ok := profile.Translation(code)
	if !ok {
		t.Fatalf("unknown translation code %q", code)
	}
	return p
}
