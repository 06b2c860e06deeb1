package translate

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"game-translator/src/logutil"
)

const (
	defaultNavigationTimeout = 30 * time.Second
	defaultResponseTimeout   = 30 * time.Second
	defaultPollInterval      = 200 * time.Millisecond
	defaultQueueSize         = 8
)

type Options struct {
	Dial              Dialer
	NavigationTimeout time.Duration
	ResponseTimeout   time.Duration
	PollInterval      time.Duration
	QueueSize         int
}

type command int

const (
	cmdTranslate command = iota
	cmdWarmup
)

type request struct {
	cmd      command
	ctx      context.Context
	provider Provider
	source   string
	target   string
	text     string
	reply    chan reply
}

type reply struct {
	text string
	err  error
}

// Client owns one browser session. Every request goes through a bounded
// queue to a single goroutine, so at most one page interaction runs at a time.
type Client struct {
	opts      Options
	reqs      chan request
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// owned by the actor goroutine
	browser Browser
}

func NewClient(opts Options) *Client {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = defaultNavigationTimeout
	}
	if opts.ResponseTimeout <= 0 {
		opts.ResponseTimeout = defaultResponseTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	c := &Client{
		opts: opts,
		reqs: make(chan request, opts.QueueSize),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go c.run()
	return c
}

// Translate sends text to the provider's page and returns the translation.
func (c *Client) Translate(ctx context.Context, provider, source, target, text string) (string, error) {
	p, err := ProviderByName(provider)
	if err != nil {
		return "", err
	}
	return c.send(ctx, request{cmd: cmdTranslate, provider: p, source: source, target: target, text: text})
}

// Warmup opens the browser and loads the page for the language pair so the
// first translation does not pay for navigation.
func (c *Client) Warmup(ctx context.Context, provider, source, target string) error {
	p, err := ProviderByName(provider)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, request{cmd: cmdWarmup, provider: p, source: source, target: target})
	return err
}

// Close stops the actor and quits the browser. Queued requests fail with ErrClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.quit) })
	<-c.done
	return nil
}

func (c *Client) send(ctx context.Context, req request) (string, error) {
	req.ctx = ctx
	req.reply = make(chan reply, 1)
	select {
	case c.reqs <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", ErrClosed
	}
	select {
	case r := <-req.reply:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.done:
		return "", ErrClosed
	}
}

func (c *Client) run() {
	defer close(c.done)
	for {
		select {
		case <-c.quit:
			c.dropBrowser()
			return
		case req := <-c.reqs:
			text, err := c.handle(req)
			if sessionBroken(err) {
				c.dropBrowser()
			}
			req.reply <- reply{text: text, err: err}
		}
	}
}

func (c *Client) handle(req request) (string, error) {
	if err := req.ctx.Err(); err != nil {
		return "", err
	}
	switch req.cmd {
	case cmdWarmup:
		_, err := c.openPage(req)
		return "", err
	case cmdTranslate:
		return c.translate(req)
	}
	return "", errors.New("unknown command")
}

func (c *Client) session(ctx context.Context) (Browser, error) {
	if c.browser != nil {
		return c.browser, nil
	}
	if c.opts.Dial == nil {
		return nil, errors.New("no webdriver configured")
	}
	b, err := c.opts.Dial(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("translate: browser session opened")
	c.browser = b
	return b, nil
}

func (c *Client) dropBrowser() {
	if c.browser == nil {
		return
	}
	if err := c.browser.Quit(); err != nil {
		log.Printf("translate: quit browser: %v", err)
	}
	c.browser = nil
}

// openPage makes sure the browser shows the provider page for the pair,
// navigating and waiting for the load only when it does not already.
func (c *Client) openPage(req request) (Browser, error) {
	p := req.provider
	b, err := c.session(req.ctx)
	if err != nil {
		return nil, &Error{Kind: ErrSession, Provider: p.Name, Op: "dial", Err: err}
	}
	cur, err := b.CurrentURL()
	if err != nil {
		return nil, &Error{Kind: ErrSession, Provider: p.Name, Op: "current url", Err: err}
	}
	if p.OnPage(cur, req.source, req.target) {
		return b, nil
	}
	target := p.URL(req.source, req.target)
	log.Printf("translate: navigating %s -> %s", cur, target)
	if err := b.Get(target); err != nil {
		// the page may still load; the waits below decide
		log.Printf("translate: navigate %s: %v", target, err)
	}
	if err := waitForPageLoad(req.ctx, b, c.opts.NavigationTimeout, c.opts.PollInterval); err != nil {
		return nil, c.waitError(p, "page load", err, ErrNavigationTimeout)
	}
	if err := waitForNetworkIdle(req.ctx, b, c.opts.NavigationTimeout, c.opts.PollInterval); err != nil {
		return nil, c.waitError(p, "network idle", err, ErrNavigationTimeout)
	}
	return b, nil
}

func (c *Client) translate(req request) (string, error) {
	p := req.provider
	b, err := c.openPage(req)
	if err != nil {
		return "", err
	}

	var input Element
	err = poll(req.ctx, c.opts.NavigationTimeout, c.opts.PollInterval, func() (bool, error) {
		el, ok, err := nth(b, p.InputCSS, p.InputIndex)
		if err != nil || !ok {
			return false, err
		}
		if shown, _ := el.IsDisplayed(); !shown {
			return false, nil
		}
		if enabled, _ := el.IsEnabled(); !enabled {
			return false, nil
		}
		input = el
		return true, nil
	})
	if err != nil {
		return "", c.waitError(p, "find input", err, ErrElementNotFound)
	}

	if err := input.Clear(); err != nil {
		return "", &Error{Kind: ErrSession, Provider: p.Name, Op: "clear input", Err: err}
	}
	if err := input.SendKeys(req.text); err != nil {
		return "", &Error{Kind: ErrSession, Provider: p.Name, Op: "type", Err: err}
	}

	var out string
	err = poll(req.ctx, c.opts.ResponseTimeout, c.opts.PollInterval, func() (bool, error) {
		text, ok, err := outputText(b, p)
		if err != nil || !ok {
			return false, err
		}
		out = text
		return strings.TrimSpace(text) != "", nil
	})
	if err != nil {
		return "", c.waitError(p, "read output", err, ErrTimeout)
	}

	if err := input.Clear(); err != nil {
		return "", &Error{Kind: ErrSession, Provider: p.Name, Op: "clear input", Err: err}
	}
	err = poll(req.ctx, c.opts.ResponseTimeout, c.opts.PollInterval, func() (bool, error) {
		text, ok, err := outputText(b, p)
		if err != nil {
			return false, err
		}
		return !ok || strings.TrimSpace(text) == "", nil
	})
	if err != nil {
		return "", c.waitError(p, "clear output", err, ErrTimeout)
	}

	out = strings.TrimSpace(out)
	log.Printf("translate: %s %s->%s %q -> %q", p.Name, req.source, req.target, logutil.Sanitize(req.text), logutil.Sanitize(out))
	return out, nil
}

// waitError maps a poll failure: timeouts become kind, context errors pass
// through, and anything else is a broken session.
func (c *Client) waitError(p Provider, op string, err error, kind error) error {
	switch {
	case errors.Is(err, errWaitTimeout):
		return &Error{Kind: kind, Provider: p.Name, Op: op}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &Error{Kind: ErrSession, Provider: p.Name, Op: op, Err: err}
}

func nth(b Browser, css string, i int) (Element, bool, error) {
	els, err := b.FindElements(css)
	if err != nil {
		return nil, false, err
	}
	if i >= len(els) {
		return nil, false, nil
	}
	return els[i], true, nil
}

// outputText reads the output widget. A missing or stale element reports
// ok=false rather than an error; pages re-render it while translating.
func outputText(b Browser, p Provider) (string, bool, error) {
	el, ok, err := nth(b, p.OutputCSS, p.OutputIndex)
	if err != nil || !ok {
		return "", false, err
	}
	text, err := el.Text()
	if err != nil {
		return "", false, nil
	}
	return text, true, nil
}
