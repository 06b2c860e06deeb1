package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"game-translator/src/pipeline"
	"game-translator/src/region"
	"game-translator/src/render"
	"game-translator/src/screenshot"
	"game-translator/src/worker"
)

type State int

const (
	Stopped State = iota
	Started
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Started:
		return "started"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var ErrClosed = errors.New("session controller stopped")

// Overlay is the window over the target. Show and Edit replace whatever it
// displays; Close hides it.
type Overlay interface {
	Show(frame *render.Frame)
	Edit(regions []region.Region)
	Close()
}

type Notifier interface {
	Notify(title, message string)
}

// Pipeline is what the controller drives: a pre-flight check and iterations.
type Pipeline interface {
	worker.Runner
	Check(ctx context.Context, cfg pipeline.Config) error
}

type Options struct {
	Pipeline Pipeline
	Overlay  Overlay
	Notifier Notifier
	// LoopDelay separates the end of one iteration from the start of the next.
	LoopDelay time.Duration
	// Deadline bounds one iteration and the pre-flight check.
	Deadline time.Duration
	// Retarget, when set, looks the capture target up again after pre-flight
	// found it gone (the game restarted under a new window).
	Retarget func(ctx context.Context, cfg pipeline.Config) (screenshot.Target, error)
}

// Status is a snapshot of the controller.
type Status struct {
	State State
	// Starting is set while pre-flight runs; State is still the one it
	// started from.
	Starting bool
	Target   screenshot.Target
	Regions  []region.Region
	LastText string
}

type cmdKind int

const (
	cmdAction cmdKind = iota
	cmdConfigure
	cmdDrag
	cmdSetConfig
	cmdStatus
)

type command struct {
	kind   cmdKind
	start  region.Point
	delta  region.Point
	cfg    pipeline.Config
	reply  chan Status
	result chan error
}

type result struct {
	gen    uint64
	frame  *render.Frame
	err    error
	cancel context.CancelFunc

	// set for pre-flight results
	checked bool
	target  screenshot.Target
}

// Controller owns the session state. Everything that changes it runs on the
// goroutine inside Run; other goroutines post commands.
type Controller struct {
	opts    Options
	cmds    chan command
	results chan result
	done    chan struct{}
	pool    *worker.Pool

	// owned by Run
	cfg       pipeline.Config
	state     State
	editor    *region.Editor
	gen       uint64
	busy      bool
	starting  bool
	stopCheck context.CancelFunc
	timer     *time.Timer
	lastFrame *render.Frame

	onFrame   []func(*render.Frame)
	onState   []func(State)
	onRegions []func([]region.Region)
}

func New(cfg pipeline.Config, opts Options) *Controller {
	if opts.LoopDelay <= 0 {
		opts.LoopDelay = 10 * time.Second
	}
	if opts.Deadline <= 0 {
		opts.Deadline = 60 * time.Second
	}
	if opts.Overlay == nil {
		opts.Overlay = nopOverlay{}
	}
	if opts.Notifier == nil {
		opts.Notifier = logNotifier{}
	}
	return &Controller{
		opts:    opts,
		cmds:    make(chan command, 8),
		results: make(chan result, 1),
		done:    make(chan struct{}),
		pool:    worker.New(opts.Pipeline, 1),
		cfg:     cfg.Clone(),
		editor:  region.NewEditor(cfg.Regions),
	}
}

// OnFrameReady registers fn for every rendered frame. Observers must be
// registered before Run and are called on the controller goroutine.
func (c *Controller) OnFrameReady(fn func(*render.Frame)) { c.onFrame = append(c.onFrame, fn) }

func (c *Controller) OnStateChanged(fn func(State)) { c.onState = append(c.onState, fn) }

// OnRegionsChanged receives the region list when configuration ends.
func (c *Controller) OnRegionsChanged(fn func([]region.Region)) {
	c.onRegions = append(c.onRegions, fn)
}

// Action toggles between running and stopped.
func (c *Controller) Action() { c.post(command{kind: cmdAction}) }

// Configure toggles region editing. It is ignored while running.
func (c *Controller) Configure() { c.post(command{kind: cmdConfigure}) }

// Drag reports a finished drag gesture on the editing overlay.
func (c *Controller) Drag(start, delta region.Point) {
	c.post(command{kind: cmdDrag, start: start, delta: delta})
}

// SetConfig replaces the session configuration. Only allowed while stopped
// and not starting.
func (c *Controller) SetConfig(ctx context.Context, cfg pipeline.Config) error {
	res := make(chan error, 1)
	if err := c.postCtx(ctx, command{kind: cmdSetConfig, cfg: cfg.Clone(), result: res}); err != nil {
		return err
	}
	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

func (c *Controller) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	if err := c.postCtx(ctx, command{kind: cmdStatus, reply: reply}); err != nil {
		return Status{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	case <-c.done:
		return Status{}, ErrClosed
	}
}

func (c *Controller) post(cmd command) {
	select {
	case c.cmds <- cmd:
	case <-c.done:
	}
}

func (c *Controller) postCtx(ctx context.Context, cmd command) error {
	select {
	case c.cmds <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	}
}

// Run processes commands and iteration results until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		close(c.done)
		c.stopTimer()
		c.cancelStart()
		c.opts.Overlay.Close()
		c.pool.Close()
	}()
	for {
		var tick <-chan time.Time
		if c.timer != nil {
			tick = c.timer.C
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-c.cmds:
			c.handle(ctx, cmd)
		case res := <-c.results:
			if res.checked {
				c.handleChecked(ctx, res)
			} else {
				c.handleResult(ctx, res)
			}
		case <-tick:
			c.timer = nil
			c.startIteration(ctx)
		}
	}
}

func (c *Controller) handle(ctx context.Context, cmd command) {
	switch cmd.kind {
	case cmdAction:
		c.onAction(ctx)
	case cmdConfigure:
		c.onConfigure()
	case cmdDrag:
		if c.state != Paused || c.starting {
			return
		}
		regions, err := c.editor.OnDragEnd(cmd.start, cmd.delta)
		if err == nil {
			c.opts.Overlay.Edit(regions)
		}
	case cmdSetConfig:
		if c.state != Stopped || c.starting {
			cmd.result <- fmt.Errorf("cannot change configuration while %s", c.describe())
			return
		}
		c.cfg = cmd.cfg
		c.editor.Reset(cmd.cfg.Regions)
		cmd.result <- nil
	case cmdStatus:
		s := Status{State: c.state, Starting: c.starting, Target: c.cfg.Target, Regions: region.Clone(c.cfg.Regions)}
		if c.lastFrame != nil {
			s.LastText = c.lastFrame.Text()
		}
		cmd.reply <- s
	}
}

func (c *Controller) onAction(ctx context.Context) {
	switch {
	case c.starting:
		log.Printf("session: start cancelled")
		c.cancelStart()
		if c.state == Paused {
			c.setState(Stopped)
		}
		return
	case c.state == Started:
		log.Printf("session: stopping")
		c.stop()
		return
	case c.state == Paused:
		c.finishEditing()
	}
	c.startPreflight(ctx)
}

// startPreflight runs the pre-flight check on the worker. The state changes
// only when its result comes back through handleChecked.
func (c *Controller) startPreflight(ctx context.Context) {
	c.gen++
	gen := c.gen
	cfg := c.cfg.Clone()
	checkCtx, cancel := context.WithTimeout(ctx, c.opts.Deadline)
	target := make(chan screenshot.Target, 1)
	ok := c.pool.SubmitFunc(checkCtx, func(ctx context.Context) error {
		t, err := c.preflight(ctx, cfg)
		target <- t
		return err
	}, func(err error) {
		res := result{gen: gen, err: err, cancel: cancel, checked: true, target: cfg.Target}
		if err == nil {
			res.target = <-target
		}
		select {
		case c.results <- res:
		case <-c.done:
			cancel()
		}
	})
	if !ok {
		cancel()
		c.report("Cannot start", errors.New("previous iteration still running, try again"))
		if c.state == Paused {
			c.setState(Stopped)
		}
		return
	}
	c.starting = true
	c.stopCheck = cancel
	log.Printf("session: pre-flight for %s", cfg.Target)
}

// preflight checks cfg and, when the target is gone, retries once against a
// freshly resolved one. It runs on the worker.
func (c *Controller) preflight(ctx context.Context, cfg pipeline.Config) (screenshot.Target, error) {
	err := c.opts.Pipeline.Check(ctx, cfg)
	if err == nil || c.opts.Retarget == nil || !errors.Is(err, screenshot.ErrTargetNotFound) {
		return cfg.Target, err
	}
	t, rerr := c.opts.Retarget(ctx, cfg)
	if rerr != nil {
		log.Printf("session: retarget: %v", rerr)
		return cfg.Target, err
	}
	log.Printf("session: %s gone, retrying with %s", cfg.Target, t)
	cfg.Target = t
	return t, c.opts.Pipeline.Check(ctx, cfg)
}

func (c *Controller) handleChecked(ctx context.Context, res result) {
	res.cancel()
	if !c.starting || res.gen != c.gen {
		log.Printf("session: discarding stale pre-flight result")
		return
	}
	c.starting = false
	c.stopCheck = nil
	if res.err != nil {
		log.Printf("session: pre-flight failed: %v", res.err)
		c.report("Cannot start", res.err)
		c.setState(Stopped)
		return
	}
	c.cfg.Target = res.target
	log.Printf("session: started on %s", c.cfg.Target)
	c.setState(Started)
	c.startIteration(ctx)
}

func (c *Controller) cancelStart() {
	c.gen++
	c.starting = false
	if c.stopCheck != nil {
		c.stopCheck()
		c.stopCheck = nil
	}
}

func (c *Controller) describe() string {
	if c.starting {
		return "starting"
	}
	return c.state.String()
}

func (c *Controller) onConfigure() {
	if c.starting {
		log.Printf("session: configure ignored while starting")
		return
	}
	switch c.state {
	case Started:
		log.Printf("session: configure ignored while started")
	case Stopped:
		c.editor.Reset(c.cfg.Regions)
		c.setState(Paused)
		c.opts.Overlay.Edit(c.editor.Regions())
	case Paused:
		c.finishEditing()
		c.setState(Stopped)
	}
}

// finishEditing closes the editor and publishes its regions.
func (c *Controller) finishEditing() {
	c.opts.Overlay.Close()
	c.cfg.Regions = c.editor.Regions()
	for _, fn := range c.onRegions {
		fn(region.Clone(c.cfg.Regions))
	}
}

func (c *Controller) stop() {
	c.gen++
	c.stopTimer()
	c.opts.Overlay.Close()
	c.setState(Stopped)
}

func (c *Controller) startIteration(ctx context.Context) {
	if c.state != Started || c.busy {
		return
	}
	gen := c.gen
	jobCtx, cancel := context.WithTimeout(ctx, c.opts.Deadline)
	c.busy = true
	ok := c.pool.Submit(jobCtx, c.cfg, func(frame *render.Frame, err error) {
		select {
		case c.results <- result{gen: gen, frame: frame, err: err, cancel: cancel}:
		case <-c.done:
			cancel()
		}
	})
	if !ok {
		cancel()
		c.busy = false
		log.Printf("session: worker busy, retrying after %v", c.opts.LoopDelay)
		c.schedule()
	}
}

func (c *Controller) handleResult(ctx context.Context, res result) {
	res.cancel()
	c.busy = false
	if res.gen != c.gen || c.state != Started {
		log.Printf("session: discarding stale iteration result")
		// a start that happened while this iteration ran still needs its first cycle
		if c.state == Started && c.timer == nil {
			c.startIteration(ctx)
		}
		return
	}
	if res.err != nil {
		log.Printf("session: iteration failed: %v", res.err)
		c.stop()
		c.report("Translation stopped", res.err)
		return
	}
	c.lastFrame = res.frame
	c.opts.Overlay.Show(res.frame)
	for _, fn := range c.onFrame {
		fn(res.frame)
	}
	c.schedule()
}

func (c *Controller) schedule() {
	c.stopTimer()
	c.timer = time.NewTimer(c.opts.LoopDelay)
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	log.Printf("session: %s -> %s", c.state, s)
	c.state = s
	for _, fn := range c.onState {
		fn(s)
	}
}

func (c *Controller) report(title string, err error) {
	msg := err.Error()
	var r interface{ Remediation() string }
	if errors.As(err, &r) && r.Remediation() != "" {
		msg += "\n\n" + r.Remediation()
	}
	c.opts.Notifier.Notify(title, msg)
}

type nopOverlay struct{}

func (nopOverlay) Show(*render.Frame)    {}
func (nopOverlay) Edit([]region.Region) {}
func (nopOverlay) Close()               {}

type logNotifier struct{}

func (logNotifier) Notify(title, message string) { log.Printf("session: %s: %s", title, message) }
