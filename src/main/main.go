package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"game-translator/src/clipboard"
	"game-translator/src/config"
	"game-translator/src/eventloop"
	"game-translator/src/logutil"
	"game-translator/src/notification"
	"game-translator/src/region"
	"game-translator/src/runtimeinit"
	"game-translator/src/screenshot"
	"game-translator/src/session"
	"game-translator/src/singleinstance"
	"game-translator/src/ui"
)

const appID = "io.github.game-translator"

var errNoResident = errors.New("no running game-translator instance")

type mainOptions struct {
	envFile   string
	profile   string
	toggle    bool
	configure bool
	status    bool
	copy      bool
	verbose   bool
}

// delegation returns the command a flag asks to send to the resident.
func (o mainOptions) delegation() (singleinstance.Command, bool) {
	switch {
	case o.toggle:
		return singleinstance.CmdAction, true
	case o.configure:
		return singleinstance.CmdConfigure, true
	case o.status:
		return singleinstance.CmdStatus, true
	case o.copy:
		return singleinstance.CmdCopy, true
	}
	return "", false
}

func main() {
	// Lock main goroutine to its OS thread; the fyne loop runs on it.
	runtime.LockOSThread()

	cmd := newRootCmd(&mainOptions{})
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "game-translator",
		Short:         "Live OCR and translation overlay for game windows",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), *opts, cmd.OutOrStdout())
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", "", "Path to .env file")
	f := cmd.Flags()
	f.StringVar(&opts.profile, "profile", "", "Profile to load (overrides PROFILE)")
	f.BoolVar(&opts.toggle, "toggle", false, "Start or stop translating in the running instance, starting it if needed")
	f.BoolVar(&opts.configure, "configure", false, "Toggle the region editor in the running instance")
	f.BoolVar(&opts.status, "status", false, "Print the running instance's state")
	f.BoolVar(&opts.copy, "copy", false, "Copy the last translation to the clipboard")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")
	cmd.MarkFlagsMutuallyExclusive("toggle", "configure", "status", "copy")
	cmd.AddCommand(newProfilesCmd(opts))
	return cmd
}

// normalizeLegacyArgs maps single-dash long flags (-toggle) to cobra's
// double-dash form.
func normalizeLegacyArgs(args []string) []string {
	long := []string{"env", "profile", "toggle", "configure", "status", "copy", "verbose"}
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		arg := out[i]
		if !strings.HasPrefix(arg, "-") || strings.HasPrefix(arg, "--") {
			continue
		}
		name, _, _ := strings.Cut(arg[1:], "=")
		for _, l := range long {
			if name == l {
				out[i] = "-" + arg
				break
			}
		}
	}
	return out
}

func run(ctx context.Context, opts mainOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.verbose {
		logutil.SetupVerbose(true)
	}
	cmd, delegate := opts.delegation()
	if !delegate {
		return runResident(opts)
	}

	// Load .env early so CONTROL_PORT_* apply to the delegation scan.
	_, _ = config.LoadWithOptions(config.LoadOptions{EnvFile: opts.envFile})
	fallback := func() error { return errNoResident }
	if cmd == singleinstance.CmdAction {
		// --toggle on a cold start brings the resident up and starts it.
		fallback = func() error {
			opts.toggle = false
			return runResidentWith(opts, true)
		}
	}
	return handleDelegation(ctx, singleinstance.NewClient(), cmd, out, fallback)
}

// handleDelegation sends cmd to a resident. fallback runs when none answers.
func handleDelegation(ctx context.Context, client singleinstance.Client, cmd singleinstance.Command, out io.Writer, fallback func() error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	delegated, text, err := client.Send(ctx, cmd)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	if !delegated {
		log.Printf("No resident detected for %s", cmd)
		return fallback()
	}
	if text != "" {
		fmt.Fprint(out, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(out)
		}
	}
	return nil
}

func runResident(opts mainOptions) error { return runResidentWith(opts, false) }

func runResidentWith(opts mainOptions, autostart bool) error {
	dpiErr := enableDPIAwareness()

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  config.LoadOptions{EnvFile: opts.envFile, ProfileOverride: opts.profile},
		SetupLogging: setupLogging(opts.verbose),
		Clipboard:    true,
		Profiles:     true,
	})
	if err != nil {
		notification.ShowBlockingError("game-translator", err.Error())
		return err
	}
	defer rt.Close()
	if dpiErr != nil {
		log.Printf("game-translator: DPI awareness: %v", dpiErr)
	}
	logDisplays(rt.Capture.Displays())
	cfg := rt.Config

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	detectCtx, detectCancel := context.WithTimeout(ctx, time.Second)
	port, running := singleinstance.DetectResidentPort(detectCtx)
	detectCancel()
	if running {
		return fmt.Errorf("game-translator is already running (control port %d)", port)
	}
	srv := singleinstance.NewServer()
	if err := srv.Start(ctx); err != nil {
		start, end := singleinstance.PortRange()
		return fmt.Errorf("claim control port in %d-%d: %w", start, end, err)
	}
	defer srv.Close()

	prof, err := rt.ActiveProfile()
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	target, err := rt.ResolveTarget(prof.App)
	if err != nil {
		return fmt.Errorf("resolve capture target: %w", err)
	}
	scfg, err := runtimeinit.SessionConfig(prof, target)
	if err != nil {
		return err
	}
	log.Printf("game-translator: profile %q on %s, %s -> %s", prof.Title, target, scfg.OCR.Code, scfg.Translation.Code)

	gui := ui.New(appID)
	var ctrl *session.Controller
	profs := &profiles{store: rt.Profiles, resolve: rt.ResolveTarget, active: *prof}
	overlay := gui.NewOverlay(
		func(start, delta region.Point) { ctrl.Drag(start, delta) },
		func() (image.Image, error) { return editBackdrop(ctx, ctrl, rt.Capture) },
	)
	ctrl = session.New(scfg, session.Options{
		Pipeline:  rt.Pipeline,
		Overlay:   overlay,
		Notifier:  notification.Notifier{},
		LoopDelay: time.Duration(cfg.LoopDelaySec) * time.Second,
		Deadline:  time.Duration(cfg.IterationDeadlineSec) * time.Second,
		Retarget:  profs.retarget,
	})
	profs.ctrl = ctrl
	ctrl.OnStateChanged(func(s session.State) { gui.SetState(s.String()) })
	ctrl.OnRegionsChanged(profs.saveRegions)

	// onSelect and refresh call each other: switching re-ticks the menu.
	var onSelect func(title string)
	refreshProfiles := func() {
		titles, err := profs.titles()
		if err != nil {
			log.Printf("game-translator: listing profiles: %v", err)
			return
		}
		gui.SetProfiles(titles, profs.current().Title, onSelect)
	}
	onSelect = func(title string) {
		go func() {
			switchCtx, switchCancel := context.WithTimeout(ctx, 5*time.Second)
			defer switchCancel()
			if err := profs.switchTo(switchCtx, title); err != nil {
				notification.Notifier{}.Notify("Cannot switch profile", err.Error())
			}
			refreshProfiles()
		}()
	}

	loop := eventloop.New(ctrl, srv, clipboard.Write)
	if err := loop.StartHotkeys(cfg.HotkeyAction, cfg.HotkeyConfigure); err != nil {
		log.Printf("game-translator: hotkeys disabled: %v", err)
	} else {
		defer loop.StopHotkeys()
	}
	gui.SetupTray("game-translator", ui.Actions{
		Action:    loop.Action,
		Configure: loop.Configure,
		Copy:      loop.Copy,
	})
	refreshProfiles()
	gui.OnStopped(cancel)

	ctrlDone := make(chan error, 1)
	go func() { ctrlDone <- ctrl.Run(ctx) }()
	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("event loop stopped: %v", err)
		}
	}()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			gui.Quit()
		case <-ctx.Done():
		}
	}()

	if autostart {
		loop.Action()
	}
	log.Printf("game-translator: ready (action %s, configure %s)", cfg.HotkeyAction, cfg.HotkeyConfigure)
	gui.Run()

	cancel()
	<-ctrlDone
	return nil
}

type statusSource interface {
	Status(ctx context.Context) (session.Status, error)
}

type frameCapturer interface {
	Capture(ctx context.Context, t screenshot.Target) (*image.NRGBA, error)
}

// editBackdrop captures whatever the session currently targets.
func editBackdrop(ctx context.Context, ctrl statusSource, capture frameCapturer) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	st, err := ctrl.Status(ctx)
	if err != nil {
		return nil, err
	}
	return capture.Capture(ctx, st.Target)
}

// logDisplays records the monitor rectangles captures are clamped to.
func logDisplays(displays []image.Rectangle) {
	for _, line := range describeDisplays(displays) {
		log.Printf("game-translator: %s", line)
	}
}

func describeDisplays(displays []image.Rectangle) []string {
	if len(displays) == 0 {
		return []string{"no active displays"}
	}
	out := make([]string, 0, len(displays))
	for i, d := range displays {
		out = append(out, fmt.Sprintf("display %d: %dx%d at (%d,%d)", i+1, d.Dx(), d.Dy(), d.Min.X, d.Min.Y))
	}
	return out
}

func setupLogging(verbose bool) func(bool) {
	if verbose {
		return func(bool) { logutil.SetupVerbose(true) }
	}
	return logutil.Setup
}
