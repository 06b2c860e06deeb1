package eventloop

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"game-translator/src/hotkey"
	"game-translator/src/session"
	"game-translator/src/singleinstance"
)

// Controller is the part of the session the loop drives.
type Controller interface {
	Action()
	Configure()
	Status(ctx context.Context) (session.Status, error)
}

type event int

const (
	evAction event = iota
	evConfigure
	evCopy
)

// Loop turns hotkeys, tray clicks and delegated commands into controller
// commands. Inputs that fire on foreign goroutines (the keyboard hook, the
// tray) only post into a small channel; Run does the work.
type Loop struct {
	ctrl     Controller
	srv      singleinstance.Server
	copyText func(string) error
	events   chan event
	timeout  time.Duration
}

// New creates a loop. copyText receives the last translated text for COPY;
// nil disables copying.
func New(ctrl Controller, srv singleinstance.Server, copyText func(string) error) *Loop {
	return &Loop{
		ctrl:     ctrl,
		srv:      srv,
		copyText: copyText,
		events:   make(chan event, 4),
		timeout:  5 * time.Second,
	}
}

// StartHotkeys registers the action and configure combinations.
func (l *Loop) StartHotkeys(action, configure string) error {
	return hotkey.Listen(
		hotkey.Binding{Combo: action, Callback: l.Action},
		hotkey.Binding{Combo: configure, Callback: l.Configure},
	)
}

func (l *Loop) StopHotkeys() { hotkey.Stop() }

// Action posts an on-action event. Safe from any goroutine; dropped when
// the loop is behind.
func (l *Loop) Action() { l.post(evAction) }

func (l *Loop) Configure() { l.post(evConfigure) }

// Copy puts the last translated text on the clipboard.
func (l *Loop) Copy() { l.post(evCopy) }

func (l *Loop) post(ev event) {
	select {
	case l.events <- ev:
	default:
		log.Printf("eventloop: dropping event %d, loop busy", ev)
	}
}

// Run serves delegated commands and posted events until ctx is cancelled.
// srv must already be started.
func (l *Loop) Run(ctx context.Context) error {
	reqCh := make(chan singleinstance.Conn, 4)
	if l.srv != nil {
		if p := l.srv.Port(); p > 0 {
			log.Printf("eventloop: resident listening on 127.0.0.1:%d", p)
		}
		go func() {
			defer close(reqCh)
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					return
				}
				select {
				case reqCh <- conn:
				case <-ctx.Done():
					_ = conn.Close()
					return
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			l.handleEvent(ctx, ev)
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(ctx, conn)
		}
	}
}

func (l *Loop) handleEvent(ctx context.Context, ev event) {
	switch ev {
	case evAction:
		l.ctrl.Action()
	case evConfigure:
		l.ctrl.Configure()
	case evCopy:
		if _, err := l.copyLast(ctx); err != nil {
			log.Printf("eventloop: copy failed: %v", err)
		}
	}
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	defer conn.Close()
	cmd := conn.Request().Command
	log.Printf("eventloop: delegated %s", cmd)

	var (
		text string
		err  error
	)
	switch cmd {
	case singleinstance.CmdAction:
		l.ctrl.Action()
	case singleinstance.CmdConfigure:
		l.ctrl.Configure()
	case singleinstance.CmdStatus:
		text, err = l.status(ctx)
	case singleinstance.CmdCopy:
		text, err = l.copyLast(ctx)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		_ = conn.RespondError(err.Error())
		return
	}
	_ = conn.RespondSuccess(text)
}

func (l *Loop) status(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	s, err := l.ctrl.Status(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if s.Starting {
		fmt.Fprintf(&b, "state: %s (starting)\n", s.State)
	} else {
		fmt.Fprintf(&b, "state: %s\n", s.State)
	}
	fmt.Fprintf(&b, "target: %s\n", s.Target)
	fmt.Fprintf(&b, "regions: %d\n", len(s.Regions))
	for _, r := range s.Regions {
		fmt.Fprintf(&b, "  %s\n", r)
	}
	if s.LastText != "" {
		fmt.Fprintf(&b, "last: %s\n", s.LastText)
	}
	return b.String(), nil
}

func (l *Loop) copyLast(ctx context.Context) (string, error) {
	if l.copyText == nil {
		return "", fmt.Errorf("clipboard not available")
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	s, err := l.ctrl.Status(ctx)
	if err != nil {
		return "", err
	}
	if s.LastText == "" {
		return "", fmt.Errorf("nothing translated yet")
	}
	if err := l.copyText(s.LastText); err != nil {
		return "", err
	}
	return s.LastText, nil
}
