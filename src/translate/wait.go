package translate

import (
	"context"
	"errors"
	"time"
)

const (
	readyStateScript  = "return document.readyState"
	networkIdleScript = "return window.performance.getEntriesByType('resource').filter(r => r.responseEnd > (performance.now() - 200)).length"
)

var errWaitTimeout = errors.New("wait timed out")

// poll calls cond every interval until it returns true, an error, the
// timeout elapses (errWaitTimeout) or ctx ends.
func poll(ctx context.Context, timeout, interval time.Duration, cond func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return errWaitTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func waitForPageLoad(ctx context.Context, b Browser, timeout, interval time.Duration) error {
	return poll(ctx, timeout, interval, func() (bool, error) {
		v, err := b.ExecuteScript(readyStateScript)
		if err != nil {
			return false, err
		}
		s, _ := v.(string)
		return s == "complete", nil
	})
}

// waitForNetworkIdle waits until no resource finished loading in the last 200ms.
func waitForNetworkIdle(ctx context.Context, b Browser, timeout, interval time.Duration) error {
	return poll(ctx, timeout, interval, func() (bool, error) {
		v, err := b.ExecuteScript(networkIdleScript)
		if err != nil {
			return false, err
		}
		return asInt(v) == 0, nil
	})
}

// asInt converts a script result; JSON numbers decode as float64.
func asInt(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	}
	return 0
}
