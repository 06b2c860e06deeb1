package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"game-translator/src/singleinstance"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"game-translator", "-toggle", "-profile", "jrpg"},
			out:  []string{"game-translator", "--toggle", "--profile", "jrpg"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"game-translator", "-env=/tmp/.env", "-status=true"},
			out:  []string{"game-translator", "--env=/tmp/.env", "--status=true"},
		},
		{
			name: "Leaves short and unknown flags unchanged",
			in:   []string{"game-translator", "-v", "--copy", "-x"},
			out:  []string{"game-translator", "-v", "--copy", "-x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--status", "--env", "/tmp/.env", "--profile", "jrpg"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.status || opts.envFile != "/tmp/.env" || opts.profile != "jrpg" {
		t.Fatalf("unexpected options %+v", *opts)
	}
	if c, ok := opts.delegation(); !ok || c != singleinstance.CmdStatus {
		t.Fatalf("delegation = %q, %v", c, ok)
	}
}

func TestDelegation(t *testing.T) {
	tests := []struct {
		opts mainOptions
		want singleinstance.Command
		ok   bool
	}{
		{mainOptions{toggle: true}, singleinstance.CmdAction, true},
		{mainOptions{configure: true}, singleinstance.CmdConfigure, true},
		{mainOptions{copy: true}, singleinstance.CmdCopy, true},
		{mainOptions{}, "", false},
	}
	for _, tt := range tests {
		got, ok := tt.opts.delegation()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%+v: got %q %v", tt.opts, got, ok)
		}
	}
}

type fakeClient struct {
	delegated bool
	text      string
	err       error
	sent      singleinstance.Command
}

func (f *fakeClient) Send(ctx context.Context, cmd singleinstance.Command) (bool, string, error) {
	f.sent = cmd
	return f.delegated, f.text, f.err
}

func TestHandleDelegation_Delegated(t *testing.T) {
	client := &fakeClient{delegated: true, text: "state: started"}
	var out bytes.Buffer
	fallbackCalled := false

	err := handleDelegation(context.Background(), client, singleinstance.CmdStatus, &out, func() error {
		fallbackCalled = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.sent != singleinstance.CmdStatus {
		t.Fatalf("sent %q", client.sent)
	}
	if fallbackCalled {
		t.Fatal("Did not expect fallback when delegation succeeds")
	}
	if out.String() != "state: started\n" {
		t.Fatalf("output %q", out.String())
	}
}

func TestHandleDelegation_NoResidentFallback(t *testing.T) {
	client := &fakeClient{delegated: false}
	err := handleDelegation(context.Background(), client, singleinstance.CmdCopy, &bytes.Buffer{}, func() error {
		return errNoResident
	})
	if !errors.Is(err, errNoResident) {
		t.Fatalf("expected errNoResident, got %v", err)
	}
}

func TestHandleDelegation_ResidentError(t *testing.T) {
	client := &fakeClient{err: errors.New("nothing translated yet")}
	fallbackCalled := false
	err := handleDelegation(context.Background(), client, singleinstance.CmdCopy, &bytes.Buffer{}, func() error {
		fallbackCalled = true
		return nil
	})
	if err == nil || fallbackCalled {
		t.Fatalf("err=%v fallback=%v", err, fallbackCalled)
	}
}
