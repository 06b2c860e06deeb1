package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// Wire format: the client writes one verb line; the server answers with a
// status line and an optional body that runs until it closes the connection.
const (
	residentHost = "127.0.0.1"

	verbPing      = "PING"
	statusPong    = "PONG"
	statusSuccess = "SUCCESS"
	statusError   = "ERROR"
)

type reply struct {
	status string
	body   string
}

// result maps a command reply to the text or error the caller sees.
func (r reply) result() (string, error) {
	switch r.status {
	case statusSuccess:
		return r.body, nil
	case statusError:
		return "", errors.New(r.body)
	}
	return "", fmt.Errorf("unexpected reply %q", r.status)
}

func residentAddr(port int) string {
	return net.JoinHostPort(residentHost, strconv.Itoa(port))
}

// exchange sends one verb and reads the whole reply.
func exchange(ctx context.Context, addr, verb string, timeout time.Duration) (reply, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return reply{}, err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := io.WriteString(conn, verb+"\n"); err != nil {
		return reply{}, err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return reply{}, err
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return reply{}, err
	}
	return reply{status: strings.TrimSuffix(status, "\n"), body: string(body)}, nil
}

func writeReply(w *bufio.Writer, status, body string) error {
	if _, err := w.WriteString(status + "\n" + body); err != nil {
		return err
	}
	return w.Flush()
}

// timeoutFrom is what is left of ctx, or def when ctx has no deadline.
func timeoutFrom(ctx context.Context, def time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return def
}
