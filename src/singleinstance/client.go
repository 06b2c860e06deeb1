package singleinstance

import (
	"context"
	"time"
)

const (
	pingTimeout = 300 * time.Millisecond
	sendTimeout = 2 * time.Second
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, cmd Command) (bool, string, error) {
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return false, "", nil
	}
	r, err := exchange(ctx, residentAddr(port), string(cmd), timeoutFrom(ctx, sendTimeout))
	if err != nil {
		return true, "", err
	}
	text, err := r.result()
	return true, text, err
}

// DetectResidentPort scans the control port range and returns the first
// port whose listener answers PING with PONG.
func DetectResidentPort(ctx context.Context) (int, bool) {
	timeout := min(timeoutFrom(ctx, pingTimeout), pingTimeout)
	start, end := PortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return 0, false
		}
		r, err := exchange(ctx, residentAddr(port), verbPing, timeout)
		if err == nil && r.status == statusPong {
			return port, true
		}
	}
	return 0, false
}
