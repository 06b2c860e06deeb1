package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49610
	defaultPortEnd   = 49620
)

// PortRange returns the inclusive control port range from CONTROL_PORT_START
// and CONTROL_PORT_END, clamped to [1024, 65535]. Unset or invalid values
// fall back to the defaults.
func PortRange() (start, end int) {
	start = envPort("CONTROL_PORT_START", defaultPortStart)
	end = envPort("CONTROL_PORT_END", defaultPortEnd)
	start = max(start, 1024)
	end = min(end, 65535)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func envPort(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}
