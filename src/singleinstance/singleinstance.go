package singleinstance

// Single-instance ownership and command delegation to the resident app.

import (
	"context"
	"strings"
)

// Command is the one line a client sends after connecting.
type Command string

const (
	CmdAction    Command = "ACTION"
	CmdConfigure Command = "CONFIGURE"
	CmdStatus    Command = "STATUS"
	CmdCopy      Command = "COPY"
)

// ParseCommand accepts a command name in any case. Unknown names return false.
func ParseCommand(s string) (Command, bool) {
	c := Command(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CmdAction, CmdConfigure, CmdStatus, CmdCopy:
		return c, true
	}
	return "", false
}

// Server owns the TCP endpoint and answers delegated commands.
type Server interface {
	// Start begins listening on the first port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	Request() Request
	// RespondSuccess sends success followed by optional text.
	RespondSuccess(text string) error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	Close() error
}

// Request represents a single delegated command.
type Request struct {
	Command Command
}

// Client delegates a command to a resident server.
type Client interface {
	// Send scans the port range for a resident and forwards cmd. If no
	// resident is found, returns delegated=false, err=nil.
	Send(ctx context.Context, cmd Command) (delegated bool, text string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
