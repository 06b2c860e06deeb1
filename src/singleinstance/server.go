package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"
)

const requestTimeout = 3 * time.Second

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	mu       sync.Mutex
	lis      net.Listener
	port     int
	incoming chan *tcpConn
}

func newTcpServer() Server { return &tcpServer{incoming: make(chan *tcpConn, 8)} }

// Start claims the first free port of the range. Callers detect a running
// resident first, so a busy port here belongs to some other program.
func (s *tcpServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	start, end := PortRange()
	var errs []error
	for port := start; port <= end; port++ {
		lis, err := net.Listen("tcp", residentAddr(port))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.lis, s.port = lis, port
		log.Printf("singleinstance: listening on %s", lis.Addr())
		go s.acceptLoop(ctx, lis)
		return nil
	}
	return fmt.Errorf("no free control port: %w", errors.Join(errs...))
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *tcpServer) acceptLoop(ctx context.Context, lis net.Listener) {
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		go s.serve(ctx, c)
	}
}

// serve answers PING and rejects unknown verbs itself; commands go to Next.
func (s *tcpServer) serve(ctx context.Context, c net.Conn) {
	_ = c.SetDeadline(time.Now().Add(requestTimeout))
	br := bufio.NewReader(c)
	bw := bufio.NewWriter(c)
	line, err := br.ReadString('\n')
	if err != nil {
		_ = c.Close()
		return
	}
	if strings.TrimSpace(line) == verbPing {
		_ = writeReply(bw, statusPong, "")
		_ = c.Close()
		return
	}
	cmd, ok := ParseCommand(line)
	if !ok {
		log.Printf("singleinstance: unknown request %q from %s", strings.TrimSpace(line), c.RemoteAddr())
		_ = writeReply(bw, statusError, "unknown command")
		_ = c.Close()
		return
	}
	// the command may take a while to answer
	_ = c.SetDeadline(time.Time{})
	select {
	case s.incoming <- &tcpConn{c: c, r: Request{Command: cmd}, w: bw}:
	case <-ctx.Done():
		_ = c.Close()
	}
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case tc := <-s.incoming:
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	err := s.lis.Close()
	s.lis, s.port = nil, 0
	return err
}

type tcpConn struct {
	c net.Conn
	r Request
	w *bufio.Writer
}

func (tc *tcpConn) Request() Request { return tc.r }

func (tc *tcpConn) RespondSuccess(text string) error { return writeReply(tc.w, statusSuccess, text) }

func (tc *tcpConn) RespondError(msg string) error { return writeReply(tc.w, statusError, msg) }

func (tc *tcpConn) Close() error { return tc.c.Close() }
