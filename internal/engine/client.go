// Package engine talks to the downstream streaming engine's plain-text
// control socket, currently just the admin-triggered skip command.
package engine

import (
	"fmt"
	"net"
	"time"
)

// Client dials the streaming engine's control port to issue commands.
type Client struct {
	addr    string
	timeout time.Duration
}

// New builds a Client for the given "host:port" control address.
func New(addr string, timeout time.Duration) *Client {
	return &Client{addr: addr, timeout: timeout}
}

// Skip opens a TCP connection, sends the flush-and-skip command, drains
// up to 1024 bytes of response, and closes. Callers should clear
// last_returned_track_id before calling Skip, so the Scheduler doesn't
// exclude the track it's about to be skipped past.
func (c *Client) Skip() error {
	conn, err := net.DialTimeout("tcp", c.addr, c.timeout)
	if err != nil {
		return fmt.Errorf("engine: dial %s: %w", c.addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("engine: set deadline: %w", err)
	}

	if _, err := conn.Write([]byte("dynamic.flush_and_skip\nquit\n")); err != nil {
		return fmt.Errorf("engine: write command: %w", err)
	}

	buf := make([]byte, 1024)
	// Best-effort drain; the engine may close the connection before
	// sending anything, which is not itself an error.
	_, _ = conn.Read(buf)

	return nil
}
