package player

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"
)

// RC connection parameters
const (
	rcDialRetries    = 10
	rcDialRetryDelay = time.Second
	rcWriteTimeout   = 3 * time.Second
)

// rcSession is a TCP connection to VLC's remote control interface.
type rcSession struct {
	conn   net.Conn
	writer *bufio.Writer
}

// dialRC connects to the RC port, retrying while VLC brings the interface
// up after spawn.
func dialRC(ctx context.Context, port int) (*rcSession, error) {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	dialer := &net.Dialer{Timeout: 2 * time.Second}

	var lastErr error
	for attempt := 0; attempt < rcDialRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(rcDialRetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return &rcSession{conn: conn, writer: bufio.NewWriter(conn)}, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("rc interface unreachable at %s: %w", addr, lastErr)
}

// swapTo clears the in-player playlist and enqueues the new target, keeping
// loop mode on. The renderer window never closes, so no minimize/flicker.
func (s *rcSession) swapTo(target string) error {
	commands := []string{
		"clear",
		"add " + target,
		"loop on",
		"play",
	}
	for _, cmd := range commands {
		if err := s.send(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (s *rcSession) send(command string) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(rcWriteTimeout)); err != nil {
		return err
	}
	if _, err := s.writer.WriteString(command + "\n"); err != nil {
		return fmt.Errorf("rc command %q failed: %w", command, err)
	}
	return s.writer.Flush()
}

func (s *rcSession) close() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
}
