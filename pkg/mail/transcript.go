package mail

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// transcriptConn mirrors the plaintext SMTP conversation to the debug log.
// Once STARTTLS is negotiated the bytes on the wire are ciphertext, so
// recording is paused.
type transcriptConn struct {
	net.Conn

	mu     sync.Mutex
	log    *zap.Logger
	out    io.Writer
	paused bool
}

func newTranscriptConn(conn net.Conn, log *zap.Logger, out io.Writer) *transcriptConn {
	return &transcriptConn{Conn: conn, log: log, out: out}
}

func (c *transcriptConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.record("SERVER", p[:n])
	}
	return n, err
}

func (c *transcriptConn) Write(p []byte) (int, error) {
	c.record("CLIENT", p)
	return c.Conn.Write(p)
}

func (c *transcriptConn) pause(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.paused = true
	c.emitLocked("CLIENT", "-- "+reason+" --")
}

func (c *transcriptConn) record(direction string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if direction == "CLIENT" && len(line) > 5 && strings.EqualFold(line[:5], "AUTH ") {
			line = line[:5] + "<credentials hidden>"
		}
		c.emitLocked(direction, line)
	}
}

func (c *transcriptConn) emitLocked(direction, line string) {
	if c.log != nil {
		c.log.Debug("smtp transcript", zap.String("direction", direction), zap.String("line", line))
	}
	if c.out != nil {
		_, _ = fmt.Fprintf(c.out, "%s: %s\n", direction, line)
	}
}
