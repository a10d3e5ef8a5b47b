// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"testing"
	"time"
)

// DefaultWait bounds each Expect call that does not pass its own timeout.
const DefaultWait = 3 * time.Second

var ansiPattern = regexp.MustCompile("\033\\[[0-9;]*m")

// TelnetClient is a line-oriented Telnet client for integration tests. Text
// it has read but not yet matched is kept for the next Expect.
type TelnetClient struct {
	t       *testing.T
	conn    net.Conn
	pending string
}

// NewTelnetClient dials addr and registers a cleanup that closes the connection.
//
// Precondition: addr must be a "host:port" with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{t: t, conn: conn}
}

// Expect reads until substr appears in the plain text (ANSI colour and
// Telnet commands removed) and returns everything up to and including it.
//
// Precondition: substr must be non-empty.
func (c *TelnetClient) Expect(substr string) string {
	c.t.Helper()
	return c.ExpectWithin(substr, DefaultWait)
}

// ExpectWithin is Expect with an explicit timeout.
func (c *TelnetClient) ExpectWithin(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	buf := make([]byte, 1024)
	for {
		// Stripping the whole buffer copes with sequences split across reads.
		plain := Plain(c.pending)
		if i := strings.Index(plain, substr); i >= 0 {
			end := i + len(substr)
			c.pending = plain[end:]
			return plain[:end]
		}
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.pending += string(buf[:n])
		}
		if err != nil {
			c.t.Fatalf("waiting for %q: read %q, error: %v", substr, c.pending, err)
		}
	}
}

// Send writes text followed by CRLF.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	_ = c.conn.Close()
}

// Plain strips ANSI colour and Telnet command sequences from s.
func Plain(s string) string {
	s = ansiPattern.ReplaceAllString(s, "")
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != 0xff {
			b.WriteByte(s[i])
			continue
		}
		// IAC WILL/WONT/DO/DONT carry one option byte.
		if i+1 < len(s) && s[i+1] >= 0xfb && s[i+1] <= 0xfe {
			i += 2
		} else {
			i++
		}
	}
	return b.String()
}
