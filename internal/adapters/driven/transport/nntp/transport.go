// Package nntp implements the driven.Transport port against a real NNTP
// server: TLS connect, AUTHINFO USER/PASS, GROUP, and XOVER, per the RFC
// 3977-compatible subset described in spec.md §4.1.
package nntp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
	"github.com/usenet-tools/nntpidx/internal/logger"
)

var _ driven.Transport = (*Transport)(nil)
var _ driven.TransportFactory = (*Factory)(nil)

// Config configures one NNTP endpoint.
type Config struct {
	Host     string
	Port     int
	UseTLS   bool
	User     string
	Password string
	Timeout  time.Duration
}

// Factory constructs Transports bound to one configured endpoint.
type Factory struct {
	cfg Config
}

// NewFactory creates a TransportFactory for the given endpoint config.
func NewFactory(cfg Config) *Factory {
	return &Factory{cfg: cfg}
}

// NewTransport implements driven.TransportFactory.
func (f *Factory) NewTransport() driven.Transport {
	return &Transport{cfg: f.cfg}
}

// Transport is a single NNTP session. It is never shared between
// concurrent callers.
type Transport struct {
	cfg   Config
	conn  net.Conn
	text  *textproto.Conn
	group string
}

// Open establishes the connection, reads the greeting, and authenticates.
func (t *Transport) Open(ctx context.Context) error {
	timeout := t.cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	addr := net.JoinHostPort(t.cfg.Host, strconv.Itoa(t.cfg.Port))
	dialer := &net.Dialer{Timeout: timeout}

	var conn net.Conn
	var err error
	if t.cfg.UseTLS {
		dialConn, dialErr := dialer.DialContext(ctx, "tcp", addr)
		if dialErr != nil {
			return fmt.Errorf("%w: dial %s: %v", domain.ErrTransport, addr, dialErr)
		}
		tlsConn := tls.Client(dialConn, &tls.Config{ServerName: t.cfg.Host, MinVersion: tls.VersionTLS12})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			dialConn.Close()
			return fmt.Errorf("%w: tls handshake: %v", domain.ErrTransport, err)
		}
		conn = tlsConn
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("%w: dial %s: %v", domain.ErrTransport, addr, err)
		}
	}

	_ = conn.SetDeadline(time.Now().Add(timeout))
	t.conn = conn
	t.text = textproto.NewConn(conn)

	if _, _, err := t.readStatus(); err != nil {
		t.Close()
		return fmt.Errorf("%w: greeting: %v", domain.ErrTransport, err)
	}

	if t.cfg.User != "" {
		if err := t.authenticate(); err != nil {
			t.Close()
			return err
		}
	}

	return nil
}

func (t *Transport) authenticate() error {
	code, msg, err := t.command("AUTHINFO USER %s", t.cfg.User)
	if err != nil {
		return fmt.Errorf("%w: authinfo user: %v", domain.ErrTransport, err)
	}
	if code == 281 {
		return nil
	}
	if isAuthFailure(code) {
		return fmt.Errorf("%w: %s", domain.ErrAuth, msg)
	}

	code, msg, err = t.command("AUTHINFO PASS %s", t.cfg.Password)
	if err != nil {
		return fmt.Errorf("%w: authinfo pass: %v", domain.ErrTransport, err)
	}
	if code == 281 {
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrAuth, msg)
}

func isAuthFailure(code int) bool {
	return code == 481 || code == 482 || code == 502
}

// SelectGroup sends GROUP, caching the current group so a redundant
// SelectGroup is a no-op.
func (t *Transport) SelectGroup(_ context.Context, group string) (driven.GroupInfo, error) {
	if t.group == group {
		return driven.GroupInfo{}, nil
	}

	code, msg, err := t.command("GROUP %s", group)
	if err != nil {
		return driven.GroupInfo{}, fmt.Errorf("%w: group: %v", domain.ErrTransport, err)
	}
	if code != 211 {
		return driven.GroupInfo{}, fmt.Errorf("%w: group %s: %s", domain.ErrTransport, group, msg)
	}

	info, err := parseGroupResponse(msg)
	if err != nil {
		return driven.GroupInfo{}, fmt.Errorf("%w: parsing GROUP response: %v", domain.ErrProtocol, err)
	}

	t.group = group
	return info, nil
}

// parseGroupResponse parses "211 <count> <low> <high> <group>".
func parseGroupResponse(msg string) (driven.GroupInfo, error) {
	fields := strings.Fields(msg)
	if len(fields) < 3 {
		return driven.GroupInfo{}, fmt.Errorf("unexpected GROUP response: %q", msg)
	}
	count, err1 := strconv.ParseUint(fields[0], 10, 64)
	low, err2 := strconv.ParseUint(fields[1], 10, 64)
	high, err3 := strconv.ParseUint(fields[2], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return driven.GroupInfo{}, fmt.Errorf("unparseable GROUP response: %q", msg)
	}
	return driven.GroupInfo{EstimatedCount: count, Low: low, High: high}, nil
}

// XOver sends "XOVER low-high" and returns the raw overview lines, with
// dot-unstuffing already applied.
func (t *Transport) XOver(_ context.Context, low, high uint64) ([]string, error) {
	code, msg, err := t.command("XOVER %d-%d", low, high)
	if err != nil {
		return nil, fmt.Errorf("%w: xover: %v", domain.ErrTransport, err)
	}
	if code == 423 {
		return nil, domain.ErrNoSuchRange
	}
	if code != 224 {
		return nil, fmt.Errorf("%w: xover %d-%d: %s", domain.ErrTransport, low, high, msg)
	}

	lines, err := t.text.ReadDotLines()
	if err != nil {
		return nil, fmt.Errorf("%w: reading xover body: %v", domain.ErrTransport, err)
	}
	for i, line := range lines {
		lines[i] = strings.ToValidUTF8(line, "�")
	}
	return lines, nil
}

// Close sends QUIT and closes the socket.
func (t *Transport) Close() error {
	if t.text != nil {
		_, _, _ = t.command("QUIT")
		return t.text.Close()
	}
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

// command writes a CRLF-terminated command and returns the parsed status
// line's code and message.
func (t *Transport) command(format string, args ...any) (int, string, error) {
	id, err := t.text.Cmd(format, args...)
	if err != nil {
		return 0, "", err
	}
	t.text.StartResponse(id)
	defer t.text.EndResponse(id)
	return t.readStatus()
}

func (t *Transport) readStatus() (int, string, error) {
	line, err := t.text.ReadLine()
	if err != nil {
		return 0, "", err
	}
	if len(line) < 3 {
		return 0, "", errors.New("short status line")
	}
	code, err := strconv.Atoi(line[:3])
	if err != nil {
		return 0, "", fmt.Errorf("bad status code in %q: %w", line, err)
	}
	msg := strings.TrimSpace(line[3:])

	logger.Debug("nntp: %d %s", code, msg)
	return code, msg, nil
}
