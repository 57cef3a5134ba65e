package port

import (
	"net"
	"strconv"
	"time"
)

// DefaultHost is the host every liveness probe targets unless configured
// otherwise.
const DefaultHost = "localhost"

// defaultProbeTimeout bounds a single connect attempt. A closed port on
// localhost is refused immediately, so the timeout only matters for
// filtered ports or unusual host settings.
const defaultProbeTimeout = 400 * time.Millisecond

// Prober reports whether something is already listening on a host port.
//
// It is the only capability the Resolver consumes. Implementations are
// treated as a boolean oracle: a single true means "in use", a single
// false means "free", with no retry or debouncing.
type Prober interface {
	IsPortOpen(port int, host string) bool
}

// Scanner is the default Prober. It checks ports with a TCP connect
// attempt: if the dial succeeds someone is listening and the port is in
// use; refused or timed-out dials mean the port is free.
//
// Connect semantics (rather than trying to bind the port ourselves) match
// what a container runtime will run into when it publishes the port: a
// listener on the loopback interface is a conflict, regardless of which
// process or user owns it.
type Scanner struct {
	// timeout bounds each connect attempt.
	timeout time.Duration
}

// NewScanner creates a Scanner with the given per-probe timeout.
// A zero or negative timeout selects defaultProbeTimeout.
func NewScanner(timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Scanner{timeout: timeout}
}

// IsPortOpen reports whether a TCP listener accepts connections on
// host:port. Ports outside 1-65535 are reported as not open; the dial
// would fail anyway and the caller gets a deterministic answer.
func (s *Scanner) IsPortOpen(port int, host string) bool {
	if port < 1 || port > 65535 {
		return false
	}
	if host == "" {
		host = DefaultHost
	}

	// net.JoinHostPort handles IPv6 literals ("::1") correctly, which
	// plain string concatenation would not.
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return false
	}
	// We only needed to know whether the connect succeeded.
	_ = conn.Close()
	return true
}
