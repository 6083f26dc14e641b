package domain

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Target identifies a remote data process. It is a value type: two targets
// are equal when host, port, username and password all match, so a Target
// can be used directly as a map key.
type Target struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewTarget returns a Target without credentials.
func NewTarget(host string, port int) Target {
	return Target{Host: host, Port: port}
}

// Address returns the host:port dial address.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Credentials returns the credential string passed through to the remote
// process: "user:pass", "user", or "" when no username is set.
func (t Target) Credentials() string {
	if t.Username == "" {
		return ""
	}
	if t.Password == "" {
		return t.Username
	}
	return t.Username + ":" + t.Password
}

// String returns a printable form of the target. The password is never included.
func (t Target) String() string {
	if t.Username == "" {
		return t.Address()
	}
	return t.Username + "@" + t.Address()
}

// ParseTarget parses "[user[:password]@]host:port".
func ParseTarget(s string) (Target, error) {
	var t Target
	addr := s
	if i := strings.LastIndex(s, "@"); i >= 0 {
		t.Username, t.Password, _ = strings.Cut(s[:i], ":")
		addr = s[i+1:]
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Target{}, fmt.Errorf("%w: target %q: %w", ErrInvalidArgument, s, err)
	}
	if host == "" {
		return Target{}, fmt.Errorf("%w: target %q: missing host", ErrInvalidArgument, s)
	}
	t.Host = host
	t.Port, err = strconv.Atoi(port)
	if err != nil || t.Port <= 0 || t.Port > 65535 {
		return Target{}, fmt.Errorf("%w: target %q: bad port %q", ErrInvalidArgument, s, port)
	}
	return t, nil
}
