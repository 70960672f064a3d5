package adapter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/schemadiff/internal/config"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnection    = errors.New("connection error")
	ErrQuery         = errors.New("query error")
	ErrNotConnected  = errors.New("not connected to database")
)

// ConfigError reports an unusable configuration: unknown adapter, missing
// field, or a backend that is not implemented. It is raised before any
// connection attempt.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Reason }

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// NotImplemented returns the ConfigError used by declared-but-unbuilt backends.
func NotImplemented(name string) error {
	return &ConfigError{Reason: fmt.Sprintf("%s: backend not implemented", name)}
}

// ConnectError reports a failure to establish or verify a connection. The
// message names the side, backend, host, port and database, never the
// credentials.
type ConnectError struct {
	Side    string // "local" or "remote"; may be empty
	Adapter string
	Host    string
	Port    int
	DBName  string
	Err     error
}

// NewConnectError builds a ConnectError for ep, scrubbing ep.Password from the
// driver error text.
func NewConnectError(a Adapter, ep config.Endpoint, err error) *ConnectError {
	return &ConnectError{
		Adapter: a.DisplayName(),
		Host:    ep.Host,
		Port:    PortOrDefault(a, ep),
		DBName:  ep.DBName,
		Err:     redact(err, ep.Password),
	}
}

func (e *ConnectError) Error() string {
	var b strings.Builder
	if e.Side != "" {
		b.WriteString(e.Side)
		b.WriteByte(' ')
	}
	b.WriteString("database connection failed")
	if e.Host != "" {
		fmt.Fprintf(&b, ". Host: %s:%d, DB: %s", e.Host, e.Port, e.DBName)
	} else {
		fmt.Fprintf(&b, ". DB: %s", e.DBName)
	}
	if e.Adapter != "" {
		fmt.Fprintf(&b, " (%s)", e.Adapter)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConnectError) Unwrap() error { return e.Err }

func (e *ConnectError) Is(target error) bool { return target == ErrConnection }

// QueryError reports a catalog query that failed after the connection was
// established.
type QueryError struct {
	Side string
	Op   string
	Err  error
}

func (e *QueryError) Error() string {
	prefix := e.Op
	if e.Side != "" {
		prefix = e.Side + " " + e.Op
	}
	return fmt.Sprintf("%s: query failed: %v", prefix, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func (e *QueryError) Is(target error) bool { return target == ErrQuery }

// WithSide tags a ConnectError or QueryError with the comparison side it
// belongs to. Other errors are returned unchanged.
func WithSide(err error, side string) error {
	var ce *ConnectError
	if errors.As(err, &ce) {
		ce.Side = side
		return err
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		qe.Side = side
		return err
	}
	return err
}

// minRedactLen is the shortest password that is scrubbed in place. Shorter
// ones match ordinary words, so the driver text is withheld instead.
const minRedactLen = 4

// redact replaces every occurrence of secret in err's message. The original
// error is dropped from the chain so nothing downstream can print it.
func redact(err error, secret string) error {
	if err == nil || secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	if len(secret) < minRedactLen {
		return errors.New("driver error withheld: it contains the password")
	}
	return errors.New(strings.ReplaceAll(err.Error(), secret, "***"))
}
