package adapter

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sadopc/schemadiff/internal/config"
)

func TestErrors_Distinct(t *testing.T) {
	sentinels := []error{ErrConfiguration, ErrConnection, ErrQuery, ErrNotConnected}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v and %v should be distinct", a, b)
			}
		}
	}
}

func TestConnectError(t *testing.T) {
	a := &mockAdapter{name: "postgres", port: 5432}
	ep := config.Endpoint{Adapter: "postgres", Host: "127.0.0.1", DBName: "app", User: "u", Password: "hunter2"}

	err := NewConnectError(a, ep, fmt.Errorf("dial: password hunter2 rejected"))
	err.Side = "local"

	msg := err.Error()
	for _, want := range []string{"local database connection failed", "127.0.0.1:5432", "DB: app", "POSTGRES"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if strings.Contains(msg, "hunter2") {
		t.Errorf("Error() = %q leaks the password", msg)
	}
	if !errors.Is(err, ErrConnection) {
		t.Error("ConnectError should match ErrConnection")
	}
	if errors.Is(err, ErrQuery) {
		t.Error("ConnectError should not match ErrQuery")
	}
	for e := error(err); e != nil; e = errors.Unwrap(e) {
		if strings.Contains(e.Error(), "hunter2") {
			t.Errorf("error chain leaks the password: %q", e.Error())
		}
	}
}

func TestConnectError_KeepsCauseWithoutSecret(t *testing.T) {
	cause := errors.New("connection refused")
	a := &mockAdapter{name: "postgres", port: 5432}
	err := NewConnectError(a, config.Endpoint{Host: "h", DBName: "d", Password: "pw-not-in-message"}, cause)
	if !errors.Is(err, cause) {
		t.Error("ConnectError should unwrap to its cause when nothing was redacted")
	}
}

func TestConnectError_ShortPassword(t *testing.T) {
	a := &mockAdapter{name: "postgres", port: 5432}
	ep := config.Endpoint{Host: "h", DBName: "d", User: "alice", Password: "a"}
	err := NewConnectError(a, ep, errors.New("password authentication failed for user alice"))

	msg := err.Error()
	if strings.Contains(msg, "***") {
		t.Errorf("Error() = %q, short password scrubbed inside other words", msg)
	}
	if !strings.Contains(msg, "driver error withheld") {
		t.Errorf("Error() = %q, want the driver text withheld", msg)
	}
	if strings.Contains(err.Err.Error(), "alice") {
		t.Errorf("cause %q still carries the driver text", err.Err.Error())
	}

	// Long enough passwords are still scrubbed in place.
	ep.Password = "s3cr"
	err = NewConnectError(a, ep, errors.New("bad password s3cr for alice"))
	if got := err.Err.Error(); got != "bad password *** for alice" {
		t.Errorf("cause = %q", got)
	}
}

func TestConnectError_FileBased(t *testing.T) {
	err := &ConnectError{Adapter: "SQLite", DBName: "/tmp/x.db", Err: errors.New("boom")}
	if got := err.Error(); got != "database connection failed. DB: /tmp/x.db (SQLite): boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestQueryError(t *testing.T) {
	cause := errors.New("relation does not exist")
	err := WithSide(&QueryError{Op: "list columns", Err: cause}, "remote")

	if got := err.Error(); got != "remote list columns: query failed: relation does not exist" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrQuery) || !errors.Is(err, cause) {
		t.Error("QueryError should match ErrQuery and unwrap to its cause")
	}
}

func TestWithSide_Wrapped(t *testing.T) {
	inner := &ConnectError{Host: "h", Port: 1, DBName: "d", Err: errors.New("x")}
	err := WithSide(fmt.Errorf("open: %w", inner), "remote")
	if inner.Side != "remote" {
		t.Errorf("Side = %q, want remote", inner.Side)
	}
	if !strings.Contains(err.Error(), "remote database connection failed") {
		t.Errorf("Error() = %q", err)
	}

	plain := errors.New("plain")
	if WithSide(plain, "local") != plain {
		t.Error("WithSide should return unrelated errors unchanged")
	}
}

func TestConfigError(t *testing.T) {
	err := NotImplemented("mssql")
	if !errors.Is(err, ErrConfiguration) {
		t.Error("NotImplemented should be a configuration error")
	}
	if got := err.Error(); got != "configuration error: mssql: backend not implemented" {
		t.Errorf("Error() = %q", got)
	}
}
