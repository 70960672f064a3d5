// Package audit appends one JSON line per comparison run.
package audit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Entry records one comparison run. Endpoints are display strings and never
// carry credentials.
type Entry struct {
	Timestamp        time.Time `json:"timestamp"`
	RequestID        string    `json:"request_id,omitempty"`
	Local            string    `json:"local"`
	Remote           string    `json:"remote"`
	DurationMS       int64     `json:"duration_ms"`
	IdenticalSchemas int       `json:"identical_schemas"`
	DifferentSchemas int       `json:"different_schemas"`
	Error            string    `json:"error,omitempty"`
}

// Logger writes Entries to a JSON Lines file.
type Logger struct {
	mu       sync.Mutex
	f        *os.File
	enc      *json.Encoder
	path     string
	maxBytes int64
}

// New opens path for appending, creating parent directories (0o700) and the
// file (0o600) as needed. When maxSizeMB > 0 the file is rotated to path.1
// once it grows past that size.
func New(path string, maxSizeMB int) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("audit: create dir: %w", err)
	}
	l := &Logger{path: path, maxBytes: int64(maxSizeMB) * 1024 * 1024}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Logger) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("audit: open file: %w", err)
	}
	l.f = f
	l.enc = json.NewEncoder(f)
	return nil
}

// Log appends e. Endpoint strings and the error text are sanitized first.
// Log is safe for concurrent use and a no-op on a nil Logger.
func (l *Logger) Log(e Entry) error {
	if l == nil {
		return nil
	}
	e.Local = SanitizeDSN(e.Local)
	e.Remote = SanitizeDSN(e.Remote)
	e.Error = SanitizeDSN(e.Error)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return fmt.Errorf("audit: log closed")
	}
	if err := l.enc.Encode(e); err != nil {
		return fmt.Errorf("audit: write: %w", err)
	}
	if l.maxBytes > 0 {
		return l.rotateIfNeeded()
	}
	return nil
}

// Close closes the file. It is a no-op on a nil Logger.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

func (l *Logger) rotateIfNeeded() error {
	info, err := l.f.Stat()
	if err != nil || info.Size() < l.maxBytes {
		return nil
	}
	_ = l.f.Close()
	l.f = nil
	if err := os.Rename(l.path, l.path+".1"); err != nil {
		return fmt.Errorf("audit: rotate: %w", err)
	}
	return l.open()
}

var urlSchemes = []string{"postgres://", "postgresql://", "mysql://", "mariadb://", "sqlserver://", "mssql://"}

// SanitizeDSN masks credentials in a connection string or in free text that
// embeds one.
func SanitizeDSN(s string) string {
	lower := strings.ToLower(s)
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(lower, scheme) {
			u, err := url.Parse(s)
			if err != nil {
				break
			}
			if u.User != nil {
				u.User = url.User("***")
			}
			return u.String()
		}
	}
	s = reURLCreds.ReplaceAllString(s, "://***@")
	s = reMySQLCreds.ReplaceAllString(s, "***@tcp(")
	s = rePassword.ReplaceAllString(s, "password=***")
	return s
}

var (
	reURLCreds   = regexp.MustCompile(`://[^/@\s]+@`)
	reMySQLCreds = regexp.MustCompile(`[^\s@]+@tcp\(`)
	rePassword   = regexp.MustCompile(`(?i)password=[^\s&]+`)
)
