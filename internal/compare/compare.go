// Package compare runs one schema comparison between the local and remote
// endpoints of a configuration.
package compare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sadopc/schemadiff/internal/adapter"
	"github.com/sadopc/schemadiff/internal/audit"
	"github.com/sadopc/schemadiff/internal/config"
	"github.com/sadopc/schemadiff/internal/diff"
	"github.com/sadopc/schemadiff/internal/history"
	"github.com/sadopc/schemadiff/internal/middleware"
	"github.com/sadopc/schemadiff/internal/schema"
)

// Comparison sides.
const (
	SideLocal  = "local"
	SideRemote = "remote"
)

var errConnectionTest = errors.New("connection test failed; check the credentials and that the server is running")

// EndpointInfo is the credential-free description of one side.
type EndpointInfo struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Adapter string `json:"adapter"`
}

// Result is the outcome of a successful comparison.
type Result struct {
	Local    schema.Tree
	Remote   schema.Tree
	Statuses map[string]bool
	Report   diff.Report

	LocalInfo     EndpointInfo
	RemoteInfo    EndpointInfo
	LocalVersion  string
	RemoteVersion string
	Duration      time.Duration
}

// Counts returns how many schemas are identical and how many differ.
func (r *Result) Counts() (identical, different int) {
	for _, ok := range r.Statuses {
		if ok {
			identical++
		} else {
			different++
		}
	}
	return identical, different
}

// Identical reports whether no schema differs.
func (r *Result) Identical() bool {
	_, different := r.Counts()
	return different == 0
}

// Engine compares the two endpoints of a configuration. An Engine holds no
// per-run state and may be shared by concurrent callers.
type Engine struct {
	cfg     config.Config
	logger  *slog.Logger
	audit   *audit.Logger
	history *history.Store
}

// Option configures an Engine.
type Option func(*Engine)

// WithAudit records every run in the audit log.
func WithAudit(l *audit.Logger) Option {
	return func(e *Engine) { e.audit = l }
}

// WithHistory records every run in the history store.
func WithHistory(s *history.Store) Option {
	return func(e *Engine) { e.history = s }
}

// New returns an Engine for cfg.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) timeout() time.Duration {
	if e.cfg.Compare.Timeout > 0 {
		return e.cfg.Compare.Timeout
	}
	return config.DefaultTimeout
}

// Run performs one comparison. Any failure on either side aborts the run; no
// partial result is returned. Connections opened before a failure are closed
// before Run returns.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := e.run(ctx)
	elapsed := time.Since(start)
	if res != nil {
		res.Duration = elapsed
	}
	e.record(ctx, res, err, elapsed)
	return res, err
}

func (e *Engine) run(ctx context.Context) (*Result, error) {
	// Both endpoints are validated before any network traffic.
	localAd, err := adapter.Resolve(e.cfg.Local)
	if err != nil {
		return nil, tagSide(err, SideLocal)
	}
	remoteAd, err := adapter.Resolve(e.cfg.Remote)
	if err != nil {
		return nil, tagSide(err, SideRemote)
	}

	localConn, err := e.connect(ctx, localAd, e.cfg.Local, SideLocal)
	if err != nil {
		return nil, err
	}
	defer e.close(localConn, SideLocal)

	remoteConn, err := e.connect(ctx, remoteAd, e.cfg.Remote, SideRemote)
	if err != nil {
		return nil, err
	}
	defer e.close(remoteConn, SideRemote)

	localEntries, remoteEntries, err := e.listBoth(ctx, localConn, remoteConn)
	if err != nil {
		return nil, err
	}

	localTree := schema.Group(localEntries)
	remoteTree := schema.Group(remoteEntries)
	d := diff.Compare(localTree, remoteTree)

	return &Result{
		Local:         localTree,
		Remote:        remoteTree,
		Statuses:      d.Statuses,
		Report:        d.Report,
		LocalInfo:     info(localAd, e.cfg.Local),
		RemoteInfo:    info(remoteAd, e.cfg.Remote),
		LocalVersion:  e.version(ctx, localConn, SideLocal),
		RemoteVersion: e.version(ctx, remoteConn, SideRemote),
	}, nil
}

func info(a adapter.Adapter, ep config.Endpoint) EndpointInfo {
	return EndpointInfo{Host: ep.Host, Port: adapter.PortOrDefault(a, ep), Adapter: a.DisplayName()}
}

// connect opens and verifies one side within the configured timeout.
func (e *Engine) connect(ctx context.Context, a adapter.Adapter, ep config.Endpoint, side string) (adapter.Connection, error) {
	cctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	e.logger.Debug("connecting", "side", side, "endpoint", ep.Display())
	conn, err := a.Connect(cctx, ep)
	if err != nil {
		return nil, tagSide(err, side)
	}
	if !conn.TestConnection(cctx) {
		_ = conn.Close()
		ce := adapter.NewConnectError(a, ep, errConnectionTest)
		ce.Side = side
		return nil, ce
	}
	return conn, nil
}

func (e *Engine) close(conn adapter.Connection, side string) {
	if err := conn.Close(); err != nil {
		e.logger.Warn("close connection", "side", side, "error", err)
	}
}

// listBoth reads both catalogs. Both results are complete before it returns.
func (e *Engine) listBoth(ctx context.Context, local, remote adapter.Connection) (l, r []schema.CatalogEntry, err error) {
	if !e.cfg.Compare.Concurrent {
		if l, err = e.list(ctx, local, SideLocal); err != nil {
			return nil, nil, err
		}
		if r, err = e.list(ctx, remote, SideRemote); err != nil {
			return nil, nil, err
		}
		return l, r, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		l, err = e.list(gctx, local, SideLocal)
		return err
	})
	g.Go(func() error {
		var err error
		r, err = e.list(gctx, remote, SideRemote)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func (e *Engine) list(ctx context.Context, conn adapter.Connection, side string) ([]schema.CatalogEntry, error) {
	qctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	entries, err := conn.ListColumns(qctx)
	if err != nil {
		return nil, tagSide(err, side)
	}
	e.logger.Debug("catalog read", "side", side, "tables", len(entries))
	return entries, nil
}

func (e *Engine) version(ctx context.Context, conn adapter.Connection, side string) string {
	vctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	v := conn.Version(vctx)
	if v == adapter.UnknownVersion {
		e.logger.Debug("version lookup failed", "side", side)
	}
	return v
}

// tagSide attributes err to a side. Connection and query errors carry the
// side in their message; anything else is prefixed.
func tagSide(err error, side string) error {
	var (
		ce *adapter.ConnectError
		qe *adapter.QueryError
	)
	if errors.As(err, &ce) || errors.As(err, &qe) {
		return adapter.WithSide(err, side)
	}
	return fmt.Errorf("%s: %w", side, err)
}

// record writes the run to the history store and audit log, if configured.
// Failures here are logged and never change the run's outcome.
func (e *Engine) record(ctx context.Context, res *Result, runErr error, elapsed time.Duration) {
	run := history.Run{
		RanAt:      time.Now().UTC(),
		Local:      e.cfg.Local.Display(),
		Remote:     e.cfg.Remote.Display(),
		DurationMS: elapsed.Milliseconds(),
	}
	if res != nil {
		run.IdenticalSchemas, run.DifferentSchemas = res.Counts()
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	// The caller may already be gone; the record is still written.
	rctx := context.WithoutCancel(ctx)
	if e.history != nil {
		if err := e.history.Add(rctx, run); err != nil {
			e.logger.Warn("history add", "error", err)
		}
	}
	if err := e.audit.Log(audit.Entry{
		Timestamp:        run.RanAt,
		RequestID:        middleware.RequestIDFromContext(ctx),
		Local:            run.Local,
		Remote:           run.Remote,
		DurationMS:       run.DurationMS,
		IdenticalSchemas: run.IdenticalSchemas,
		DifferentSchemas: run.DifferentSchemas,
		Error:            run.Error,
	}); err != nil {
		e.logger.Warn("audit log", "error", err)
	}

	if runErr != nil {
		e.logger.Warn("comparison failed", "error", runErr, "duration", elapsed)
		return
	}
	e.logger.Info("comparison finished",
		"identical", run.IdenticalSchemas,
		"different", run.DifferentSchemas,
		"duration", elapsed,
	)
}
