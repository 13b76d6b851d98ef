package source

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"anggaran/internal/core"
	applog "anggaran/internal/log"
)

// Query is the fixed statement run against the external database.
const Query = `SELECT kode_wilayah AS kode, nama_skpd, anggaran FROM anggaran_2025 WHERE nama_skpd IS NOT NULL AND nama_skpd <> ''`

// DepartmentLoader fetches the department table for a connection.
type DepartmentLoader interface {
	Load(ctx context.Context, p ConnParams) ([]core.Department, error)
}

// Loader opens a fresh connection per call and closes it before returning.
type Loader struct {
	logger  *applog.Logger
	timeout time.Duration
}

// NewLoader returns a Loader. A positive timeout bounds each call on top
// of the caller's context.
func NewLoader(logger *applog.Logger, timeout time.Duration) *Loader {
	return &Loader{
		logger:  logger.WithComponent(applog.ComponentSource),
		timeout: timeout,
	}
}

func (l *Loader) sourceError(kind core.ErrorKind, p ConnParams, op string, err error) *core.SourceError {
	return &core.SourceError{Kind: kind, Driver: p.Driver.String(), Address: p.Address(), Op: op, Err: err}
}

func (l *Loader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.timeout > 0 {
		return context.WithTimeout(ctx, l.timeout)
	}
	return context.WithCancel(ctx)
}

// connect opens and pings the database. The caller owns the returned handle.
func (l *Loader) connect(ctx context.Context, p ConnParams) (*sql.DB, error) {
	if err := p.Validate(); err != nil {
		return nil, l.sourceError(core.KindConnection, p, applog.OpConnect, err)
	}
	if p.Driver == DriverSQLite {
		// Opening a missing file would create it.
		if _, err := os.Stat(p.Name); err != nil {
			return nil, l.sourceError(core.KindConnection, p, applog.OpConnect, err)
		}
	}

	dsn, err := DSN(p)
	if err != nil {
		return nil, l.sourceError(core.KindConnection, p, applog.OpConnect, err)
	}
	db, err := sql.Open(p.Driver.sqlName(), dsn)
	if err != nil {
		return nil, l.sourceError(core.KindConnection, p, applog.OpConnect, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, l.sourceError(core.KindConnection, p, applog.OpPing, err)
	}
	return db, nil
}

// Ping opens a connection, pings it and closes it.
func (l *Loader) Ping(ctx context.Context, p ConnParams) error {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	db, err := l.connect(ctx, p)
	if err != nil {
		return err
	}
	return db.Close()
}

// Load runs Query and returns the raw department rows. Amounts that cannot
// be read as numbers become invalid amounts; the row is kept.
func (l *Loader) Load(ctx context.Context, p ConnParams) ([]core.Department, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	fields := applog.NewFields().WithSource(p.Driver.String(), p.Address(), p.Name)

	db, err := l.connect(ctx, p)
	if err != nil {
		l.logger.WarnContext(ctx, "External source unreachable", fields.WithError(err).ToSlice()...)
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, Query)
	if err != nil {
		return nil, l.sourceError(core.KindQuery, p, applog.OpQuery, err)
	}
	defer rows.Close()

	var out []core.Department
	for rows.Next() {
		var (
			code, name sql.NullString
			raw        any
		)
		if err := rows.Scan(&code, &name, &raw); err != nil {
			return nil, l.sourceError(core.KindQuery, p, applog.OpQuery, fmt.Errorf("scan row %d: %w", len(out)+1, err))
		}
		out = append(out, core.Department{
			Code:   code.String,
			Name:   name.String,
			Amount: core.CoerceAmount(raw),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, l.sourceError(core.KindQuery, p, applog.OpQuery, err)
	}

	l.logger.InfoContext(ctx, "External departments loaded",
		append(fields.ToSlice(), applog.FieldRows, len(out), applog.FieldDuration, time.Since(start).Milliseconds())...)
	return out, nil
}
