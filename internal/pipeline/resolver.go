// Package pipeline turns request settings and filter inputs into the
// tables and filtered view the dashboard renders.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"anggaran/internal/amqp"
	"anggaran/internal/core"
	"anggaran/internal/dataset"
	applog "anggaran/internal/log"
	"anggaran/internal/source"
)

// Settings are the per-request source settings.
type Settings struct {
	UseExternal bool
	Conn        source.ConnParams
}

// Request is one dashboard evaluation.
type Request struct {
	Settings Settings
	Search   string
	// Categories is honoured only when CategoriesSelected is true; otherwise
	// every category present in the department table is selected.
	Categories         []string
	CategoriesSelected bool
	// CategoriesMode is the mode the selection was made against. A selection
	// made against another mode's table is replaced by every category.
	CategoriesMode core.Mode
	// ResetUnknownCategories replaces a selection naming labels absent from
	// the resolved table by every category.
	ResetUnknownCategories bool
}

// Result is everything the presentation layer needs.
type Result struct {
	RunID     string
	Mode      core.Mode
	Tables    core.Tables
	Notices   []core.Notice
	Available []string
	Criteria  core.Criteria
	Filtered  []core.Department
}

// Fallback reports whether the external source was requested but not used.
func (r Result) Fallback(s Settings) bool {
	return s.UseExternal && r.Mode == core.ModeStatic
}

// Notifier receives a summary of every run.
type Notifier interface {
	PublishRun(ctx context.Context, ev amqp.RunEvent) error
}

// Resolver runs the pipeline. It holds no per-request state.
type Resolver struct {
	static   func() core.Tables
	loader   source.DepartmentLoader
	notifier Notifier
	logger   *applog.Logger
	newID    func() string
}

type Option func(*Resolver)

// WithStatic replaces the built-in dataset provider.
func WithStatic(fn func() core.Tables) Option {
	return func(r *Resolver) { r.static = fn }
}

// WithNotifier publishes a run event after every run.
func WithNotifier(n Notifier) Option {
	return func(r *Resolver) { r.notifier = n }
}

func NewResolver(loader source.DepartmentLoader, logger *applog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		static: dataset.Static,
		loader: loader,
		logger: logger.WithComponent(applog.ComponentPipeline),
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve selects the source and materializes the tables. External failures
// never surface as errors; they become STATIC mode plus notices.
func (r *Resolver) Resolve(ctx context.Context, s Settings) (core.Mode, core.Tables, []core.Notice) {
	static := r.static()

	if !s.UseExternal {
		return core.ModeStatic, static, nil
	}
	if source.Select(s.UseExternal, s.Conn) == core.ModeStatic {
		msg := fmt.Sprintf("Connection settings incomplete (missing %s); using static dataset", strings.Join(s.Conn.Missing(), ", "))
		return core.ModeStatic, static, []core.Notice{{Level: core.NoticeInfo, Message: msg}}
	}

	rows, err := r.loader.Load(ctx, s.Conn)
	if err != nil {
		return core.ModeStatic, static, fallbackNotices(err)
	}
	return core.ModeExternal, core.MergeDepartments(static, rows), []core.Notice{
		{Level: core.NoticeSuccess, Message: fmt.Sprintf("Loaded %d departments from %s", len(rows), s.Conn.Driver)},
	}
}

func fallbackNotices(err error) []core.Notice {
	kind := "unknown"
	var se *core.SourceError
	if errors.As(err, &se) {
		kind = se.Kind.String()
	}
	var msg string
	switch {
	case errors.Is(err, core.ErrConnection):
		msg = "Could not connect to the database: " + err.Error()
	case errors.Is(err, core.ErrQuery):
		msg = "Could not load data from the database: " + err.Error()
	default:
		msg = "External source failed: " + err.Error()
	}
	return []core.Notice{
		{Level: core.NoticeError, Message: msg, Kind: kind},
		{Level: core.NoticeWarning, Message: "Using static dataset"},
	}
}

func staleSelection(req Request, mode core.Mode, available []string) bool {
	if req.CategoriesMode != "" && req.CategoriesMode != mode {
		return true
	}
	if !req.ResetUnknownCategories {
		return false
	}
	present := make(map[string]struct{}, len(available))
	for _, c := range available {
		present[c] = struct{}{}
	}
	for _, c := range req.Categories {
		if _, ok := present[c]; !ok {
			return true
		}
	}
	return false
}

// Run resolves the tables and applies the filters in req.
func (r *Resolver) Run(ctx context.Context, req Request) Result {
	start := time.Now()
	res := Result{RunID: r.newID()}
	res.Mode, res.Tables, res.Notices = r.Resolve(ctx, req.Settings)

	res.Available = core.PresentCategories(res.Tables.Departments)
	selected := res.Available
	if req.CategoriesSelected {
		if staleSelection(req, res.Mode, res.Available) {
			res.Notices = append(res.Notices, core.Notice{
				Level:   core.NoticeInfo,
				Message: "Category selection reset for the current data source",
			})
		} else {
			selected = append([]string(nil), req.Categories...)
		}
	}
	res.Criteria = core.Criteria{Search: strings.TrimSpace(req.Search), Categories: selected}
	res.Filtered = core.Filter(res.Tables.Departments, res.Criteria)

	r.logger.InfoContext(ctx, "Pipeline run completed",
		applog.FieldRunID, res.RunID,
		applog.FieldMode, res.Mode.String(),
		applog.FieldRows, len(res.Tables.Departments),
		"filtered", len(res.Filtered),
		"fallback", res.Fallback(req.Settings),
		applog.FieldDuration, time.Since(start).Milliseconds(),
	)

	if r.notifier != nil {
		ev := amqp.RunEvent{
			RunID:     res.RunID,
			Mode:      res.Mode,
			Requested: req.Settings.UseExternal,
			Fallback:  res.Fallback(req.Settings),
			Rows:      len(res.Tables.Departments),
			Filtered:  len(res.Filtered),
			Notices:   res.Notices,
		}
		if req.Settings.UseExternal {
			ev.Driver = req.Settings.Conn.Driver.String()
			ev.Address = req.Settings.Conn.Address()
		}
		if err := r.notifier.PublishRun(ctx, ev); err != nil {
			r.logger.WarnContext(ctx, "Run event not published", applog.FieldRunID, res.RunID, applog.FieldError, err.Error())
		}
	}
	return res
}
