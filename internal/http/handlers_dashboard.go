package http

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"strings"
	"time"

	"anggaran/internal/core"
	"anggaran/internal/export"
	applog "anggaran/internal/log"
)

// handleIndex renders the dashboard. Settings are posted so that typed
// passwords never appear in URLs; filters work with GET as well.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	logger := applog.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	params := ParseDashboardParams(r.Form, s.defaults)
	res := s.run(r.Context(), params.Request)
	view := buildDashboardView(res, params)

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard_page", view); err != nil {
		logger.ErrorContext(r.Context(), "Dashboard template execution failed",
			applog.FieldOperation, applog.OpRender,
			applog.FieldRunID, res.RunID,
			applog.FieldError, err.Error())
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// handleCharts returns the chart series for the query's filters as JSON.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	params := ParseDashboardParams(r.URL.Query(), s.defaults)
	res := s.run(r.Context(), params.Request)
	if err := writeJSON(w, http.StatusOK, buildCharts(res, params.Compare)); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Chart data not written", applog.FieldError, err.Error())
	}
}

// handleExport streams the filtered department table as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	format, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		NotFoundError("Unknown export format").Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentExport)
	params := ParseDashboardParams(r.Form, s.defaults)
	res := s.run(r.Context(), params.Request)

	var buf bytes.Buffer
	if err := export.Write(&buf, format, res.Tables, core.SortByCode(res.Filtered)); err != nil {
		logger.ErrorContext(r.Context(), "Export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldFormat, string(format),
			applog.FieldError, err.Error())
		InternalServerError("Export failed").Write(w)
		return
	}
	s.appMetrics.exports.Add(1)
	logger.InfoContext(r.Context(), "Export generated",
		applog.FieldOperation, applog.OpExport,
		applog.FieldFormat, string(format),
		applog.FieldRunID, res.RunID,
		applog.FieldRows, len(res.Filtered))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.FileName()+`"`)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

type connectionTestView struct {
	OK      bool
	Level   string
	Message string
}

// handleConnectionTest opens and pings the connection described by the
// settings form and answers with an HTMX fragment.
func (s *Server) handleConnectionTest(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	s.appMetrics.connectionTests.Add(1)
	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentSource)
	conn := ParseConnParams(r.Form, s.defaults.Conn)

	view := connectionTestView{Level: string(core.NoticeInfo)}
	switch missing := conn.Missing(); {
	case len(missing) > 0:
		view.Message = "Connection settings incomplete (missing " + strings.Join(missing, ", ") + ")"
	case s.pinger == nil:
		view.Message = "Connection testing is not available"
	default:
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx, conn); err != nil {
			view.Level = string(core.NoticeError)
			view.Message = "Connection failed: " + err.Error()
			logger.WarnContext(r.Context(), "Connection test failed",
				applog.FieldOperation, applog.OpPing,
				applog.FieldDriver, conn.Driver.String(),
				applog.FieldAddress, conn.Address(),
				applog.FieldError, err.Error())
		} else {
			view.OK = true
			view.Level = string(core.NoticeSuccess)
			view.Message = "Connected to " + conn.String()
			logger.InfoContext(r.Context(), "Connection test succeeded",
				applog.FieldOperation, applog.OpPing,
				applog.FieldDriver, conn.Driver.String(),
				applog.FieldAddress, conn.Address())
		}
	}

	resp := NewHTMXResponse().
		TriggerConnectionTested(view.OK, conn.Driver.String()).
		Header("Cache-Control", "no-store")
	if view.OK {
		resp.TriggerNotification(NotificationSuccess, view.Message, 3000)
	} else {
		resp.TriggerNotification(NotificationType(view.Level), view.Message, 5000)
	}

	body := `<div class="notice notice--` + view.Level + `">` + template.HTMLEscapeString(view.Message) + `</div>`
	if s.templates != nil {
		var buf bytes.Buffer
		if err := s.templates.ExecuteTemplate(&buf, "connection_test", view); err == nil {
			body = buf.String()
		} else {
			logger.ErrorContext(r.Context(), "Connection test template failed", applog.FieldError, err.Error())
		}
	}
	resp.BodyHTML(body).Write(w)
}
