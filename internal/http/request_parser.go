package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"anggaran/internal/core"
	"anggaran/internal/pipeline"
	"anggaran/internal/source"
)

const (
	// defaultCompare is the size of the comparison set when none is chosen.
	defaultCompare = 5
	maxCompare     = 10
	maxSearchLen   = 200
	// maxCompareInput bounds the names read from one request.
	maxCompareInput = 100
)

// Form field names shared with web/templates/dashboard.html.
const (
	fieldSettings      = "settings"
	fieldUseDB         = "use_db"
	fieldDarkMode      = "dark_mode"
	fieldDriver        = "driver"
	fieldHost          = "host"
	fieldPort          = "port"
	fieldUser          = "username"
	fieldPassword      = "password"
	fieldDatabase      = "database"
	fieldSearch        = "search"
	fieldCategory      = "category"
	fieldCategoriesSet = "categories_set"
	fieldCategoryMode  = "categories_mode"
	fieldCompare       = "compare"
)

// Defaults are the configured settings a request may override.
type Defaults struct {
	UseExternal bool
	Conn        source.ConnParams
	DarkMode    bool
}

// DashboardParams is one parsed dashboard request.
type DashboardParams struct {
	Request  pipeline.Request
	DarkMode bool
	// Compare lists the department names chosen for the comparison chart.
	Compare []string
}

// ParseDashboardParams reads settings and filters from form values. Source
// settings and the theme fall back to d unless the settings form was
// submitted; unchecked boxes are only meaningful in that case.
func ParseDashboardParams(form url.Values, d Defaults) DashboardParams {
	p := DashboardParams{
		Request: pipeline.Request{
			Settings: pipeline.Settings{UseExternal: d.UseExternal, Conn: d.Conn},
			Search:   truncate(sanitizeInput(form.Get(fieldSearch)), maxSearchLen),
		},
		DarkMode: d.DarkMode,
	}
	if form.Get(fieldSettings) != "" {
		p.Request.Settings.UseExternal = checked(form.Get(fieldUseDB))
		p.Request.Settings.Conn = ParseConnParams(form, d.Conn)
		p.DarkMode = checked(form.Get(fieldDarkMode))
	}

	if form.Get(fieldCategoriesSet) != "" || len(form[fieldCategory]) > 0 {
		p.Request.CategoriesSelected = true
		p.Request.Categories = nonEmpty(form[fieldCategory])
		p.Request.ResetUnknownCategories = true
		switch m := core.Mode(form.Get(fieldCategoryMode)); m {
		case core.ModeStatic, core.ModeExternal:
			p.Request.CategoriesMode = m
		}
	}
	p.Compare = nonEmpty(form[fieldCompare])
	if len(p.Compare) > maxCompareInput {
		p.Compare = p.Compare[:maxCompareInput]
	}
	return p
}

// ParseConnParams overlays the connection fields of form on base. A blank
// password keeps base's password only while driver, host, port and user
// are unchanged; other blank fields stay blank so the pipeline can report
// them as missing. A sqlite path is accepted only when it is the
// configured one.
func ParseConnParams(form url.Values, base source.ConnParams) source.ConnParams {
	p := base
	if v := strings.ToLower(sanitizeInput(form.Get(fieldDriver))); v != "" {
		p.Driver = source.Driver(v)
	}
	p.Host = sanitizeInput(form.Get(fieldHost))
	p.Port = 0
	if v := sanitizeInput(form.Get(fieldPort)); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			p.Port = port
		}
	}
	p.User = sanitizeInput(form.Get(fieldUser))
	p.Name = sanitizeInput(form.Get(fieldDatabase))
	p.Password = ""
	if pw := form.Get(fieldPassword); pw != "" {
		p.Password = pw
	} else if sameServer(p, base) {
		p.Password = base.Password
	}
	if !p.Driver.Networked() {
		p.Host, p.Port, p.User, p.Password = "", 0, "", ""
	}
	if p.Driver == source.DriverSQLite && (base.Driver != source.DriverSQLite || p.Name != base.Name) {
		p.Name = ""
	}
	return p
}

// sameServer reports whether p targets the server and account of base.
func sameServer(p, base source.ConnParams) bool {
	return p.Driver == base.Driver &&
		p.Host == base.Host &&
		p.Port == base.Port &&
		p.User == base.User
}

// RequireMethod returns a 405 response unless r uses one of methods.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// ParseFormOrFail parses query and body; the error response is nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
