package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"anggaran/internal/core"
	"anggaran/internal/dataset"
	applog "anggaran/internal/log"
	"anggaran/internal/middleware/ratelimit"
	"anggaran/internal/pipeline"
	"anggaran/internal/source"
)

type fakeLoader struct {
	rows  []core.Department
	err   error
	calls int
}

func (f *fakeLoader) Load(ctx context.Context, p source.ConnParams) ([]core.Department, error) {
	f.calls++
	return f.rows, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context, p source.ConnParams) error { return f.err }

type recordingPinger struct {
	seen []source.ConnParams
}

func (r *recordingPinger) Ping(ctx context.Context, p source.ConnParams) error {
	r.seen = append(r.seen, p)
	return nil
}

func newTestServer(t *testing.T, loader source.DepartmentLoader, pinger Pinger, opts ...func(*Options)) *Server {
	t.Helper()
	o := Options{
		Runner:   pipeline.NewResolver(loader, applog.Discard()),
		Pinger:   pinger,
		Defaults: testDefaults(),
		Logger:   applog.Discard(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	srv := NewServer(":0", o)
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	return srv
}

func do(t *testing.T, srv *Server, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func parseHTML(t *testing.T, rr *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func pageCharts(t *testing.T, doc *goquery.Document) chartData {
	t.Helper()
	var c chartData
	if err := json.Unmarshal([]byte(doc.Find("#chart-data").Text()), &c); err != nil {
		t.Fatalf("chart data: %v\n%s", err, doc.Find("#chart-data").Text())
	}
	return c
}

func settingsForm(useDB bool) url.Values {
	form := url.Values{
		fieldSettings: {"1"},
		fieldDriver:   {"mysql"},
		fieldHost:     {"db.internal"},
		fieldPort:     {"3306"},
		fieldUser:     {"reader"},
		fieldDatabase: {"anggaran_db"},
	}
	if useDB {
		form.Set(fieldUseDB, "on")
	}
	return form
}

func TestIndexRendersStaticDashboard(t *testing.T) {
	loader := &fakeLoader{}
	srv := newTestServer(t, loader, nil)

	rr := do(t, srv, http.MethodGet, "/", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Content-Security-Policy") == "" || rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("middleware headers missing: %v", rr.Header())
	}
	if loader.calls != 0 {
		t.Errorf("loader must not be called when the database is off")
	}

	doc := parseHTML(t, rr)
	static := dataset.Static()
	if n := doc.Find("#detail-table tbody tr").Length(); n != len(static.Departments) {
		t.Errorf("detail rows = %d, want %d", n, len(static.Departments))
	}
	if doc.Find(".badge--static").Length() != 1 {
		t.Errorf("static badge missing")
	}
	if doc.Find("#notices .notice").Length() != 0 {
		t.Errorf("no notices expected in plain static mode")
	}
	if got := strings.TrimSpace(doc.Find("#summary-count").Text()); got != "36" {
		t.Errorf("summary count = %q", got)
	}
	if got := doc.Find("#summary-total").Text(); !strings.HasPrefix(got, "Rp ") || !strings.HasSuffix(got, " T") {
		t.Errorf("summary total = %q, want trillions", got)
	}
	if !doc.Find("body").HasClass("theme-light") {
		t.Errorf("light theme expected by default")
	}

	present := core.PresentCategories(static.Departments)
	boxes := doc.Find(`input[name="category"]`)
	if boxes.Length() != len(present) || doc.Find(`input[name="category"][checked]`).Length() != len(present) {
		t.Errorf("all %d categories should be listed and checked, got %d", len(present), boxes.Length())
	}

	// Rows are sorted by code.
	var codes []string
	doc.Find("#detail-table tbody td.code").Each(func(_ int, s *goquery.Selection) {
		codes = append(codes, s.Text())
	})
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("rows not sorted by code at %d: %s > %s", i, codes[i-1], codes[i])
		}
	}

	charts := pageCharts(t, doc)
	if len(charts.Categories) != 8 || len(charts.Top) != 10 || len(charts.Comparison) != defaultCompare {
		t.Errorf("unexpected chart sizes: %d categories, %d top, %d comparison", len(charts.Categories), len(charts.Top), len(charts.Comparison))
	}
	if len(charts.Trend.Years) != 3 || charts.Trend.Years[0] != 2023 || len(charts.Trend.Series) != 3 {
		t.Errorf("unexpected trend %+v", charts.Trend)
	}
	if doc.Find(`input[name="compare"][checked]`).Length() != defaultCompare {
		t.Errorf("default comparison set should be checked")
	}
}

func TestIndexSearch(t *testing.T) {
	srv := newTestServer(t, &fakeLoader{}, nil)
	want := core.FilterSearch(dataset.Departments(), "kesehatan")

	for _, term := range []string{"kesehatan", "KESEHATAN"} {
		rr := do(t, srv, http.MethodGet, "/?search="+term, nil)
		doc := parseHTML(t, rr)
		if n := doc.Find("#detail-table tbody tr").Length(); n != len(want) {
			t.Errorf("%s: rows = %d, want %d", term, n, len(want))
		}
		if !strings.Contains(doc.Find("#detail-table").Text(), "Dinas Kesehatan") {
			t.Errorf("%s: Dinas Kesehatan missing", term)
		}
		msg := doc.Find(".search-message").Text()
		if !strings.Contains(msg, "Found ") || !strings.Contains(msg, "'"+term+"'") {
			t.Errorf("search message = %q", msg)
		}
	}

	doc := parseHTML(t, do(t, srv, http.MethodGet, "/?search=zzz", nil))
	if doc.Find("#detail-table tbody tr").Length() != 0 {
		t.Errorf("zzz should match nothing")
	}
	if got := strings.TrimSpace(doc.Find("#summary-mean").Text()); got != "-" {
		t.Errorf("mean of empty view = %q", got)
	}
}

func TestIndexCategorySelection(t *testing.T) {
	srv := newTestServer(t, &fakeLoader{}, nil)

	doc := parseHTML(t, do(t, srv, http.MethodGet, "/?categories_set=1", nil))
	if doc.Find("#detail-table tbody tr").Length() != 0 {
		t.Errorf("explicitly empty selection should show no rows")
	}
	if doc.Find("#breakdown .placeholder").Length() != 1 {
		t.Errorf("empty breakdown placeholder missing")
	}

	q := url.Values{fieldCategoriesSet: {"1"}, fieldCategory: {core.CategorySupporting}}
	doc = parseHTML(t, do(t, srv, http.MethodGet, "/?"+q.Encode(), nil))
	rows := doc.Find("#detail-table tbody tr")
	if rows.Length() == 0 {
		t.Fatalf("expected supporting units")
	}
	rows.Each(func(_ int, s *goquery.Selection) {
		if cat := s.Find("td").Eq(2).Text(); cat != core.CategorySupporting {
			t.Errorf("row category %q leaked through filter", cat)
		}
	})
	if doc.Find(`input[name="category"][checked]`).Length() != 1 {
		t.Errorf("only the chosen category should stay checked")
	}
}

func TestIndexExternalFallback(t *testing.T) {
	loader := &fakeLoader{err: &core.SourceError{
		Kind: core.KindConnection, Driver: "mysql", Address: "db.internal:3306", Op: "connect",
		Err: errors.New("connection refused"),
	}}
	srv := newTestServer(t, loader, nil)

	form := settingsForm(true)
	form.Set(fieldPassword, "secret")
	rr := do(t, srv, http.MethodPost, "/", form)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	doc := parseHTML(t, rr)
	if loader.calls != 1 {
		t.Errorf("loader calls = %d", loader.calls)
	}
	if doc.Find("#notices .notice--error").Length() != 1 || doc.Find("#notices .notice--warning").Length() != 1 {
		t.Errorf("fallback notices missing: %s", doc.Find("#notices").Text())
	}
	if n := doc.Find("#detail-table tbody tr").Length(); n != len(dataset.Departments()) {
		t.Errorf("fallback should show the static table, got %d rows", n)
	}
	if doc.Find(".badge--static").Length() != 1 {
		t.Errorf("fallback badge should be static")
	}
	if strings.Contains(rr.Body.String(), "secret") {
		t.Errorf("password echoed into page")
	}
}

func TestIndexExternalSuccess(t *testing.T) {
	loader := &fakeLoader{rows: []core.Department{
		{Code: "1.02.0.00.0.00.01.0000", Name: "Dinas Kesehatan", Amount: core.NewAmount(100000000000)},
		{Code: "4.01.0.00.0.00.01.0000", Name: "Sekretariat Daerah", Amount: core.NewAmount(50000000000)},
	}}
	srv := newTestServer(t, loader, nil)

	doc := parseHTML(t, do(t, srv, http.MethodPost, "/", settingsForm(true)))
	if doc.Find(".badge--external").Length() != 1 {
		t.Errorf("external badge expected")
	}
	if n := doc.Find("#detail-table tbody tr").Length(); n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
	if !strings.Contains(doc.Find("#notices .notice--success").Text(), "Loaded 2 departments from mysql") {
		t.Errorf("success notice missing: %s", doc.Find("#notices").Text())
	}
	if v, _ := doc.Find(`input[name="host"]`).Attr("value"); v != "db.internal" {
		t.Errorf("host field = %q", v)
	}
}

func TestIndexIncompleteSettings(t *testing.T) {
	loader := &fakeLoader{}
	srv := newTestServer(t, loader, nil)

	form := settingsForm(true)
	form.Del(fieldHost)
	doc := parseHTML(t, do(t, srv, http.MethodPost, "/", form))
	if loader.calls != 0 {
		t.Errorf("incomplete settings must not reach the loader")
	}
	if !strings.Contains(doc.Find("#notices .notice--info").Text(), "missing host") {
		t.Errorf("info notice missing: %s", doc.Find("#notices").Text())
	}
}

func TestConfiguredPasswordStaysWithConfiguredServer(t *testing.T) {
	loader := &fakeLoader{}
	pinger := &recordingPinger{}
	srv := newTestServer(t, loader, pinger)

	form := url.Values{
		fieldSettings: {"1"},
		fieldUseDB:    {"on"},
		fieldDriver:   {"postgres"},
		fieldHost:     {"127.0.0.1"},
		fieldPort:     {"5432"},
		fieldUser:     {"reader"},
		fieldPassword: {""},
		fieldDatabase: {"anggaran_db"},
	}

	doc := parseHTML(t, do(t, srv, http.MethodPost, "/", form))
	if loader.calls != 0 {
		t.Errorf("loader dialled a visitor-chosen host with the configured password")
	}
	if !strings.Contains(doc.Find("#notices .notice--info").Text(), "missing password") {
		t.Errorf("expected missing password notice: %s", doc.Find("#notices").Text())
	}

	rr := do(t, srv, http.MethodPost, "/ui/connection-test", form)
	if len(pinger.seen) != 0 {
		t.Errorf("connection test dialled %+v", pinger.seen)
	}
	if !strings.Contains(rr.Body.String(), "missing password") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestConnectionTestIgnoresFormSQLitePath(t *testing.T) {
	pinger := &recordingPinger{}
	srv := newTestServer(t, &fakeLoader{}, pinger)

	for _, path := range []string{"/etc/does-not-exist", "/etc/hostname"} {
		form := url.Values{fieldSettings: {"1"}, fieldDriver: {"sqlite"}, fieldDatabase: {path}}
		rr := do(t, srv, http.MethodPost, "/ui/connection-test", form)
		if len(pinger.seen) != 0 {
			t.Fatalf("sqlite path from the form was opened: %+v", pinger.seen)
		}
		body := rr.Body.String()
		if !strings.Contains(body, "missing database") || strings.Contains(body, path) {
			t.Errorf("path %s: body = %s", path, body)
		}
	}
}

func TestExportAfterSwitchToExternalKeepsEveryCategory(t *testing.T) {
	loader := &fakeLoader{rows: []core.Department{
		{Code: "1.02.0.00.0.00.01.0000", Name: "Dinas Kesehatan", Amount: core.NewAmount(100)},
		{Code: "5.02.0.00.0.00.01.0000", Name: "Badan Keuangan Daerah", Amount: core.NewAmount(200)},
		{Code: "2.09.0.00.0.00.01.0000", Name: "Dinas Pangan", Amount: core.NewAmount(300)},
	}}
	srv := newTestServer(t, loader, nil)

	staticLabels := core.PresentCategories(dataset.Departments())
	tests := []struct {
		name string
		mode string
	}{
		{"labels only", ""},
		{"with rendered mode", string(core.ModeStatic)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := settingsForm(true)
			form.Set(fieldCategoriesSet, "1")
			form[fieldCategory] = staticLabels
			if tt.mode != "" {
				form.Set(fieldCategoryMode, tt.mode)
			}
			rr := do(t, srv, http.MethodPost, "/export/csv", form)
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d", rr.Code)
			}
			records, err := csv.NewReader(rr.Body).ReadAll()
			if err != nil {
				t.Fatal(err)
			}
			if len(records) != 4 {
				t.Fatalf("exported %d rows, want 3: %v", len(records)-1, records)
			}
		})
	}

	form := settingsForm(true)
	form.Set(fieldCategoriesSet, "1")
	form[fieldCategory] = staticLabels
	doc := parseHTML(t, do(t, srv, http.MethodPost, "/", form))
	if n := doc.Find("#detail-table tbody tr").Length(); n != 3 {
		t.Errorf("dashboard rows = %d, want 3", n)
	}
	if n := doc.Find(`input[name="category"][checked]`).Length(); n != doc.Find(`input[name="category"]`).Length() {
		t.Errorf("every present category should be checked after the switch")
	}
	if v, _ := doc.Find(`input[name="categories_mode"]`).Attr("value"); v != string(core.ModeExternal) {
		t.Errorf("categories_mode = %q", v)
	}
}

func TestIndexDarkMode(t *testing.T) {
	srv := newTestServer(t, &fakeLoader{}, nil)
	form := settingsForm(false)
	form.Set(fieldDarkMode, "on")
	doc := parseHTML(t, do(t, srv, http.MethodPost, "/", form))
	if !doc.Find("body").HasClass("theme-dark") {
		t.Errorf("dark theme class missing")
	}
}

func TestIndexRoutingErrors(t *testing.T) {
	srv := newTestServer(t, &fakeLoader{}, nil)
	if rr := do(t, srv, http.MethodGet, "/nope", nil); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPut, "/", nil); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/.env", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("scanner path status=%d", rr.Code)
	}
}

func TestChartsAPI(t *testing.T) {
	srv := newTestServer(t, &fakeLoader{}, nil)
	rr := do(t, srv, http.MethodGet, "/api/charts?search=dinas&compare=Dinas+Kesehatan", nil)
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("status=%d content-type=%s", rr.Code, rr.Header().Get("Content-Type"))
	}
	var c chartData
	if err := json.Unmarshal(rr.Body.Bytes(), &c); err != nil {
		t.Fatal(err)
	}
	if c.Mode != "static" || len(c.Categories) != 8 {
		t.Errorf("unexpected chart data %+v", c)
	}
	if len(c.Comparison) != 1 || c.Comparison[0].Label != "Dinas Kesehatan" {
		t.Errorf("comparison = %+v", c.Comparison)
	}
	for _, p := range c.Top {
		if !strings.Contains(strings.ToLower(p.Label), "dinas") {
			t.Errorf("top chart ignores search: %s", p.Label)
		}
	}

	if rr := do(t, srv, http.MethodPost, "/api/charts", url.Values{}); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/charts status=%d", rr.Code)
	}
}

func TestExports(t *testing.T) {
	srv := newTestServer(t, &fakeLoader{}, nil)
	total := len(dataset.Departments())

	t.Run("csv", func(t *testing.T) {
		rr := do(t, srv, http.MethodGet, "/export/csv", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
		if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "anggaran_2025.csv") {
			t.Errorf("Content-Disposition = %q", cd)
		}
		records, err := csv.NewReader(rr.Body).ReadAll()
		if err != nil {
			t.Fatal(err)
		}
		if len(records) != total+1 || strings.Join(records[0], ",") != "code,name,category,amount,amount_billions" {
			t.Errorf("unexpected csv: %d records, header %v", len(records), records[0])
		}
	})

	t.Run("json with search", func(t *testing.T) {
		rr := do(t, srv, http.MethodPost, "/export/json", url.Values{fieldSearch: {"kesehatan"}})
		if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "application/json" {
			t.Fatalf("status=%d content-type=%s", rr.Code, rr.Header().Get("Content-Type"))
		}
		var rows []map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &rows); err != nil {
			t.Fatal(err)
		}
		if len(rows) != len(core.FilterSearch(dataset.Departments(), "kesehatan")) {
			t.Errorf("json rows = %d", len(rows))
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		rr := do(t, srv, http.MethodGet, "/export/xlsx", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("status=%d", rr.Code)
		}
		f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		rows, err := f.GetRows("Departments")
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != total+1 {
			t.Errorf("xlsx rows = %d, want %d", len(rows), total+1)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if rr := do(t, srv, http.MethodGet, "/export/pdf", nil); rr.Code != http.StatusNotFound {
			t.Errorf("status=%d", rr.Code)
		}
	})
}

func TestConnectionTest(t *testing.T) {
	t.Run("method", func(t *testing.T) {
		srv := newTestServer(t, &fakeLoader{}, fakePinger{})
		if rr := do(t, srv, http.MethodGet, "/ui/connection-test", nil); rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("status=%d", rr.Code)
		}
	})

	t.Run("incomplete", func(t *testing.T) {
		srv := newTestServer(t, &fakeLoader{}, fakePinger{})
		form := settingsForm(false)
		form.Del(fieldUser)
		rr := do(t, srv, http.MethodPost, "/ui/connection-test", form)
		doc := parseHTML(t, rr)
		if !strings.Contains(doc.Find(".notice--info").Text(), "missing username") {
			t.Errorf("body = %s", rr.Body.String())
		}
	})

	t.Run("failure", func(t *testing.T) {
		srv := newTestServer(t, &fakeLoader{}, fakePinger{err: &core.SourceError{Kind: core.KindConnection, Driver: "mysql", Err: errors.New("refused")}})
		rr := do(t, srv, http.MethodPost, "/ui/connection-test", settingsForm(false))
		doc := parseHTML(t, rr)
		if doc.Find(".notice--error").Length() != 1 {
			t.Errorf("body = %s", rr.Body.String())
		}
		if trig := rr.Header().Get("HX-Trigger"); !strings.Contains(trig, `"ok":false`) {
			t.Errorf("HX-Trigger = %s", trig)
		}
	})

	t.Run("success", func(t *testing.T) {
		srv := newTestServer(t, &fakeLoader{}, fakePinger{})
		rr := do(t, srv, http.MethodPost, "/ui/connection-test", settingsForm(false))
		doc := parseHTML(t, rr)
		if !strings.Contains(doc.Find(".notice--success").Text(), "Connected to mysql://reader@db.internal:3306/anggaran_db") {
			t.Errorf("body = %s", rr.Body.String())
		}
		if trig := rr.Header().Get("HX-Trigger"); !strings.Contains(trig, `"ok":true`) {
			t.Errorf("HX-Trigger = %s", trig)
		}
	})
}

func TestHealthReadyMetrics(t *testing.T) {
	srv := newTestServer(t, &fakeLoader{}, nil, func(o *Options) { o.CacheEntries = func() int { return 3 } })

	rr := do(t, srv, http.MethodGet, "/healthz", nil)
	var health map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil || rr.Code != http.StatusOK || health["status"] != "ok" {
		t.Fatalf("healthz %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/readyz", nil)
	var ready struct {
		Status string         `json:"status"`
		Checks map[string]any `json:"checks"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &ready); err != nil || rr.Code != http.StatusOK || ready.Status != "ready" {
		t.Fatalf("readyz %d %s", rr.Code, rr.Body.String())
	}
	if ready.Checks["external_source"] != "disabled" || ready.Checks["templates"] != "ok" {
		t.Errorf("checks = %v", ready.Checks)
	}

	do(t, srv, http.MethodGet, "/", nil)
	rr = do(t, srv, http.MethodGet, "/metrics", nil)
	body := rr.Body.String()
	for _, want := range []string{"http_requests_total", "pipeline_runs_total 1\n", "source_cache_entries 3\n", "uptime_seconds"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q:\n%s", want, body)
		}
	}
}

func TestReadyWithUnreachableSource(t *testing.T) {
	srv := newTestServer(t, &fakeLoader{}, fakePinger{err: errors.New("refused")}, func(o *Options) {
		o.Defaults.UseExternal = true
	})
	rr := do(t, srv, http.MethodGet, "/readyz", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "unreachable: using static dataset") {
		t.Fatalf("readyz %d %s", rr.Code, rr.Body.String())
	}
}

func TestRateLimitOnPost(t *testing.T) {
	srv := newTestServer(t, &fakeLoader{}, nil, func(o *Options) {
		o.RateLimit = ratelimit.Config{RequestsPerMinute: 1}
	})
	if rr := do(t, srv, http.MethodPost, "/", url.Values{}); rr.Code != http.StatusOK {
		t.Fatalf("first POST status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPost, "/", url.Values{}); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST status=%d", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/", nil); rr.Code != http.StatusOK {
		t.Fatalf("GET should not be limited, status=%d", rr.Code)
	}
}
