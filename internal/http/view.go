package http

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"anggaran/internal/core"
	"anggaran/internal/dataset"
	"anggaran/internal/pipeline"
	"anggaran/internal/source"
)

// chartPoint is one labelled value in billions of rupiah.
type chartPoint struct {
	Label string      `json:"label"`
	Value core.Amount `json:"value"`
}

type trendSeries struct {
	Label  string        `json:"label"`
	Values []core.Amount `json:"values"`
}

type trendData struct {
	Years  []int         `json:"years"`
	Series []trendSeries `json:"series"`
}

// chartData feeds every chart on the page. All values are billions.
type chartData struct {
	Mode       string       `json:"mode"`
	Categories []chartPoint `json:"categories"`
	Top        []chartPoint `json:"top"`
	Comparison []chartPoint `json:"comparison"`
	Breakdown  []chartPoint `json:"breakdown"`
	Trend      trendData    `json:"trend"`
}

// buildCharts derives chart series from a pipeline result. compare picks
// the comparison departments; when empty the largest defaultCompare are used.
func buildCharts(res pipeline.Result, compare []string) chartData {
	c := chartData{
		Mode:       res.Mode.String(),
		Categories: make([]chartPoint, 0, len(res.Tables.Categories)),
		Top:        points(core.TopDepartments(res.Filtered, 10)),
		Comparison: points(comparisonSet(res.Filtered, compare)),
		Trend:      buildTrend(res.Tables.Trend),
	}
	for _, cat := range res.Tables.Categories {
		c.Categories = append(c.Categories, chartPoint{Label: cat.Label, Value: cat.AmountBillions})
	}
	for _, b := range core.AggregateByCategory(res.Filtered) {
		c.Breakdown = append(c.Breakdown, chartPoint{Label: b.Name, Value: b.Amount.Billions()})
	}
	if c.Breakdown == nil {
		c.Breakdown = []chartPoint{}
	}
	return c
}

func comparisonSet(rows []core.Department, names []string) []core.Department {
	if len(names) == 0 {
		return core.TopDepartments(rows, defaultCompare)
	}
	return core.SelectByName(rows, names, maxCompare)
}

func points(rows []core.Department) []chartPoint {
	out := make([]chartPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, chartPoint{Label: r.Name, Value: r.AmountBillions})
	}
	return out
}

// buildTrend pivots the trend table into one series per category over
// ascending years. Missing cells are invalid amounts.
func buildTrend(rows []core.TrendRecord) trendData {
	t := trendData{Years: []int{}, Series: []trendSeries{}}
	yearIdx := make(map[int]bool)
	seriesIdx := make(map[string]int)
	for _, r := range rows {
		if !yearIdx[r.Year] {
			yearIdx[r.Year] = true
			t.Years = append(t.Years, r.Year)
		}
		if _, ok := seriesIdx[r.Category]; !ok {
			seriesIdx[r.Category] = len(t.Series)
			t.Series = append(t.Series, trendSeries{Label: r.Category})
		}
	}
	sort.Ints(t.Years)
	pos := make(map[int]int, len(t.Years))
	for i, y := range t.Years {
		pos[y] = i
	}
	for i := range t.Series {
		t.Series[i].Values = make([]core.Amount, len(t.Years))
	}
	for _, r := range rows {
		t.Series[seriesIdx[r.Category]].Values[pos[r.Year]] = r.AmountBillions
	}
	return t
}

type option struct {
	Name    string
	Checked bool
}

type settingsView struct {
	UseDB       bool
	Driver      string
	Drivers     []string
	Host        string
	Port        string
	User        string
	Database    string
	PasswordSet bool
}

type summaryView struct {
	Total string
	Mean  string
	Max   string
	Count int
}

type breakdownRow struct {
	Name   string
	Amount string
	Count  int
	Width  int
}

type detailRow struct {
	Code     string
	Name     string
	Category string
	Amount   string
}

type dashboardView struct {
	Year          int
	RunID         string
	Mode          string
	DarkMode      bool
	Notices       []core.Notice
	Settings      settingsView
	Search        string
	SearchMessage string
	Categories    []option
	Compare       []option
	Summary       summaryView
	Breakdown     []breakdownRow
	Rows          []detailRow
	Charts        chartData
}

func buildDashboardView(res pipeline.Result, p DashboardParams) dashboardView {
	conn := p.Request.Settings.Conn
	v := dashboardView{
		Year:     dataset.Year,
		RunID:    res.RunID,
		Mode:     res.Mode.String(),
		DarkMode: p.DarkMode,
		Notices:  res.Notices,
		Settings: settingsView{
			UseDB:       p.Request.Settings.UseExternal,
			Driver:      conn.Driver.String(),
			Drivers:     source.DriverStrings(),
			Host:        conn.Host,
			User:        conn.User,
			Database:    conn.Name,
			PasswordSet: conn.Password != "",
		},
		Search: res.Criteria.Search,
		Charts: buildCharts(res, p.Compare),
	}
	if conn.Port > 0 {
		v.Settings.Port = strconv.Itoa(conn.Port)
	}
	if v.Search != "" {
		v.SearchMessage = fmt.Sprintf("Found %d departments matching '%s'", len(res.Filtered), v.Search)
	}

	selected := make(map[string]bool, len(res.Criteria.Categories))
	for _, c := range res.Criteria.Categories {
		selected[c] = true
	}
	for _, c := range res.Available {
		v.Categories = append(v.Categories, option{Name: c, Checked: selected[c]})
	}

	compared := make(map[string]bool)
	for _, d := range comparisonSet(res.Filtered, p.Compare) {
		compared[d.Name] = true
	}
	sorted := core.SortByCode(res.Filtered)
	for _, d := range sorted {
		v.Compare = append(v.Compare, option{Name: d.Name, Checked: compared[d.Name]})
		v.Rows = append(v.Rows, detailRow{
			Code:     d.Code,
			Name:     d.Name,
			Category: d.Category,
			Amount:   core.FormatRupiahBillions(d.Amount),
		})
	}

	s := core.Summarize(res.Tables.Categories, res.Filtered)
	v.Summary = summaryView{
		Total: core.FormatRupiahTrillions(s.Total),
		Mean:  core.FormatRupiahBillions(s.Mean),
		Max:   core.FormatRupiahBillions(s.Max),
		Count: s.Count,
	}

	agg := core.AggregateByCategory(res.Filtered)
	var maxAmount float64
	for _, a := range agg {
		maxAmount = math.Max(maxAmount, a.Amount.Float64())
	}
	for _, a := range agg {
		v.Breakdown = append(v.Breakdown, breakdownRow{
			Name:   a.Name,
			Amount: core.FormatRupiahBillions(a.Amount),
			Count:  a.Count,
			Width:  barWidth(a.Amount.Float64(), maxAmount),
		})
	}
	return v
}

// barWidth is value as a rounded percentage of top, at least 2 when
// value is positive.
func barWidth(value, top float64) int {
	if top <= 0 || value <= 0 || math.IsNaN(value) {
		return 0
	}
	w := int(math.Round(value * 100 / top))
	switch {
	case w < 2:
		return 2
	case w > 100:
		return 100
	}
	return w
}
