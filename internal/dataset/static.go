// Package dataset holds the built-in 2025 budget tables used whenever the
// external source is disabled or unavailable.
package dataset

import (
	"sync"

	"anggaran/internal/core"
)

// Year is the fiscal year of the built-in tables.
const Year = 2025

type deptRow struct {
	code     string
	name     string
	category string
	amount   int64
}

var departmentRows = []deptRow{
	{"7.01.0.00.0.00.01.0000", "Kecamatan Aesesa", core.CategoryTerritorial, 6223022625},
	{"7.01.0.00.0.00.02.0000", "Kecamatan Boawae", core.CategoryTerritorial, 7646781503},
	{"7.01.0.00.0.00.03.0000", "Kecamatan Mauponggo", core.CategoryTerritorial, 2530582520},
	{"7.01.0.00.0.00.04.0000", "Kecamatan Nangaroro", core.CategoryTerritorial, 2508571150},
	{"7.01.0.00.0.00.05.0000", "Kecamatan Wolowae", core.CategoryTerritorial, 1193921348},
	{"7.01.0.00.0.00.06.0000", "Kecamatan Keo Tengah", core.CategoryTerritorial, 1458126928},
	{"7.01.0.00.0.00.07.0000", "Kecamatan Aesesa Selatan", core.CategoryTerritorial, 1302231856},
	{"8.01.0.00.0.00.01.0000", "Badan Kesatuan Bangsa dan Politik", core.CategoryGeneralGovernment, 2278313362},
	{"4.01.2.10.3.29.01.0000", "Sekretariat Daerah", core.CategorySupporting, 16543274276},
	{"4.02.0.00.0.00.01.0000", "Sekretariat DPRD", core.CategorySupporting, 17928625409},
	{"6.01.0.00.0.00.01.0000", "Inspektorat", core.CategoryOversight, 7735642420},
	{"5.01.5.05.0.00.01.0000", "Badan Perencanaan Pembangunan", core.CategoryAuxiliary, 4704900714},
	{"5.02.0.00.0.00.01.0000", "Badan Keuangan Daerah", core.CategoryAuxiliary, 159364654742},
	{"5.03.5.04.0.00.01.0000", "Badan Kepegawaian", core.CategoryAuxiliary, 4328449467},
	{"3.25.0.00.0.00.01.0000", "Dinas Kelautan dan Perikanan", core.CategoryOptional, 10918488956},
	{"3.26.0.00.0.00.01.0000", "Dinas Pariwisata", core.CategoryOptional, 2792771772},
	{"3.27.0.00.0.00.01.0000", "Dinas Pertanian", core.CategoryOptional, 13357727381},
	{"3.27.0.00.0.00.02.0000", "Dinas Peternakan", core.CategoryOptional, 8264620432},
	{"3.32.2.07.0.00.02.0000", "Dinas Transmigrasi", core.CategoryOptional, 186996200},
	{"1.01.2.22.0.00.01.0000", "Dinas Pendidikan dan Kebudayaan", core.CategoryMandatoryService, 248036170749},
	{"1.02.0.00.0.00.01.0000", "Dinas Kesehatan", core.CategoryMandatoryService, 165156847795},
	{"1.03.0.00.0.00.01.0000", "Dinas Pekerjaan Umum", core.CategoryMandatoryService, 86179490390},
	{"1.04.0.00.0.00.01.0000", "Dinas Perumahan Rakyat", core.CategoryMandatoryService, 8419273044},
	{"1.05.0.00.0.00.01.0000", "Satuan Polisi Pamong Praja", core.CategoryMandatoryService, 5112252744},
	{"1.05.0.00.0.00.02.0000", "Badan Penanggulangan Bencana", core.CategoryMandatoryService, 2337363871},
	{"1.06.0.00.0.00.01.0000", "Dinas Sosial", core.CategoryMandatoryService, 3203181433},
	{"2.09.0.00.0.00.01.0000", "Dinas Pangan", core.CategoryMandatoryOther, 2422550560},
	{"2.11.3.28.0.00.01.0000", "Dinas Lingkungan Hidup", core.CategoryMandatoryOther, 3499115744},
	{"2.12.0.00.0.00.01.0000", "Dinas Kependudukan dan Pencatatan Sipil", core.CategoryMandatoryOther, 2769261244},
	{"2.13.2.08.0.00.01.0000", "Dinas Pemberdayaan Masyarakat", core.CategoryMandatoryOther, 4060458306},
	{"2.14.0.00.0.00.01.0000", "Dinas Pengendalian Penduduk dan KB", core.CategoryMandatoryOther, 5544150797},
	{"2.15.0.00.0.00.01.0000", "Dinas Perhubungan", core.CategoryMandatoryOther, 4015991096},
	{"2.16.2.20.2.21.01.0000", "Dinas Komunikasi dan Informatika", core.CategoryMandatoryOther, 2473281891},
	{"2.18.0.00.0.00.01.0000", "Dinas Penanaman Modal", core.CategoryMandatoryOther, 3229338292},
	{"2.19.0.00.0.00.01.0000", "Dinas Kepemudaan dan Olahraga", core.CategoryMandatoryOther, 2666001411},
	{"2.23.2.24.0.00.01.0000", "Dinas Perpustakaan", core.CategoryMandatoryOther, 3607193869},
}

var categoryRows = []struct {
	code   string
	label  string
	amount int64
}{
	{"UNSUR KEWILAYAHAN", core.CategoryTerritorial, 22863237930},
	{"UNSUR PEMERINTAHAN UMUM", core.CategoryGeneralGovernment, 2278313362},
	{"UNSUR PENDUKUNG URUSAN PEMERINTAHAN", core.CategorySupporting, 34471899685},
	{"UNSUR PENGAWASAN URUSAN PEMERINTAHAN", core.CategoryOversight, 7735642420},
	{"UNSUR PENUNJANG URUSAN PEMERINTAHAN", core.CategoryAuxiliary, 168860731367},
	{"URUSAN PEMERINTAHAN PILIHAN", core.CategoryOptional, 35753724291},
	{"URUSAN PEMERINTAHAN WAJIB YANG BERKAITAN DENGAN PELAYANAN DASAR", core.CategoryMandatoryService, 518444580026},
	{"URUSAN PEMERINTAHAN WAJIB YANG TIDAK BERKAITAN DENGAN PELAYANAN DASAR", core.CategoryMandatoryOther, 45180777831},
}

// Trend categories.
const (
	TrendEducation      = "Education"
	TrendHealth         = "Health"
	TrendInfrastructure = "Infrastructure"
)

var trendRows = []struct {
	year     int
	category string
	amount   int64
}{
	{2023, TrendEducation, 220000000000},
	{2023, TrendHealth, 150000000000},
	{2023, TrendInfrastructure, 80000000000},
	{2024, TrendEducation, 235000000000},
	{2024, TrendHealth, 160000000000},
	{2024, TrendInfrastructure, 85000000000},
	{2025, TrendEducation, 248036170749},
	{2025, TrendHealth, 165156847795},
	{2025, TrendInfrastructure, 86179490390},
}

var static = sync.OnceValue(build)

func build() core.Tables {
	t := core.Tables{
		Categories:  make([]core.CategoryRecord, 0, len(categoryRows)),
		Departments: make([]core.Department, 0, len(departmentRows)),
		Trend:       make([]core.TrendRecord, 0, len(trendRows)),
	}
	for _, c := range categoryRows {
		t.Categories = append(t.Categories, core.CategoryRecord{Code: c.code, Label: c.label, Amount: core.NewAmount(c.amount)})
	}
	for _, d := range departmentRows {
		t.Departments = append(t.Departments, core.Department{
			Code:     d.code,
			Name:     d.name,
			Category: d.category,
			Amount:   core.NewAmount(d.amount),
		})
	}
	for _, r := range trendRows {
		t.Trend = append(t.Trend, core.TrendRecord{Year: r.year, Category: r.category, Amount: core.NewAmount(r.amount)})
	}
	return t.Derive()
}

// Static returns the built-in tables. Every call returns an independent
// copy, so callers may modify the result freely.
func Static() core.Tables {
	return static().Clone()
}

// Departments returns only the built-in department table.
func Departments() []core.Department {
	return Static().Departments
}
