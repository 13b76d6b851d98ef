package core

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCoerceAmount(t *testing.T) {
	cases := []struct {
		in    any
		out   string
		valid bool
	}{
		{int64(165156847795), "165156847795", true},
		{int32(12), "12", true},
		{uint64(7), "7", true},
		{float64(1.5), "1.5", true},
		{[]byte("2278313362"), "2278313362", true},
		{" 42 ", "42", true},
		{"12.50", "12.5", true},
		{decimal.RequireFromString("3.25"), "3.25", true},
		{"n/a", "", false},
		{"", "", false},
		{nil, "", false},
		{math.NaN(), "", false},
		{math.Inf(1), "", false},
		{true, "", false},
	}
	for _, tc := range cases {
		got := CoerceAmount(tc.in)
		if got.Valid() != tc.valid {
			t.Fatalf("%#v expected valid=%v, got %v", tc.in, tc.valid, got.Valid())
		}
		if got.String() != tc.out {
			t.Fatalf("%#v expected %q, got %q", tc.in, tc.out, got.String())
		}
	}
}

func TestAmountBillionsIsExact(t *testing.T) {
	a := NewAmount(165156847795)
	want := decimal.RequireFromString("165.156847795")
	got, ok := a.Billions().Decimal()
	if !ok || !got.Equal(want) {
		t.Fatalf("expected %s, got %s (valid=%v)", want, got, ok)
	}
	if InvalidAmount().Billions().Valid() {
		t.Fatalf("billions of an invalid amount must stay invalid")
	}
}

func TestAmountFloat64NaN(t *testing.T) {
	if !math.IsNaN(InvalidAmount().Float64()) {
		t.Fatalf("invalid amount should be NaN")
	}
	if NewAmount(3).Float64() != 3 {
		t.Fatalf("expected 3")
	}
}

func TestAmountCmpAndEqual(t *testing.T) {
	if NewAmount(1).Cmp(NewAmount(2)) >= 0 {
		t.Fatalf("1 should be below 2")
	}
	if InvalidAmount().Cmp(NewAmount(-5)) >= 0 {
		t.Fatalf("invalid should sort below any valid amount")
	}
	if !InvalidAmount().Equal(InvalidAmount()) {
		t.Fatalf("invalid amounts compare equal")
	}
	if NewAmount(1).Equal(InvalidAmount()) {
		t.Fatalf("valid and invalid must differ")
	}
	if !ParseAmount("10.0").Equal(NewAmount(10)) {
		t.Fatalf("10.0 should equal 10")
	}
}

func TestAmountJSON(t *testing.T) {
	b, err := NewAmount(12).MarshalJSON()
	if err != nil || string(b) != "12" {
		t.Fatalf("marshal valid: %s %v", b, err)
	}
	b, err = InvalidAmount().MarshalJSON()
	if err != nil || string(b) != "null" {
		t.Fatalf("marshal invalid: %s %v", b, err)
	}

	var a Amount
	if err := a.UnmarshalJSON([]byte(`"7.5"`)); err != nil || a.String() != "7.5" {
		t.Fatalf("unmarshal quoted: %v %v", a, err)
	}
	if err := a.UnmarshalJSON([]byte(`null`)); err != nil || a.Valid() {
		t.Fatalf("unmarshal null: %v %v", a, err)
	}
	if err := a.UnmarshalJSON([]byte(`{}`)); err == nil {
		t.Fatalf("expected error for object")
	}
}

func TestFormatRupiah(t *testing.T) {
	got := FormatRupiahBillions(NewAmount(165156847795))
	if !strings.HasPrefix(got, "Rp ") || !strings.HasSuffix(got, " M") || !strings.Contains(got, "165") {
		t.Fatalf("unexpected billions format %q", got)
	}
	got = FormatRupiahTrillions(NewAmount(835588807912))
	if !strings.HasSuffix(got, " T") {
		t.Fatalf("unexpected trillions format %q", got)
	}
	if FormatRupiahBillions(InvalidAmount()) != "-" {
		t.Fatalf("invalid amounts render as a dash")
	}
}
