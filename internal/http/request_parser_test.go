package http

import (
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"tally/internal/core"
	"tally/internal/report"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func urlEscape(s string) string {
	return url.QueryEscape(s)
}

func TestParseListFilter(t *testing.T) {
	cases := []struct {
		name    string
		query   string
		wantErr bool
		check   func(t *testing.T, f listFilter)
	}{
		{
			name:  "empty",
			query: "",
			check: func(t *testing.T, f listFilter) {
				if f.preset != "" || f.bounded || f.kind != "" || f.category != "" {
					t.Fatalf("empty query parsed as %+v", f)
				}
			},
		},
		{
			name:  "preset",
			query: "preset=last_month",
			check: func(t *testing.T, f listFilter) {
				if f.preset != report.PresetLastMonth {
					t.Fatalf("preset = %q", f.preset)
				}
			},
		},
		{
			name:    "unknown preset",
			query:   "preset=fortnight",
			wantErr: true,
		},
		{
			name:  "explicit range",
			query: "from=2024-01-01&to=2024-01-31",
			check: func(t *testing.T, f listFilter) {
				if !f.bounded || f.from.String() != "2024-01-01" || f.to.String() != "2024-01-31" {
					t.Fatalf("range parsed as %+v", f)
				}
			},
		},
		{
			name:    "half range",
			query:   "from=2024-01-01",
			wantErr: true,
		},
		{
			name:    "inverted range",
			query:   "from=2024-02-01&to=2024-01-01",
			wantErr: true,
		},
		{
			name:    "bad date",
			query:   "from=yesterday&to=2024-01-31",
			wantErr: true,
		},
		{
			name:  "preset wins over range",
			query: "preset=this_month&from=2024-01-01&to=2024-01-31",
			check: func(t *testing.T, f listFilter) {
				if f.preset != report.PresetThisMonth || f.bounded {
					t.Fatalf("parsed as %+v", f)
				}
			},
		},
		{
			name:  "kind and category",
			query: "kind=expense&category=" + urlEscape("🛒 Groceries"),
			check: func(t *testing.T, f listFilter) {
				if f.kind != core.Expense || f.category != "🛒 Groceries" {
					t.Fatalf("parsed as %+v", f)
				}
			},
		},
		{
			name:    "invalid kind",
			query:   "kind=transfer",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/transactions?"+tc.query, nil)
			f, err := parseListFilter(r)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseListFilter: %v", err)
			}
			tc.check(t, f)
		})
	}
}

func TestParseMonthParam(t *testing.T) {
	today := core.NewDate(2024, 3, 15)

	r := httptest.NewRequest("GET", "/api/health-score", nil)
	month, err := parseMonthParam(r, today)
	if err != nil || month != "2024-03" {
		t.Fatalf("default month = %q, %v", month, err)
	}

	r = httptest.NewRequest("GET", "/api/health-score?month=2023-11", nil)
	month, err = parseMonthParam(r, today)
	if err != nil || month != "2023-11" {
		t.Fatalf("explicit month = %q, %v", month, err)
	}

	r = httptest.NewRequest("GET", "/api/health-score?month=202311", nil)
	if _, err := parseMonthParam(r, today); err == nil {
		t.Fatal("malformed month accepted")
	}
}

func TestParseYearParam(t *testing.T) {
	today := core.NewDate(2024, 3, 15)

	r := httptest.NewRequest("GET", "/api/reports/tax", nil)
	year, err := parseYearParam(r, today)
	if err != nil || year != 2024 {
		t.Fatalf("default year = %d, %v", year, err)
	}

	r = httptest.NewRequest("GET", "/api/reports/tax?year=1899", nil)
	if _, err := parseYearParam(r, today); err == nil {
		t.Fatal("out-of-range year accepted")
	}
}

func TestPathID(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/transactions/7", nil)
	r.SetPathValue("id", "7")
	if id, err := pathID(r); err != nil || id != 7 {
		t.Fatalf("pathID = %d, %v", id, err)
	}

	for _, raw := range []string{"0", "-3", "abc", ""} {
		r := httptest.NewRequest("GET", "/api/transactions/"+raw, nil)
		r.SetPathValue("id", raw)
		if _, err := pathID(r); err == nil {
			t.Fatalf("pathID accepted %q", raw)
		}
	}
}
