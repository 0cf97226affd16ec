package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"
	"tally/internal/report"
)

const maxBodySize = 1 << 20 // 1 MiB

var errRangeIncomplete = errors.New("from and to must be provided together")

// decodeJSON parses a bounded JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(body) == 0 {
		return errors.New("empty request body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// pathID extracts the {id} path segment as an int64.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// pathMonth extracts the {month} path segment, validated as YYYY-MM.
func pathMonth(r *http.Request) (string, error) {
	raw := r.PathValue("month")
	if _, err := time.Parse("2006-01", raw); err != nil {
		return "", fmt.Errorf("invalid month %q, want YYYY-MM", raw)
	}
	return raw, nil
}

// listFilter is the parsed transaction-filtering query: a named preset
// or an explicit inclusive date range, plus optional kind and category.
type listFilter struct {
	preset   report.Preset
	from, to core.Date
	bounded  bool
	kind     core.Kind
	category string
}

// parseListFilter reads filter parameters from the query string. A
// preset wins over an explicit range; an explicit range needs both
// bounds.
func parseListFilter(r *http.Request) (listFilter, error) {
	q := r.URL.Query()
	var f listFilter

	if raw := strings.TrimSpace(q.Get("preset")); raw != "" {
		switch p := report.Preset(raw); p {
		case report.PresetThisMonth, report.PresetLastMonth,
			report.PresetTrailing90, report.PresetYearToDate, report.PresetAllTime:
			f.preset = p
		default:
			return listFilter{}, fmt.Errorf("unknown preset %q", raw)
		}
	} else {
		fromRaw := strings.TrimSpace(q.Get("from"))
		toRaw := strings.TrimSpace(q.Get("to"))
		switch {
		case fromRaw == "" && toRaw == "":
		case fromRaw == "" || toRaw == "":
			return listFilter{}, errRangeIncomplete
		default:
			from, err := core.ParseDate(fromRaw)
			if err != nil {
				return listFilter{}, fmt.Errorf("invalid from date %q", fromRaw)
			}
			to, err := core.ParseDate(toRaw)
			if err != nil {
				return listFilter{}, fmt.Errorf("invalid to date %q", toRaw)
			}
			if to.Before(from) {
				return listFilter{}, fmt.Errorf("range end %s precedes start %s", toRaw, fromRaw)
			}
			f.from, f.to = from, to
			f.bounded = true
		}
	}

	if raw := strings.TrimSpace(q.Get("kind")); raw != "" {
		kind := core.Kind(raw)
		if !kind.IsValid() {
			return listFilter{}, core.ErrInvalidKind
		}
		f.kind = kind
	}
	f.category = strings.TrimSpace(q.Get("category"))

	return f, nil
}

// apply narrows a transaction snapshot to the filter.
func (f listFilter) apply(txs []core.Transaction, today core.Date) []core.Transaction {
	switch {
	case f.preset != "":
		txs = report.FilterByPreset(txs, f.preset, today)
	case f.bounded:
		txs = report.FilterByRange(txs, f.from, f.to)
	}
	if f.kind != "" {
		txs = report.FilterByKind(txs, f.kind)
	}
	if f.category != "" {
		txs = report.FilterByCategory(txs, f.category)
	}
	return txs
}

// parseKindParam reads a required kind query parameter.
func parseKindParam(r *http.Request) (core.Kind, error) {
	kind := core.Kind(strings.TrimSpace(r.URL.Query().Get("kind")))
	if !kind.IsValid() {
		return "", core.ErrInvalidKind
	}
	return kind, nil
}

// parseYearParam reads the year query parameter, defaulting to the
// current year.
func parseYearParam(r *http.Request, today core.Date) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		return today.Year(), nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 9999 {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}

// parseMonthParam reads the month query parameter as YYYY-MM,
// defaulting to the month containing today.
func parseMonthParam(r *http.Request, today core.Date) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		return today.MonthKey(), nil
	}
	if _, err := time.Parse("2006-01", raw); err != nil {
		return "", fmt.Errorf("invalid month %q, want YYYY-MM", raw)
	}
	return raw, nil
}

// parseGranularity reads the granularity query parameter, defaulting
// to monthly buckets.
func parseGranularity(r *http.Request) (report.Granularity, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("granularity"))
	if raw == "" {
		return report.ByMonth, nil
	}
	switch g := report.Granularity(raw); g {
	case report.ByDay, report.ByWeek, report.ByMonth:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q", raw)
	}
}
