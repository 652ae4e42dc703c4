package builtin

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cleanse/internal/transformer"
	"cleanse/pkg/records"
)

// defaultTimeSentinels are raw strings that mean "no usable time". They come
// straight out of real exports: logging placeholders and free-text entries.
var defaultTimeSentinels = []string{
	"INVALID_TIME", "INVALID_DATE", "N/A", "Not Yet", "last week", "yesterday",
}

// timeLayouts is the ordered grammar the parser walks after the epoch check.
// First match wins; order is part of the contract and must not be reshuffled.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 3:04 PM",
	"01/02/2006 15:04",
	"02-Jan-2006 15:04:05",
	"2-Jan-2006 15:04",
	"2006-01-02",
	"01/02/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// Timestamp parses each listed field into a canonical UTC instant or the
// not-a-time sentinel (nil). The cascade is strict and ordered, and never
// raises:
//
//  1. nil, empty, or a listed textual sentinel -> nil
//  2. value parseable as Unix epoch seconds    -> converted
//  3. value matching the layout grammar        -> converted
//  4. anything else                            -> nil
//
// RowsAffected equals the full row count processed: every row is touched by
// parsing even when the output is the sentinel.
type Timestamp struct {
	Fields    []string
	Sentinels []string // nil means defaultTimeSentinels
	Reason    string
}

func (t Timestamp) Name() string { return "timestamp:" + strings.Join(t.Fields, ",") }

func (t Timestamp) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	sentinels := t.Sentinels
	if sentinels == nil {
		sentinels = defaultTimeSentinels
	}
	set := make(map[string]struct{}, len(sentinels))
	for _, s := range sentinels {
		set[s] = struct{}{}
	}

	out := in.Clone()
	for _, r := range out.Records {
		for _, f := range t.Fields {
			v, ok := r[f]
			if !ok || v == nil {
				continue
			}
			if ts, ok := v.(time.Time); ok {
				r[f] = ts.UTC()
				continue
			}
			s := strings.TrimSpace(fmt.Sprint(v))
			if inst, ok := parseInstant(s, set); ok {
				r[f] = inst
			} else {
				r[f] = nil
			}
		}
	}
	return out, transformer.Result{
		Description:  fmt.Sprintf("Standardized %s to instants", strings.Join(t.Fields, ", ")),
		RowsAffected: out.Len(),
		Reason:       t.Reason,
	}
}

// parseInstant runs the cascade for a single trimmed raw string.
func parseInstant(s string, sentinels map[string]struct{}) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if _, hit := sentinels[s]; hit {
		return time.Time{}, false
	}
	// Unix epoch seconds, including fractional forms like "1705312200.0".
	if sec, ok := parseEpochSeconds(s); ok {
		return sec, true
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// maxEpochSeconds bounds the epoch interpretation; beyond it the value is not
// a plausible seconds count (mirrors the overflow rejection in the source
// systems' exports).
const maxEpochSeconds = 1 << 35 // year 3058

func parseEpochSeconds(s string) (time.Time, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, false
	}
	if f > maxEpochSeconds || f < -maxEpochSeconds {
		return time.Time{}, false
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC(), true
}
