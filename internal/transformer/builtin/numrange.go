package builtin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"cleanse/internal/transformer"
	"cleanse/pkg/records"
)

// NumericRange coerces one field to float64 and nulls values outside
// [Min, Max): inclusive at Min, exclusive at Max. The asymmetry is
// deliberate and load-bearing; keep it.
//
// Non-numeric strings (e.g. "N/A") coerce to missing. When Units is set,
// values like "3 hours" are converted through the matching factor before the
// range check ("hour" -> 60 turns "3 hours" into 180).
//
// Max == 0 means unbounded above.
//
// RowsAffected counts only values nulled by coercion or range failure among
// originally non-nil inputs.
type NumericRange struct {
	Field  string
	Min    float64
	Max    float64
	Units  map[string]float64 // substring -> multiplier applied to the leading number
	Reason string
}

func (n NumericRange) Name() string { return "range:" + n.Field }

func (n NumericRange) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	out := in.Clone()
	nulled := 0
	for _, r := range out.Records {
		v, ok := r[n.Field]
		if !ok || v == nil {
			continue
		}
		f, ok := n.coerce(v)
		if !ok || f < n.Min || (n.Max != 0 && f >= n.Max) {
			r[n.Field] = nil
			nulled++
			continue
		}
		r[n.Field] = f
	}
	desc := fmt.Sprintf("Cleaned %s: removed values outside [%g, %g)", n.Field, n.Min, n.Max)
	if n.Max == 0 {
		desc = fmt.Sprintf("Cleaned %s: removed values below %g", n.Field, n.Min)
	}
	return out, transformer.Result{
		Description:  desc,
		RowsAffected: nulled,
		Reason:       n.Reason,
	}
}

func (n NumericRange) coerce(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		for _, unit := range sortedKeys(n.Units) {
			if strings.Contains(s, unit) {
				factor := n.Units[unit]
				head := strings.Fields(s)[0]
				num, err := strconv.ParseFloat(head, 64)
				if err != nil {
					return 0, false
				}
				return num * factor, true
			}
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return num, true
	}
	return 0, false
}

// sortedKeys keeps unit resolution deterministic regardless of map order.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
