package builtin

import (
	"fmt"
	"regexp"
	"strings"

	"cleanse/internal/transformer"
	"cleanse/pkg/records"
)

// ipv4Shape matches four dot-separated groups of 1-3 digits. It checks shape
// only, not numeric range: "999.999.999.999" passes and is retained. That is
// a known limitation of the observed rule, preserved on purpose rather than
// silently tightened.
var ipv4Shape = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// Address validates a network-address field structurally:
//
//   - nil, blank, the non-routable placeholder, or an invalid-sentinel -> nil
//   - structural pattern match  -> unchanged
//   - anything else             -> nil
//
// RowsAffected counts values that became missing.
type Address struct {
	Field     string
	Pattern   *regexp.Regexp // nil means ipv4Shape
	Sentinels []string       // nil means {"INVALID_IP", "0.0.0.0", ""}
	Reason    string
}

func (a Address) Name() string { return "address:" + a.Field }

func (a Address) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	pattern := a.Pattern
	if pattern == nil {
		pattern = ipv4Shape
	}
	sentinels := a.Sentinels
	if sentinels == nil {
		sentinels = []string{"INVALID_IP", "0.0.0.0", ""}
	}
	set := make(map[string]struct{}, len(sentinels))
	for _, s := range sentinels {
		set[s] = struct{}{}
	}

	out := in.Clone()
	newlyMissing := 0
	for _, r := range out.Records {
		v, ok := r[a.Field]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if _, hit := set[s]; hit {
			r[a.Field] = nil
			newlyMissing++
			continue
		}
		if pattern.MatchString(s) {
			r[a.Field] = s
			continue
		}
		r[a.Field] = nil
		newlyMissing++
	}
	return out, transformer.Result{
		Description:  fmt.Sprintf("Cleaned %s values", a.Field),
		RowsAffected: newlyMissing,
		Reason:       a.Reason,
	}
}
