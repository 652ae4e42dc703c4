package builtin

import (
	"fmt"
	"strings"

	"cleanse/internal/transformer"
	"cleanse/pkg/records"
)

// defaultIdentSentinels are placeholder strings meaning "no identifier".
// "nan" shows up as the literal text of a serialized missing value.
var defaultIdentSentinels = []string{"UNKNOWN", "", "nan"}

// Identifier canonicalizes a prefix-code field (e.g. user IDs as USR-1234):
//
//   - nil, blank, or an unknown-sentinel string -> nil
//   - already bearing the canonical prefix      -> unchanged
//   - bare digits                               -> prefix + digits
//   - anything else                             -> nil (never guessed)
//
// Source-specific prefixes on foreign ticket IDs (GH-, XL-) are a unifier
// concern, not this stage's.
//
// RowsAffected counts values that became missing, matching the "newly
// flagged gaps" accounting of the upstream cleaners.
type Identifier struct {
	Field     string
	Prefix    string
	Sentinels []string // nil means defaultIdentSentinels
	Reason    string
}

func (c Identifier) Name() string { return "identifier:" + c.Field }

func (c Identifier) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	sentinels := c.Sentinels
	if sentinels == nil {
		sentinels = defaultIdentSentinels
	}
	set := make(map[string]struct{}, len(sentinels))
	for _, s := range sentinels {
		set[s] = struct{}{}
	}

	out := in.Clone()
	newlyMissing := 0
	for _, r := range out.Records {
		v, ok := r[c.Field]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if _, hit := set[s]; hit {
			r[c.Field] = nil
			newlyMissing++
			continue
		}
		if strings.HasPrefix(s, c.Prefix) {
			r[c.Field] = s
			continue
		}
		if isDigits(s) {
			r[c.Field] = c.Prefix + s
			continue
		}
		r[c.Field] = nil
		newlyMissing++
	}
	return out, transformer.Result{
		Description:  fmt.Sprintf("Standardized %s to %sXXXX format", c.Field, c.Prefix),
		RowsAffected: newlyMissing,
		Reason:       c.Reason,
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
