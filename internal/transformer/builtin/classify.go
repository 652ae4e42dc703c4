package builtin

import (
	"fmt"
	"strings"

	"cleanse/internal/transformer"
	"cleanse/pkg/records"
)

// KeywordRule pairs a keyword set with the category it selects.
type KeywordRule struct {
	Keywords []string
	Category string
}

// KeywordClassify derives Target from the free text in Source: the text is
// lowercased, then rules are evaluated in declared order and the first rule
// with any substring-matching keyword wins. When no rule matches, Fallback
// is assigned; the result is never missing.
//
// Rule order is a curated priority list ("performance timeout" vs "crash"
// overlap); results are order-sensitive, so the declared order is preserved
// exactly.
//
// RowsAffected is the full row count: every record receives a category.
type KeywordClassify struct {
	Source   string
	Target   string
	Rules    []KeywordRule
	Fallback string
	Reason   string
}

func (k KeywordClassify) Name() string { return "classify:" + k.Target }

func (k KeywordClassify) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	out := in.Clone()
	if !out.HasColumn(k.Target) {
		out.Columns = append(out.Columns, k.Target)
	}
	for _, r := range out.Records {
		text := ""
		if v, ok := r[k.Source]; ok && v != nil {
			text = fmt.Sprint(v)
		}
		r[k.Target] = Classify(text, k.Rules, k.Fallback)
	}
	return out, transformer.Result{
		Description:  fmt.Sprintf("Classified %s from %s keywords", k.Target, k.Source),
		RowsAffected: out.Len(),
		Reason:       k.Reason,
	}
}

// Classify applies the rule list to one text value. Exported because the
// unifier reuses the same first-match-wins evaluation for derived fields.
func Classify(text string, rules []KeywordRule, fallback string) string {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return fallback
}

// DurationDays derives Target as the whole-day difference To - From. Missing
// endpoints or negative spans yield nil: a resolution that predates creation
// is a data error, not a negative duration.
//
// RowsAffected counts rows that received a value.
type DurationDays struct {
	From   string
	To     string
	Target string
	Reason string
}

func (d DurationDays) Name() string { return "duration:" + d.Target }

func (d DurationDays) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	out := in.Clone()
	if !out.HasColumn(d.Target) {
		out.Columns = append(out.Columns, d.Target)
	}
	set := 0
	for _, r := range out.Records {
		from, okFrom := r.Time(d.From)
		to, okTo := r.Time(d.To)
		if !okFrom || !okTo {
			r[d.Target] = nil
			continue
		}
		days := int64(to.Sub(from).Hours() / 24)
		if to.Before(from) {
			r[d.Target] = nil
			continue
		}
		r[d.Target] = float64(days)
		set++
	}
	return out, transformer.Result{
		Description:  fmt.Sprintf("Derived %s from %s and %s", d.Target, d.From, d.To),
		RowsAffected: set,
		Reason:       d.Reason,
	}
}
