package builtin

import (
	"fmt"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"cleanse/internal/transformer"
	"cleanse/pkg/records"
)

// DeDup removes all but the first occurrence of each key value, preserving
// first-seen order. Keys lists the fields forming the business key; an empty
// Keys means the whole record (every dataset column) is the key.
//
// Two policies occur in practice and both are just key choices here:
// whole-record removal on single-source data early in a pipeline, and
// composite-key removal (e.g. ticket_id+title+source) after unification.
//
// RowsAffected counts removed records.
type DeDup struct {
	Keys   []string
	Reason string
}

func (d DeDup) Name() string {
	if len(d.Keys) == 0 {
		return "dedup:whole-record"
	}
	return "dedup:" + strings.Join(d.Keys, ",")
}

func (d DeDup) Apply(in *records.Dataset) (*records.Dataset, transformer.Result) {
	keys := d.Keys
	if len(keys) == 0 {
		keys = in.Columns
	}

	out := records.New(in.Columns)
	seen := make(map[uint64]struct{}, in.Len())
	removed := 0
	for _, r := range in.Records {
		k := keyOf(r, keys)
		if _, dup := seen[k]; dup {
			removed++
			continue
		}
		seen[k] = struct{}{}
		out.Append(r.Clone())
	}
	return out, transformer.Result{
		Description:  "Removed duplicate records",
		RowsAffected: removed,
		Reason:       d.Reason,
	}
}

// keyOf hashes the key fields into a single digest. Values are rendered to a
// stable textual form first; nil and absent fields use distinct markers so a
// genuinely-nil value never collides with a missing key field.
func keyOf(r records.Record, keys []string) uint64 {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		v, ok := r[k]
		switch {
		case !ok:
			b.WriteByte(0x02)
		case v == nil:
			b.WriteByte(0x00)
		default:
			switch t := v.(type) {
			case string:
				b.WriteString(t)
			case time.Time:
				b.WriteString(t.UTC().Format(time.RFC3339Nano))
			default:
				b.WriteString(fmt.Sprint(t))
			}
		}
	}
	return xxh3.HashString(b.String())
}
