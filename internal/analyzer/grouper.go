package analyzer

import (
	"sort"

	"github.com/channelops/taskhealth/internal/monitor"
)

const (
	// unknownException stands in for records that carry no exception kind.
	unknownException = "UnknownException"

	// maxGroupKeyPattern bounds the pattern portion of the display key.
	maxGroupKeyPattern = 50

	// maxExemplarMessage bounds the exemplar message kept for display.
	maxExemplarMessage = 300
)

// GroupRecords clusters one category's failure records by (exception
// kind, canonical message pattern). Groups come back ordered by
// descending count, ties broken by first occurrence. The sum of group
// counts always equals the number of input records: every record lands
// in exactly one group.
func GroupRecords(records []*monitor.FailureRecord) []*monitor.ErrorGroup {
	type key struct {
		exception string
		pattern   string
	}

	groups := make(map[key]*monitor.ErrorGroup)
	sellers := make(map[key]map[string]struct{})
	var order []key

	for _, rec := range records {
		if rec == nil {
			rec = &monitor.FailureRecord{}
		}

		exception := rec.Exception
		if exception == "" {
			exception = unknownException
		}
		pattern := NormalizeMessage(rec.Message)
		k := key{exception: exception, pattern: PatternKey(pattern)}

		group, ok := groups[k]
		if !ok {
			group = &monitor.ErrorGroup{
				Key:             groupKey(exception, k.pattern),
				Exception:       exception,
				Pattern:         pattern,
				OriginalMessage: truncate(rec.Message, maxExemplarMessage),
				Exemplar:        rec,
			}
			groups[k] = group
			sellers[k] = make(map[string]struct{})
			order = append(order, k)
		}

		group.Count++
		group.RecordIDs = append(group.RecordIDs, rec.ID)
		for _, id := range ExtractSellerIDs(rec) {
			sellers[k][id] = struct{}{}
		}
	}

	result := make([]*monitor.ErrorGroup, 0, len(order))
	for _, k := range order {
		group := groups[k]
		group.SellerIDs = sortedSet(sellers[k])
		result = append(result, group)
	}

	// Stable sort keeps first-seen order among equal counts.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	return result
}

func groupKey(exception, pattern string) string {
	return exception + "::" + truncate(pattern, maxGroupKeyPattern)
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
