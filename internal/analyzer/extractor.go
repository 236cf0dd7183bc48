package analyzer

import (
	"regexp"
	"sort"

	"github.com/channelops/taskhealth/internal/monitor"
)

const sellerIDField = "seller_id"

// sellerIDTextPattern finds a seller_id assignment inside raw context
// text that could not be parsed as JSON.
var sellerIDTextPattern = regexp.MustCompile(`["']?seller_id["']?\s*[:"]\s*"?(\d+)`)

// ExtractSellerIDs resolves the seller identifiers referenced by one
// failure record. Resolution order, first success wins: the record's
// direct seller field, then the context payload (structured fields one
// nesting level deep, or a textual match on unparseable payloads), else
// nothing. Malformed context never fails; it yields no identifiers.
func ExtractSellerIDs(rec *monitor.FailureRecord) []string {
	if rec == nil {
		return nil
	}

	if rec.SellerID != "" {
		return []string{string(rec.SellerID)}
	}

	if ids := sellerIDsFromFields(rec.Context.Fields); len(ids) > 0 {
		return ids
	}

	if rec.Context.Raw != "" {
		if m := sellerIDTextPattern.FindStringSubmatch(rec.Context.Raw); m != nil {
			return []string{m[1]}
		}
	}

	return nil
}

// sellerIDsFromFields searches a structured payload for seller IDs at
// the top level and one level of nesting.
func sellerIDsFromFields(fields map[string]any) []string {
	if fields == nil {
		return nil
	}

	ctx := monitor.Context{Fields: fields}
	if id, ok := ctx.FieldString(sellerIDField); ok {
		return []string{id}
	}

	set := make(map[string]struct{})
	for _, v := range fields {
		nested, ok := v.(map[string]any)
		if !ok {
			continue
		}
		nestedCtx := monitor.Context{Fields: nested}
		if id, ok := nestedCtx.FieldString(sellerIDField); ok {
			set[id] = struct{}{}
		}
	}
	return sortedSet(set)
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
