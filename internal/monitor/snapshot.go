package monitor

import "sort"

// CategoryResult is one category's slice of a snapshot: a description
// and the failure records found for it, in fetch order.
type CategoryResult struct {
	Description string           `json:"description"`
	Count       int              `json:"count"`
	Records     []*FailureRecord `json:"data"`
}

// Snapshot maps category name to its fetched failure records. It is the
// immutable input of an analysis run; the engine never mutates it after
// Normalize.
type Snapshot map[string]*CategoryResult

// Normalize stamps each record with its owning category and reconciles
// counts with the actual record slices. Call once after decoding.
func (s Snapshot) Normalize() {
	for name, result := range s {
		if result == nil {
			s[name] = &CategoryResult{}
			result = s[name]
		}
		result.Count = len(result.Records)
		for _, rec := range result.Records {
			if rec != nil {
				rec.Category = name
			}
		}
	}
}

// Names returns category names in sorted order so iteration is
// deterministic regardless of map layout.
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalRecords counts records across all categories.
func (s Snapshot) TotalRecords() int {
	total := 0
	for _, result := range s {
		if result != nil {
			total += len(result.Records)
		}
	}
	return total
}
