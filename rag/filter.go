package rag

import "github.com/nefac-ai/nefacrag/types"

// FilterOptions are the optional metadata constraints a caller may attach
// to a query. A nil field means no constraint on that dimension.
type FilterOptions struct {
	Audience     *string
	Category     *string
	ResourceType *string
}

// Empty reports whether no constraint is set.
func (o FilterOptions) Empty() bool {
	return o.Audience == nil && o.Category == nil && o.ResourceType == nil
}

// BuildFilter returns a predicate accepting chunks whose metadata sets
// contain every non-nil constraint value. All constraints are ANDed.
// Returns nil when no constraint is set so callers can skip filtering.
func BuildFilter(opts FilterOptions) Predicate {
	if opts.Empty() {
		return nil
	}
	return func(m types.Metadata) bool {
		if opts.Audience != nil && !contains(m.Audience, *opts.Audience) {
			return false
		}
		if opts.Category != nil && !contains(m.NefacCategory, *opts.Category) {
			return false
		}
		if opts.ResourceType != nil && !contains(m.ResourceType, *opts.ResourceType) {
			return false
		}
		return true
	}
}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
