package entity

import "fmt"

// Filter is the declarative selection specification for graph queries. Each
// populated field contributes one clause; clauses combine with AND. A
// zero-clause filter matches everything.
type Filter struct {
	Kinds           []Kind   `json:"entity_types,omitempty"`
	Banks           []string `json:"banks,omitempty"`
	WalletProviders []string `json:"wallet_providers,omitempty"`
	Currencies      []string `json:"currencies,omitempty"`
	PhoneProviders  []string `json:"phone_providers,omitempty"`
	PriorityMin     int      `json:"priority_min"`
	PriorityMax     int      `json:"priority_max"`
	Search          string   `json:"search,omitempty"`
}

// NewFilter returns a filter that matches everything.
func NewFilter() *Filter {
	return &Filter{PriorityMin: 0, PriorityMax: 100}
}

// Validate rejects malformed specifications before any query runs.
func (f *Filter) Validate() error {
	for _, k := range f.Kinds {
		if !k.Valid() {
			return fmt.Errorf("%w: unknown entity type %q", ErrMalformedFilter, string(k))
		}
	}
	if f.PriorityMin < 0 || f.PriorityMin > 100 {
		return fmt.Errorf("%w: priority_min %d out of range", ErrMalformedFilter, f.PriorityMin)
	}
	if f.PriorityMax < 0 || f.PriorityMax > 100 {
		return fmt.Errorf("%w: priority_max %d out of range", ErrMalformedFilter, f.PriorityMax)
	}
	if f.PriorityMin > f.PriorityMax {
		return fmt.Errorf("%w: priority_min %d exceeds priority_max %d", ErrMalformedFilter, f.PriorityMin, f.PriorityMax)
	}
	return nil
}
