package entity

import (
	"errors"
	"testing"
)

func TestFilterValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  *Filter
		wantErr bool
	}{
		{"default matches everything", NewFilter(), false},
		{"known kinds", &Filter{Kinds: []Kind{KindBankAccount, KindQris}, PriorityMax: 100}, false},
		{"unknown kind", &Filter{Kinds: []Kind{Kind("stock")}, PriorityMax: 100}, true},
		{"priority_min below range", &Filter{PriorityMin: -1, PriorityMax: 100}, true},
		{"priority_max above range", &Filter{PriorityMax: 101}, true},
		{"inverted priority range", &Filter{PriorityMin: 80, PriorityMax: 20}, true},
		{"narrow valid range", &Filter{PriorityMin: 40, PriorityMax: 40}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedFilter) {
					t.Fatalf("expected ErrMalformedFilter, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected valid filter, got %v", err)
			}
		})
	}
}
