package database

import (
	"strings"
	"testing"

	"suspicious-account-graph/internal/domain/entity"
)

func TestCompileFilterEmpty(t *testing.T) {
	where, params := CompileFilter(entity.NewFilter())
	if where != "true" {
		t.Errorf("empty filter should compile to true, got %q", where)
	}
	if len(params) != 0 {
		t.Errorf("empty filter should carry no params, got %v", params)
	}
}

func TestCompileFilterSingleKind(t *testing.T) {
	f := entity.NewFilter()
	f.Kinds = []entity.Kind{entity.KindBankAccount}

	where, _ := CompileFilter(f)
	if where != "entity:BankAccount" {
		t.Errorf("single kind should compile without parentheses, got %q", where)
	}
}

func TestCompileFilterKindDisjunction(t *testing.T) {
	f := entity.NewFilter()
	f.Kinds = []entity.Kind{entity.KindBankAccount, entity.KindEWallet}

	where, _ := CompileFilter(f)
	if where != "(entity:BankAccount OR entity:EWallet)" {
		t.Errorf("unexpected label disjunction: %q", where)
	}
}

func TestCompileFilterAttributeClauses(t *testing.T) {
	f := entity.NewFilter()
	f.Banks = []string{"BCA", "BRI"}
	f.WalletProviders = []string{"OVO"}
	f.Currencies = []string{"USDT"}
	f.PhoneProviders = []string{"Telkomsel"}

	where, params := CompileFilter(f)

	for _, clause := range []string{
		"entity.bank_name IN $banks",
		"entity.provider IN $wallet_providers",
		"entity.currency IN $currencies",
		"entity.carrier IN $phone_providers",
	} {
		if !strings.Contains(where, clause) {
			t.Errorf("missing clause %q in %q", clause, where)
		}
	}
	if strings.Count(where, " AND ") != 3 {
		t.Errorf("expected 4 AND-joined clauses, got %q", where)
	}

	banks, ok := params["banks"].([]string)
	if !ok || len(banks) != 2 {
		t.Errorf("unexpected banks param: %v", params["banks"])
	}
}

func TestCompileFilterPriorityBounds(t *testing.T) {
	// the default range adds no clauses
	where, params := CompileFilter(entity.NewFilter())
	if strings.Contains(where, "priority") {
		t.Errorf("default priority range should not compile, got %q", where)
	}

	f := entity.NewFilter()
	f.PriorityMin = 30
	f.PriorityMax = 90

	where, params = CompileFilter(f)
	if !strings.Contains(where, "coalesce(entity.priority_score, 0) >= $priority_min") {
		t.Errorf("missing min clause in %q", where)
	}
	if !strings.Contains(where, "coalesce(entity.priority_score, 0) <= $priority_max") {
		t.Errorf("missing max clause in %q", where)
	}
	if params["priority_min"] != 30 || params["priority_max"] != 90 {
		t.Errorf("unexpected priority params: %v", params)
	}
}

func TestCompileFilterSearch(t *testing.T) {
	f := entity.NewFilter()
	f.Search = "0812"

	where, params := CompileFilter(f)
	for _, prop := range []string{"account_number", "wallet_address", "wallet_id", "phone_number", "qris_code", "account_holder", "owner_name"} {
		if !strings.Contains(where, "entity."+prop+" CONTAINS $search") {
			t.Errorf("search clause missing property %q: %q", prop, where)
		}
	}
	if params["search"] != "0812" {
		t.Errorf("unexpected search param: %v", params["search"])
	}

	// blank search adds nothing
	f.Search = "   "
	where, _ = CompileFilter(f)
	if strings.Contains(where, "CONTAINS") {
		t.Errorf("blank search should not compile, got %q", where)
	}
}

func TestCompileFilterCombined(t *testing.T) {
	f := entity.NewFilter()
	f.Kinds = []entity.Kind{entity.KindBankAccount}
	f.Banks = []string{"BNI"}
	f.PriorityMin = 50
	f.Search = "Budi"

	where, params := CompileFilter(f)
	if strings.Count(where, " AND ") != 3 {
		t.Errorf("expected 4 AND-joined clauses, got %q", where)
	}
	if len(params) != 3 {
		t.Errorf("expected 3 params, got %v", params)
	}
}
