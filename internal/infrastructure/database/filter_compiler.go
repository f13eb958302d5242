package database

import (
	"fmt"
	"strings"

	"suspicious-account-graph/internal/domain/entity"
)

// CompileFilter translates a validated filter into a cypher WHERE fragment
// over a node bound as `entity`, plus its parameter map. Clauses join with
// AND; an empty filter compiles to "true". Priority clauses coalesce a
// missing score to 0 so legacy nodes still match the default range.
func CompileFilter(f *entity.Filter) (string, map[string]interface{}) {
	var conditions []string
	params := map[string]interface{}{}

	if len(f.Kinds) > 0 {
		labels := make([]string, 0, len(f.Kinds))
		for _, k := range f.Kinds {
			labels = append(labels, "entity:"+k.Label())
		}
		if len(labels) == 1 {
			conditions = append(conditions, labels[0])
		} else {
			conditions = append(conditions, "("+strings.Join(labels, " OR ")+")")
		}
	}

	if len(f.Banks) > 0 {
		conditions = append(conditions, "entity.bank_name IN $banks")
		params["banks"] = f.Banks
	}

	if len(f.WalletProviders) > 0 {
		conditions = append(conditions, "entity.provider IN $wallet_providers")
		params["wallet_providers"] = f.WalletProviders
	}

	if len(f.Currencies) > 0 {
		conditions = append(conditions, "entity.currency IN $currencies")
		params["currencies"] = f.Currencies
	}

	if len(f.PhoneProviders) > 0 {
		conditions = append(conditions, "entity.carrier IN $phone_providers")
		params["phone_providers"] = f.PhoneProviders
	}

	if f.PriorityMin > 0 {
		conditions = append(conditions, "coalesce(entity.priority_score, 0) >= $priority_min")
		params["priority_min"] = f.PriorityMin
	}
	if f.PriorityMax < 100 {
		conditions = append(conditions, "coalesce(entity.priority_score, 0) <= $priority_max")
		params["priority_max"] = f.PriorityMax
	}

	if strings.TrimSpace(f.Search) != "" {
		searchProps := []string{
			"account_number",
			"wallet_address",
			"wallet_id",
			"phone_number",
			"qris_code",
			"account_holder",
			"owner_name",
		}
		searchConditions := make([]string, 0, len(searchProps))
		for _, prop := range searchProps {
			searchConditions = append(searchConditions, fmt.Sprintf("entity.%s CONTAINS $search", prop))
		}
		conditions = append(conditions, "("+strings.Join(searchConditions, " OR ")+")")
		params["search"] = f.Search
	}

	if len(conditions) == 0 {
		return "true", params
	}
	return strings.Join(conditions, " AND "), params
}
