package service

import (
	"fmt"
	"math/rand"
	"time"

	"suspicious-account-graph/internal/domain/entity"
)

// Tier position tags stamped into cluster_id on synthetic nodes.
const (
	TierPlayer     = "player"
	TierPooling    = "pooling"
	TierAggregator = "aggregator"
)

// TopologyConfig sizes one synthetic money-flow network.
type TopologyConfig struct {
	Players        int    `json:"players"`
	Sites          int    `json:"sites"`
	PoolingPerSite int    `json:"pooling_per_site"`
	RequiredBank   string `json:"required_bank,omitempty"`
	Seed           int64  `json:"seed,omitempty"`
}

// Validate rejects configurations that cannot satisfy the tier constraints.
func (c *TopologyConfig) Validate() error {
	if c.Players < 1 {
		return fmt.Errorf("players must be at least 1, got %d", c.Players)
	}
	if c.Sites < 1 {
		return fmt.Errorf("sites must be at least 1, got %d", c.Sites)
	}
	if c.PoolingPerSite < 1 {
		return fmt.Errorf("pooling_per_site must be at least 1, got %d", c.PoolingPerSite)
	}
	return nil
}

// PlannedSite is one synthetic site with its pooling cluster.
type PlannedSite struct {
	Site    *entity.Site
	Pooling []entity.Account
}

// TopologyPlan is the fully materialized network before any write happens.
// Shape is fixed by construction: every player has exactly one outgoing
// transfer into tier 2, every pooling account exactly one into the single
// aggregator, and the aggregator none.
type TopologyPlan struct {
	RunID      string
	Players    []entity.Account
	Sites      []*PlannedSite
	Aggregator entity.Account
	Transfers  []*entity.TransferInput
}

var (
	syntheticBanks     = []string{"BCA", "BRI", "BNI", "Mandiri", "CIMB"}
	syntheticProviders = []string{"OVO", "DANA", "GoPay", "LinkAja"}
	syntheticFirst     = []string{"Budi", "Siti", "Agus", "Dewi", "Rizky", "Putri", "Andi", "Lina", "Joko", "Maya"}
	syntheticLast      = []string{"Santoso", "Wijaya", "Pratama", "Saputra", "Lestari", "Hidayat", "Kusuma", "Halim"}
)

// PlanTopology builds a reproducible player/pooling/aggregator network. The
// same seed yields the same accounts, amounts and wiring; runID only tags the
// output for later cleanup. The required bank is guaranteed in every pooling
// cluster by placing it first, not by sampling.
func PlanTopology(cfg TopologyConfig, runID string, now time.Time) (*TopologyPlan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	requiredBank := cfg.RequiredBank
	if requiredBank == "" {
		requiredBank = syntheticBanks[0]
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	plan := &TopologyPlan{RunID: runID}

	aggregator := &entity.BankAccount{
		AccountNumber: syntheticAccountNumber(rng),
		BankName:      pick(rng, syntheticBanks),
		AccountHolder: syntheticHolder(rng),
		Common:        syntheticMeta(runID, TierAggregator, now),
	}
	plan.Aggregator = aggregator

	var pooling []entity.Account
	for s := 0; s < cfg.Sites; s++ {
		site := &entity.Site{
			URL:            fmt.Sprintf("https://%s-pool-%02d.invalid", shortID(runID), s+1),
			Name:           fmt.Sprintf("Synthetic Pool Site %02d", s+1),
			LastExtraction: now,
			Synthetic:      true,
			RunID:          runID,
		}
		planned := &PlannedSite{Site: site}
		for p := 0; p < cfg.PoolingPerSite; p++ {
			bank := pick(rng, syntheticBanks)
			if p == 0 {
				bank = requiredBank
			}
			acc := &entity.BankAccount{
				AccountNumber: syntheticAccountNumber(rng),
				BankName:      bank,
				AccountHolder: syntheticHolder(rng),
				Common:        syntheticMeta(runID, TierPooling, now),
			}
			planned.Pooling = append(planned.Pooling, acc)
			pooling = append(pooling, acc)
		}
		plan.Sites = append(plan.Sites, planned)
	}

	for i := 0; i < cfg.Players; i++ {
		var player entity.Account
		if rng.Intn(2) == 0 {
			player = &entity.BankAccount{
				AccountNumber: syntheticAccountNumber(rng),
				BankName:      pick(rng, syntheticBanks),
				AccountHolder: syntheticHolder(rng),
				Common:        syntheticMeta(runID, TierPlayer, now),
			}
		} else {
			provider := pick(rng, syntheticProviders)
			player = &entity.EWallet{
				WalletID:  fmt.Sprintf("%s-08%09d", provider, rng.Intn(1_000_000_000)),
				Provider:  provider,
				OwnerName: syntheticHolder(rng),
				Common:    syntheticMeta(runID, TierPlayer, now),
			}
		}
		plan.Players = append(plan.Players, player)

		// each player deposits into exactly one pooling account
		target := pooling[rng.Intn(len(pooling))]
		plan.Transfers = append(plan.Transfers, &entity.TransferInput{
			FromKey:   player.Key(),
			ToKey:     target.Key(),
			Amount:    syntheticAmount(rng),
			Timestamp: now,
			Reference: fmt.Sprintf("deposit-%s-%03d", shortID(runID), i+1),
			Synthetic: true,
			RunID:     runID,
		})
	}

	// every pooling account forwards once to the single aggregator
	for i, acc := range pooling {
		plan.Transfers = append(plan.Transfers, &entity.TransferInput{
			FromKey:   acc.Key(),
			ToKey:     aggregator.Key(),
			Amount:    syntheticAmount(rng),
			Timestamp: now,
			Reference: fmt.Sprintf("sweep-%s-%03d", shortID(runID), i+1),
			Synthetic: true,
			RunID:     runID,
		})
	}

	return plan, nil
}

func syntheticMeta(runID, tier string, now time.Time) entity.Common {
	return entity.Common{
		LastUpdate: now,
		ClusterID:  tier,
		Synthetic:  true,
		RunID:      runID,
	}
}

func syntheticAccountNumber(rng *rand.Rand) string {
	return fmt.Sprintf("%010d", rng.Int63n(10_000_000_000))
}

func syntheticHolder(rng *rand.Rand) string {
	return pick(rng, syntheticFirst) + " " + pick(rng, syntheticLast)
}

func syntheticAmount(rng *rand.Rand) float64 {
	return float64(50_000 + rng.Intn(9_950_001))
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
