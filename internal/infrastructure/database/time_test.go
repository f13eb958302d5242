package database

import (
	"testing"
	"time"
)

func TestNeoTimeNormalizesZones(t *testing.T) {
	wib := time.FixedZone("WIB", 7*60*60)

	// noon in Jakarta is 05:00 UTC; the stored string must say so
	local := time.Date(2026, 3, 1, 12, 0, 0, 0, wib)
	if got := neoTime(local); got != "2026-03-01T05:00:00.000Z" {
		t.Errorf("neoTime(%v) = %q, want the UTC instant", local, got)
	}

	utc := time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)
	if neoTime(local) != neoTime(utc) {
		t.Error("equal instants in different zones must format identically")
	}

	// round-trip: parsing the stored string yields the original instant
	parsed, err := time.Parse("2006-01-02T15:04:05.000Z", neoTime(local))
	if err != nil {
		t.Fatalf("stored value does not parse: %v", err)
	}
	if !parsed.Equal(local) {
		t.Errorf("stored instant %v differs from input instant %v", parsed, local)
	}
}
