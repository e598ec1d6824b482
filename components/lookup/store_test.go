package lookup

import (
	"context"
	"strings"
	"testing"
)

func TestDefaultFixturesReturnsCopies(t *testing.T) {
	first, err := DefaultFixtures()
	if err != nil {
		t.Fatalf("DefaultFixtures: %v", err)
	}
	if len(first.Provinces) != 25 || len(first.Districts) != 21 || len(first.Communes) != 12 ||
		len(first.Villages) != 7 || len(first.Licenses) != 7 {
		t.Fatalf("unexpected fixture sizes: %d/%d/%d/%d/%d",
			len(first.Provinces), len(first.Districts), len(first.Communes), len(first.Villages), len(first.Licenses))
	}
	first.Provinces[0].NameEN = "mutated"

	second, err := DefaultFixtures()
	if err != nil {
		t.Fatalf("DefaultFixtures: %v", err)
	}
	if second.Provinces[0].NameEN != "Phnom Penh" {
		t.Fatalf("expected embedded fixtures to be isolated from callers")
	}
}

func TestLoadFixturesRejectsUnknownFields(t *testing.T) {
	if _, err := LoadFixtures(strings.NewReader(`{"provinces": [], "regions": []}`)); err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := LoadFixtures(nil); err == nil {
		t.Fatalf("expected missing reader error")
	}
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	store, err := DefaultStore()
	if err != nil {
		t.Fatalf("DefaultStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Provinces(ctx); err == nil {
		t.Fatalf("expected cancelled context error")
	}
	if _, err := store.SearchLicenses(ctx, "s0", 10); err == nil {
		t.Fatalf("expected cancelled context error")
	}
}

func TestMemoryStoreSearchUnlimited(t *testing.T) {
	store, err := DefaultStore()
	if err != nil {
		t.Fatalf("DefaultStore: %v", err)
	}
	got, err := store.SearchLicenses(context.Background(), "V000", 0)
	if err != nil {
		t.Fatalf("SearchLicenses: %v", err)
	}
	if len(got) != 2 || got[0].Code != "V0001" {
		t.Fatalf("unexpected licenses %+v", got)
	}
}
