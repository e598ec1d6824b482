package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/components/lookup"
	"github.com/goliatone/go-formflow/components/lookup/sqlitestore"
)

func openSeeded(t *testing.T) (*sqlitestore.Store, *lookup.MemoryStore) {
	t.Helper()

	fixtures, err := lookup.DefaultFixtures()
	require.NoError(t, err)

	dsn := filepath.Join(t.TempDir(), "lookup.db")
	store, err := sqlitestore.OpenSeeded(context.Background(), dsn, fixtures)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store, lookup.NewMemoryStore(fixtures)
}

func TestStoreMatchesMemoryStore(t *testing.T) {
	store, memory := openSeeded(t)
	ctx := context.Background()

	wantProvinces, err := memory.Provinces(ctx)
	require.NoError(t, err)
	gotProvinces, err := store.Provinces(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantProvinces, gotProvinces)

	for _, province := range append(wantProvinces, lookup.Province{Code: "missing"}) {
		want, err := memory.Districts(ctx, province.Code)
		require.NoError(t, err)
		got, err := store.Districts(ctx, province.Code)
		require.NoError(t, err)
		assert.Equal(t, want, got, "districts of %s", province.Code)

		for _, district := range want {
			wantCommunes, err := memory.Communes(ctx, district.Code)
			require.NoError(t, err)
			gotCommunes, err := store.Communes(ctx, district.Code)
			require.NoError(t, err)
			assert.Equal(t, wantCommunes, gotCommunes, "communes of %s", district.Code)

			for _, commune := range wantCommunes {
				wantVillages, err := memory.Villages(ctx, commune.Code)
				require.NoError(t, err)
				gotVillages, err := store.Villages(ctx, commune.Code)
				require.NoError(t, err)
				assert.Equal(t, wantVillages, gotVillages, "villages of %s", commune.Code)
			}
		}
	}
}

func TestStoreSearchLicensesMatchesMemoryStore(t *testing.T) {
	store, memory := openSeeded(t)
	ctx := context.Background()

	cases := []struct {
		query string
		limit int
	}{
		{query: "s00", limit: 10},
		{query: "S00", limit: 3},
		{query: "កសិ", limit: 10},
		{query: "V000", limit: 0},
		{query: "", limit: 2},
		{query: "no-such-license", limit: 10},
	}
	for _, tc := range cases {
		want, err := memory.SearchLicenses(ctx, tc.query, tc.limit)
		require.NoError(t, err)
		got, err := store.SearchLicenses(ctx, tc.query, tc.limit)
		require.NoError(t, err)
		assert.Equal(t, want, got, "query %q limit %d", tc.query, tc.limit)
	}
}

func TestStoreReturnsEmptySlices(t *testing.T) {
	store, _ := openSeeded(t)

	got, err := store.Villages(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestOpenSeededKeepsExistingData(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "lookup.db")

	first, err := sqlitestore.OpenSeeded(ctx, dsn, lookup.Fixtures{
		Provinces: []lookup.Province{{Code: "99", NameEN: "Custom", NameKH: "ផ្ទាល់ខ្លួន"}},
	})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	fixtures, err := lookup.DefaultFixtures()
	require.NoError(t, err)
	second, err := sqlitestore.OpenSeeded(ctx, dsn, fixtures)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	provinces, err := second.Provinces(ctx)
	require.NoError(t, err)
	require.Len(t, provinces, 1)
	assert.Equal(t, "Custom", provinces[0].NameEN)
}

func TestSeedReplacesContent(t *testing.T) {
	store, _ := openSeeded(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx, lookup.Fixtures{
		Licenses: []lookup.License{{ID: 1, Name: "Only", Code: "X1"}},
	}))

	provinces, err := store.Provinces(ctx)
	require.NoError(t, err)
	assert.Empty(t, provinces)

	licenses, err := store.SearchLicenses(ctx, "x", 10)
	require.NoError(t, err)
	assert.Equal(t, []lookup.License{{ID: 1, Name: "Only", Code: "X1"}}, licenses)
}

func TestOpenInMemory(t *testing.T) {
	store, err := sqlitestore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Seed(context.Background(), lookup.Fixtures{
		Provinces: []lookup.Province{{Code: "12", NameEN: "Phnom Penh", NameKH: "ភ្នំពេញ"}},
	}))
	provinces, err := store.Provinces(context.Background())
	require.NoError(t, err)
	assert.Len(t, provinces, 1)
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := sqlitestore.Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	store, _ := openSeeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Provinces(ctx)
	require.Error(t, err)
}
