package lookup

import (
	"context"
	"strings"
)

// DefaultLicenseLimit caps license search results.
const DefaultLicenseLimit = 10

// Store is the data source behind the lookup handlers. Unknown codes yield
// empty results, not errors.
type Store interface {
	Provinces(ctx context.Context) ([]Province, error)
	Districts(ctx context.Context, provinceCode string) ([]District, error)
	Communes(ctx context.Context, districtCode string) ([]Commune, error)
	Villages(ctx context.Context, communeCode string) ([]Village, error)
	// SearchLicenses matches query case-insensitively as a substring of the
	// license name or code, in fixture order. limit <= 0 means no cap.
	SearchLicenses(ctx context.Context, query string, limit int) ([]License, error)
}

// MemoryStore serves a fixed Fixtures value.
type MemoryStore struct {
	fixtures Fixtures
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore copies fixtures into a new store.
func NewMemoryStore(fixtures Fixtures) *MemoryStore {
	return &MemoryStore{fixtures: fixtures.Clone()}
}

// DefaultStore returns a MemoryStore over the embedded fixtures.
func DefaultStore() (*MemoryStore, error) {
	fixtures, err := DefaultFixtures()
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(fixtures), nil
}

func (s *MemoryStore) Provinces(ctx context.Context) ([]Province, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Province{}, s.fixtures.Provinces...), nil
}

func (s *MemoryStore) Districts(ctx context.Context, provinceCode string) ([]District, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []District{}
	for _, d := range s.fixtures.Districts {
		if d.ProvinceCode == provinceCode {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *MemoryStore) Communes(ctx context.Context, districtCode string) ([]Commune, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []Commune{}
	for _, c := range s.fixtures.Communes {
		if c.DistrictCode == districtCode {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) Villages(ctx context.Context, communeCode string) ([]Village, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []Village{}
	for _, v := range s.fixtures.Villages {
		if v.CommuneCode == communeCode {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *MemoryStore) SearchLicenses(ctx context.Context, query string, limit int) ([]License, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := []License{}
	for _, license := range s.fixtures.Licenses {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(license.Name), q) || strings.Contains(strings.ToLower(license.Code), q) {
			out = append(out, license)
		}
	}
	return out, nil
}
