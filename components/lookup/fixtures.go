package lookup

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

//go:embed data/fixtures.json data/openapi.yaml
var dataFS embed.FS

const defaultFixturesPath = "data/fixtures.json"

type Province struct {
	Code   string `json:"code"`
	NameEN string `json:"name_en"`
	NameKH string `json:"name_kh"`
}

type District struct {
	Code         string `json:"code"`
	ProvinceCode string `json:"province_code"`
	NameEN       string `json:"name_en"`
	NameKH       string `json:"name_kh"`
}

type Commune struct {
	Code         string `json:"code"`
	ProvinceCode string `json:"province_code"`
	DistrictCode string `json:"district_code"`
	NameEN       string `json:"name_en"`
	NameKH       string `json:"name_kh"`
}

type Village struct {
	Code         string `json:"code"`
	ProvinceCode string `json:"province_code"`
	DistrictCode string `json:"district_code"`
	CommuneCode  string `json:"commune_code"`
	NameEN       string `json:"name_en"`
	NameKH       string `json:"name_kh"`
}

type License struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Fixtures is the complete reference data set served by a MemoryStore.
type Fixtures struct {
	Provinces []Province `json:"provinces"`
	Districts []District `json:"districts"`
	Communes  []Commune  `json:"communes"`
	Villages  []Village  `json:"villages"`
	Licenses  []License  `json:"licenses"`
}

// Clone returns a deep copy of the fixture slices.
func (f Fixtures) Clone() Fixtures {
	return Fixtures{
		Provinces: append([]Province(nil), f.Provinces...),
		Districts: append([]District(nil), f.Districts...),
		Communes:  append([]Commune(nil), f.Communes...),
		Villages:  append([]Village(nil), f.Villages...),
		Licenses:  append([]License(nil), f.Licenses...),
	}
}

var (
	defaultOnce     sync.Once
	defaultFixtures Fixtures
	defaultErr      error
)

// DefaultFixtures returns a copy of the embedded fixture data.
func DefaultFixtures() (Fixtures, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultFixturesPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		fixtures, err := LoadFixtures(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultFixtures = fixtures
	})

	if defaultErr != nil {
		return Fixtures{}, defaultErr
	}
	return defaultFixtures.Clone(), nil
}

// LoadFixtures decodes a fixtures JSON document.
func LoadFixtures(r io.Reader) (Fixtures, error) {
	if r == nil {
		return Fixtures{}, fmt.Errorf("lookup: missing reader")
	}
	var fixtures Fixtures
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fixtures); err != nil {
		return Fixtures{}, fmt.Errorf("lookup: decode fixtures: %w", err)
	}
	return fixtures, nil
}
