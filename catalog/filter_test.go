package catalog

import (
	"reflect"
	"testing"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

func sampleItems() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Lipstick", Description: "Matte red", CategoryID: "lips"},
		{ID: "2", Name: "Serum", Description: "Vitamin C for glowing skin", CategoryID: "skin"},
		{ID: "3", Name: "Lip Balm", Description: "Tinted", CategoryID: "lips"},
		{ID: "4", Name: "Kajal", Description: "Smudge-proof LIP-safe formula", CategoryID: "eyes"},
	}
}

func names(items []models.Product) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		items    []models.Product
		search   string
		category string
		want     []string
	}{
		{
			name:     "search on name",
			items:    []models.Product{{Name: "Lipstick"}, {Name: "Serum"}},
			search:   "lip",
			category: AllCategories,
			want:     []string{"Lipstick"},
		},
		{
			name:     "search is case insensitive and covers description",
			items:    sampleItems(),
			search:   "LIP",
			category: AllCategories,
			want:     []string{"Lipstick", "Lip Balm", "Kajal"},
		},
		{
			name:     "category equality",
			items:    sampleItems(),
			category: "lips",
			want:     []string{"Lipstick", "Lip Balm"},
		},
		{
			name:     "search and category combine with and",
			items:    sampleItems(),
			search:   "balm",
			category: "lips",
			want:     []string{"Lip Balm"},
		},
		{
			name:     "unknown category yields empty list",
			items:    sampleItems(),
			category: "nails",
			want:     []string{},
		},
		{
			name:     "empty category behaves like all",
			items:    sampleItems(),
			search:   "serum",
			category: "",
			want:     []string{"Serum"},
		},
		{
			name:     "nil input",
			items:    nil,
			category: AllCategories,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(tt.items, tt.search, tt.category)
			if got == nil {
				t.Fatalf("filter must return a non-nil slice")
			}
			if !reflect.DeepEqual(names(got), tt.want) {
				t.Fatalf("Filter() = %v, want %v", names(got), tt.want)
			}
		})
	}
}

func TestFilterDefaultsAreIdentity(t *testing.T) {
	items := sampleItems()
	if got := Filter(items, "", AllCategories); !reflect.DeepEqual(got, items) {
		t.Fatalf("Filter(items, \"\", all) = %v, want items unchanged", names(got))
	}
}

func TestFilterIsIdempotentAndPure(t *testing.T) {
	items := sampleItems()
	before := sampleItems()

	once := Filter(items, "lip", "lips")
	twice := Filter(once, "lip", "lips")
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter not idempotent: %v vs %v", names(once), names(twice))
	}
	if again := Filter(items, "lip", "lips"); !reflect.DeepEqual(once, again) {
		t.Fatalf("filter not stable across calls")
	}
	if !reflect.DeepEqual(items, before) {
		t.Fatalf("filter mutated its input")
	}
}
