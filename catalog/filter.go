// Package catalog holds the storefront's browsing state: client-side
// filtering, server-driven pagination and the views built on top of them.
package catalog

import (
	"strings"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

// AllCategories is the category filter value that matches every product.
const AllCategories = "all"

// Filter returns the products of the loaded page that match search and
// category. Search is a case-insensitive substring match on the name or the
// description; category must equal the product's category id unless it is
// AllCategories or empty. The input slice is never modified.
func Filter(items []models.Product, search, category string) []models.Product {
	needle := strings.ToLower(search)
	out := make([]models.Product, 0, len(items))
	for _, item := range items {
		if matchesCategory(item, category) && matchesSearch(item, needle) {
			out = append(out, item)
		}
	}
	return out
}

func matchesSearch(item models.Product, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), needle) ||
		strings.Contains(strings.ToLower(item.Description), needle)
}

func matchesCategory(item models.Product, category string) bool {
	if category == "" || category == AllCategories {
		return true
	}
	return item.CategoryID == category
}
