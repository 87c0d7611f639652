package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/legisdesk/bill-registry/internal/models"
)

// ParseID returns the numeric value of a bill id and whether it parsed.
func ParseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SortByIDDescending returns a copy of bills ordered newest first.
// Ids that do not parse as base-10 integers sort after every numeric id,
// ordered by their text. Equal ids keep their input order.
func SortByIDDescending(bills []models.Bill) []models.Bill {
	out := make([]models.Bill, len(bills))
	copy(out, bills)

	sort.SliceStable(out, func(i, j int) bool {
		a, aok := ParseID(out[i].ID)
		b, bok := ParseID(out[j].ID)
		switch {
		case aok && bok:
			return a > b
		case aok != bok:
			return aok
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

// FilterBills keeps bills whose title or ministry contains query
// case-insensitively, or whose id contains query. An empty query returns
// bills unchanged.
func FilterBills(bills []models.Bill, query string) []models.Bill {
	if query == "" {
		return bills
	}
	needle := strings.ToLower(query)

	out := make([]models.Bill, 0, len(bills))
	for _, bill := range bills {
		if containsFold(bill.Title, needle) ||
			containsFold(bill.Ministry, needle) ||
			strings.Contains(bill.ID, query) {
			out = append(out, bill)
		}
	}
	return out
}

// FilterNews applies the same rule as FilterBills across title, content and category.
func FilterNews(items []models.NewsItem, query string) []models.NewsItem {
	if query == "" {
		return items
	}
	needle := strings.ToLower(query)

	out := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		if containsFold(item.Title, needle) ||
			containsFold(item.Content, needle) ||
			containsFold(string(item.Category), needle) {
			out = append(out, item)
		}
	}
	return out
}

// FindBill looks a bill up by exact id.
func FindBill(bills []models.Bill, id string) (models.Bill, bool) {
	for _, bill := range bills {
		if bill.ID == id {
			return bill, true
		}
	}
	return models.Bill{}, false
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}
