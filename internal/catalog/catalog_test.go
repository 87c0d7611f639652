package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/legisdesk/bill-registry/internal/catalog"
	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/store"
)

func ids(bills []models.Bill) []string {
	out := make([]string, 0, len(bills))
	for _, b := range bills {
		out = append(out, b.ID)
	}
	return out
}

func TestSortByIDDescending(t *testing.T) {
	in := []models.Bill{{ID: "108"}, {ID: "104"}, {ID: "105"}}
	got := catalog.SortByIDDescending(in)
	require.Equal(t, []string{"108", "105", "104"}, ids(got))
	require.Equal(t, []string{"108", "104", "105"}, ids(in), "input must not be reordered")
}

func TestSortByIDDescendingNumericNotLexical(t *testing.T) {
	got := catalog.SortByIDDescending([]models.Bill{{ID: "9"}, {ID: "100"}, {ID: "25"}})
	require.Equal(t, []string{"100", "25", "9"}, ids(got))
}

func TestSortByIDDescendingNonNumericLast(t *testing.T) {
	got := catalog.SortByIDDescending([]models.Bill{{ID: "b-2"}, {ID: "7"}, {ID: "a-1"}, {ID: "12"}})
	require.Equal(t, []string{"12", "7", "a-1", "b-2"}, ids(got))
}

func TestSortByIDDescendingNonIncreasing(t *testing.T) {
	got := catalog.SortByIDDescending(store.Static().Bills())
	for i := 1; i < len(got); i++ {
		prev, ok := catalog.ParseID(got[i-1].ID)
		require.True(t, ok)
		cur, ok := catalog.ParseID(got[i].ID)
		require.True(t, ok)
		require.GreaterOrEqual(t, prev, cur)
	}
}

func TestFilterBillsEmptyQueryIsIdentity(t *testing.T) {
	bills := store.Static().Bills()
	require.Equal(t, bills, catalog.FilterBills(bills, ""))
}

func TestFilterBills(t *testing.T) {
	bills := store.Static().Bills()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "title case-insensitive", query: "waqf", want: []string{"105"}},
		{name: "ministry", query: "HOME AFFAIRS", want: []string{"108", "104"}},
		{name: "id substring", query: "07", want: []string{"107"}},
		{name: "no match", query: "railways", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ids(catalog.FilterBills(bills, tt.query)))
		})
	}
}

func TestFilterBillsPartition(t *testing.T) {
	bills := store.Static().Bills()
	for _, query := range []string{"bill", "FINANCE", "10", "amendment", "zzz"} {
		kept := catalog.FilterBills(bills, query)
		keptIDs := make(map[string]bool, len(kept))
		for _, b := range kept {
			keptIDs[b.ID] = true
		}
		q := strings.ToLower(query)
		for _, b := range bills {
			match := strings.Contains(strings.ToLower(b.Title), q) ||
				strings.Contains(strings.ToLower(b.Ministry), q) ||
				strings.Contains(b.ID, query)
			require.Equal(t, match, keptIDs[b.ID], "query %q bill %s", query, b.ID)
		}
	}
}

func TestFilterNews(t *testing.T) {
	news := store.Static().News()
	require.Equal(t, news, catalog.FilterNews(news, ""))

	got := catalog.FilterNews(news, "policy")
	require.Len(t, got, 2)
	for _, item := range got {
		require.Equal(t, models.CategoryPolicy, item.Category)
	}

	got = catalog.FilterNews(news, "bharat mandapam")
	require.Len(t, got, 1)
	require.Equal(t, "n3", got[0].ID)
}

func TestFindBill(t *testing.T) {
	bills := store.Static().Bills()
	bill, ok := catalog.FindBill(bills, "106")
	require.True(t, ok)
	require.Equal(t, "Petroleum and Natural Gas", bill.Ministry)

	_, ok = catalog.FindBill(bills, "999")
	require.False(t, ok)
}
