package analytics_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/legisdesk/bill-registry/internal/analytics"
	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/store"
)

func TestEmptyInput(t *testing.T) {
	require.NotNil(t, analytics.CountByMinistry(nil))
	require.Empty(t, analytics.CountByMinistry(nil))
	require.NotNil(t, analytics.CountByStatus(nil))
	require.Empty(t, analytics.CountByStatus(nil))
	require.NotNil(t, analytics.CountByState(nil))
	require.Empty(t, analytics.CountByState(nil))
}

func TestCountByMinistryRanksLargestFirst(t *testing.T) {
	bills := []models.Bill{
		{ID: "1", Ministry: "Home Affairs"},
		{ID: "2", Ministry: "Finance"},
		{ID: "3", Ministry: "Home Affairs"},
		{ID: "4", Ministry: "Law and Justice"},
		{ID: "5", Ministry: "Home Affairs"},
	}

	got := analytics.CountByMinistry(bills)
	want := []analytics.NameCount{
		{Name: "Home Affairs", Count: 3},
		{Name: "Finance", Count: 1},
		{Name: "Law and Justice", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("CountByMinistry mismatch (-want +got):\n%s", diff)
	}
}

func TestCountByMinistryTopSix(t *testing.T) {
	var bills []models.Bill
	for i, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "A", "B"} {
		bills = append(bills, models.Bill{ID: string(rune('0' + i)), Ministry: name})
	}

	got := analytics.CountByMinistry(bills)
	require.Len(t, got, analytics.TopMinistries)

	sum := 0
	for i, nc := range got {
		sum += nc.Count
		if i > 0 {
			require.GreaterOrEqual(t, got[i-1].Count, nc.Count)
		}
	}
	require.LessOrEqual(t, sum, len(bills))
	require.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, []string{got[0].Name, got[1].Name, got[2].Name, got[3].Name, got[4].Name, got[5].Name})
}

func TestCountByStatusOmitsZero(t *testing.T) {
	got := analytics.CountByStatus(store.Static().Bills())
	want := []analytics.StatusCount{
		{Status: models.StatusIntroduced, Count: 1},
		{Status: models.StatusPending, Count: 3},
		{Status: models.StatusAssented, Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("CountByStatus mismatch (-want +got):\n%s", diff)
	}
}

func TestCountByStateUnassignedAndPercent(t *testing.T) {
	bills := []models.Bill{
		{ID: "1", State: "Delhi"},
		{ID: "2"},
		{ID: "3", State: "Delhi"},
		{ID: "4", State: "Assam"},
	}

	got := analytics.CountByState(bills)
	want := []analytics.StateShare{
		{State: "Delhi", Count: 2, Percent: 50},
		{State: "Assam", Count: 1, Percent: 25},
		{State: analytics.UnassignedState, Count: 1, Percent: 25},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("CountByState mismatch (-want +got):\n%s", diff)
	}
}

func TestCountByStatePercentagesBounded(t *testing.T) {
	got := analytics.CountByState(store.Static().Bills())
	total := 0.0
	for _, s := range got {
		require.False(t, math.IsNaN(s.Percent))
		total += s.Percent
	}
	require.InDelta(t, 100, total, 0.001)
}
