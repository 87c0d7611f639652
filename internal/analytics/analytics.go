package analytics

import (
	"sort"

	"github.com/legisdesk/bill-registry/internal/models"
)

const (
	// TopMinistries caps the ministry ranking.
	TopMinistries = 6
	// UnassignedState labels bills without a state.
	UnassignedState = "Unassigned"
)

// NameCount is one ministry bucket.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// StatusCount is one status bucket.
type StatusCount struct {
	Status models.Status `json:"status"`
	Count  int           `json:"count"`
}

// StateShare is one state bucket with its share of the input.
type StateShare struct {
	State   string  `json:"state"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// CountByMinistry ranks ministries by bill count, ties by name, keeping the top six.
func CountByMinistry(bills []models.Bill) []NameCount {
	counts := make(map[string]int)
	for _, bill := range bills {
		counts[bill.Ministry]++
	}

	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Name < out[j].Name
		}
		return out[i].Count > out[j].Count
	})

	if len(out) > TopMinistries {
		out = out[:TopMinistries]
	}
	return out
}

// CountByStatus walks the status enumeration and reports the non-zero buckets.
func CountByStatus(bills []models.Bill) []StatusCount {
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, bill := range bills {
		counts[bill.Status]++
	}

	out := make([]StatusCount, 0, len(models.Statuses))
	for _, status := range models.Statuses {
		if n := counts[status]; n > 0 {
			out = append(out, StatusCount{Status: status, Count: n})
		}
	}
	return out
}

// CountByState ranks states by bill count. Bills without a state fall into
// the Unassigned bucket.
func CountByState(bills []models.Bill) []StateShare {
	counts := make(map[string]int)
	for _, bill := range bills {
		state := bill.State
		if state == "" {
			state = UnassignedState
		}
		counts[state]++
	}

	total := len(bills)
	out := make([]StateShare, 0, len(counts))
	for state, count := range counts {
		out = append(out, StateShare{
			State:   state,
			Count:   count,
			Percent: percent(count, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].State < out[j].State
		}
		return out[i].Count > out[j].Count
	})
	return out
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
