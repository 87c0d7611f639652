package store

import (
	"github.com/legisdesk/bill-registry/internal/catalog"
	"github.com/legisdesk/bill-registry/internal/models"
)

// Store is the read-only record set served for the lifetime of the process.
// It is safe for concurrent use because nothing mutates it after New.
type Store struct {
	bills []models.Bill
	news  []models.NewsItem
}

// New copies the given records and orders bills newest first.
func New(bills []models.Bill, news []models.NewsItem) *Store {
	n := make([]models.NewsItem, len(news))
	copy(n, news)
	return &Store{
		bills: catalog.SortByIDDescending(bills),
		news:  n,
	}
}

// Bills returns the bills ordered by id descending.
func (s *Store) Bills() []models.Bill {
	out := make([]models.Bill, len(s.bills))
	copy(out, s.bills)
	return out
}

// News returns the news items in load order.
func (s *Store) News() []models.NewsItem {
	out := make([]models.NewsItem, len(s.news))
	copy(out, s.news)
	return out
}

// Bill looks a bill up by id.
func (s *Store) Bill(id string) (models.Bill, bool) {
	return catalog.FindBill(s.bills, id)
}

// Len reports the number of bills and news items.
func (s *Store) Len() (bills, news int) {
	return len(s.bills), len(s.news)
}
