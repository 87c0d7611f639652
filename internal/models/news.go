package models

// Category groups news items on the news page.
type Category string

const (
	CategoryElection      Category = "Election"
	CategoryPolicy        Category = "Policy"
	CategoryInternational Category = "International"
	CategoryStateAffairs  Category = "State Affairs"
)

// NewsItem is a political news entry. It has no relation to Bill.
type NewsItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Date     string   `json:"date"`
	Content  string   `json:"content"`
	Source   string   `json:"source"`
}
