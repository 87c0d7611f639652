package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/legisdesk/bill-registry/internal/catalog"
	"github.com/legisdesk/bill-registry/internal/models"
)

// ErrInvalidID marks a row whose id is not a base-10 integer.
var ErrInvalidID = errors.New("bill id is not numeric")

// ErrEmptyTitle marks a row without a title.
var ErrEmptyTitle = errors.New("bill title is empty")

var urlRegex = regexp.MustCompile(`https?://[^\s]+`)

var whitespace = regexp.MustCompile(`\s+`)

// RemoveURLs removes all URLs from the input text.
func RemoveURLs(input string) string {
	return urlRegex.ReplaceAllString(input, " ")
}

// CleanText decodes HTML entities, removes URLs and squeezes whitespace.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = RemoveURLs(decoded)
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// HTMLToText extracts the visible text of an HTML fragment.
func HTMLToText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CleanText(fragment)
	}
	doc.Find("script, style").Remove()
	return CleanText(doc.Text())
}

// TruncateWords returns the first sentence of text, cut to maxWords words.
// A zero maxWords keeps the whole sentence.
func TruncateWords(text string, maxWords int) string {
	if text == "" {
		return ""
	}

	text = RemoveURLs(text)
	if end := strings.IndexAny(text, ".!?"); end > 0 {
		text = text[:end]
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if maxWords > 0 && len(words) > maxWords {
		return strings.Join(words[:maxWords], " ") + "..."
	}
	return strings.Join(words, " ")
}

// NormalizeStatus maps a free-text status label onto the status enumeration.
// Unrecognised labels fall back to Pending.
func NormalizeStatus(raw string) models.Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, known := range models.Statuses {
		if s == strings.ToLower(string(known)) {
			return known
		}
	}

	switch {
	case strings.Contains(s, "assent"):
		return models.StatusAssented
	case strings.Contains(s, "withdrawn"), strings.Contains(s, "rejected"):
		return models.StatusWithdrawn
	case strings.Contains(s, "rajya"), strings.Contains(s, "upper"):
		return models.StatusPassedUpperHouse
	case strings.Contains(s, "passed"):
		return models.StatusPassedLowerHouse
	case strings.Contains(s, "introduced"):
		return models.StatusIntroduced
	default:
		return models.StatusPending
	}
}

// BillFromRow validates a flat row and converts it into a Bill.
func BillFromRow(row models.BillRow) (models.Bill, error) {
	id := strings.TrimSpace(row.ID.String())
	if _, ok := catalog.ParseID(id); !ok {
		return models.Bill{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	title := CleanText(row.Title)
	if title == "" {
		return models.Bill{}, fmt.Errorf("bill %s: %w", id, ErrEmptyTitle)
	}

	return models.Bill{
		ID:             id,
		Title:          title,
		Ministry:       CleanText(row.Ministry),
		Status:         NormalizeStatus(row.Status),
		DateIntroduced: strings.TrimSpace(row.DateIntroduced),
	}, nil
}

// RevisionHash fingerprints every field of a bill so that unchanged
// re-deliveries can be recognised.
func RevisionHash(bill models.Bill) string {
	payload, err := json.Marshal(bill)
	if err != nil {
		payload = []byte(bill.ID + "|" + bill.Title + "|" + string(bill.Status))
	}
	s := sha1.Sum(payload)
	return hex.EncodeToString(s[:])
}
