package feeds

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/processing"
)

const maxConcurrentFeeds = 4

var categoryKeywords = []struct {
	category models.Category
	words    []string
}{
	{models.CategoryElection, []string{"election", "poll", "ballot", "voter", "candidate"}},
	{models.CategoryInternational, []string{"summit", "bilateral", "foreign", "international", "treaty", "nations"}},
	{models.CategoryStateAffairs, []string{"state government", "chief minister", "assembly", "governor", "district"}},
}

// Loader reads political news from RSS/Atom feeds.
type Loader struct {
	urls     []string
	perFeed  int
	timeout  time.Duration
	log      *slog.Logger
	newParse func() *gofeed.Parser
}

// NewLoader returns a loader that keeps at most perFeed items from each feed.
func NewLoader(urls []string, perFeed int, timeout time.Duration, log *slog.Logger) *Loader {
	if perFeed <= 0 {
		perFeed = 20
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{
		urls:     urls,
		perFeed:  perFeed,
		timeout:  timeout,
		log:      log,
		newParse: gofeed.NewParser,
	}
}

// Load fetches every feed concurrently. Feeds that fail are logged and
// skipped; the result is ordered newest first.
func (l *Loader) Load(ctx context.Context) []models.NewsItem {
	results := make([][]models.NewsItem, len(l.urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFeeds)
	for i, url := range l.urls {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(gctx, l.timeout)
			defer cancel()

			feed, err := l.newParse().ParseURLWithContext(url, fctx)
			if err != nil {
				l.log.Warn("news feed unavailable", slog.String("url", url), slog.Any("err", err))
				return nil
			}
			results[i] = ItemsFromFeed(feed, l.perFeed)
			l.log.Debug("news feed loaded", slog.String("url", url), slog.Int("items", len(results[i])))
			return nil
		})
	}
	_ = g.Wait()

	var out []models.NewsItem
	for _, items := range results {
		out = append(out, items...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// ItemsFromFeed converts up to max feed entries into news items.
func ItemsFromFeed(feed *gofeed.Feed, max int) []models.NewsItem {
	if feed == nil {
		return nil
	}
	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = "RSS"
	}

	out := make([]models.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if max > 0 && len(out) >= max {
			break
		}
		if item == nil {
			continue
		}

		content := processing.HTMLToText(item.Description)
		if content == "" {
			content = processing.HTMLToText(item.Content)
		}
		title := processing.CleanText(item.Title)
		if title == "" {
			title = processing.TruncateWords(content, 10)
		}
		if title == "" {
			continue
		}

		out = append(out, models.NewsItem{
			ID:       itemID(item),
			Title:    title,
			Category: Classify(title, content),
			Date:     itemDate(item),
			Content:  content,
			Source:   source,
		})
	}
	return out
}

// Classify assigns a news category from keywords in the title and content.
// Anything unmatched is Policy.
func Classify(title, content string) models.Category {
	text := strings.ToLower(title + " " + content)
	for _, rule := range categoryKeywords {
		for _, w := range rule.words {
			if strings.Contains(text, w) {
				return rule.category
			}
		}
	}
	return models.CategoryPolicy
}

func itemID(item *gofeed.Item) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		key = item.Title + "|" + item.Published
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func itemDate(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.DateOnly)
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC().Format(time.DateOnly)
	}
	return ""
}
