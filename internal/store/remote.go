package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/legisdesk/bill-registry/internal/models"
)

var errNoURL = errors.New("bill endpoint url is empty")

// RemoteLoader performs one blocking GET against an endpoint that returns a
// JSON array of bill rows.
type RemoteLoader struct {
	URL    string
	Client *http.Client
	Log    *slog.Logger
}

// NewRemoteLoader builds a loader with a bounded HTTP client.
func NewRemoteLoader(url string, timeout time.Duration, log *slog.Logger) *RemoteLoader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RemoteLoader{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
		Log:    log,
	}
}

// LoadBills implements BillLoader.
func (l *RemoteLoader) LoadBills(ctx context.Context) ([]models.Bill, error) {
	rows, err := l.FetchRows(ctx)
	if err != nil {
		return nil, err
	}
	return billsFromRows(rows, l.Log), nil
}

// FetchRows returns the raw rows without validation.
func (l *RemoteLoader) FetchRows(ctx context.Context) ([]models.BillRow, error) {
	if l.URL == "" {
		return nil, fmt.Errorf("fetch bills: %w", errNoURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build bills request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bills: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch bills: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rows []models.BillRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode bills: %w", err)
	}
	return rows, nil
}
