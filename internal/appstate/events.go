package appstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/legisdesk/bill-registry/internal/llm"
	"github.com/legisdesk/bill-registry/internal/translate"
)

// ErrUnknownEvent is returned when an event envelope cannot be decoded.
var ErrUnknownEvent = errors.New("unknown event")

// Event is an input to Reduce.
type Event interface {
	event()
}

type (
	TabChanged      struct{ Tab Tab }
	ThemeChanged    struct{ Theme Theme }
	LanguageChanged struct{ Language string }
	QueryChanged    struct{ Query string }
	SelectBill      struct{ BillID string }
	CloseDetail     struct{}

	// TranslationLoaded carries a finished translation for the generation it was started in.
	TranslationLoaded struct {
		Generation uint64
		Result     translate.Result
	}

	NotificationsRead struct{}
	NotificationAdded struct{ Notification Notification }
	SyncStarted       struct{}

	// SyncCompleted records a finished sync and posts a notification with NotificationID.
	SyncCompleted struct {
		At             time.Time
		NotificationID string
	}

	// SyncFailed records a failed sync attempt.
	SyncFailed struct {
		At             time.Time
		NotificationID string
		Reason         string
	}

	// SyncSettled returns the indicator to idle if NotificationID still
	// names the latest completed sync.
	SyncSettled struct{ NotificationID string }

	ChatUpdated struct{ Transcript []llm.Message }
)

func (TabChanged) event()        {}
func (ThemeChanged) event()      {}
func (LanguageChanged) event()   {}
func (QueryChanged) event()      {}
func (SelectBill) event()        {}
func (CloseDetail) event()       {}
func (TranslationLoaded) event() {}
func (NotificationsRead) event() {}
func (NotificationAdded) event() {}
func (SyncStarted) event()       {}
func (SyncCompleted) event()     {}
func (SyncFailed) event()        {}
func (SyncSettled) event()       {}
func (ChatUpdated) event()       {}

// Envelope is the wire form of client-originated events.
type Envelope struct {
	Type     string `json:"type"`
	Tab      string `json:"tab,omitempty"`
	Theme    string `json:"theme,omitempty"`
	Language string `json:"language,omitempty"`
	Query    string `json:"query,omitempty"`
	BillID   string `json:"billId,omitempty"`
}

// DecodeEvent parses a client event. Events produced by the server itself
// (translation results, sync completion, chat) are not accepted.
func DecodeEvent(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return env.Event()
}

// Event converts the envelope into a typed event.
func (e Envelope) Event() (Event, error) {
	switch e.Type {
	case "tab_changed":
		tab := Tab(e.Tab)
		if !tab.Valid() {
			return nil, fmt.Errorf("%w: tab %q", ErrUnknownEvent, e.Tab)
		}
		return TabChanged{Tab: tab}, nil
	case "theme_changed":
		switch Theme(e.Theme) {
		case ThemeLight, ThemeDark:
			return ThemeChanged{Theme: Theme(e.Theme)}, nil
		}
		return nil, fmt.Errorf("%w: theme %q", ErrUnknownEvent, e.Theme)
	case "language_changed":
		tag, ok := translate.NormalizeLanguage(e.Language)
		if !ok {
			return nil, fmt.Errorf("%w: language %q", ErrUnknownEvent, e.Language)
		}
		return LanguageChanged{Language: tag}, nil
	case "query_changed":
		return QueryChanged{Query: e.Query}, nil
	case "select_bill":
		if e.BillID == "" {
			return nil, fmt.Errorf("%w: select_bill without billId", ErrUnknownEvent)
		}
		return SelectBill{BillID: e.BillID}, nil
	case "close_detail":
		return CloseDetail{}, nil
	case "notifications_read":
		return NotificationsRead{}, nil
	case "sync_started":
		return SyncStarted{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, e.Type)
	}
}
