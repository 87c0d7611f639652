package appstate

import (
	"fmt"
	"slices"

	"github.com/legisdesk/bill-registry/internal/translate"
)

// Reduce applies e to s and returns the resulting state.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case TabChanged:
		s.ActiveTab = e.Tab
	case ThemeChanged:
		s.Theme = e.Theme
	case QueryChanged:
		s.Query = e.Query
	case LanguageChanged:
		s.Language = e.Language
		if s.Selection.BillID != "" {
			s.Selection = Selection{
				BillID:     s.Selection.BillID,
				Generation: s.Selection.Generation + 1,
				Loading:    e.Language != translate.DefaultLanguage,
			}
		}
	case SelectBill:
		s.Selection = Selection{
			BillID:     e.BillID,
			Generation: s.Selection.Generation + 1,
			Loading:    s.Language != translate.DefaultLanguage,
		}
	case CloseDetail:
		s.Selection = Selection{Generation: s.Selection.Generation + 1}
	case TranslationLoaded:
		if e.Generation != s.Selection.Generation || e.Result.Bill.ID != s.Selection.BillID {
			return s
		}
		res := e.Result
		s.Selection.Loading = false
		s.Selection.Translation = &res
	case NotificationsRead:
		notifs := slices.Clone(s.Notifications)
		for i := range notifs {
			notifs[i].Read = true
		}
		s.Notifications = notifs
	case NotificationAdded:
		s.Notifications = prepend(s.Notifications, e.Notification)
	case SyncStarted:
		s.Sync.Status = SyncSyncing
	case SyncCompleted:
		s.Sync = SyncInfo{
			LastUpdated:   e.At,
			NextScheduled: e.At.Add(SyncInterval),
			Status:        SyncCompleted,
			RunID:         e.NotificationID,
		}
		s.Notifications = prepend(s.Notifications, Notification{
			ID:      e.NotificationID,
			Title:   "Sync Completed",
			Message: fmt.Sprintf("Database successfully synchronized at %s", e.At.Format("15:04:05")),
			Time:    e.At,
			Kind:    NotifySync,
		})
	case SyncFailed:
		s.Sync.Status = SyncIdle
		s.Notifications = prepend(s.Notifications, Notification{
			ID:      e.NotificationID,
			Title:   "Sync Failed",
			Message: e.Reason,
			Time:    e.At,
			Kind:    NotifySync,
		})
	case SyncSettled:
		if s.Sync.Status == SyncCompleted && s.Sync.RunID == e.NotificationID {
			s.Sync.Status = SyncIdle
		}
	case ChatUpdated:
		s.Chat = slices.Clone(e.Transcript)
	}
	return s
}

func prepend(list []Notification, n Notification) []Notification {
	out := make([]Notification, 0, len(list)+1)
	out = append(out, n)
	return append(out, list...)
}
