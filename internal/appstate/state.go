package appstate

import (
	"time"

	"github.com/legisdesk/bill-registry/internal/llm"
	"github.com/legisdesk/bill-registry/internal/translate"
)

// Tab is a top-level view.
type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabRegistry  Tab = "registry"
	TabAnalytics Tab = "analytics"
	TabMapping   Tab = "mapping"
	TabCalendar  Tab = "calendar"
	TabNews      Tab = "news"
	TabChat      Tab = "chat"
)

var tabs = []Tab{TabDashboard, TabRegistry, TabAnalytics, TabMapping, TabCalendar, TabNews, TabChat}

// Valid reports whether t names a known view.
func (t Tab) Valid() bool {
	for _, known := range tabs {
		if t == known {
			return true
		}
	}
	return false
}

// Theme is the colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// SyncStatus is the state of the data synchronisation indicator.
type SyncStatus string

const (
	SyncIdle      SyncStatus = "Idle"
	SyncSyncing   SyncStatus = "Syncing"
	SyncCompleted SyncStatus = "Completed"
)

// SyncInterval is how far ahead the next sync is scheduled.
const SyncInterval = 30 * time.Minute

// NotificationKind groups notifications.
type NotificationKind string

const (
	NotifyUpdate NotificationKind = "update"
	NotifySync   NotificationKind = "sync"
	NotifyNews   NotificationKind = "news"
)

// Notification is one entry in the notification tray.
type Notification struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Time    time.Time        `json:"time"`
	Read    bool             `json:"isRead"`
	Kind    NotificationKind `json:"type"`
}

// SyncInfo describes the last and next data synchronisation.
type SyncInfo struct {
	LastUpdated   time.Time  `json:"lastUpdated"`
	NextScheduled time.Time  `json:"nextScheduled"`
	Status        SyncStatus `json:"status"`
	// RunID identifies the sync that produced the current status.
	RunID string `json:"runId,omitempty"`
}

// Selection is the bill open in the detail view.
// Generation changes every time the selection or language changes;
// translation results tagged with an older generation are ignored.
type Selection struct {
	BillID      string            `json:"billId,omitempty"`
	Generation  uint64            `json:"generation"`
	Loading     bool              `json:"loading"`
	Translation *translate.Result `json:"translation,omitempty"`
}

// State is everything a client view needs. It is a value: Reduce returns a
// new State and never mutates the one it was given.
type State struct {
	ActiveTab     Tab            `json:"activeTab"`
	Theme         Theme          `json:"theme"`
	Language      string         `json:"language"`
	Query         string         `json:"query"`
	Notifications []Notification `json:"notifications"`
	Sync          SyncInfo       `json:"sync"`
	Selection     Selection      `json:"selection"`
	Chat          []llm.Message  `json:"chat"`
}

// Initial returns the state of a fresh session at now.
func Initial(now time.Time) State {
	return State{
		ActiveTab: TabDashboard,
		Theme:     ThemeLight,
		Language:  translate.DefaultLanguage,
		Notifications: []Notification{
			{
				ID:      "1",
				Title:   "System Initialized",
				Message: "Legislation portal is now live.",
				Time:    now,
				Kind:    NotifySync,
			},
		},
		Sync: SyncInfo{
			LastUpdated:   now,
			NextScheduled: now.Add(SyncInterval),
			Status:        SyncIdle,
		},
		Chat: []llm.Message{},
	}
}

// UnreadCount returns the number of unread notifications.
func (s State) UnreadCount() int {
	n := 0
	for _, notif := range s.Notifications {
		if !notif.Read {
			n++
		}
	}
	return n
}

// NeedsTranslation reports whether a translation for the current selection
// should be started after moving from prev to s.
func (s State) NeedsTranslation(prev State) bool {
	return s.Selection.Loading && s.Selection.Generation != prev.Selection.Generation
}
