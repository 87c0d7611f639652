package appstate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/legisdesk/bill-registry/internal/appstate"
	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/translate"
)

var now = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func loaded(gen uint64, id string) appstate.TranslationLoaded {
	return appstate.TranslationLoaded{
		Generation: gen,
		Result: translate.Result{
			Bill:     models.Bill{ID: id, Title: "अनुवाद"},
			Language: "hi",
		},
	}
}

func TestInitial(t *testing.T) {
	s := appstate.Initial(now)
	require.Equal(t, appstate.TabDashboard, s.ActiveTab)
	require.Equal(t, appstate.ThemeLight, s.Theme)
	require.Equal(t, "en", s.Language)
	require.Equal(t, appstate.SyncIdle, s.Sync.Status)
	require.Equal(t, now.Add(appstate.SyncInterval), s.Sync.NextScheduled)
	require.Equal(t, 1, s.UnreadCount())
	require.NotNil(t, s.Chat)
}

func TestSelectBillInEnglishDoesNotLoad(t *testing.T) {
	s0 := appstate.Initial(now)
	s1 := appstate.Reduce(s0, appstate.SelectBill{BillID: "105"})

	require.Equal(t, "105", s1.Selection.BillID)
	require.EqualValues(t, 1, s1.Selection.Generation)
	require.False(t, s1.Selection.Loading)
	require.False(t, s1.NeedsTranslation(s0))
}

func TestTranslationFlow(t *testing.T) {
	s := appstate.Initial(now)
	s = appstate.Reduce(s, appstate.LanguageChanged{Language: "hi"})
	require.Zero(t, s.Selection.Generation)

	prev := s
	s = appstate.Reduce(s, appstate.SelectBill{BillID: "105"})
	require.True(t, s.Selection.Loading)
	require.True(t, s.NeedsTranslation(prev))

	s = appstate.Reduce(s, loaded(s.Selection.Generation, "105"))
	require.False(t, s.Selection.Loading)
	require.NotNil(t, s.Selection.Translation)
	require.Equal(t, "अनुवाद", s.Selection.Translation.Bill.Title)
}

func TestStaleTranslationDiscarded(t *testing.T) {
	tests := []struct {
		name string
		next appstate.Event
	}{
		{name: "another bill selected", next: appstate.SelectBill{BillID: "104"}},
		{name: "language changed", next: appstate.LanguageChanged{Language: "ta"}},
		{name: "detail closed", next: appstate.CloseDetail{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := appstate.Reduce(appstate.Initial(now), appstate.LanguageChanged{Language: "hi"})
			s = appstate.Reduce(s, appstate.SelectBill{BillID: "105"})
			stale := s.Selection.Generation

			s = appstate.Reduce(s, tt.next)
			after := appstate.Reduce(s, loaded(stale, "105"))

			require.Equal(t, s, after)
			require.Nil(t, after.Selection.Translation)
		})
	}
}

func TestTranslationForOtherBillDiscarded(t *testing.T) {
	s := appstate.Reduce(appstate.Initial(now), appstate.LanguageChanged{Language: "hi"})
	s = appstate.Reduce(s, appstate.SelectBill{BillID: "105"})

	after := appstate.Reduce(s, loaded(s.Selection.Generation, "104"))
	require.Equal(t, s, after)
}

func TestNotifications(t *testing.T) {
	s0 := appstate.Initial(now)
	s1 := appstate.Reduce(s0, appstate.NotificationAdded{Notification: appstate.Notification{ID: "n2", Title: "New Bill"}})
	require.Len(t, s1.Notifications, 2)
	require.Equal(t, "n2", s1.Notifications[0].ID)
	require.Equal(t, 2, s1.UnreadCount())

	s2 := appstate.Reduce(s1, appstate.NotificationsRead{})
	require.Zero(t, s2.UnreadCount())
	require.Equal(t, 2, s1.UnreadCount(), "reduce must not mutate its input")
	require.Len(t, s0.Notifications, 1)
}

func TestSyncLifecycle(t *testing.T) {
	s := appstate.Reduce(appstate.Initial(now), appstate.SyncStarted{})
	require.Equal(t, appstate.SyncSyncing, s.Sync.Status)

	at := now.Add(time.Hour)
	s = appstate.Reduce(s, appstate.SyncCompleted{At: at, NotificationID: "sync-1"})
	require.Equal(t, appstate.SyncCompleted, s.Sync.Status)
	require.Equal(t, at, s.Sync.LastUpdated)
	require.Equal(t, at.Add(appstate.SyncInterval), s.Sync.NextScheduled)
	require.Equal(t, "sync-1", s.Notifications[0].ID)
	require.Contains(t, s.Notifications[0].Message, "11:30:00")

	s = appstate.Reduce(s, appstate.SyncSettled{NotificationID: "sync-1"})
	require.Equal(t, appstate.SyncIdle, s.Sync.Status)
}

func TestLateSettleKeepsNewerSync(t *testing.T) {
	s := appstate.Reduce(appstate.Initial(now), appstate.SyncCompleted{At: now, NotificationID: "sync-1"})
	s = appstate.Reduce(s, appstate.SyncStarted{})
	s = appstate.Reduce(s, appstate.SyncCompleted{At: now.Add(time.Second), NotificationID: "sync-2"})

	s = appstate.Reduce(s, appstate.SyncSettled{NotificationID: "sync-1"})
	require.Equal(t, appstate.SyncCompleted, s.Sync.Status)

	s = appstate.Reduce(s, appstate.SyncSettled{NotificationID: "sync-2"})
	require.Equal(t, appstate.SyncIdle, s.Sync.Status)
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		raw     string
		want    appstate.Event
		wantErr bool
	}{
		{raw: `{"type":"select_bill","billId":"105"}`, want: appstate.SelectBill{BillID: "105"}},
		{raw: `{"type":"language_changed","language":"HI"}`, want: appstate.LanguageChanged{Language: "hi"}},
		{raw: `{"type":"tab_changed","tab":"news"}`, want: appstate.TabChanged{Tab: appstate.TabNews}},
		{raw: `{"type":"theme_changed","theme":"dark"}`, want: appstate.ThemeChanged{Theme: appstate.ThemeDark}},
		{raw: `{"type":"close_detail"}`, want: appstate.CloseDetail{}},
		{raw: `{"type":"notifications_read"}`, want: appstate.NotificationsRead{}},
		{raw: `{"type":"tab_changed","tab":"settings-x"}`, wantErr: true},
		{raw: `{"type":"language_changed","language":"fr"}`, wantErr: true},
		{raw: `{"type":"select_bill"}`, wantErr: true},
		{raw: `{"type":"translation_loaded"}`, wantErr: true},
		{raw: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := appstate.DecodeEvent([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSyncFailed(t *testing.T) {
	s := appstate.Reduce(appstate.Initial(now), appstate.SyncStarted{})
	s = appstate.Reduce(s, appstate.SyncFailed{At: now, NotificationID: "f1", Reason: "index unreachable"})

	require.Equal(t, appstate.SyncIdle, s.Sync.Status)
	require.Equal(t, now, s.Sync.LastUpdated)
	require.Equal(t, "Sync Failed", s.Notifications[0].Title)
	require.Equal(t, "index unreachable", s.Notifications[0].Message)
}
