package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/legisdesk/bill-registry/internal/appstate"
	"github.com/legisdesk/bill-registry/internal/chat"
	"github.com/legisdesk/bill-registry/internal/llm"
	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/session"
	"github.com/legisdesk/bill-registry/internal/store"
	"github.com/legisdesk/bill-registry/internal/translate"
)

var ignoreJanitor = goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run")

type gatedTranslator struct {
	mu        sync.Mutex
	started   []string
	cancelled []string
	release   chan struct{}
}

func (g *gatedTranslator) Translate(ctx context.Context, bill models.Bill, lang string) translate.Result {
	g.mu.Lock()
	g.started = append(g.started, bill.ID)
	g.mu.Unlock()

	select {
	case <-g.release:
	case <-ctx.Done():
		g.mu.Lock()
		g.cancelled = append(g.cancelled, bill.ID)
		g.mu.Unlock()
	}

	bill.Title = "[" + lang + "] " + bill.Title
	return translate.Result{Bill: bill, Language: lang}
}

func (g *gatedTranslator) startedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.started)
}

type echoChat struct{}

func (echoChat) Send(ctx context.Context, transcript []llm.Message, lang, text string) ([]llm.Message, error) {
	if text == "" {
		return transcript, chat.ErrEmptyMessage
	}
	out := append([]llm.Message{}, transcript...)
	return append(out,
		llm.Message{Role: llm.RoleUser, Text: text},
		llm.Message{Role: llm.RoleModel, Text: lang + ":" + text},
	), nil
}

// slowChat holds the first call until release is closed and records the
// transcript length each call saw.
type slowChat struct {
	entered chan struct{}
	release chan struct{}

	mu   sync.Mutex
	seen []int
}

func (c *slowChat) Send(ctx context.Context, transcript []llm.Message, lang, text string) ([]llm.Message, error) {
	c.mu.Lock()
	c.seen = append(c.seen, len(transcript))
	first := len(c.seen) == 1
	c.mu.Unlock()

	c.entered <- struct{}{}
	if first {
		<-c.release
	}
	out := append(append([]llm.Message{}, transcript...), llm.Message{Role: llm.RoleUser, Text: text})
	return append(out, llm.Message{Role: llm.RoleModel, Text: "re:" + text}), nil
}

func newRegistry(tr session.Translator, opts session.Options) *session.Registry {
	return session.NewRegistry(store.Static(), tr, echoChat{}, opts)
}

func TestCreateAndGet(t *testing.T) {
	r := newRegistry(&gatedTranslator{}, session.Options{})
	defer r.Close()

	id, st := r.Create()
	require.NotEmpty(t, id)
	require.Equal(t, appstate.TabDashboard, st.ActiveTab)
	require.Equal(t, 1, r.Len())

	got, err := r.Get(id)
	require.NoError(t, err)
	require.Equal(t, st, got)

	_, err = r.Get("missing")
	require.ErrorIs(t, err, session.ErrNotFound)

	_, err = r.Dispatch("missing", appstate.CloseDetail{})
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSelectUnknownBill(t *testing.T) {
	r := newRegistry(&gatedTranslator{}, session.Options{})
	defer r.Close()

	id, _ := r.Create()
	_, err := r.Dispatch(id, appstate.SelectBill{BillID: "999"})
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestEnglishSelectionSkipsTranslation(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreJanitor)

	tr := &gatedTranslator{release: make(chan struct{})}
	r := newRegistry(tr, session.Options{})
	defer r.Close()

	id, _ := r.Create()
	st, err := r.Dispatch(id, appstate.SelectBill{BillID: "105"})
	require.NoError(t, err)
	require.False(t, st.Selection.Loading)
	r.Wait()
	require.Zero(t, tr.startedCount())
}

func TestTranslationLoadsIntoSession(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreJanitor)

	tr := &gatedTranslator{release: make(chan struct{})}
	close(tr.release)
	r := newRegistry(tr, session.Options{})
	defer r.Close()

	id, _ := r.Create()
	_, err := r.Dispatch(id, appstate.LanguageChanged{Language: "hi"})
	require.NoError(t, err)

	st, err := r.Dispatch(id, appstate.SelectBill{BillID: "105"})
	require.NoError(t, err)
	require.True(t, st.Selection.Loading)

	r.Wait()
	st, err = r.Get(id)
	require.NoError(t, err)
	require.False(t, st.Selection.Loading)
	require.NotNil(t, st.Selection.Translation)
	require.Equal(t, "105", st.Selection.Translation.Bill.ID)
	require.Contains(t, st.Selection.Translation.Bill.Title, "[hi]")
}

func TestSupersededTranslationIsCancelledAndDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreJanitor)

	tr := &gatedTranslator{release: make(chan struct{})}
	r := newRegistry(tr, session.Options{})
	defer r.Close()

	id, _ := r.Create()
	_, err := r.Dispatch(id, appstate.LanguageChanged{Language: "ta"})
	require.NoError(t, err)

	_, err = r.Dispatch(id, appstate.SelectBill{BillID: "105"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return tr.startedCount() == 1 }, time.Second, time.Millisecond)

	_, err = r.Dispatch(id, appstate.SelectBill{BillID: "104"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return tr.startedCount() == 2 }, time.Second, time.Millisecond)

	close(tr.release)
	r.Wait()

	st, err := r.Get(id)
	require.NoError(t, err)
	require.Equal(t, "104", st.Selection.BillID)
	require.NotNil(t, st.Selection.Translation)
	require.Equal(t, "104", st.Selection.Translation.Bill.ID)
	require.Contains(t, tr.cancelled, "105")
}

func TestCloseDetailDiscardsInFlight(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreJanitor)

	tr := &gatedTranslator{release: make(chan struct{})}
	r := newRegistry(tr, session.Options{})
	defer r.Close()

	id, _ := r.Create()
	_, err := r.Dispatch(id, appstate.LanguageChanged{Language: "bn"})
	require.NoError(t, err)
	_, err = r.Dispatch(id, appstate.SelectBill{BillID: "106"})
	require.NoError(t, err)

	_, err = r.Dispatch(id, appstate.CloseDetail{})
	require.NoError(t, err)
	close(tr.release)
	r.Wait()

	st, err := r.Get(id)
	require.NoError(t, err)
	require.Empty(t, st.Selection.BillID)
	require.Nil(t, st.Selection.Translation)
}

func TestChat(t *testing.T) {
	r := newRegistry(&gatedTranslator{}, session.Options{})
	defer r.Close()

	id, _ := r.Create()
	_, err := r.Dispatch(id, appstate.LanguageChanged{Language: "mr"})
	require.NoError(t, err)

	st, err := r.Chat(context.Background(), id, "What is pending?")
	require.NoError(t, err)
	require.Len(t, st.Chat, 2)
	require.Equal(t, "mr:What is pending?", st.Chat[1].Text)

	_, err = r.Chat(context.Background(), id, "")
	require.ErrorIs(t, err, chat.ErrEmptyMessage)

	_, err = r.Chat(context.Background(), "missing", "hi")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestConcurrentChatKeepsEveryTurn(t *testing.T) {
	sc := &slowChat{entered: make(chan struct{}, 2), release: make(chan struct{})}
	r := session.NewRegistry(store.Static(), &gatedTranslator{}, sc, session.Options{})
	defer r.Close()

	id, _ := r.Create()

	var wg sync.WaitGroup
	for _, text := range []string{"first", "second"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Chat(context.Background(), id, text)
			require.NoError(t, err)
		}()
	}

	<-sc.entered
	time.Sleep(20 * time.Millisecond)
	close(sc.release)
	wg.Wait()

	st, err := r.Get(id)
	require.NoError(t, err)
	require.Len(t, st.Chat, 4)
	require.Equal(t, []int{0, 2}, sc.seen)
}

func TestSync(t *testing.T) {
	defer goleak.VerifyNone(t, ignoreJanitor)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		sync      session.SyncFunc
		wantTitle string
	}{
		{name: "success", sync: func(context.Context) error { return nil }, wantTitle: "Sync Completed"},
		{name: "failure", sync: func(context.Context) error { return errors.New("index unreachable") }, wantTitle: "Sync Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegistry(&gatedTranslator{}, session.Options{
				Sync:        tt.sync,
				SettleDelay: time.Millisecond,
				Now:         func() time.Time { return at },
			})
			defer r.Close()

			id, _ := r.Create()
			st, err := r.Dispatch(id, appstate.SyncStarted{})
			require.NoError(t, err)
			require.Equal(t, appstate.SyncSyncing, st.Sync.Status)

			r.Wait()
			st, err = r.Get(id)
			require.NoError(t, err)
			require.Equal(t, appstate.SyncIdle, st.Sync.Status)
			require.Equal(t, at, st.Sync.LastUpdated)
			require.Equal(t, tt.wantTitle, st.Notifications[0].Title)
		})
	}
}
