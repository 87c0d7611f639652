package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/legisdesk/bill-registry/internal/appstate"
	"github.com/legisdesk/bill-registry/internal/llm"
	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/translate"
)

// ErrNotFound is returned for unknown sessions and bills.
var ErrNotFound = errors.New("not found")

// DefaultSettleDelay is how long the sync indicator shows "Completed".
const DefaultSettleDelay = 3 * time.Second

// BillLookup finds bills by id.
type BillLookup interface {
	Bill(id string) (models.Bill, bool)
}

// Translator translates a bill; it never fails.
type Translator interface {
	Translate(ctx context.Context, bill models.Bill, lang string) translate.Result
}

// Chatter continues a chat transcript.
type Chatter interface {
	Send(ctx context.Context, transcript []llm.Message, lang, text string) ([]llm.Message, error)
}

// SyncFunc refreshes or probes the data source when a client asks for a sync.
type SyncFunc func(ctx context.Context) error

// Options configure a Registry.
type Options struct {
	TTL         time.Duration
	SettleDelay time.Duration
	Sync        SyncFunc
	Log         *slog.Logger
	Now         func() time.Time
}

// Registry holds client sessions and runs their background work.
type Registry struct {
	bills      BillLookup
	translator Translator
	chat       Chatter
	sessions   *gocache.Cache
	ttl        time.Duration
	settle     time.Duration
	sync       SyncFunc
	log        *slog.Logger
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type session struct {
	mu     sync.Mutex
	state  appstate.State
	cancel context.CancelFunc

	// chatMu serializes chat turns so each one sees the previous reply.
	chatMu sync.Mutex
}

// NewRegistry creates a registry. Sessions idle for longer than opts.TTL expire.
func NewRegistry(bills BillLookup, translator Translator, chat Chatter, opts Options) *Registry {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		bills:      bills,
		translator: translator,
		chat:       chat,
		sessions:   gocache.New(opts.TTL, opts.TTL),
		ttl:        opts.TTL,
		settle:     opts.SettleDelay,
		sync:       opts.Sync,
		log:        opts.Log,
		now:        opts.Now,
		ctx:        ctx,
		cancel:     cancel,
	}
	r.sessions.OnEvicted(func(id string, v any) {
		s := v.(*session)
		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
		}
		s.mu.Unlock()
	})
	return r
}

// Create starts a new session and returns its id and initial state.
func (r *Registry) Create() (string, appstate.State) {
	id := uuid.NewString()
	s := &session{state: appstate.Initial(r.now())}
	r.sessions.Set(id, s, r.ttl)
	return id, s.state
}

// Get returns the current state of a session.
func (r *Registry) Get(id string) (appstate.State, error) {
	s, err := r.lookup(id)
	if err != nil {
		return appstate.State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

// Dispatch applies a client event and starts any background work it implies.
func (r *Registry) Dispatch(id string, e appstate.Event) (appstate.State, error) {
	s, err := r.lookup(id)
	if err != nil {
		return appstate.State{}, err
	}
	if sel, ok := e.(appstate.SelectBill); ok {
		if _, found := r.bills.Bill(sel.BillID); !found {
			return appstate.State{}, fmt.Errorf("bill %s: %w", sel.BillID, ErrNotFound)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = appstate.Reduce(prev, e)

	if s.state.Selection.Generation != prev.Selection.Generation && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.state.NeedsTranslation(prev) {
		r.startTranslation(s, s.state.Selection.BillID, s.state.Language, s.state.Selection.Generation)
	}
	if _, ok := e.(appstate.SyncStarted); ok && prev.Sync.Status != appstate.SyncSyncing {
		r.startSync(s)
	}
	return s.state, nil
}

// Chat sends a user message in the session's language and records the transcript.
func (r *Registry) Chat(ctx context.Context, id, text string) (appstate.State, error) {
	s, err := r.lookup(id)
	if err != nil {
		return appstate.State{}, err
	}

	s.chatMu.Lock()
	defer s.chatMu.Unlock()

	s.mu.Lock()
	transcript, lang := s.state.Chat, s.state.Language
	s.mu.Unlock()

	updated, err := r.chat.Send(ctx, transcript, lang, text)
	if err != nil {
		return appstate.State{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = appstate.Reduce(s.state, appstate.ChatUpdated{Transcript: updated})
	return s.state, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}

// Close cancels background work and waits for it to finish.
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()
}

// Wait blocks until all background work started so far has finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}

func (r *Registry) lookup(id string) (*session, error) {
	v, ok := r.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	r.sessions.Set(id, v, r.ttl)
	return v.(*session), nil
}

// startTranslation must be called with s.mu held.
func (r *Registry) startTranslation(s *session, billID, lang string, gen uint64) {
	bill, ok := r.bills.Bill(billID)
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(r.ctx)
	s.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()

		res := r.translator.Translate(ctx, bill, lang)

		s.mu.Lock()
		defer s.mu.Unlock()
		next := appstate.Reduce(s.state, appstate.TranslationLoaded{Generation: gen, Result: res})
		if next.Selection.Translation == nil {
			r.log.Debug("discarded stale translation",
				slog.String("id", billID),
				slog.String("lang", lang),
				slog.Uint64("generation", gen),
			)
		}
		s.state = next
	}()
}

func (r *Registry) startSync(s *session) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		var err error
		if r.sync != nil {
			err = r.sync(r.ctx)
		}

		s.mu.Lock()
		if err != nil {
			r.log.Warn("sync failed", slog.Any("err", err))
			s.state = appstate.Reduce(s.state, appstate.SyncFailed{
				At:             r.now(),
				NotificationID: uuid.NewString(),
				Reason:         err.Error(),
			})
			s.mu.Unlock()
			return
		}
		runID := uuid.NewString()
		s.state = appstate.Reduce(s.state, appstate.SyncCompleted{At: r.now(), NotificationID: runID})
		s.mu.Unlock()

		timer := time.NewTimer(r.settle)
		defer timer.Stop()
		select {
		case <-r.ctx.Done():
		case <-timer.C:
		}

		s.mu.Lock()
		s.state = appstate.Reduce(s.state, appstate.SyncSettled{NotificationID: runID})
		s.mu.Unlock()
	}()
}
