package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/portfoliobot/core/telegram/callbacks"
	"github.com/m3rciful/portfoliobot/core/telegram/keyboard"
	"github.com/m3rciful/portfoliobot/core/telegram/state"
	"github.com/m3rciful/portfoliobot/internal/domain"
)

const (
	adminID int64 = 1000
	userID  int64 = 42
)

// fakeRepo mirrors the store semantics in memory.
type fakeRepo struct {
	mu     sync.Mutex
	users  map[int64]domain.User
	cats   []domain.Category
	items  []domain.PortfolioItem
	nextID int64

	// beforeFetch runs once before the next FetchItemAt, e.g. to delete rows mid-browse.
	beforeFetch func()
	fetches     int
}

func newFakeRepo() *fakeRepo {
	r := &fakeRepo{users: map[int64]domain.User{}}
	for i, name := range domain.DefaultCategories {
		r.cats = append(r.cats, domain.Category{ID: int64(i + 1), Name: name})
	}
	return r
}

func (r *fakeRepo) UpsertUser(_ context.Context, telegramID int64, username *string, isAdmin bool) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[telegramID]
	if !ok {
		u = domain.User{ID: int64(len(r.users) + 1), TelegramID: telegramID}
	}
	u.Username = username
	u.IsAdmin = u.IsAdmin || isAdmin
	r.users[telegramID] = u
	return u, nil
}

func (r *fakeRepo) FindUserByIdentity(_ context.Context, telegramID int64) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[telegramID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) RecentUsers(_ context.Context, limit int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) ListCategories(context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.Category(nil), r.cats...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) FindCategory(_ context.Context, id int64) (domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cats {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, domain.ErrNotFound
}

func (r *fakeRepo) InsertItem(_ context.Context, item domain.PortfolioItem) (domain.PortfolioItem, error) {
	if err := item.Validate(); err != nil {
		return domain.PortfolioItem{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	item.ID = r.nextID
	r.items = append(r.items, item)
	return item, nil
}

func (r *fakeRepo) FindItem(_ context.Context, id int64) (domain.PortfolioItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.PortfolioItem{}, domain.ErrNotFound
}

func (r *fakeRepo) ApproveItem(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID != id {
			continue
		}
		if r.items[i].IsApproved {
			return domain.ErrAlreadyApproved
		}
		r.items[i].IsApproved = true
		return nil
	}
	return domain.ErrNotFound
}

func (r *fakeRepo) DeleteItem(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeRepo) matching(f domain.Filter) []domain.PortfolioItem {
	var out []domain.PortfolioItem
	for _, it := range r.items {
		if it.IsApproved != f.Approved {
			continue
		}
		if f.CategoryID != domain.AllCategories && it.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (r *fakeRepo) CountItems(_ context.Context, f domain.Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matching(f)), nil
}

func (r *fakeRepo) FetchItemAt(_ context.Context, f domain.Filter, offset int) (domain.PortfolioItem, error) {
	r.mu.Lock()
	hook := r.beforeFetch
	r.beforeFetch = nil
	r.fetches++
	r.mu.Unlock()
	if hook != nil {
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.matching(f)
	if offset < 0 || offset >= len(items) {
		return domain.PortfolioItem{}, domain.ErrNotFound
	}
	return items[offset], nil
}

func (r *fakeRepo) Stats(context.Context) (domain.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := domain.Stats{Users: len(r.users), Items: len(r.items)}
	for _, it := range r.items {
		if it.IsApproved {
			st.Approved++
		} else {
			st.Pending++
		}
	}
	return st, nil
}

func (r *fakeRepo) allItems() []domain.PortfolioItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PortfolioItem(nil), r.items...)
}

// seed inserts items directly, bypassing the dialogue.
func (r *fakeRepo) seed(t *testing.T, n int, approved bool, categoryID int64) []domain.PortfolioItem {
	t.Helper()
	var out []domain.PortfolioItem
	for i := 0; i < n; i++ {
		it, err := r.InsertItem(context.Background(), domain.PortfolioItem{
			Title:       fmt.Sprintf("item-%d", r.nextID+1),
			Description: "description",
			IsApproved:  approved,
			CreatorID:   userID,
			CategoryID:  categoryID,
		})
		require.NoError(t, err)
		out = append(out, it)
	}
	return out
}

// call is one recorded transport operation.
type call struct {
	op    string
	chat  int64
	msg   MessageRef
	text  string
	ref   string
	kb    keyboard.Markup
	alert bool
}

type fakeTransport struct {
	mu      sync.Mutex
	calls   []call
	nextMsg int
	editErr error
	sendErr error
}

func (f *fakeTransport) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeTransport) newRef(chatID int64, photo bool) MessageRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMsg++
	return MessageRef{ChatID: chatID, MessageID: 500 + f.nextMsg, Photo: photo}
}

func (f *fakeTransport) SendText(_ context.Context, chatID int64, text string, kb keyboard.Markup) (MessageRef, error) {
	if f.sendErr != nil {
		return MessageRef{}, f.sendErr
	}
	f.record(call{op: "send", chat: chatID, text: text, kb: kb})
	return f.newRef(chatID, false), nil
}

func (f *fakeTransport) EditText(_ context.Context, msg MessageRef, text string, kb keyboard.Markup) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.record(call{op: "edit", chat: msg.ChatID, msg: msg, text: text, kb: kb})
	return nil
}

func (f *fakeTransport) SendPhoto(_ context.Context, chatID int64, photoRef, caption string, kb keyboard.Markup) (MessageRef, error) {
	f.record(call{op: "photo", chat: chatID, ref: photoRef, text: caption, kb: kb})
	return f.newRef(chatID, true), nil
}

func (f *fakeTransport) SendDocument(_ context.Context, chatID int64, documentRef string) error {
	f.record(call{op: "document", chat: chatID, ref: documentRef})
	return nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, msg MessageRef) error {
	f.record(call{op: "delete", chat: msg.ChatID, msg: msg})
	return nil
}

func (f *fakeTransport) AnswerEvent(_ context.Context, ev *Event, text string, alert bool) error {
	f.record(call{op: "answer", chat: ev.ChatID, text: text, alert: alert})
	return nil
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *fakeTransport) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.op
	}
	return out
}

// last returns the most recent call of op.
func (f *fakeTransport) last(t *testing.T, op string) call {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].op == op {
			return f.calls[i]
		}
	}
	t.Fatalf("no %s call in %v", op, f.calls)
	return call{}
}

func (f *fakeTransport) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

type notification struct {
	principal int64
	text      string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, principal int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification{principal: principal, text: text})
	return nil
}

func (n *fakeNotifier) to(principal int64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		if s.principal == principal {
			out = append(out, s.text)
		}
	}
	return out
}

type harness struct {
	engine   *Engine
	repo     *fakeRepo
	tr       *fakeTransport
	notifier *fakeNotifier
	sessions state.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		repo:     newFakeRepo(),
		tr:       &fakeTransport{},
		notifier: &fakeNotifier{},
		sessions: state.NewMemoryStore(),
	}
	h.engine = New(Deps{
		Repo:      h.repo,
		Sessions:  h.sessions,
		Transport: h.tr,
		Notifier:  h.notifier,
		AdminID:   adminID,
	})
	return h
}

func (h *harness) handle(t *testing.T, ev *Event) Outcome {
	t.Helper()
	out, err := h.engine.Handle(context.Background(), ev)
	require.NoError(t, err)
	return out
}

func (h *harness) session(t *testing.T, principal int64) (state.Session, bool) {
	t.Helper()
	s, ok, err := h.sessions.Get(context.Background(), principal)
	require.NoError(t, err)
	return s, ok
}

func textEvent(principal int64, text string) *Event {
	return &Event{Kind: KindText, Principal: principal, ChatID: principal, FullName: "Test User", Text: text}
}

func commandEvent(principal int64, command string) *Event {
	return &Event{Kind: KindCommand, Principal: principal, ChatID: principal, FullName: "Test User", Command: command, Text: "/" + command}
}

func photoEvent(principal int64, ref string) *Event {
	return &Event{Kind: KindPhoto, Principal: principal, ChatID: principal, PhotoRef: ref}
}

func documentEvent(principal int64, ref string) *Event {
	return &Event{Kind: KindDocument, Principal: principal, ChatID: principal, DocumentRef: ref}
}

// buttonEvent decodes data the way the transport adapter does.
func buttonEvent(principal int64, data string) *Event {
	p, err := callbacks.Decode(data)
	return &Event{
		Kind:       KindButton,
		Principal:  principal,
		ChatID:     principal,
		FullName:   "Test User",
		Data:       data,
		Payload:    p,
		PayloadErr: err,
		CallbackID: "cb-1",
		Source:     MessageRef{ChatID: principal, MessageID: 77},
	}
}

func photoButtonEvent(principal int64, data string) *Event {
	ev := buttonEvent(principal, data)
	ev.Source.Photo = true
	return ev
}

// buttonData returns the data of every callback button in kb.
func buttonData(kb keyboard.Markup) []string {
	var out []string
	for _, row := range kb {
		for _, b := range row {
			if b.Data != "" {
				out = append(out, b.Data)
			}
		}
	}
	return out
}

func buttonTexts(kb keyboard.Markup) []string {
	var out []string
	for _, row := range kb {
		for _, b := range row {
			out = append(out, b.Text)
		}
	}
	return out
}

var errBoom = errors.New("boom")
