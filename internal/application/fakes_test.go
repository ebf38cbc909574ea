package application

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/TicketsPartners/service-tickets/internal/adapter"
	"github.com/TicketsPartners/service-tickets/internal/domain"
	eventDomain "github.com/TicketsPartners/service-tickets/internal/domain/event"
	"github.com/TicketsPartners/service-tickets/internal/domain/payment"
	ticketDomain "github.com/TicketsPartners/service-tickets/internal/domain/ticket"
	userDomain "github.com/TicketsPartners/service-tickets/internal/domain/user"
)

// fakeTx serializes transactions, standing in for the event row lock.
type fakeTx struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return fn(ctx)
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*eventDomain.Event
	order  []uuid.UUID
	err    error
}

func newFakeEventRepo(events ...*eventDomain.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: make(map[uuid.UUID]*eventDomain.Event)}
	for _, e := range events {
		r.events[e.ID()] = e
		r.order = append(r.order, e.ID())
	}
	return r
}

func cloneEvent(e *eventDomain.Event) *eventDomain.Event {
	return eventDomain.Reconstruct(e.ID(), e.Name(), e.Date(), e.Place(), e.Price(),
		e.Description(), e.Category(), e.ImageURL(), e.Promos(), e.CreatedAt())
}

func (r *fakeEventRepo) FindByID(_ context.Context, id uuid.UUID) (*eventDomain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	e, ok := r.events[id]
	if !ok {
		return nil, domain.NewNotFoundError("Event", id.String())
	}
	return cloneEvent(e), nil
}

func (r *fakeEventRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*eventDomain.Event, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeEventRepo) UpdatePromos(_ context.Context, id uuid.UUID, promos []eventDomain.Promo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return domain.NewNotFoundError("Event", id.String())
	}
	r.events[id] = eventDomain.Reconstruct(e.ID(), e.Name(), e.Date(), e.Place(), e.Price(),
		e.Description(), e.Category(), e.ImageURL(), promos, e.CreatedAt())
	return nil
}

func (r *fakeEventRepo) Save(_ context.Context, e *eventDomain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events[e.ID()] = cloneEvent(e)
	r.order = append(r.order, e.ID())
	return nil
}

func (r *fakeEventRepo) List(_ context.Context) ([]*eventDomain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*eventDomain.Event, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneEvent(r.events[id]))
	}
	return out, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets []*ticketDomain.Ticket
	// failSaves makes the next n saves fail with a duplicate key.
	failSaves int
}

func (r *fakeTicketRepo) Save(_ context.Context, t *ticketDomain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSaves > 0 {
		r.failSaves--
		return domain.NewDuplicateKeyError("Ticket")
	}
	for _, existing := range r.tickets {
		if existing.Code() == t.Code() {
			return domain.NewDuplicateKeyError("Ticket")
		}
		if t.TxSignature() != "" && existing.TxSignature() == t.TxSignature() {
			return domain.NewDuplicateKeyError("Ticket")
		}
	}
	r.tickets = append(r.tickets, t)
	return nil
}

func (r *fakeTicketRepo) CountByPromo(_ context.Context, eventID uuid.UUID, promoCode string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tickets {
		if t.EventID() == eventID && t.PromoCode() == promoCode {
			n++
		}
	}
	return n, nil
}

func (r *fakeTicketRepo) ListByUser(_ context.Context, userID string) ([]*ticketDomain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ticketDomain.Ticket
	for _, t := range r.tickets {
		if t.UserID() == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}

func (r *fakeTicketRepo) FindBySignature(_ context.Context, signature string) (*ticketDomain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.TxSignature() == signature {
			return t, nil
		}
	}
	return nil, domain.NewNotFoundError("Ticket", signature)
}

func (r *fakeTicketRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*userDomain.User
	findErr error
}

func newFakeUserRepo(users ...*userDomain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*userDomain.User)}
	for _, u := range users {
		r.users[u.UserID()] = u
	}
	return r
}

func (r *fakeUserRepo) FindByUserID(_ context.Context, userID string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.NewNotFoundError("User", userID)
	}
	return u, nil
}

func (r *fakeUserRepo) ListSubscribed(_ context.Context) ([]*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*userDomain.User
	for _, u := range r.users {
		if u.Subscribed() {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.UserID()] = u
	return nil
}

type fakeChain struct {
	signature string
	tx        *payment.Transaction
	findErr   error
	getErr    error
}

func (f *fakeChain) FindSignatureByReference(_ context.Context, _ string) (string, error) {
	return f.signature, f.findErr
}

func (f *fakeChain) GetParsedTransaction(_ context.Context, _ string) (*payment.Transaction, error) {
	return f.tx, f.getErr
}

type fixedRate struct{ rate decimal.Decimal }

func (f fixedRate) GetRate(_ context.Context, _ string) decimal.Decimal { return f.rate }

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	tickets []TicketIssuedMessage
	events  []EventCreatedMessage
	ctxErrs []error
	err     error
}

func (f *fakePublisher) PublishTicketIssued(ctx context.Context, msg TicketIssuedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets = append(f.tickets, msg)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return f.err
}

func (f *fakePublisher) PublishEventCreated(_ context.Context, msg EventCreatedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return f.err
}

type storedImage struct {
	name        string
	contentType string
	body        []byte
}

type fakeImageStore struct {
	stored []storedImage
	err    error
}

func (f *fakeImageStore) Put(_ context.Context, name, contentType string, body io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.stored = append(f.stored, storedImage{name: name, contentType: contentType, body: b})
	return "/images/" + name, nil
}

type fakeFeed struct {
	rate  decimal.Decimal
	err   error
	calls int
}

func (f *fakeFeed) FetchRate(_ context.Context, _ string) (decimal.Decimal, error) {
	f.calls++
	return f.rate, f.err
}

type fakeRateCache struct {
	rates  map[string]decimal.Decimal
	getErr error
	setErr error
}

func (f *fakeRateCache) Get(_ context.Context, quote string) (decimal.Decimal, error) {
	if f.getErr != nil {
		return decimal.Zero, f.getErr
	}
	r, ok := f.rates[quote]
	if !ok {
		return decimal.Zero, errors.New("miss")
	}
	return r, nil
}

func (f *fakeRateCache) Set(_ context.Context, quote string, rate decimal.Decimal) error {
	if f.setErr != nil {
		return f.setErr
	}
	if f.rates == nil {
		f.rates = make(map[string]decimal.Decimal)
	}
	f.rates[quote] = rate
	return nil
}

var (
	_ TxRunner                = (*fakeTx)(nil)
	_ eventDomain.Repository  = (*fakeEventRepo)(nil)
	_ ticketDomain.Repository = (*fakeTicketRepo)(nil)
	_ userDomain.Repository   = (*fakeUserRepo)(nil)
	_ adapter.ChainClient     = (*fakeChain)(nil)
	_ adapter.MessageSender   = (*fakeSender)(nil)
	_ adapter.ImageStore      = (*fakeImageStore)(nil)
	_ adapter.PriceFeed       = (*fakeFeed)(nil)
	_ RateCache               = (*fakeRateCache)(nil)
	_ Publisher               = (*fakePublisher)(nil)
)
