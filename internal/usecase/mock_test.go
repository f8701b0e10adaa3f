//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"event-access-platform/internal/domain"
	"event-access-platform/internal/domain/model"
	"event-access-platform/internal/domain/ports/adapter"
	"event-access-platform/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- Accounts

// memAccountRepo is a small in-memory implementation used by unit tests.
// Func fields override the default behavior to simulate failures.
type memAccountRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Account

	FindFunc func(ctx context.Context, tx repository.Tx, emailKey string) (*model.Account, error)
	SaveFunc func(ctx context.Context, tx repository.Tx, a *model.Account) error
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{store: make(map[string]*model.Account)}
}

func (m *memAccountRepo) Save(ctx context.Context, tx repository.Tx, a *model.Account) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.EmailKey] = &cp
	return nil
}

func (m *memAccountRepo) FindByEmailKey(ctx context.Context, tx repository.Tx, emailKey string) (*model.Account, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, tx, emailKey)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[emailKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccountRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Account, 0, len(m.store))
	for _, a := range m.store {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memAccountRepo) CountAccounts(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *memAccountRepo) CountByAccessType(ctx context.Context, tx repository.Tx) (map[model.AccessType]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.AccessType]int)
	for _, a := range m.store {
		out[a.AccessType]++
	}
	return out, nil
}

func (m *memAccountRepo) Delete(ctx context.Context, tx repository.Tx, emailKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[emailKey]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, emailKey)
	return nil
}

// get is a test helper that reads the stored account directly.
func (m *memAccountRepo) get(emailKey string) *model.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store[emailKey]
}

// put is a test helper that seeds the store directly.
func (m *memAccountRepo) put(a *model.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.EmailKey] = &cp
}

// --- Coupons

type memCouponRepo struct {
	mu     sync.Mutex
	store  map[string]*model.Coupon
	usages []*model.CouponUsage

	ConsumeUseFunc  func(ctx context.Context, tx repository.Tx, code string) (int, error)
	AppendUsageFunc func(ctx context.Context, tx repository.Tx, u *model.CouponUsage) error
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{store: make(map[string]*model.Coupon)}
}

func (m *memCouponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.Code] = &cp
	return nil
}

func (m *memCouponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCouponRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Coupon, 0, len(m.store))
	for _, c := range m.store {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

// ConsumeUse mirrors the store-level conditional increment: the bound check
// and the increment happen under one lock, like the single UPDATE in SQL.
func (m *memCouponRepo) ConsumeUse(ctx context.Context, tx repository.Tx, code string) (int, error) {
	if m.ConsumeUseFunc != nil {
		return m.ConsumeUseFunc(ctx, tx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[code]
	if !ok || !c.Active {
		return 0, domain.ErrInvalidCoupon
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return 0, domain.ErrCouponExhausted
	}
	c.UsedCount++
	return c.UsedCount, nil
}

func (m *memCouponRepo) SetActive(ctx context.Context, tx repository.Tx, code string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[code]
	if !ok {
		return domain.ErrNotFound
	}
	c.Active = active
	return nil
}

func (m *memCouponRepo) Delete(ctx context.Context, tx repository.Tx, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[code]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, code)
	return nil
}

func (m *memCouponRepo) CountActive(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.store {
		if c.Active {
			n++
		}
	}
	return n, nil
}

func (m *memCouponRepo) AppendUsage(ctx context.Context, tx repository.Tx, u *model.CouponUsage) error {
	if m.AppendUsageFunc != nil {
		return m.AppendUsageFunc(ctx, tx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.usages = append(m.usages, &cp)
	return nil
}

func (m *memCouponRepo) usedCount(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[code]
	if !ok {
		return -1
	}
	return c.UsedCount
}

// --- Payment records

type memRecordRepo struct {
	mu      sync.Mutex
	records map[string]*model.PaymentRecord // keyed by EventID

	AppendFunc func(ctx context.Context, tx repository.Tx, rec *model.PaymentRecord) error
}

func newMemRecordRepo() *memRecordRepo {
	return &memRecordRepo{records: make(map[string]*model.PaymentRecord)}
}

func (m *memRecordRepo) Append(ctx context.Context, tx repository.Tx, rec *model.PaymentRecord) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.records[rec.EventID]; dup {
		return nil
	}
	cp := *rec
	m.records[rec.EventID] = &cp
	return nil
}

func (m *memRecordRepo) SumByCurrency(ctx context.Context, tx repository.Tx) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64)
	for _, r := range m.records {
		out[r.Currency] += r.Amount
	}
	return out, nil
}

func (m *memRecordRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// --- Admin registry

type memAdminRegistry struct {
	mu    sync.RWMutex
	store map[string]*model.AdminEntry

	FindFunc func(ctx context.Context, tx repository.Tx, emailKey string) (*model.AdminEntry, error)
}

func newMemAdminRegistry() *memAdminRegistry {
	return &memAdminRegistry{store: make(map[string]*model.AdminEntry)}
}

func (m *memAdminRegistry) FindByEmailKey(ctx context.Context, tx repository.Tx, emailKey string) (*model.AdminEntry, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, tx, emailKey)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[emailKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memAdminRegistry) Save(ctx context.Context, tx repository.Tx, e *model.AdminEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.store[e.EmailKey] = &cp
	return nil
}

// --- Admin verdict cache

type memVerdictCache struct {
	mu    sync.Mutex
	store map[string]model.CachedVerdict
}

func newMemVerdictCache() *memVerdictCache {
	return &memVerdictCache{store: make(map[string]model.CachedVerdict)}
}

func (m *memVerdictCache) Get(ctx context.Context, emailKey string) (*model.CachedVerdict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.store[emailKey]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *memVerdictCache) Put(ctx context.Context, emailKey string, v model.CachedVerdict, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[emailKey] = v
	return nil
}

// --- Conferences

type memConferenceRepo struct {
	mu    sync.Mutex
	store map[string]*model.Conference
}

func newMemConferenceRepo() *memConferenceRepo {
	return &memConferenceRepo{store: make(map[string]*model.Conference)}
}

func (m *memConferenceRepo) Save(ctx context.Context, tx repository.Tx, c *model.Conference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memConferenceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memConferenceRepo) ListPublished(ctx context.Context, tx repository.Tx) ([]*model.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Conference
	for _, c := range m.store {
		if c.Published {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memConferenceRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Conference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Conference, 0, len(m.store))
	for _, c := range m.store {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memConferenceRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// --- Payment gateway

type mockGateway struct {
	mu sync.Mutex

	CreateFunc   func(ctx context.Context, email, userID, successURL, cancelURL string) (*adapter.CheckoutSession, error)
	RetrieveFunc func(ctx context.Context, sessionID string) (*adapter.SessionStatus, error)

	created []string
}

func (g *mockGateway) Name() string { return "mock" }

func (g *mockGateway) CreateCheckoutSession(ctx context.Context, email, userID, successURL, cancelURL string) (*adapter.CheckoutSession, error) {
	g.mu.Lock()
	g.created = append(g.created, email)
	g.mu.Unlock()
	if g.CreateFunc != nil {
		return g.CreateFunc(ctx, email, userID, successURL, cancelURL)
	}
	return &adapter.CheckoutSession{SessionID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

func (g *mockGateway) RetrieveSession(ctx context.Context, sessionID string) (*adapter.SessionStatus, error) {
	if g.RetrieveFunc != nil {
		return g.RetrieveFunc(ctx, sessionID)
	}
	return &adapter.SessionStatus{SessionID: sessionID, PaymentStatus: "paid"}, nil
}

// --- Transaction manager

// nopTxManager runs fn directly; unit tests assert engine semantics, not
// store atomicity.
type nopTxManager struct{}

func (nopTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}
