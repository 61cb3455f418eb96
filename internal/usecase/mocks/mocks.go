package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/shopbook/internal/domain"
	"github.com/iho/shopbook/internal/usecase"
)

// MockEntryRepository is an in-memory mock of usecase.EntryRepository.
// Behaviors can be overridden per test via the Func fields.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error)
	SumByFilterFunc      func(ctx context.Context, tx usecase.Transaction, filter usecase.EntryFilter) (decimal.Decimal, error)
	DeleteFunc           func(ctx context.Context, tx usecase.Transaction, id string) error
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.Entry),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := *entry
	m.entries[entry.ID] = &e
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Entry, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockEntryRepository) List(ctx context.Context, limit, offset int) ([]*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.snapshot()
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockEntryRepository) ListByCreatorAndReview(ctx context.Context, creatorID string, state domain.ReviewState) ([]*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entry
	for _, e := range m.snapshot() {
		if e.CreatedBy == creatorID && e.ReviewState == state {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockEntryRepository) ListSells(ctx context.Context) ([]*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entry
	for _, e := range m.snapshot() {
		if e.Kind == domain.KindSell {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockEntryRepository) ListByFilter(ctx context.Context, filter usecase.EntryFilter) ([]*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filtered(filter), nil
}

func (m *MockEntryRepository) ListByLinkedSell(ctx context.Context, tx usecase.Transaction, sellID string) ([]*domain.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filtered(usecase.EntryFilter{LinkedSellID: sellID}), nil
}

func (m *MockEntryRepository) SumByFilter(ctx context.Context, tx usecase.Transaction, filter usecase.EntryFilter) (decimal.Decimal, error) {
	if m.SumByFilterFunc != nil {
		return m.SumByFilterFunc(ctx, tx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.filtered(filter) {
		sum = sum.Add(e.TotalAmount)
	}
	return sum, nil
}

func (m *MockEntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[entry.ID]; !ok {
		return domain.ErrEntryNotFound
	}
	e := *entry
	m.entries[entry.ID] = &e
	return nil
}

func (m *MockEntryRepository) UpdateSellPayment(ctx context.Context, tx usecase.Transaction, id string, rest decimal.Decimal, completion domain.CompletionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.RestMoney = rest
	e.Completion = completion
	return nil
}

func (m *MockEntryRepository) UpdateProfit(ctx context.Context, tx usecase.Transaction, id string, profit decimal.Decimal, kind domain.ProfitKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.ProfitOrLoss = profit
	e.ProfitKind = kind
	return nil
}

func (m *MockEntryRepository) UpdateReview(ctx context.Context, id string, state domain.ReviewState, note, reviewerID string) (*domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}
	e.ReviewState = state
	e.ReviewNote = note
	e.ReviewedBy = reviewerID
	copied := *e
	return &copied, nil
}

func (m *MockEntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *MockEntryRepository) DeleteByLinkedSell(ctx context.Context, tx usecase.Transaction, sellID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.LinkedSellID == sellID {
			delete(m.entries, id)
		}
	}
	return nil
}

func (m *MockEntryRepository) snapshot() []*domain.Entry {
	out := make([]*domain.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		copied := *e
		out = append(out, &copied)
	}
	return out
}

func (m *MockEntryRepository) filtered(filter usecase.EntryFilter) []*domain.Entry {
	var out []*domain.Entry
	for _, e := range m.snapshot() {
		if filter.LinkedSellID != "" && e.LinkedSellID != filter.LinkedSellID {
			continue
		}
		if filter.Kind != "" && e.Kind != filter.Kind {
			continue
		}
		if filter.Note != "" && e.Note != filter.Note {
			continue
		}
		out = append(out, e)
	}
	return out
}

// MockBalanceRepository is an in-memory mock of usecase.BalanceRepository.
type MockBalanceRepository struct {
	mu     sync.Mutex
	amount decimal.Decimal

	AdjustFunc func(ctx context.Context, tx usecase.Transaction, delta decimal.Decimal) error
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{amount: decimal.Zero}
}

func (m *MockBalanceRepository) Get(ctx context.Context) (*domain.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &domain.Balance{Amount: m.amount, UpdatedAt: time.Now()}, nil
}

func (m *MockBalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Balance, error) {
	return m.Get(ctx)
}

func (m *MockBalanceRepository) Adjust(ctx context.Context, tx usecase.Transaction, delta decimal.Decimal) error {
	if m.AdjustFunc != nil {
		return m.AdjustFunc(ctx, tx, delta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.amount = m.amount.Add(delta)
	return nil
}

// Amount returns the current mock balance for assertions.
func (m *MockBalanceRepository) Amount() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.amount
}

// MockOrderIDAllocator allocates sequential root ids and per-sell letters,
// mirroring the production allocator closely enough for engine tests.
type MockOrderIDAllocator struct {
	mu      sync.Mutex
	nextSeq int
	letters map[string]int

	NextRootIDFunc  func(ctx context.Context, tx usecase.Transaction) (string, error)
	NextChildIDFunc func(ctx context.Context, tx usecase.Transaction, sell *domain.Entry) (string, error)
}

func NewMockOrderIDAllocator() *MockOrderIDAllocator {
	return &MockOrderIDAllocator{
		nextSeq: 1,
		letters: make(map[string]int),
	}
}

func (m *MockOrderIDAllocator) NextRootID(ctx context.Context, tx usecase.Transaction) (string, error) {
	if m.NextRootIDFunc != nil {
		return m.NextRootIDFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("#P%06dK", m.nextSeq)
	m.nextSeq++
	return id, nil
}

func (m *MockOrderIDAllocator) NextChildID(ctx context.Context, tx usecase.Transaction, sell *domain.Entry) (string, error) {
	if m.NextChildIDFunc != nil {
		return m.NextChildIDFunc(ctx, tx, sell)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.letters[sell.ID]
	m.letters[sell.ID] = n + 1
	return fmt.Sprintf("%s%c", sell.OrderID, 'A'+n), nil
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	t.Committed = true
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

// MockTransactionManager hands out no-op transactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)

	mu    sync.Mutex
	Begun []*MockTransaction
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &MockTransaction{}
	m.Begun = append(m.Begun, tx)
	return tx, nil
}

// MockRetrier runs the operation once with no retries.
type MockRetrier struct{}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

// MockIDGenerator generates deterministic sequential IDs.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{next: 1}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("id-%04d", m.next)
	m.next++
	return id
}

// MockUserRepository is an in-memory mock of usecase.UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// MockStatsRepository returns canned totals.
type MockStatsRepository struct {
	TotalsByKindFunc func(ctx context.Context, since, until time.Time) (*domain.KindTotals, error)
}

func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{}
}

func (m *MockStatsRepository) TotalsByKind(ctx context.Context, since, until time.Time) (*domain.KindTotals, error) {
	if m.TotalsByKindFunc != nil {
		return m.TotalsByKindFunc(ctx, since, until)
	}
	return &domain.KindTotals{}, nil
}

// MockCache is an in-memory mock of usecase.Cache. TTLs are ignored.
type MockCache struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("cache miss: %s", key)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
