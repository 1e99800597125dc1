package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/core"
)

// memStore is an owner-scoped in-memory implementation of every store port.
type memStore struct {
	mu           sync.Mutex
	nextID       int64
	groups       map[int64]core.AccountGroup
	accounts     map[int64]core.Account
	categories   map[int64]core.Category
	transactions map[int64]core.Transaction

	writes      int
	bulkCalls   int
	listErr     error
	dropAccount bool // FindAccountsByIDs returns nothing
}

func newMemStore() *memStore {
	return &memStore{
		nextID:       100,
		groups:       map[int64]core.AccountGroup{},
		accounts:     map[int64]core.Account{},
		categories:   map[int64]core.Category{},
		transactions: map[int64]core.Transaction{},
	}
}

func (m *memStore) id() int64 { m.nextID++; return m.nextID }

func (m *memStore) addGroup(id, owner int64, name string) {
	m.groups[id] = core.AccountGroup{ID: id, OwnerID: owner, Name: name}
}

func (m *memStore) addAccount(id, owner int64, name string) {
	m.accounts[id] = core.Account{ID: id, OwnerID: owner, Name: name, AccountGroupID: 1}
}

func (m *memStore) addCategory(id, owner int64, name string, kind core.CategoryKind) {
	m.categories[id] = core.Category{ID: id, OwnerID: owner, Name: name, Kind: kind}
}

func (m *memStore) addTransaction(t core.Transaction) {
	m.transactions[t.ID] = t
}

// Account groups

func (m *memStore) FindAccountGroup(_ context.Context, id, ownerID int64) (core.AccountGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok || g.OwnerID != ownerID {
		return core.AccountGroup{}, core.NotFound(core.EntityAccountGroup, id)
	}
	return g, nil
}

func (m *memStore) ListAccountGroups(_ context.Context, ownerID int64) ([]core.AccountGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.AccountGroup
	for _, g := range m.groups {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memStore) CreateAccountGroup(_ context.Context, g core.AccountGroup) (core.AccountGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	g.ID = m.id()
	m.groups[g.ID] = g
	return g, nil
}

func (m *memStore) UpdateAccountGroup(_ context.Context, id int64, g core.AccountGroup) (core.AccountGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if cur, ok := m.groups[id]; !ok || cur.OwnerID != g.OwnerID {
		return core.AccountGroup{}, core.NotFound(core.EntityAccountGroup, id)
	}
	g.ID = id
	m.groups[id] = g
	return g, nil
}

func (m *memStore) DeleteAccountGroup(_ context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if g, ok := m.groups[id]; !ok || g.OwnerID != ownerID {
		return core.NotFound(core.EntityAccountGroup, id)
	}
	delete(m.groups, id)
	return nil
}

// Accounts

func (m *memStore) FindAccount(_ context.Context, id, ownerID int64) (core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.OwnerID != ownerID {
		return core.Account{}, core.NotFound(core.EntityAccount, id)
	}
	return a, nil
}

func (m *memStore) FindAccountsByIDs(_ context.Context, ids []int64, ownerID int64) ([]core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkCalls++
	if m.dropAccount {
		return nil, nil
	}
	var out []core.Account
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok && a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListAccounts(_ context.Context, ownerID int64) ([]core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Account
	for _, a := range m.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) CreateAccount(_ context.Context, a core.Account) (core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	a.ID = m.id()
	m.accounts[a.ID] = a
	return a, nil
}

func (m *memStore) UpdateAccount(_ context.Context, id int64, a core.Account) (core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if cur, ok := m.accounts[id]; !ok || cur.OwnerID != a.OwnerID {
		return core.Account{}, core.NotFound(core.EntityAccount, id)
	}
	a.ID = id
	m.accounts[id] = a
	return a, nil
}

func (m *memStore) DeleteAccount(_ context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if a, ok := m.accounts[id]; !ok || a.OwnerID != ownerID {
		return core.NotFound(core.EntityAccount, id)
	}
	delete(m.accounts, id)
	return nil
}

// Categories

func (m *memStore) FindCategory(_ context.Context, id, ownerID int64) (core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.Category{}, core.NotFound(core.EntityCategory, id)
	}
	return c, nil
}

func (m *memStore) FindCategoriesByIDs(_ context.Context, ids []int64, ownerID int64) ([]core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkCalls++
	var out []core.Category
	for _, id := range ids {
		if c, ok := m.categories[id]; ok && c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) ListCategories(_ context.Context, ownerID int64, kind *core.CategoryKind) ([]core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Category
	for _, c := range m.categories {
		if c.OwnerID == ownerID && (kind == nil || c.Kind == *kind) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	c.ID = m.id()
	m.categories[c.ID] = c
	return c, nil
}

func (m *memStore) UpdateCategory(_ context.Context, id int64, c core.Category) (core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if cur, ok := m.categories[id]; !ok || cur.OwnerID != c.OwnerID {
		return core.Category{}, core.NotFound(core.EntityCategory, id)
	}
	c.ID = id
	m.categories[id] = c
	return c, nil
}

func (m *memStore) DeleteCategory(_ context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if c, ok := m.categories[id]; !ok || c.OwnerID != ownerID {
		return core.NotFound(core.EntityCategory, id)
	}
	delete(m.categories, id)
	return nil
}

// Transactions

func (m *memStore) FindTransaction(_ context.Context, id, ownerID int64) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, core.NotFound(core.EntityTransaction, id)
	}
	return t, nil
}

func (m *memStore) ListTransactions(_ context.Context, ownerID int64) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []core.Transaction
	for _, t := range m.transactions {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	t.ID = m.id()
	t.CreatedAt, t.UpdatedAt = now, now
	m.transactions[t.ID] = t
	return t, nil
}

func (m *memStore) UpdateTransaction(_ context.Context, id int64, t core.Transaction) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	cur, ok := m.transactions[id]
	if !ok || cur.OwnerID != t.OwnerID {
		return core.Transaction{}, core.NotFound(core.EntityTransaction, id)
	}
	t.ID, t.CreatedAt = id, cur.CreatedAt
	m.transactions[id] = t
	return t, nil
}

func (m *memStore) DeleteTransaction(_ context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if t, ok := m.transactions[id]; !ok || t.OwnerID != ownerID {
		return core.NotFound(core.EntityTransaction, id)
	}
	delete(m.transactions, id)
	return nil
}

// recordingPublisher captures published events and can be told to fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evt *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, *evt)
	return nil
}

var errBroker = errors.New("broker unavailable")
