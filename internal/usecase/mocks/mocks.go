package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

// FakeLedgerRepository is an in-memory LedgerRepository honoring version
// checks. SaveFunc, when set, runs before the built-in save and may inject
// errors.
type FakeLedgerRepository struct {
	mu      sync.Mutex
	ledgers map[string]*domain.UserLedger

	GetFunc  func(ctx context.Context, ownerID string) (*domain.UserLedger, error)
	SaveFunc func(ctx context.Context, ledger *domain.UserLedger, expectedVersion int64) error
}

func NewFakeLedgerRepository() *FakeLedgerRepository {
	return &FakeLedgerRepository{ledgers: make(map[string]*domain.UserLedger)}
}

func (f *FakeLedgerRepository) Get(ctx context.Context, ownerID string) (*domain.UserLedger, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, ownerID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.ledgers[ownerID]
	if !ok {
		return domain.NewUserLedger(ownerID), nil
	}
	return &domain.UserLedger{
		OwnerID:      stored.OwnerID,
		Transactions: stored.Snapshot(),
		Version:      stored.Version,
	}, nil
}

func (f *FakeLedgerRepository) Save(ctx context.Context, ledger *domain.UserLedger, expectedVersion int64) error {
	if f.SaveFunc != nil {
		if err := f.SaveFunc(ctx, ledger, expectedVersion); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var current int64
	if stored, ok := f.ledgers[ledger.OwnerID]; ok {
		current = stored.Version
	}
	if expectedVersion != domain.AnyVersion && expectedVersion != current {
		return domain.ErrVersionConflict
	}
	ledger.Version = current + 1
	f.ledgers[ledger.OwnerID] = &domain.UserLedger{
		OwnerID:      ledger.OwnerID,
		Transactions: ledger.Snapshot(),
		Version:      ledger.Version,
	}
	return nil
}

// Put stores a ledger directly, bypassing version checks.
func (f *FakeLedgerRepository) Put(ledger *domain.UserLedger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ledgers[ledger.OwnerID] = ledger
}

// FakeUserRepository is an in-memory UserRepository.
type FakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User

	CreateFunc func(ctx context.Context, user *domain.User) error
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{users: make(map[string]*domain.User)}
}

func (f *FakeUserRepository) Create(ctx context.Context, user *domain.User) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, user)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username {
			return domain.ErrDuplicateUser
		}
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *FakeUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *FakeUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *FakeUserRepository) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range f.users {
		if id != user.ID && u.Username == user.Username {
			return domain.ErrDuplicateUser
		}
	}
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

// FakeSessionStore keeps the current user in memory.
type FakeSessionStore struct {
	mu      sync.Mutex
	current string
}

func (f *FakeSessionStore) SetCurrentUser(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = username
	return nil
}

func (f *FakeSessionStore) CurrentUser(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *FakeSessionStore) ClearCurrentUser(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = ""
	return nil
}

// SequentialIDGenerator yields prefix-1, prefix-2, ...
type SequentialIDGenerator struct {
	mu     sync.Mutex
	Prefix string
	n      int
}

func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	prefix := g.Prefix
	if prefix == "" {
		prefix = "id"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n)
}

// ReversibleHasher "hashes" by prefixing, which keeps tests fast.
type ReversibleHasher struct{}

func (ReversibleHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (ReversibleHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// StaticTokenIssuer issues "token-<user id>".
type StaticTokenIssuer struct{}

func (StaticTokenIssuer) Generate(user *domain.User) (string, error) {
	return "token-" + user.ID, nil
}

// RecordingPublisher collects published events.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []domain.Event
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return p.Err
}

// Types returns the types of recorded events in publish order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.Events))
	for i, e := range p.Events {
		types[i] = e.Type
	}
	return types
}

// MapCache is an in-memory Cache without expiry.
type MapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMapCache() *MapCache {
	return &MapCache{data: make(map[string][]byte)}
}

func (c *MapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *MapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *MapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// Len returns the number of cached entries.
func (c *MapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}
