package testutils

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/nfrund/sparx/internal/domain"
	"github.com/nfrund/sparx/internal/pubsub"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// MemoryUserRepository is an in-memory domain.UserRepository.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]domain.User
}

// NewMemoryUserRepository creates an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserAlreadyExists
		}
	}
	cp := *user
	cp.ID = domain.NewRecordID(domain.UserTable, domain.NewKey())
	r.users[cp.Key()] = cp
	out := cp
	return &out, nil
}

func (r *MemoryUserRepository) FindByID(ctx context.Context, key string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := user.Key()
	stored, ok := r.users[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *user
	cp.Email = stored.Email
	cp.CreatedAt = stored.CreatedAt
	cp.UpdatedAt = &surrealmodels.CustomDateTime{Time: time.Now().UTC()}
	r.users[key] = cp
	out := cp
	return &out, nil
}

// Delete removes a user; used to simulate out-of-band deletion.
func (r *MemoryUserRepository) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, key)
}

// Count returns the number of stored users.
func (r *MemoryUserRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// MemoryResetTokenRepository is an in-memory domain.ResetTokenRepository
// keyed by user, so at most one token per user exists.
type MemoryResetTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]domain.ResetToken
}

// NewMemoryResetTokenRepository creates an empty repository.
func NewMemoryResetTokenRepository() *MemoryResetTokenRepository {
	return &MemoryResetTokenRepository{tokens: make(map[string]domain.ResetToken)}
}

func (r *MemoryResetTokenRepository) Replace(ctx context.Context, token *domain.ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *token
	userKey := domain.RecordKey(token.UserID)
	cp.ID = domain.NewRecordID(domain.ResetTokenTable, userKey)
	r.tokens[userKey] = cp
	return nil
}

func (r *MemoryResetTokenRepository) FindValid(ctx context.Context, tokenHash string, now time.Time) (*domain.ResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tokens {
		if t.TokenHash == tokenHash && t.UsableAt(now) {
			out := t
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryResetTokenRepository) DeleteByUser(ctx context.Context, userID *surrealmodels.RecordID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, domain.RecordKey(userID))
	return nil
}

// ForUser returns the live token of a user, if any.
func (r *MemoryResetTokenRepository) ForUser(userKey string) (domain.ResetToken, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[userKey]
	return t, ok
}

// Count returns the number of stored tokens.
func (r *MemoryResetTokenRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// MemoryProductRepository is an in-memory domain.ProductRepository.
type MemoryProductRepository struct {
	mu       sync.Mutex
	products map[string]domain.Product
	// CreateErr, when set, is returned by Create.
	CreateErr error
}

// NewMemoryProductRepository creates an empty repository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[string]domain.Product)}
}

func (r *MemoryProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	cp := *product
	cp.ID = domain.NewRecordID(domain.ProductTable, domain.NewKey())
	r.products[cp.Key()] = cp
	out := cp
	return &out, nil
}

func (r *MemoryProductRepository) FindByID(ctx context.Context, key string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *MemoryProductRepository) FindByUser(ctx context.Context, userID *surrealmodels.RecordID) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Product
	for _, p := range r.products {
		if p.OwnedBy(userID) {
			cp := p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return createdAt(out[i]).After(createdAt(out[j]))
	})
	return out, nil
}

func (r *MemoryProductRepository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := product.Key()
	if _, ok := r.products[key]; !ok {
		return nil, domain.ErrNotFound
	}
	cp := *product
	r.products[key] = cp
	out := cp
	return &out, nil
}

func (r *MemoryProductRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[key]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, key)
	return nil
}

// Count returns the number of stored products.
func (r *MemoryProductRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products)
}

func createdAt(p *domain.Product) time.Time {
	if p.CreatedAt == nil {
		return time.Time{}
	}
	return p.CreatedAt.Time
}

// RecordingMailer records every email instead of sending it. When Err is set
// Send fails with it.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []domain.Email
	Err  error
}

func (m *RecordingMailer) Send(ctx context.Context, msg domain.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the recorded emails.
func (m *RecordingMailer) Sent() []domain.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Email(nil), m.sent...)
}

// Last returns the most recent email.
func (m *RecordingMailer) Last() (domain.Email, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return domain.Email{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// RecordingPublisher is a synchronous pubsub.Publisher that records messages.
type RecordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
	Err      error
}

func (p *RecordingPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Topics returns the topics published so far, in order.
func (p *RecordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	topics := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		topics = append(topics, m.Topic)
	}
	return topics
}

// ErrMailerDown is a convenience error for simulating delivery failures.
var ErrMailerDown = errors.New("smtp: connection refused")
