// Package memory provides in-process implementations of the repository ports.
// They back the service and handler tests; production wiring uses the gorm repositories.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/holuwadafe/maglo-finance/internal/model"
	"github.com/holuwadafe/maglo-finance/internal/repository"

	"github.com/google/uuid"
)

var (
	_ repository.InvoiceRepository  = (*InvoiceRepository)(nil)
	_ repository.UserRepository     = (*UserRepository)(nil)
	_ repository.SessionRepository  = (*SessionRepository)(nil)
	_ repository.AuditRepository    = (*AuditRepository)(nil)
	_ repository.TransactionManager = TxManager{}
)

// Clock returns the current time. Tests swap it to make timestamps deterministic.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// ---------------------------------------------------------------------------
// Invoices
// ---------------------------------------------------------------------------

type invoiceEntry struct {
	invoice model.Invoice
	seq     int64
}

// InvoiceRepository stores invoices in a map keyed by ID.
type InvoiceRepository struct {
	mu          sync.RWMutex
	byID        map[uuid.UUID]invoiceEntry
	seq         int64
	now         Clock
	unavailable bool
}

func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{byID: make(map[uuid.UUID]invoiceEntry), now: utcNow}
}

// WithClock replaces the timestamp source.
func (r *InvoiceRepository) WithClock(now Clock) *InvoiceRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

// SetUnavailable makes every call fail with model.ErrBackendUnavailable, simulating an outage.
func (r *InvoiceRepository) SetUnavailable(down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = down
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(ctx); err != nil {
		return err
	}

	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if _, exists := r.byID[invoice.ID]; exists {
		return model.ErrConflict
	}
	now := r.now()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	r.seq++
	r.byID[invoice.ID] = invoiceEntry{invoice: *invoice, seq: r.seq}
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(ctx); err != nil {
		return nil, err
	}

	e, ok := r.byID[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	inv := e.invoice
	return &inv, nil
}

func (r *InvoiceRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := r.check(ctx); err != nil {
		return nil, err
	}

	entries := make([]invoiceEntry, 0)
	for _, e := range r.byID {
		if e.invoice.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.invoice.CreatedAt.Equal(b.invoice.CreatedAt) {
			return a.invoice.CreatedAt.After(b.invoice.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]model.Invoice, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.invoice)
	}
	return out, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(ctx); err != nil {
		return err
	}

	e, ok := r.byID[invoice.ID]
	if !ok {
		return model.ErrNotFound
	}
	// Owner and creation time belong to the stored record.
	invoice.UserID = e.invoice.UserID
	invoice.CreatedAt = e.invoice.CreatedAt
	invoice.UpdatedAt = r.now()

	e.invoice = *invoice
	r.byID[invoice.ID] = e
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(ctx); err != nil {
		return err
	}

	if _, ok := r.byID[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *InvoiceRepository) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.unavailable {
		return model.ErrBackendUnavailable
	}
	return nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type UserRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: make(map[uuid.UUID]model.User)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.byID {
		if u.Email == user.Email {
			return model.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := utcNow()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, model.ErrNotFound
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

type SessionRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]model.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{byID: make(map[uuid.UUID]model.Session)}
}

func (r *SessionRepository) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.CreatedAt = utcNow()
	r.byID[session.ID] = *session
	return nil
}

func (r *SessionRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &s, nil
}

func (r *SessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return model.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// ---------------------------------------------------------------------------
// Audit
// ---------------------------------------------------------------------------

type AuditRepository struct {
	mu      sync.RWMutex
	entries []model.AuditLog
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Log(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = utcNow()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

// ListByUser pages through a user's entries, newest first.
func (r *AuditRepository) ListByUser(_ context.Context, userID uuid.UUID, page, limit int) ([]model.AuditLog, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var mine []model.AuditLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserID == userID {
			mine = append(mine, r.entries[i])
		}
	}

	total := int64(len(mine))
	offset := (page - 1) * limit
	if offset >= len(mine) {
		return []model.AuditLog{}, total, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], total, nil
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

// TxManager runs fn directly. Each repository call is atomic on its own; nothing is rolled back.
type TxManager struct{}

func (TxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}
