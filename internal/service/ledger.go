package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/holuwadafe/maglo-finance/internal/model"
	"github.com/holuwadafe/maglo-finance/internal/repository"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
)

// Aggregate rolls a collection of invoices up into dashboard statistics.
func Aggregate(invoices []model.Invoice) model.DashboardStats {
	stats := model.DashboardStats{
		TotalInvoices:   len(invoices),
		TotalPaid:       decimal.Zero,
		PendingPayments: decimal.Zero,
		TotalVAT:        decimal.Zero,
	}
	for _, inv := range invoices {
		switch inv.Status {
		case model.StatusPaid:
			stats.TotalPaid = stats.TotalPaid.Add(inv.Total)
			stats.TotalVAT = stats.TotalVAT.Add(inv.VATAmount)
		case model.StatusUnpaid:
			stats.PendingPayments = stats.PendingPayments.Add(inv.Total)
		}
	}
	return stats
}

// Ledger is one user's invoice collection together with its statistics.
// Every mutation method updates both under the same lock.
type Ledger struct {
	mu       sync.RWMutex
	invoices []model.Invoice // most recent first
	stats    model.DashboardStats
}

func NewLedger(invoices []model.Invoice) *Ledger {
	l := &Ledger{}
	l.Load(invoices)
	return l
}

// Load replaces the whole collection.
func (l *Ledger) Load(invoices []model.Invoice) {
	cp := make([]model.Invoice, len(invoices))
	copy(cp, invoices)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.invoices = cp
	l.stats = Aggregate(cp)
}

// Add puts a newly created invoice at the front. An invoice already present is
// replaced in place instead.
func (l *Ledger) Add(inv model.Invoice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.invoices {
		if l.invoices[i].ID == inv.ID {
			l.invoices[i] = inv
			l.stats = Aggregate(l.invoices)
			return
		}
	}
	l.invoices = append([]model.Invoice{inv}, l.invoices...)
	l.stats = Aggregate(l.invoices)
}

// Replace swaps the stored copy of inv unless the stored copy is newer. It reports
// false when inv is not in the ledger.
func (l *Ledger) Replace(inv model.Invoice) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.invoices {
		if l.invoices[i].ID == inv.ID {
			if l.invoices[i].UpdatedAt.After(inv.UpdatedAt) {
				return true
			}
			l.invoices[i] = inv
			l.stats = Aggregate(l.invoices)
			return true
		}
	}
	return false
}

// Remove drops the invoice with the given id. It reports false when absent.
func (l *Ledger) Remove(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.invoices {
		if l.invoices[i].ID == id {
			l.invoices = append(l.invoices[:i:i], l.invoices[i+1:]...)
			l.stats = Aggregate(l.invoices)
			return true
		}
	}
	return false
}

// Invoices returns a copy of the collection.
func (l *Ledger) Invoices() []model.Invoice {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make([]model.Invoice, len(l.invoices))
	copy(cp, l.invoices)
	return cp
}

func (l *Ledger) Stats() model.DashboardStats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stats
}

// LedgerStore keeps the ledgers of recently active users in a bounded LRU cache.
//
// A repository snapshot only enters the cache when no committed write was announced
// through NoteWrite while it was being listed, and never replaces a ledger already
// cached. Writes that commit after a snapshot was admitted are applied to it by their
// own caller.
type LedgerStore struct {
	repo  repository.InvoiceRepository
	cache *lru.Cache[uuid.UUID, *Ledger]

	mu     sync.Mutex
	writes uint64
}

// maxLoadAttempts bounds how often a miss re-lists while writes keep landing.
const maxLoadAttempts = 3

func NewLedgerStore(repo repository.InvoiceRepository, size int) (*LedgerStore, error) {
	cache, err := lru.New[uuid.UUID, *Ledger](size)
	if err != nil {
		return nil, fmt.Errorf("ledger cache: %w", err)
	}
	return &LedgerStore{repo: repo, cache: cache}, nil
}

// Get returns the user's ledger, loading it from the repository on a miss.
func (s *LedgerStore) Get(ctx context.Context, userID uuid.UUID) (*Ledger, error) {
	l, _, err := s.getOrLoad(ctx, userID)
	return l, err
}

// NoteWrite must be called after a write commits and before its change is applied
// to the cached ledger.
func (s *LedgerStore) NoteWrite() {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
}

// Generation is the write counter to pass to Seed; read it before listing.
func (s *LedgerStore) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// getOrLoad also reports whether the returned ledger was built from a listing taken
// after every write announced so far, in which case it already reflects them.
func (s *LedgerStore) getOrLoad(ctx context.Context, userID uuid.UUID) (*Ledger, bool, error) {
	for attempt := 1; ; attempt++ {
		if l, ok := s.cache.Get(userID); ok {
			return l, false, nil
		}

		gen := s.Generation()
		invoices, err := s.repo.ListByOwner(ctx, userID)
		if err != nil {
			return nil, false, fmt.Errorf("load ledger: %w", err)
		}

		if l, fresh, ok := s.admit(userID, gen, invoices); ok {
			return l, fresh, nil
		}
		if attempt == maxLoadAttempts {
			// Served uncached; the listing still postdates every write announced before it began.
			return NewLedger(invoices), true, nil
		}
	}
}

// admit caches a snapshot listed at generation gen. It refuses when a write was announced
// since, and hands back the cached ledger when another caller got there first.
func (s *LedgerStore) admit(userID uuid.UUID, gen uint64, invoices []model.Invoice) (*Ledger, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writes != gen {
		return nil, false, false
	}
	if l, ok := s.cache.Peek(userID); ok {
		return l, false, true
	}
	l := NewLedger(invoices)
	s.cache.Add(userID, l)
	return l, true, true
}

// Seed offers a listing taken at generation gen to the cache without ever replacing a
// cached ledger.
func (s *LedgerStore) Seed(userID uuid.UUID, gen uint64, invoices []model.Invoice) {
	s.admit(userID, gen, invoices)
}

func (s *LedgerStore) Invalidate(userID uuid.UUID) {
	s.cache.Remove(userID)
}
