package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/holuwadafe/maglo-finance/internal/database/testhelper"
	"github.com/holuwadafe/maglo-finance/internal/model"
	"github.com/holuwadafe/maglo-finance/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func seedUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{
		Name:     "Test User",
		Email:    fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8]),
		Password: "hash",
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))
	return user
}

func newInvoice(userID uuid.UUID, client string) *model.Invoice {
	return &model.Invoice{
		UserID:        userID,
		ClientName:    client,
		ClientEmail:   "billing@example.com",
		Amount:        decimal.RequireFromString("1000.00"),
		VATPercentage: decimal.RequireFromString("18"),
		VATAmount:     decimal.RequireFromString("180.00"),
		Total:         decimal.RequireFromString("1180.00"),
		DueDate:       "2025-03-01",
		Status:        model.StatusUnpaid,
	}
}

// ---------------------------------------------------------------------------
// InvoiceRepository
// ---------------------------------------------------------------------------

func TestInvoiceRepository_CRUD(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	repo := repository.NewInvoiceRepository(db)
	ctx := context.Background()
	user := seedUser(t, db)

	inv := newInvoice(user.ID, "Acme")
	require.NoError(t, repo.Create(ctx, inv))
	assert.NotEqual(t, uuid.Nil, inv.ID)
	assert.False(t, inv.CreatedAt.IsZero())
	assert.Equal(t, inv.CreatedAt, inv.UpdatedAt)

	got, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.ClientName)
	assert.True(t, got.Total.Equal(inv.Total))
	assert.True(t, got.CreatedAt.Equal(inv.CreatedAt))

	got.Status = model.StatusPaid
	got.ClientName = "Acme Ltd"
	require.NoError(t, repo.Update(ctx, got))

	reloaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, reloaded.Status)
	assert.Equal(t, "Acme Ltd", reloaded.ClientName)
	assert.Equal(t, user.ID, reloaded.UserID)
	assert.True(t, reloaded.CreatedAt.Equal(inv.CreatedAt))
	assert.False(t, reloaded.UpdatedAt.Before(inv.UpdatedAt))

	require.NoError(t, repo.Delete(ctx, inv.ID))
	_, err = repo.FindByID(ctx, inv.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestInvoiceRepository_ListByOwner(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	repo := repository.NewInvoiceRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db)
	other := seedUser(t, db)

	for _, client := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, newInvoice(owner.ID, client)))
		time.Sleep(2 * time.Millisecond)
	}
	require.NoError(t, repo.Create(ctx, newInvoice(other.ID, "foreign")))

	list, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].ClientName)
	assert.Equal(t, "first", list[2].ClientName)

	empty, err := repo.ListByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestInvoiceRepository_MissingRows(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	repo := repository.NewInvoiceRepository(db)
	ctx := context.Background()

	missing := newInvoice(uuid.New(), "ghost")
	missing.ID = uuid.New()

	_, err := repo.FindByID(ctx, missing.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, missing), model.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, missing.ID), model.ErrNotFound)
}

func TestInvoiceRepository_ConstraintErrors(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	repo := repository.NewInvoiceRepository(db)
	ctx := context.Background()
	user := seedUser(t, db)

	orphan := newInvoice(uuid.New(), "orphan")
	assert.ErrorIs(t, repo.Create(ctx, orphan), model.ErrNotFound)

	negative := newInvoice(user.ID, "negative")
	negative.Amount = decimal.RequireFromString("-1")
	assert.ErrorIs(t, repo.Create(ctx, negative), model.ErrValidation)

	overflow := newInvoice(user.ID, "overflow")
	overflow.Amount = decimal.RequireFromString("100000000000000000")
	assert.ErrorIs(t, repo.Create(ctx, overflow), model.ErrValidation)
}

// ---------------------------------------------------------------------------
// Users, sessions, transactions
// ---------------------------------------------------------------------------

func TestUserRepository_DuplicateEmail(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	email := fmt.Sprintf("Dup-%s@Example.com", uuid.NewString()[:8])
	require.NoError(t, repo.Create(ctx, &model.User{Name: "a", Email: email, Password: "x"}))
	err := repo.Create(ctx, &model.User{Name: "b", Email: email, Password: "x"})
	assert.ErrorIs(t, err, model.ErrConflict)

	got, err := repo.GetByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
}

func TestSessionRepository(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	repo := repository.NewSessionRepository(db)
	ctx := context.Background()
	user := seedUser(t, db)

	session := &model.Session{UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, repo.Delete(ctx, session.ID))
	assert.ErrorIs(t, repo.Delete(ctx, session.ID), model.ErrNotFound)
}

func TestTransactionManager_RollsBack(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	txm := repository.NewTransactionManager(db)
	invoices := repository.NewInvoiceRepository(db)
	audits := repository.NewAuditRepository(db)
	ctx := context.Background()
	user := seedUser(t, db)

	boom := errors.New("boom")
	var created *model.Invoice
	err := txm.RunInTx(ctx, func(txCtx context.Context) error {
		created = newInvoice(user.ID, "rolled back")
		if err := invoices.Create(txCtx, created); err != nil {
			return err
		}
		if err := audits.Log(txCtx, &model.AuditLog{
			UserID:   user.ID,
			Action:   model.ActionCreateInvoice,
			EntityID: created.ID.String(),
			Details:  "{}",
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = invoices.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	logs, total, err := audits.ListByUser(ctx, user.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, logs)
}

func TestTransactionManager_Commits(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	txm := repository.NewTransactionManager(db)
	invoices := repository.NewInvoiceRepository(db)
	ctx := context.Background()
	user := seedUser(t, db)

	inv := newInvoice(user.ID, "committed")
	require.NoError(t, txm.RunInTx(ctx, func(txCtx context.Context) error {
		return invoices.Create(txCtx, inv)
	}))

	_, err := invoices.FindByID(ctx, inv.ID)
	assert.NoError(t, err)
}

// ---------------------------------------------------------------------------
// AuditRepository
// ---------------------------------------------------------------------------

func TestAuditRepository_Pagination(t *testing.T) {
	t.Parallel()
	db := testhelper.SetupTestDB(t)
	repo := repository.NewAuditRepository(db)
	ctx := context.Background()
	user := seedUser(t, db)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Log(ctx, &model.AuditLog{
			UserID:   user.ID,
			Action:   model.ActionUpdateInvoice,
			EntityID: uuid.NewString(),
			Details:  fmt.Sprintf(`{"seq":%d}`, i),
		}))
		time.Sleep(2 * time.Millisecond)
	}

	page, total, err := repo.ListByUser(ctx, user.ID, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.JSONEq(t, `{"seq":2}`, page[0].Details)
	assert.JSONEq(t, `{"seq":1}`, page[1].Details)
}
