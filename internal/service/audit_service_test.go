package service

import (
	"context"
	"testing"

	"github.com/holuwadafe/maglo-finance/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAuditLogs_PagedAndScoped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newInvoiceFixture(t)
	svc := NewAuditService(f.audit)
	userID := uuid.New()

	created, err := f.svc.CreateInvoice(ctx, userID, validInput())
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	_, err = f.svc.ToggleStatus(ctx, userID, id)
	require.NoError(t, err)
	_, err = f.svc.UpdateInvoice(ctx, userID, id, InvoicePatch{ClientName: ptr("Globex")})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteInvoice(ctx, userID, id))
	_, err = f.svc.CreateInvoice(ctx, uuid.New(), validInput())
	require.NoError(t, err)

	page1, total, err := svc.GetAuditLogs(ctx, userID, 1, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page1, 3)
	assert.Equal(t, model.ActionDeleteInvoice, page1[0].Action)
	assert.Equal(t, "Globex", page1[0].EntityName)
	assert.Equal(t, model.ActionUpdateInvoice, page1[1].Action)
	assert.Contains(t, page1[1].Details, "clientName")

	page2, _, err := svc.GetAuditLogs(ctx, userID, 2, 3)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, model.ActionCreateInvoice, page2[0].Action)
	assert.Equal(t, created.ID, page2[0].EntityID)
}
