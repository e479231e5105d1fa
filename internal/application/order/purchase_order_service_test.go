package order

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supplytrace/backend/internal/domain/catalog"
	"github.com/supplytrace/backend/internal/domain/company"
	"github.com/supplytrace/backend/internal/domain/order"
	"github.com/supplytrace/backend/internal/domain/shared"
)

type lifecycleFixture struct {
	svc      *PurchaseOrderService
	orders   *fakeOrderRepo
	audit    *recordingAudit
	notifier *recordingNotifier
	buyer    *company.Company
	seller   *company.Company
	product  *catalog.Product
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	buyer, err := company.NewCompany("Brandhouse", company.TierBrand)
	require.NoError(t, err)
	seller, err := company.NewCompany("Midstream Trading", company.TierTrader)
	require.NoError(t, err)
	product, err := catalog.NewProduct("Crude Palm Oil", "CPO", catalog.ProductTypeRawMaterial, "MT")
	require.NoError(t, err)

	f := &lifecycleFixture{
		orders:   newFakeOrderRepo(),
		audit:    &recordingAudit{},
		notifier: &recordingNotifier{},
		buyer:    buyer,
		seller:   seller,
		product:  product,
	}
	f.svc = NewPurchaseOrderService(
		f.orders,
		newFakeCompanyRepo(buyer, seller),
		newFakeProductRepo(product),
		passthroughTx{}, f.audit, f.notifier,
		zap.NewNop(),
	)
	return f
}

func (f *lifecycleFixture) createRequest() CreatePurchaseOrderRequest {
	return CreatePurchaseOrderRequest{
		BuyerCompanyID:  f.buyer.ID,
		SellerCompanyID: f.seller.ID,
		ProductID:       f.product.ID,
		Quantity:        decimal.RequireFromString("1000"),
		Unit:            "MT",
		UnitPrice:       decimal.RequireFromString("850"),
	}
}

func TestPurchaseOrderService_Create(t *testing.T) {
	t.Run("creates a draft with a generated number", func(t *testing.T) {
		f := newLifecycleFixture(t)

		resp, err := f.svc.Create(context.Background(), f.buyer.ID, f.createRequest())
		require.NoError(t, err)

		assert.Equal(t, string(order.StatusDraft), resp.Status)
		assert.True(t, strings.HasPrefix(resp.Number, "PO-"))
		assert.True(t, resp.Total.Equal(decimal.RequireFromString("850000")))
		require.Len(t, f.audit.entries, 2)
		assert.Equal(t, AuditEventCreated, f.audit.entries[0].EventType)
		assert.Equal(t, order.EventTypeCreated, f.audit.entries[1].EventType)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("issue on creation notifies the seller", func(t *testing.T) {
		f := newLifecycleFixture(t)
		req := f.createRequest()
		req.Issue = true

		resp, err := f.svc.Create(context.Background(), f.buyer.ID, req)
		require.NoError(t, err)

		assert.Equal(t, string(order.StatusPending), resp.Status)
		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, f.seller.ID, f.notifier.sent[0].TargetCompanyID)
	})

	t.Run("cannot create on behalf of another company", func(t *testing.T) {
		f := newLifecycleFixture(t)

		_, err := f.svc.Create(context.Background(), f.seller.ID, f.createRequest())
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.ErrorKindPermission))
	})

	t.Run("unknown seller fails", func(t *testing.T) {
		f := newLifecycleFixture(t)
		req := f.createRequest()
		req.SellerCompanyID = f.product.ID // not a company

		_, err := f.svc.Create(context.Background(), f.buyer.ID, req)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.ErrorKindNotFound))
	})
}

func TestPurchaseOrderService_Lifecycle(t *testing.T) {
	create := func(t *testing.T, f *lifecycleFixture, issue bool) *order.PurchaseOrder {
		req := f.createRequest()
		req.Issue = issue
		resp, err := f.svc.Create(context.Background(), f.buyer.ID, req)
		require.NoError(t, err)
		po, err := f.orders.FindByID(context.Background(), resp.ID)
		require.NoError(t, err)
		return po
	}

	t.Run("issue moves a draft to pending", func(t *testing.T) {
		f := newLifecycleFixture(t)
		po := create(t, f, false)

		resp, err := f.svc.Issue(context.Background(), po.ID, f.buyer.ID)
		require.NoError(t, err)
		assert.Equal(t, string(order.StatusPending), resp.Status)
	})

	t.Run("only the buyer may issue", func(t *testing.T) {
		f := newLifecycleFixture(t)
		po := create(t, f, false)

		_, err := f.svc.Issue(context.Background(), po.ID, f.seller.ID)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.ErrorKindPermission))
	})

	t.Run("get is limited to the two parties", func(t *testing.T) {
		f := newLifecycleFixture(t)
		po := create(t, f, true)

		_, err := f.svc.Get(context.Background(), po.ID, f.seller.ID)
		require.NoError(t, err)

		_, err = f.svc.Get(context.Background(), po.ID, f.product.ID)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.ErrorKindPermission))
	})

	t.Run("amendment reopens a confirmed order with new terms", func(t *testing.T) {
		f := newLifecycleFixture(t)
		po := create(t, f, true)
		require.NoError(t, po.TransitionTo(order.StatusConfirmed))

		resp, err := f.svc.Amend(context.Background(), po.ID, f.buyer.ID, AmendmentRequest{
			Quantity:  decimal.RequireFromString("1200"),
			UnitPrice: decimal.RequireFromString("840"),
		})
		require.NoError(t, err)

		assert.Equal(t, string(order.StatusAmendmentPending), resp.Status)
		assert.True(t, resp.Quantity.Equal(decimal.RequireFromString("1200")))
		assert.True(t, resp.Total.Equal(decimal.RequireFromString("1008000")))
		require.Len(t, f.notifier.sent, 2) // issue + amendment
	})

	t.Run("amendment of a shipped order is refused", func(t *testing.T) {
		f := newLifecycleFixture(t)
		po := create(t, f, true)
		require.NoError(t, po.TransitionTo(order.StatusConfirmed))
		require.NoError(t, po.TransitionTo(order.StatusShipped))

		_, err := f.svc.Amend(context.Background(), po.ID, f.buyer.ID, AmendmentRequest{
			Quantity:  decimal.RequireFromString("1200"),
			UnitPrice: decimal.RequireFromString("840"),
		})
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.ErrorKindStatus))
	})

	t.Run("shipment steps alternate between the parties", func(t *testing.T) {
		f := newLifecycleFixture(t)
		po := create(t, f, true)
		require.NoError(t, po.TransitionTo(order.StatusConfirmed))

		_, err := f.svc.Progress(context.Background(), po.ID, f.seller.ID, order.StatusInTransit)
		require.NoError(t, err)
		_, err = f.svc.Progress(context.Background(), po.ID, f.seller.ID, order.StatusShipped)
		require.NoError(t, err)

		// buyer cannot record the seller's step and vice versa
		_, err = f.svc.Progress(context.Background(), po.ID, f.seller.ID, order.StatusDelivered)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.ErrorKindPermission))

		_, err = f.svc.Progress(context.Background(), po.ID, f.buyer.ID, order.StatusDelivered)
		require.NoError(t, err)
		resp, err := f.svc.Progress(context.Background(), po.ID, f.buyer.ID, order.StatusReceived)
		require.NoError(t, err)
		assert.Equal(t, string(order.StatusReceived), resp.Status)
	})

	t.Run("a skipped shipment step is refused", func(t *testing.T) {
		f := newLifecycleFixture(t)
		po := create(t, f, true)
		require.NoError(t, po.TransitionTo(order.StatusConfirmed))

		_, err := f.svc.Progress(context.Background(), po.ID, f.buyer.ID, order.StatusReceived)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.ErrorKindStatus))
	})

	t.Run("either party may cancel", func(t *testing.T) {
		f := newLifecycleFixture(t)
		po := create(t, f, true)

		resp, err := f.svc.Cancel(context.Background(), po.ID, f.seller.ID)
		require.NoError(t, err)
		assert.Equal(t, string(order.StatusCancelled), resp.Status)
	})

	t.Run("status transitions land in the audit trail with their payload", func(t *testing.T) {
		f := newLifecycleFixture(t)
		po := create(t, f, false)
		assert.Empty(t, po.GetDomainEvents())

		_, err := f.svc.Issue(context.Background(), po.ID, f.buyer.ID)
		require.NoError(t, err)

		last := f.audit.entries[len(f.audit.entries)-1]
		assert.Equal(t, order.EventTypeStatusChanged, last.EventType)
		assert.Equal(t, po.ID, last.POID)
		assert.Equal(t, string(order.StatusDraft), last.BusinessContext["old_status"])
		assert.Equal(t, string(order.StatusPending), last.BusinessContext["new_status"])
		assert.Empty(t, po.GetDomainEvents())
	})

	t.Run("delete is limited to orders before confirmation", func(t *testing.T) {
		f := newLifecycleFixture(t)
		po := create(t, f, true)

		require.NoError(t, f.svc.Delete(context.Background(), po.ID, f.buyer.ID))
		_, err := f.orders.FindByID(context.Background(), po.ID)
		assert.True(t, shared.IsKind(err, shared.ErrorKindNotFound))

		confirmed := create(t, f, true)
		require.NoError(t, confirmed.TransitionTo(order.StatusConfirmed))
		err = f.svc.Delete(context.Background(), confirmed.ID, f.buyer.ID)
		require.Error(t, err)
		assert.True(t, shared.IsKind(err, shared.ErrorKindStatus))
	})
}
