package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/supplytrace/backend/internal/domain/catalog"
	"github.com/supplytrace/backend/internal/domain/company"
	"github.com/supplytrace/backend/internal/domain/inventory"
	"github.com/supplytrace/backend/internal/domain/order"
	"github.com/supplytrace/backend/internal/domain/shared"
)

// In-memory collaborators for service tests

type fakeOrderRepo struct {
	orders  map[uuid.UUID]*order.PurchaseOrder
	saveErr error
}

func newFakeOrderRepo(orders ...*order.PurchaseOrder) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[uuid.UUID]*order.PurchaseOrder)}
	for _, po := range orders {
		r.orders[po.ID] = po
	}
	return r
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.PurchaseOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, shared.NewNotFoundError("purchase order")
	}
	return po, nil
}

func (r *fakeOrderRepo) FindByNumber(_ context.Context, number string) (*order.PurchaseOrder, error) {
	for _, po := range r.orders {
		if po.Number == number {
			return po, nil
		}
	}
	return nil, shared.NewNotFoundError("purchase order")
}

func (r *fakeOrderRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	for _, po := range r.orders {
		if po.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) FindChildren(_ context.Context, parentID uuid.UUID) ([]order.PurchaseOrder, error) {
	var out []order.PurchaseOrder
	for _, po := range r.orders {
		if po.ParentPOID != nil && *po.ParentPOID == parentID {
			out = append(out, *po)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindConsumersOf(_ context.Context, sourcePOID uuid.UUID) ([]order.PurchaseOrder, error) {
	var out []order.PurchaseOrder
	for _, po := range r.orders {
		for _, m := range po.InputMaterials {
			if m.SourcePOID == sourcePOID {
				out = append(out, *po)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) FindForTransparencyRefresh(_ context.Context, companyID uuid.UUID, calculatedBefore *time.Time) ([]order.PurchaseOrder, error) {
	var out []order.PurchaseOrder
	for _, po := range r.orders {
		if po.BuyerCompanyID != companyID && po.SellerCompanyID != companyID {
			continue
		}
		if calculatedBefore != nil && po.TransparencyCalculatedAt != nil &&
			po.TransparencyCalculatedAt.After(*calculatedBefore) {
			continue
		}
		out = append(out, *po)
	}
	return out, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, po *order.PurchaseOrder) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.orders[po.ID] = po
	return nil
}

func (r *fakeOrderRepo) SaveWithLock(ctx context.Context, po *order.PurchaseOrder) error {
	return r.Save(ctx, po)
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) children(parentID uuid.UUID) []*order.PurchaseOrder {
	var out []*order.PurchaseOrder
	for _, po := range r.orders {
		if po.ParentPOID != nil && *po.ParentPOID == parentID {
			out = append(out, po)
		}
	}
	return out
}

type fakeAllocationRepo struct {
	saved []order.Allocation
}

func (r *fakeAllocationRepo) FindByPO(_ context.Context, poID uuid.UUID) ([]order.Allocation, error) {
	var out []order.Allocation
	for _, a := range r.saved {
		if a.POID == poID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAllocationRepo) SaveAll(_ context.Context, allocations []order.Allocation) error {
	r.saved = append(r.saved, allocations...)
	return nil
}

func (r *fakeAllocationRepo) DeleteByPO(_ context.Context, poID uuid.UUID) error {
	var kept []order.Allocation
	for _, a := range r.saved {
		if a.POID != poID {
			kept = append(kept, a)
		}
	}
	r.saved = kept
	return nil
}

type fakeBatchRepo struct {
	batches map[uuid.UUID]*inventory.Batch
}

func newFakeBatchRepo(batches ...*inventory.Batch) *fakeBatchRepo {
	r := &fakeBatchRepo{batches: make(map[uuid.UUID]*inventory.Batch)}
	for _, b := range batches {
		r.batches[b.ID] = b
	}
	return r
}

func (r *fakeBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Batch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, shared.NewNotFoundError("inventory batch")
	}
	return b, nil
}

func (r *fakeBatchRepo) FindAvailable(_ context.Context, companyID, productID uuid.UUID) ([]inventory.Batch, error) {
	var out []inventory.Batch
	for _, b := range r.batches {
		if b.CompanyID == companyID && b.ProductID == productID && b.HasStock() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) Save(_ context.Context, b *inventory.Batch) error {
	r.batches[b.ID] = b
	return nil
}

type fakeCompanyRepo struct {
	companies map[uuid.UUID]*company.Company
}

func newFakeCompanyRepo(companies ...*company.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: make(map[uuid.UUID]*company.Company)}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*company.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, shared.NewNotFoundError("company")
	}
	return c, nil
}

func (r *fakeCompanyRepo) Save(_ context.Context, c *company.Company) error {
	r.companies[c.ID] = c
	return nil
}

type fakeRelationshipRepo struct {
	suppliers []company.Company
}

func (r *fakeRelationshipRepo) FindSuppliers(_ context.Context, _, _ uuid.UUID) ([]company.Company, error) {
	return r.suppliers, nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepo(products ...*catalog.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.NewNotFoundError("product")
	}
	return p, nil
}

func (r *fakeProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.products[p.ID] = p
	return nil
}

// passthroughTx runs the function directly; rollback semantics are
// covered by the gorm transaction manager's own tests
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingAudit struct {
	entries []AuditEntry
	err     error
}

func (a *recordingAudit) Record(_ context.Context, entry AuditEntry) error {
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, entry)
	return nil
}

type recordingNotifier struct {
	sent []Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, notification Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

var errNotifierDown = errors.New("notifier down")
