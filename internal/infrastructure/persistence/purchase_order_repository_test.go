package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/supplytrace/backend/internal/domain/order"
	"github.com/supplytrace/backend/internal/domain/shared"
)

// newMockOrderRepository creates a GormPurchaseOrderRepository with a
// mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormPurchaseOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPurchaseOrderRepository(gormDB), mock, mockDB
}

func TestGormPurchaseOrderRepository_FindByID(t *testing.T) {
	t.Run("finds existing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		poID := uuid.New()
		buyerID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "version", "number", "buyer_company_id", "seller_company_id", "product_id", "quantity", "unit", "unit_price", "total", "status"}).
			AddRow(poID, 1, "PO-20260831-AB12CD34", buyerID, uuid.New(), uuid.New(),
				decimal.NewFromInt(1000), "MT", decimal.NewFromInt(850), decimal.NewFromInt(850000), "PENDING")

		mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(poID, 1).
			WillReturnRows(rows)

		po, err := repo.FindByID(context.Background(), poID)

		require.NoError(t, err)
		assert.Equal(t, poID, po.ID)
		assert.Equal(t, "PO-20260831-AB12CD34", po.Number)
		assert.Equal(t, order.StatusPending, po.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to a not found error", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		poID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(poID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		po, err := repo.FindByID(context.Background(), poID)

		assert.Nil(t, po)
		assert.True(t, shared.IsKind(err, shared.ErrorKindNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_ExistsByNumber(t *testing.T) {
	t.Run("reports taken numbers", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "purchase_orders" WHERE number = \$1`).
			WithArgs("PO-20260831-AB12CD34").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByNumber(context.Background(), "PO-20260831-AB12CD34")

		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports free numbers", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "purchase_orders" WHERE number = \$1`).
			WithArgs("PO-20260831-FFFFFFFF").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByNumber(context.Background(), "PO-20260831-FFFFFFFF")

		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_FindChildren(t *testing.T) {
	t.Run("returns children ordered by number", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		parentID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "number", "parent_po_id", "status"}).
			AddRow(uuid.New(), "PO-20260831-AB12CD34-S1", parentID, "PENDING").
			AddRow(uuid.New(), "PO-20260831-AB12CD34-S2", parentID, "PENDING")

		mock.ExpectQuery(`SELECT \* FROM "purchase_orders" WHERE parent_po_id = \$1 ORDER BY number ASC`).
			WithArgs(parentID).
			WillReturnRows(rows)

		children, err := repo.FindChildren(context.Background(), parentID)

		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "PO-20260831-AB12CD34-S1", children[0].Number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_SaveWithLock(t *testing.T) {
	newOrder := func() *order.PurchaseOrder {
		po := &order.PurchaseOrder{}
		po.ID = uuid.New()
		po.Version = 3
		po.Number = "PO-20260831-AB12CD34"
		po.BuyerCompanyID = uuid.New()
		po.SellerCompanyID = uuid.New()
		po.ProductID = uuid.New()
		po.Quantity = decimal.NewFromInt(1000)
		po.Unit = "MT"
		po.UnitPrice = decimal.NewFromInt(850)
		po.Total = decimal.NewFromInt(850000)
		po.Status = order.StatusPending
		return po
	}

	t.Run("bumps the version on success", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		po := newOrder()

		mock.ExpectExec(`UPDATE "purchase_orders" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), po)

		require.NoError(t, err)
		assert.Equal(t, 4, po.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when the row moved on", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		po := newOrder()

		mock.ExpectExec(`UPDATE "purchase_orders" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), po)

		assert.True(t, shared.IsKind(err, shared.ErrorKindConcurrency))
		assert.Equal(t, 3, po.Version, "version must be restored on conflict")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPurchaseOrderRepository_Delete(t *testing.T) {
	t.Run("deletes existing order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		poID := uuid.New()
		mock.ExpectExec(`DELETE FROM "purchase_orders" WHERE id = \$1`).
			WithArgs(poID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), poID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps zero rows to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		poID := uuid.New()
		mock.ExpectExec(`DELETE FROM "purchase_orders" WHERE id = \$1`).
			WithArgs(poID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), poID)
		assert.True(t, shared.IsKind(err, shared.ErrorKindNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
