package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplytrace/backend/internal/domain/catalog"
	"github.com/supplytrace/backend/internal/domain/company"
)

func TestStrategyFor(t *testing.T) {
	tests := []struct {
		productType catalog.ProductType
		tier        company.Tier
		want        string
	}{
		{catalog.ProductTypeRawMaterial, company.TierOriginator, "origin_confirmation"},
		{catalog.ProductTypeRawMaterial, company.TierTrader, "trade_confirmation"},
		{catalog.ProductTypeProcessed, company.TierProcessor, "transformation_confirmation"},
		{catalog.ProductTypeRawMaterial, company.TierProcessor, "transformation_confirmation"},
		{catalog.ProductTypeProcessed, company.TierTrader, "transformation_confirmation"},
		{catalog.ProductTypeFinishedGood, company.TierBrand, "trade_confirmation"},
		{catalog.ProductTypeProcessed, company.TierOriginator, "trade_confirmation"},
	}

	for _, tt := range tests {
		t.Run(string(tt.productType)+"/"+string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.want, StrategyFor(tt.productType, tt.tier).Name())
		})
	}
}

func TestOriginConfirmation_ValidatePayload(t *testing.T) {
	strategy := StrategyFor(catalog.ProductTypeRawMaterial, company.TierOriginator)
	require.True(t, strategy.RequiresOriginData())

	t.Run("missing origin data rejected", func(t *testing.T) {
		err := strategy.ValidatePayload(SellerConfirmation{})
		assert.Error(t, err)
	})

	t.Run("farm id alone suffices", func(t *testing.T) {
		err := strategy.ValidatePayload(SellerConfirmation{
			OriginData: &OriginData{FarmID: "FARM-42"},
		})
		assert.NoError(t, err)
	})

	t.Run("coordinates alone suffice", func(t *testing.T) {
		err := strategy.ValidatePayload(SellerConfirmation{
			OriginData: &OriginData{Coordinates: &GeoPoint{Latitude: 3.14, Longitude: 101.69}},
		})
		assert.NoError(t, err)
	})
}

func TestTransformationConfirmation_ValidatePayload(t *testing.T) {
	strategy := StrategyFor(catalog.ProductTypeProcessed, company.TierProcessor)
	require.True(t, strategy.RequiresInputMaterials())

	t.Run("missing input materials rejected", func(t *testing.T) {
		err := strategy.ValidatePayload(SellerConfirmation{})
		assert.Error(t, err)
	})

	t.Run("contributions summing to 100 accepted", func(t *testing.T) {
		err := strategy.ValidatePayload(SellerConfirmation{
			InputMaterials: []InputMaterial{
				{SourcePOID: uuid.New(), PercentageContribution: decimal.NewFromInt(70)},
				{SourcePOID: uuid.New(), PercentageContribution: decimal.NewFromInt(30)},
			},
		})
		assert.NoError(t, err)
	})

	t.Run("contributions not summing to 100 rejected", func(t *testing.T) {
		err := strategy.ValidatePayload(SellerConfirmation{
			InputMaterials: []InputMaterial{
				{SourcePOID: uuid.New(), PercentageContribution: decimal.NewFromInt(70)},
			},
		})
		assert.Error(t, err)
	})
}
