package order

import (
	"github.com/supplytrace/backend/internal/domain/catalog"
	"github.com/supplytrace/backend/internal/domain/company"
	"github.com/supplytrace/backend/internal/domain/shared"
)

// ConfirmationStrategy validates the confirmation payload shape for one
// (product type, seller tier) variant. Origin confirmations attach
// plantation facts; transformation confirmations declare the input
// materials the delivered product was produced from.
type ConfirmationStrategy interface {
	// Name returns the unique name of the strategy
	Name() string
	// RequiresOriginData reports whether origin facts must accompany the confirmation
	RequiresOriginData() bool
	// RequiresInputMaterials reports whether input materials must accompany the confirmation
	RequiresInputMaterials() bool
	// ValidatePayload checks the confirmation payload against the variant's requirements
	ValidatePayload(confirmation SellerConfirmation) error
}

// StrategyFor selects the confirmation strategy for a product type and
// the confirming seller's supply-chain tier
func StrategyFor(productType catalog.ProductType, tier company.Tier) ConfirmationStrategy {
	switch {
	case tier == company.TierOriginator && productType == catalog.ProductTypeRawMaterial:
		return originConfirmation{}
	case tier == company.TierProcessor:
		return transformationConfirmation{}
	case tier == company.TierTrader && productType != catalog.ProductTypeRawMaterial:
		return transformationConfirmation{}
	default:
		return tradeConfirmation{}
	}
}

// originConfirmation applies to originators selling raw material. The
// confirmation must carry origin data so downstream transparency can be
// computed.
type originConfirmation struct{}

func (originConfirmation) Name() string                 { return "origin_confirmation" }
func (originConfirmation) RequiresOriginData() bool     { return true }
func (originConfirmation) RequiresInputMaterials() bool { return false }

func (originConfirmation) ValidatePayload(confirmation SellerConfirmation) error {
	if confirmation.OriginData == nil {
		return shared.NewValidationError("origin data is required for origin confirmation")
	}
	if confirmation.OriginData.FarmID == "" && confirmation.OriginData.Coordinates == nil {
		return shared.NewValidationError("origin data must identify the farm or its coordinates")
	}
	return nil
}

// transformationConfirmation applies to processors and to traders
// selling transformed product. The confirmation must declare input
// materials linking to upstream source POs.
type transformationConfirmation struct{}

func (transformationConfirmation) Name() string                 { return "transformation_confirmation" }
func (transformationConfirmation) RequiresOriginData() bool     { return false }
func (transformationConfirmation) RequiresInputMaterials() bool { return true }

func (transformationConfirmation) ValidatePayload(confirmation SellerConfirmation) error {
	if len(confirmation.InputMaterials) == 0 {
		return shared.NewValidationError("input materials are required for transformation confirmation")
	}
	return ValidateInputMaterials(confirmation.InputMaterials)
}

// tradeConfirmation applies to pass-through trades (traders moving raw
// material, brands). No extra payload is required; input materials are
// validated when present.
type tradeConfirmation struct{}

func (tradeConfirmation) Name() string                 { return "trade_confirmation" }
func (tradeConfirmation) RequiresOriginData() bool     { return false }
func (tradeConfirmation) RequiresInputMaterials() bool { return false }

func (tradeConfirmation) ValidatePayload(confirmation SellerConfirmation) error {
	return ValidateInputMaterials(confirmation.InputMaterials)
}
