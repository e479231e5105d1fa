package order

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// relativeTolerance is the threshold below which a numeric change is
// treated as equal: |confirmed - original| / original must exceed 0.1%.
var relativeTolerance = decimal.NewFromFloat(0.001)

// Discrepancy field names, in the fixed order they are reported
const (
	DiscrepancyFieldQuantity         = "quantity"
	DiscrepancyFieldUnitPrice        = "unit_price"
	DiscrepancyFieldDeliveryDate     = "delivery_date"
	DiscrepancyFieldDeliveryLocation = "delivery_location"
)

// DiscrepancyDetail describes one material difference between the
// original terms and a seller confirmation. It is serialized into the
// PO's discrepancy payload, never persisted on its own.
type DiscrepancyDetail struct {
	Field      string `json:"field"`
	Original   string `json:"original"`
	Confirmed  string `json:"confirmed"`
	Difference string `json:"difference"`
}

// DetectDiscrepancies compares the PO's original terms against a seller
// confirmation. Quantity and unit price use the relative tolerance;
// delivery date and location compare exactly when the confirmed value is
// present. The result is ordered: quantity, unit price, delivery date,
// delivery location.
//
// CaptureOriginalTerms must have run before detection; the original
// snapshot is the comparison baseline.
func DetectDiscrepancies(po *PurchaseOrder, confirmation SellerConfirmation) []DiscrepancyDetail {
	details := make([]DiscrepancyDetail, 0, 4)

	if po.OriginalQuantity != nil && exceedsTolerance(*po.OriginalQuantity, confirmation.Quantity) {
		details = append(details, DiscrepancyDetail{
			Field:      DiscrepancyFieldQuantity,
			Original:   po.OriginalQuantity.String(),
			Confirmed:  confirmation.Quantity.String(),
			Difference: signedQuantityDelta(*po.OriginalQuantity, confirmation.Quantity, po.Unit),
		})
	}

	if po.OriginalUnitPrice != nil && exceedsTolerance(*po.OriginalUnitPrice, confirmation.UnitPrice) {
		details = append(details, DiscrepancyDetail{
			Field:      DiscrepancyFieldUnitPrice,
			Original:   po.OriginalUnitPrice.String(),
			Confirmed:  confirmation.UnitPrice.String(),
			Difference: signedPriceDelta(*po.OriginalUnitPrice, confirmation.UnitPrice),
		})
	}

	if confirmation.DeliveryDate != nil {
		original := po.OriginalDeliveryDate
		if original == nil || !original.Equal(*confirmation.DeliveryDate) {
			originalStr := ""
			if original != nil {
				originalStr = original.Format("2006-01-02")
			}
			details = append(details, DiscrepancyDetail{
				Field:      DiscrepancyFieldDeliveryDate,
				Original:   originalStr,
				Confirmed:  confirmation.DeliveryDate.Format("2006-01-02"),
				Difference: dateDelta(original, *confirmation.DeliveryDate),
			})
		}
	}

	if confirmation.DeliveryLocation != nil {
		original := ""
		if po.OriginalDeliveryLocation != nil {
			original = *po.OriginalDeliveryLocation
		}
		if *confirmation.DeliveryLocation != original {
			details = append(details, DiscrepancyDetail{
				Field:      DiscrepancyFieldDeliveryLocation,
				Original:   original,
				Confirmed:  *confirmation.DeliveryLocation,
				Difference: fmt.Sprintf("changed from %q to %q", original, *confirmation.DeliveryLocation),
			})
		}
	}

	return details
}

// exceedsTolerance reports whether the relative change from original to
// confirmed crosses the 0.1% threshold
func exceedsTolerance(original, confirmed decimal.Decimal) bool {
	if original.IsZero() {
		return !confirmed.IsZero()
	}
	relative := confirmed.Sub(original).Abs().Div(original.Abs())
	return relative.GreaterThan(relativeTolerance)
}

// signedQuantityDelta renders a quantity change like "+5.000 MT (+0.5%)".
// A zero original has no meaningful percentage, so only the absolute
// delta is rendered.
func signedQuantityDelta(original, confirmed decimal.Decimal, unit string) string {
	diff := confirmed.Sub(original)
	if original.IsZero() {
		return fmt.Sprintf("%s %s", signedFixed(diff, 3), unit)
	}
	pct := diff.Div(original).Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("%s %s (%s%%)", signedFixed(diff, 3), unit, signedFixed(pct, 1))
}

// signedPriceDelta renders a unit price change like "+0.25 (+2.5%)".
// A zero original has no meaningful percentage, so only the absolute
// delta is rendered.
func signedPriceDelta(original, confirmed decimal.Decimal) string {
	diff := confirmed.Sub(original)
	if original.IsZero() {
		return signedFixed(diff, 2)
	}
	pct := diff.Div(original).Mul(decimal.NewFromInt(100))
	return fmt.Sprintf("%s (%s%%)", signedFixed(diff, 2), signedFixed(pct, 1))
}

// signedFixed renders a decimal with an explicit sign and fixed places
func signedFixed(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	if !d.IsNegative() {
		return "+" + s
	}
	return s
}

// dateDelta renders a delivery date change like "2 days later"
func dateDelta(original *time.Time, confirmed time.Time) string {
	if original == nil {
		return fmt.Sprintf("set to %s", confirmed.Format("2006-01-02"))
	}
	days := int(math.Round(confirmed.Sub(*original).Hours() / 24))
	switch {
	case days > 1:
		return fmt.Sprintf("%d days later", days)
	case days == 1:
		return "1 day later"
	case days == -1:
		return "1 day earlier"
	case days < -1:
		return fmt.Sprintf("%d days earlier", -days)
	default:
		return "same day"
	}
}
