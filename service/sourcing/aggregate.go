package sourcing

import (
	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

// Recompute replaces the derived pricing fields of a vendor quote:
//
//	cost       = quantity × unit price        (per line item)
//	subtotal   = Σ line item cost
//	grossTotal = subtotal + Σ additive adjustments
//	netTotal   = grossTotal − Σ discounts
//
// Called after every mutation that touches a line item or adjustment
// field. Only the given vendor is touched; sibling vendors keep their
// totals. Raw inputs are preserved — blanks coalesce to zero only here.
func Recompute(v *sourcingEntity.VendorQuote) *sourcingEntity.VendorQuote {
	p := &v.Pricing

	subtotal := 0.0
	for i := range p.Items {
		item := &p.Items[i]
		item.Cost = ParseAmount(item.Quantity) * ParseAmount(item.UnitPrice)
		subtotal += item.Cost
	}

	additive := ParseAmount(p.CardCharge) +
		ParseAmount(p.Tax) +
		ParseAmount(p.Freight) +
		ParseAmount(p.ExtendedWarranty) +
		ParseAmount(p.Installation) +
		ParseAmount(p.RestockingFee) +
		ParseAmount(p.OtherCharge1) +
		ParseAmount(p.OtherCharge2)

	discounts := ParseAmount(p.Discount1) + ParseAmount(p.Discount2)

	p.Subtotal = subtotal
	p.GrossTotal = subtotal + additive
	p.NetTotal = p.GrossTotal - discounts
	return v
}
