package sourcing

import (
	"testing"

	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

func TestRecompute_ConcreteScenario(t *testing.T) {
	// Two line items (qty 2 @ $10, qty 1 @ $5), $2 tax, $1 discount.
	v := &sourcingEntity.VendorQuote{
		ID: 1,
		Pricing: sourcingEntity.PricingBlock{
			Items: []sourcingEntity.LineItem{
				{ID: 1, Quantity: "2", UnitPrice: "10"},
				{ID: 2, Quantity: "1", UnitPrice: "5"},
			},
			Tax:       "2",
			Discount1: "1",
		},
	}
	Recompute(v)

	if v.Pricing.Subtotal != 25 {
		t.Errorf("Subtotal = %v, want 25", v.Pricing.Subtotal)
	}
	if v.Pricing.GrossTotal != 27 {
		t.Errorf("GrossTotal = %v, want 27", v.Pricing.GrossTotal)
	}
	if v.Pricing.NetTotal != 26 {
		t.Errorf("NetTotal = %v, want 26", v.Pricing.NetTotal)
	}
	if got := FormatAmount(v.Pricing.NetTotal); got != "26.00" {
		t.Errorf("FormatAmount = %q, want 26.00", got)
	}
}

func TestRecompute_BlankAndNonNumericCoalesceToZero(t *testing.T) {
	v := &sourcingEntity.VendorQuote{
		Pricing: sourcingEntity.PricingBlock{
			Items: []sourcingEntity.LineItem{
				{ID: 1, Quantity: "3", UnitPrice: "abc"},
				{ID: 2, Quantity: "", UnitPrice: "4"},
				{ID: 3, Quantity: "2", UnitPrice: "1.50"},
			},
			Tax:     "n/a",
			Freight: "",
		},
	}
	Recompute(v)

	if v.Pricing.Subtotal != 3 {
		t.Errorf("Subtotal = %v, want 3", v.Pricing.Subtotal)
	}
	if v.Pricing.GrossTotal != 3 {
		t.Errorf("GrossTotal = %v, want 3 (blank/non-numeric adjustments are zero)", v.Pricing.GrossTotal)
	}
	// Raw inputs are preserved even when coalesced for computation.
	if v.Pricing.Items[0].UnitPrice != "abc" {
		t.Errorf("raw UnitPrice rewritten to %q", v.Pricing.Items[0].UnitPrice)
	}
	if v.Pricing.Tax != "n/a" {
		t.Errorf("raw Tax rewritten to %q", v.Pricing.Tax)
	}
}

func TestRecompute_AllAdjustmentFields(t *testing.T) {
	v := &sourcingEntity.VendorQuote{
		Pricing: sourcingEntity.PricingBlock{
			Items:            []sourcingEntity.LineItem{{ID: 1, Quantity: "1", UnitPrice: "100"}},
			CardCharge:       "1",
			Tax:              "2",
			Freight:          "3",
			ExtendedWarranty: "4",
			Installation:     "5",
			RestockingFee:    "6",
			OtherCharge1:     "7",
			OtherCharge2:     "8",
			Discount1:        "10",
			Discount2:        "5",
		},
	}
	Recompute(v)

	if v.Pricing.Subtotal != 100 {
		t.Errorf("Subtotal = %v, want 100", v.Pricing.Subtotal)
	}
	if v.Pricing.GrossTotal != 136 {
		t.Errorf("GrossTotal = %v, want 136", v.Pricing.GrossTotal)
	}
	if v.Pricing.NetTotal != 121 {
		t.Errorf("NetTotal = %v, want 121", v.Pricing.NetTotal)
	}
}

// Totals depend only on the final field values, not on the mutation
// order that produced them.
func TestRecompute_OrderIndependent(t *testing.T) {
	rec1 := NewRecord("WO-1")
	rec2 := NewRecord("WO-1")

	UpdateLineItem(rec1, 1, 1, "quantity", "2")
	UpdateLineItem(rec1, 1, 1, "unitPrice", "10")
	UpdateField(rec1, 1, SectionPricing, "tax", "2")

	UpdateField(rec2, 1, SectionPricing, "tax", "2")
	UpdateLineItem(rec2, 1, 1, "unitPrice", "10")
	UpdateLineItem(rec2, 1, 1, "quantity", "2")

	p1, p2 := rec1.Vendors[0].Pricing, rec2.Vendors[0].Pricing
	if p1.Subtotal != p2.Subtotal || p1.GrossTotal != p2.GrossTotal || p1.NetTotal != p2.NetTotal {
		t.Errorf("totals differ by mutation order: %+v vs %+v", p1, p2)
	}
	if p1.NetTotal != 22 {
		t.Errorf("NetTotal = %v, want 22", p1.NetTotal)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"  ", 0},
		{"abc", 0},
		{"5", 5},
		{"5.25", 5.25},
		{"$1,250.50", 1250.50},
		{"-3", -3},
	}
	for _, c := range cases {
		if got := ParseAmount(c.in); got != c.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
