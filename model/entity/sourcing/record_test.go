package sourcing

import "testing"

func TestRecordRow_TableName(t *testing.T) {
	r := RecordRow{}
	if got := r.TableName(); got != "sourcing_record" {
		t.Errorf("RecordRow.TableName() = %q, want sourcing_record", got)
	}
}

func TestVendorLookup(t *testing.T) {
	rec := SourcingRecord{
		ActiveVendorID: 2,
		Vendors: []VendorQuote{
			{ID: 1}, {ID: 2}, {ID: 5},
		},
	}
	if v := rec.Vendor(5); v == nil || v.ID != 5 {
		t.Errorf("Vendor(5) = %+v", v)
	}
	if v := rec.Vendor(3); v != nil {
		t.Errorf("Vendor(3) = %+v, want nil", v)
	}
	if v := rec.ActiveVendor(); v == nil || v.ID != 2 {
		t.Errorf("ActiveVendor() = %+v", v)
	}
}

func TestClone_Detached(t *testing.T) {
	rec := &SourcingRecord{
		WorkOrderKey: "WO-1",
		Vendors: []VendorQuote{{
			ID:          1,
			Fields:      map[string]string{"warranty": "1y"},
			Attachments: []string{"a-1"},
			Pricing: PricingBlock{
				Items: []LineItem{{ID: 1, Quantity: "2"}},
			},
		}},
	}
	c := rec.Clone()

	rec.Vendors[0].Fields["warranty"] = "2y"
	rec.Vendors[0].Attachments[0] = "a-X"
	rec.Vendors[0].Pricing.Items[0].Quantity = "9"

	v := c.Vendors[0]
	if v.Fields["warranty"] != "1y" {
		t.Error("clone shares field map")
	}
	if v.Attachments[0] != "a-1" {
		t.Error("clone shares attachment slice")
	}
	if v.Pricing.Items[0].Quantity != "2" {
		t.Error("clone shares line item slice")
	}
}
