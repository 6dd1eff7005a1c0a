package sourcing

import (
	"fmt"
	"math"
	"time"

	"sourcing.GO/core/errs"
	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

// Field update sections accepted by UpdateField.
const (
	SectionQuote   = "quote"
	SectionPricing = "pricing"
)

// FieldQuoteValidTill is the descriptive field that also drives the
// stored remaining-days convenience value.
const FieldQuoteValidTill = "quoteValidTill"

const validTillLayout = "2006-01-02"

// NewRecord seeds a sourcing record for a work-order key on first access:
// one default vendor marked primary and active, with one empty line item.
func NewRecord(key string) *sourcingEntity.SourcingRecord {
	return &sourcingEntity.SourcingRecord{
		WorkOrderKey:   key,
		ActiveVendorID: 1,
		Vendors:        []sourcingEntity.VendorQuote{newVendor(1, true)},
	}
}

func newVendor(id int, primary bool) sourcingEntity.VendorQuote {
	return sourcingEntity.VendorQuote{
		ID:        id,
		Name:      fmt.Sprintf("Vendor %d", id),
		IsPrimary: primary,
		Fields:    make(map[string]string),
		Pricing: sourcingEntity.PricingBlock{
			Items: []sourcingEntity.LineItem{{ID: 1}},
		},
	}
}

// AddVendor appends a fresh vendor quote (id = max existing id + 1) and
// makes it the active one. Never primary on creation.
func AddVendor(rec *sourcingEntity.SourcingRecord) (*sourcingEntity.SourcingRecord, error) {
	if len(rec.Vendors) == 0 {
		return rec, errs.ErrMalformedRecord
	}
	maxID := 0
	for i := range rec.Vendors {
		if rec.Vendors[i].ID > maxID {
			maxID = rec.Vendors[i].ID
		}
	}
	v := newVendor(maxID+1, false)
	rec.Vendors = append(rec.Vendors, v)
	rec.ActiveVendorID = v.ID
	return rec, nil
}

// RemoveVendor drops a vendor quote. The last remaining vendor can never
// be removed. If the removed vendor was active, the first remaining one
// becomes active; if it was primary, the first remaining one becomes
// primary so the exactly-one-primary invariant holds. Attachments
// referenced by the removed vendor are left untouched.
func RemoveVendor(rec *sourcingEntity.SourcingRecord, vendorID int) (*sourcingEntity.SourcingRecord, error) {
	if len(rec.Vendors) <= 1 {
		return rec, errs.ErrMinCardinality
	}
	idx := -1
	for i := range rec.Vendors {
		if rec.Vendors[i].ID == vendorID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rec, errs.ErrVendorNotFound
	}
	wasPrimary := rec.Vendors[idx].IsPrimary
	rec.Vendors = append(rec.Vendors[:idx], rec.Vendors[idx+1:]...)
	if rec.ActiveVendorID == vendorID {
		rec.ActiveVendorID = rec.Vendors[0].ID
	}
	if wasPrimary {
		rec.Vendors[0].IsPrimary = true
	}
	return rec, nil
}

// SetPrimary marks the target vendor primary and clears the flag on all
// others — exactly one primary at all times.
func SetPrimary(rec *sourcingEntity.SourcingRecord, vendorID int) (*sourcingEntity.SourcingRecord, error) {
	if rec.Vendor(vendorID) == nil {
		return rec, errs.ErrVendorNotFound
	}
	for i := range rec.Vendors {
		rec.Vendors[i].IsPrimary = rec.Vendors[i].ID == vendorID
	}
	return rec, nil
}

// CopyVendorData copies descriptive and pricing data from one vendor to
// another. Attachments are never duplicated — the target's list resets to
// empty. The target keeps its id, name, primary flag and active state.
func CopyVendorData(rec *sourcingEntity.SourcingRecord, fromID, toID int) (*sourcingEntity.SourcingRecord, error) {
	from := rec.Vendor(fromID)
	to := rec.Vendor(toID)
	if from == nil || to == nil {
		return rec, errs.ErrVendorNotFound
	}
	to.Fields = make(map[string]string, len(from.Fields))
	for k, v := range from.Fields {
		to.Fields[k] = v
	}
	to.RemainingDays = from.RemainingDays
	to.Pricing = from.Pricing
	to.Pricing.Items = append([]sourcingEntity.LineItem(nil), from.Pricing.Items...)
	to.Attachments = nil
	Recompute(to)
	return rec, nil
}

// UpdateField sets one field on one vendor. Section "quote" targets the
// descriptive field map (plus the vendor name); section "pricing" targets
// an adjustment field and triggers a recompute of that vendor only.
func UpdateField(rec *sourcingEntity.SourcingRecord, vendorID int, section, field, value string) (*sourcingEntity.SourcingRecord, error) {
	v := rec.Vendor(vendorID)
	if v == nil {
		return rec, errs.ErrVendorNotFound
	}
	switch section {
	case SectionQuote:
		if field == "name" {
			v.Name = value
			return rec, nil
		}
		if v.Fields == nil {
			v.Fields = make(map[string]string)
		}
		v.Fields[field] = value
		if field == FieldQuoteValidTill {
			v.RemainingDays = remainingDays(value, time.Now())
		}
		return rec, nil
	case SectionPricing:
		if !setAdjustment(&v.Pricing, field, value) {
			return rec, fmt.Errorf("unknown pricing field %q", field)
		}
		Recompute(v)
		return rec, nil
	default:
		return rec, fmt.Errorf("unknown section %q", section)
	}
}

// remainingDays floors at zero: an elapsed validity date reads as 0 days
// left, not a negative count or a distinct expired state.
func remainingDays(validTill string, now time.Time) int {
	t, err := time.Parse(validTillLayout, validTill)
	if err != nil {
		return 0
	}
	days := int(math.Ceil(t.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func setAdjustment(p *sourcingEntity.PricingBlock, field, value string) bool {
	switch field {
	case "cardCharge":
		p.CardCharge = value
	case "tax":
		p.Tax = value
	case "freight":
		p.Freight = value
	case "extendedWarranty":
		p.ExtendedWarranty = value
	case "installation":
		p.Installation = value
	case "restockingFee":
		p.RestockingFee = value
	case "otherCharge1":
		p.OtherCharge1 = value
	case "otherCharge2":
		p.OtherCharge2 = value
	case "discount1":
		p.Discount1 = value
	case "discount2":
		p.Discount2 = value
	default:
		return false
	}
	return true
}

// AddLineItem appends an empty line item (id = max existing + 1) to a
// vendor's pricing block.
func AddLineItem(rec *sourcingEntity.SourcingRecord, vendorID int) (*sourcingEntity.SourcingRecord, error) {
	v := rec.Vendor(vendorID)
	if v == nil {
		return rec, errs.ErrVendorNotFound
	}
	maxID := 0
	for i := range v.Pricing.Items {
		if v.Pricing.Items[i].ID > maxID {
			maxID = v.Pricing.Items[i].ID
		}
	}
	v.Pricing.Items = append(v.Pricing.Items, sourcingEntity.LineItem{ID: maxID + 1})
	Recompute(v)
	return rec, nil
}

// UpdateLineItem sets description, quantity or unit price on a line item
// and recomputes the vendor's totals.
func UpdateLineItem(rec *sourcingEntity.SourcingRecord, vendorID, itemID int, field, value string) (*sourcingEntity.SourcingRecord, error) {
	v := rec.Vendor(vendorID)
	if v == nil {
		return rec, errs.ErrVendorNotFound
	}
	item := v.Pricing.Item(itemID)
	if item == nil {
		return rec, errs.ErrLineItemNotFound
	}
	switch field {
	case "description":
		item.Description = value
	case "quantity":
		item.Quantity = value
	case "unitPrice":
		item.UnitPrice = value
	default:
		return rec, fmt.Errorf("unknown line item field %q", field)
	}
	Recompute(v)
	return rec, nil
}

// RemoveLineItem drops a line item; the last one can never be removed.
func RemoveLineItem(rec *sourcingEntity.SourcingRecord, vendorID, itemID int) (*sourcingEntity.SourcingRecord, error) {
	v := rec.Vendor(vendorID)
	if v == nil {
		return rec, errs.ErrVendorNotFound
	}
	if len(v.Pricing.Items) <= 1 {
		return rec, errs.ErrMinCardinality
	}
	idx := -1
	for i := range v.Pricing.Items {
		if v.Pricing.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rec, errs.ErrLineItemNotFound
	}
	v.Pricing.Items = append(v.Pricing.Items[:idx], v.Pricing.Items[idx+1:]...)
	Recompute(v)
	return rec, nil
}
