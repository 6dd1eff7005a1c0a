package sourcing

import (
	"time"

	"gorm.io/datatypes"
)

// SourcingRecord is the per-work-order aggregate holding all vendor quotes.
// The work-order key is supplied by the external workflow system and never
// generated here.
type SourcingRecord struct {
	WorkOrderKey   string        `json:"workOrderKey"`
	ActiveVendorID int           `json:"activeVendorId"`
	Vendors        []VendorQuote `json:"vendors"`
}

// VendorQuote is one vendor's commercial submission within a sourcing record.
// Fields holds the ~25 free-form descriptive commercial/compliance/logistics
// values keyed by field name; all optional, all stored raw.
type VendorQuote struct {
	ID            int               `json:"id"`
	Name          string            `json:"name"`
	IsPrimary     bool              `json:"isPrimary"`
	Fields        map[string]string `json:"fields"`
	Attachments   []string          `json:"attachments"`
	RemainingDays int               `json:"remainingDays"`
	Pricing       PricingBlock      `json:"pricing"`
}

// PricingBlock holds the priced line items and adjustment fields.
// Adjustment values are raw strings: blank or non-numeric input is preserved
// as typed and coalesced to zero only inside total computation.
// Subtotal, GrossTotal and NetTotal are derived and must only ever be
// written by the aggregate recompute.
type PricingBlock struct {
	Items []LineItem `json:"items"`

	// Additive adjustments.
	CardCharge       string `json:"cardCharge"`
	Tax              string `json:"tax"`
	Freight          string `json:"freight"`
	ExtendedWarranty string `json:"extendedWarranty"`
	Installation     string `json:"installation"`
	RestockingFee    string `json:"restockingFee"`
	OtherCharge1     string `json:"otherCharge1"`
	OtherCharge2     string `json:"otherCharge2"`

	// Subtractive adjustments.
	Discount1 string `json:"discount1"`
	Discount2 string `json:"discount2"`

	// Derived totals.
	Subtotal   float64 `json:"subtotal"`
	GrossTotal float64 `json:"grossTotal"`
	NetTotal   float64 `json:"netTotal"`
}

// LineItem is one priced unit row. Quantity and UnitPrice keep the raw
// user input; Cost is derived (quantity × unit price, blanks as zero).
type LineItem struct {
	ID          int     `json:"id"`
	Description string  `json:"description"`
	Quantity    string  `json:"quantity"`
	UnitPrice   string  `json:"unitPrice"`
	Cost        float64 `json:"cost"`
}

// Vendor returns the quote with the given id, or nil.
func (r *SourcingRecord) Vendor(id int) *VendorQuote {
	for i := range r.Vendors {
		if r.Vendors[i].ID == id {
			return &r.Vendors[i]
		}
	}
	return nil
}

// ActiveVendor returns the currently active quote, or nil.
func (r *SourcingRecord) ActiveVendor() *VendorQuote {
	return r.Vendor(r.ActiveVendorID)
}

// Item returns the line item with the given id, or nil.
func (p *PricingBlock) Item(id int) *LineItem {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return &p.Items[i]
		}
	}
	return nil
}

// Clone returns a deep copy, detached from the working record so an
// in-flight write never observes a concurrent mutation.
func (r *SourcingRecord) Clone() *SourcingRecord {
	out := &SourcingRecord{
		WorkOrderKey:   r.WorkOrderKey,
		ActiveVendorID: r.ActiveVendorID,
		Vendors:        make([]VendorQuote, len(r.Vendors)),
	}
	for i := range r.Vendors {
		v := r.Vendors[i]
		if v.Fields != nil {
			fields := make(map[string]string, len(v.Fields))
			for k, val := range v.Fields {
				fields[k] = val
			}
			v.Fields = fields
		}
		v.Attachments = append([]string(nil), v.Attachments...)
		v.Pricing.Items = append([]LineItem(nil), v.Pricing.Items...)
		out.Vendors[i] = v
	}
	return out
}

// RecordRow is the structured-store row: one JSON document per work order.
type RecordRow struct {
	WorkOrderKey string         `gorm:"column:work_order_key;primaryKey;size:64" json:"work_order_key"`
	Data         datatypes.JSON `gorm:"column:data" json:"data"`
	UpdatedAt    time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (RecordRow) TableName() string {
	return "sourcing_record"
}
