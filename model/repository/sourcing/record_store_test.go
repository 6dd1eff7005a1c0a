package sourcing

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"sourcing.GO/core/errs"
	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

// memMirror is an in-memory MirrorStore for tests.
type memMirror struct {
	docs map[string]sourcingEntity.MirrorDocument
}

func newMemMirror() *memMirror {
	return &memMirror{docs: make(map[string]sourcingEntity.MirrorDocument)}
}

func (m *memMirror) Get(ctx context.Context, key string) (*sourcingEntity.MirrorDocument, error) {
	doc, ok := m.docs[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &doc, nil
}

func (m *memMirror) Put(ctx context.Context, doc *sourcingEntity.MirrorDocument) error {
	m.docs[doc.WorkOrderKey] = *doc
	return nil
}

func (m *memMirror) All(ctx context.Context) ([]sourcingEntity.MirrorDocument, error) {
	out := make([]sourcingEntity.MirrorDocument, 0, len(m.docs))
	for _, d := range m.docs {
		out = append(out, d)
	}
	return out, nil
}

// failMirror rejects every write.
type failMirror struct{ memMirror }

func (m *failMirror) Put(ctx context.Context, doc *sourcingEntity.MirrorDocument) error {
	return errors.New("mirror down")
}

func sampleRecord(key string) *sourcingEntity.SourcingRecord {
	return &sourcingEntity.SourcingRecord{
		WorkOrderKey:   key,
		ActiveVendorID: 1,
		Vendors: []sourcingEntity.VendorQuote{{
			ID:        1,
			Name:      "Acme Industrial",
			IsPrimary: true,
			Fields:    map[string]string{"paymentTerms": "net30"},
			Pricing: sourcingEntity.PricingBlock{
				Items: []sourcingEntity.LineItem{
					{ID: 1, Description: "pump", Quantity: "2", UnitPrice: "10", Cost: 20},
					{ID: 2, Description: "seal kit", Quantity: "1", UnitPrice: "5", Cost: 5},
				},
				Tax:        "2",
				Discount1:  "1",
				Subtotal:   25,
				GrossTotal: 27,
				NetTotal:   26,
			},
		}},
	}
}

func TestRecordStore_InitIdempotent(t *testing.T) {
	db := testDB(t)
	store := NewRecordStore(db, NewGormStructuredStore(db), nil)
	for i := 0; i < 3; i++ {
		if err := store.Init(context.Background()); err != nil {
			t.Fatalf("Init #%d: %v", i, err)
		}
	}
}

func TestRecordStore_SaveLoadRoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewRecordStore(db, NewGormStructuredStore(db), newMemMirror())
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	rec := sampleRecord("WO-7")
	if err := store.Save(ctx, "WO-7", rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, "WO-7")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(got.Vendors) != len(rec.Vendors) {
		t.Fatalf("vendor count = %d, want %d", len(got.Vendors), len(rec.Vendors))
	}
	v := got.Vendors[0]
	if v.Fields["paymentTerms"] != "net30" {
		t.Errorf("field lost in round trip: %v", v.Fields)
	}
	if v.Pricing.Subtotal != 25 || v.Pricing.GrossTotal != 27 || v.Pricing.NetTotal != 26 {
		t.Errorf("derived totals changed: %+v", v.Pricing)
	}
	if v.Pricing.Items[1].Description != "seal kit" {
		t.Errorf("line items changed: %+v", v.Pricing.Items)
	}
}

func TestRecordStore_LoadMissingKey(t *testing.T) {
	db := testDB(t)
	store := NewRecordStore(db, NewGormStructuredStore(db), newMemMirror())
	ctx := context.Background()
	store.Init(ctx)

	if _, err := store.Load(ctx, "WO-nope"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordStore_SaveUpdatesExistingMirrorDoc(t *testing.T) {
	db := testDB(t)
	mirror := newMemMirror()
	mirror.Put(context.Background(), &sourcingEntity.MirrorDocument{
		WorkOrderKey: "WO-7",
		Title:        "Pump overhaul",
	})
	store := NewRecordStore(db, NewGormStructuredStore(db), mirror)
	ctx := context.Background()
	store.Init(ctx)

	if err := store.Save(ctx, "WO-7", sampleRecord("WO-7")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	doc := mirror.docs["WO-7"]
	if doc.Sourcing == nil {
		t.Fatal("mirror doc not refreshed with embedded copy")
	}
	if !doc.Started {
		t.Error("mirror doc not marked started")
	}
	if doc.Title != "Pump overhaul" {
		t.Error("workflow fields clobbered")
	}

	// No mirror doc for this key: save must not create one.
	if err := store.Save(ctx, "WO-8", sampleRecord("WO-8")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := mirror.docs["WO-8"]; ok {
		t.Error("save created a mirror doc; that is the workflow system's job")
	}
}

func TestRecordStore_MirrorFailureDoesNotFailSave(t *testing.T) {
	db := testDB(t)
	mirror := &failMirror{}
	mirror.docs = map[string]sourcingEntity.MirrorDocument{
		"WO-7": {WorkOrderKey: "WO-7"},
	}
	store := NewRecordStore(db, NewGormStructuredStore(db), mirror)
	ctx := context.Background()
	store.Init(ctx)

	if err := store.Save(ctx, "WO-7", sampleRecord("WO-7")); err != nil {
		t.Fatalf("Save failed on mirror error: %v", err)
	}
	// Structured write went through regardless.
	if _, err := store.Load(ctx, "WO-7"); err != nil {
		t.Errorf("Load after partial failure: %v", err)
	}
}

func TestRecordStore_LoadFallsBackToMirror(t *testing.T) {
	db := testDB(t)
	mirror := newMemMirror()
	// Legacy document: numbers arrive as JSON floats and strings.
	mirror.docs["WO-legacy"] = sourcingEntity.MirrorDocument{
		WorkOrderKey: "WO-legacy",
		Sourcing: map[string]interface{}{
			"workOrderKey":   "WO-legacy",
			"activeVendorId": float64(1),
			"vendors": []interface{}{
				map[string]interface{}{
					"id":        float64(1),
					"name":      "Legacy Vendor",
					"isPrimary": true,
					"pricing": map[string]interface{}{
						"items": []interface{}{
							map[string]interface{}{
								"id":        "1",
								"quantity":  "2",
								"unitPrice": "10",
							},
						},
						"tax": "2",
					},
				},
			},
		},
	}
	store := NewRecordStore(db, NewGormStructuredStore(db), mirror)
	ctx := context.Background()
	store.Init(ctx)

	rec, err := store.Load(ctx, "WO-legacy")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rec.Vendors) != 1 || rec.Vendors[0].Name != "Legacy Vendor" {
		t.Fatalf("decoded record = %+v", rec)
	}
	if rec.Vendors[0].Pricing.Items[0].ID != 1 {
		t.Errorf("weakly typed id not coerced: %+v", rec.Vendors[0].Pricing.Items[0])
	}

	// The fallback is read-only: the structured store stays empty until
	// the next save migrates the record.
	if _, err := store.structured.Get(ctx, "WO-legacy"); !errors.Is(err, errs.ErrNotFound) {
		t.Error("fallback load wrote to the structured store")
	}
}

func TestRecordStore_MarkComplete(t *testing.T) {
	db := testDB(t)
	mirror := newMemMirror()
	mirror.docs["WO-7"] = sourcingEntity.MirrorDocument{WorkOrderKey: "WO-7"}
	store := NewRecordStore(db, NewGormStructuredStore(db), mirror)
	ctx := context.Background()
	store.Init(ctx)

	if err := store.MarkComplete(ctx, "WO-7"); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	doc := mirror.docs["WO-7"]
	if !doc.Completed || doc.Status != "sourcing-complete" {
		t.Errorf("doc = %+v, want completed with status", doc)
	}
	if doc.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
}
