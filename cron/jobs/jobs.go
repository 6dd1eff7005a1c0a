package jobs

import (
	"encoding/json"
	"log"

	"gorm.io/gorm"

	attachmentEntity "sourcing.GO/model/entity/attachment"
	sourcingEntity "sourcing.GO/model/entity/sourcing"
)

var db *gorm.DB

// SetDB injects the database handle. Call once at startup before the
// scheduler runs.
func SetDB(d *gorm.DB) { db = d }

// OrphanReportJob logs attachments no vendor references anymore.
// Removing a vendor keeps its attachments, so unreferenced blobs
// accumulate over time. This job only reports, it never deletes.
func OrphanReportJob(args ...string) {
	if db == nil {
		log.Println("orphan report: no database configured")
		return
	}

	var rows []sourcingEntity.RecordRow
	if err := db.Find(&rows).Error; err != nil {
		log.Printf("orphan report: load records: %v", err)
		return
	}
	referenced := make(map[string]bool)
	for _, row := range rows {
		var rec sourcingEntity.SourcingRecord
		if err := json.Unmarshal(row.Data, &rec); err != nil {
			log.Printf("orphan report: decode %s: %v", row.WorkOrderKey, err)
			continue
		}
		for _, v := range rec.Vendors {
			for _, id := range v.Attachments {
				referenced[id] = true
			}
		}
	}

	var atts []attachmentEntity.Attachment
	if err := db.Select("attachment_id", "work_order_key", "name", "size").Find(&atts).Error; err != nil {
		log.Printf("orphan report: load attachments: %v", err)
		return
	}
	orphans := 0
	var bytes int64
	for _, a := range atts {
		if !referenced[a.ID] {
			orphans++
			bytes += a.Size
		}
	}
	log.Printf("orphan report: %d of %d attachments unreferenced (%d bytes)", orphans, len(atts), bytes)
}
