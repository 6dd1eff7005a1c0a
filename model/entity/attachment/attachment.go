package attachment

import "time"

// Attachment represents one stored binary file, owned by the blob store
// and referenced by id from vendor quotes. Size reflects the payload as
// stored (post-transform for images); OriginalSize the uploaded bytes.
type Attachment struct {
	ID           string    `gorm:"column:attachment_id;primaryKey;size:64" json:"id"`
	OwnerID      int       `gorm:"column:owner_id;index:idx_attachment_owner;not null" json:"owner_id"`
	WorkOrderKey string    `gorm:"column:work_order_key;size:64;not null" json:"work_order_key"`
	Name         string    `gorm:"column:name;size:255;not null" json:"name"`
	MediaType    string    `gorm:"column:media_type;size:128;not null" json:"media_type"`
	Size         int64     `gorm:"column:size;not null" json:"size"`
	OriginalSize int64     `gorm:"column:original_size;not null" json:"original_size"`
	Payload      []byte    `gorm:"column:payload;type:blob" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	CreatedBy    string    `gorm:"column:created_by;size:64" json:"created_by"`
}

func (Attachment) TableName() string {
	return "sourcing_attachment"
}
