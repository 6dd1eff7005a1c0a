package sourcing

import "time"

// MirrorDocument is one entry of the flat snapshot mirror: a superset of
// external workflow fields plus an embedded copy of the sourcing data.
// The mirror is read and written by external workflow collaborators too,
// so the embedded copy is always a cache of the structured store, never
// the source of truth.
type MirrorDocument struct {
	WorkOrderKey string    `json:"workOrderKey"`
	Title        string    `json:"title,omitempty"`
	Requestor    string    `json:"requestor,omitempty"`
	Started      bool      `json:"started"`
	Completed    bool      `json:"completed"`
	Status       string    `json:"status,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Sourcing is the embedded record copy, kept loosely typed because
	// legacy documents predate the structured store and drift in shape.
	Sourcing map[string]interface{} `json:"sourcing,omitempty"`
}
