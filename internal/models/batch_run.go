package models

import "time"

type BatchStatus string

const (
	BatchStatusSucceeded BatchStatus = "succeeded"
	BatchStatusPartial   BatchStatus = "partial"
	BatchStatusFailed    BatchStatus = "failed"
)

// BatchRun records one cascading multi-row mutation (category rename,
// category delete, branch relabel) and the outcome of every row it touched.
type BatchRun struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:36;uniqueIndex" json:"key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Branch key the cascade ran under.
	Branch string `gorm:"size:100;index" json:"branch"`

	// "category.rename", "category.delete", "branch.relabel"
	Operation string `gorm:"size:50;index" json:"operation"`

	// Short human summary, e.g. "Petrol -> Fuel"
	Subject string `gorm:"size:255" json:"subject"`

	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Status    BatchStatus `gorm:"size:20" json:"status"`
	Retries   int         `gorm:"default:0" json:"retries"`

	Items []BatchItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

// BatchItem is one row mutation inside a BatchRun.
type BatchItem struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	BatchRunID uint   `gorm:"index;not null" json:"batch_run_id"`
	Position   int    `gorm:"not null" json:"position"`
	Resource   string `gorm:"size:50;not null" json:"resource"`
	RowID      string `gorm:"size:64;not null" json:"row_id"`
	Action     string `gorm:"size:20;not null" json:"action"` // update / delete

	// Field patch applied by update items (JSON), "null" for deletes.
	Payload string `gorm:"type:jsonb" json:"payload"`

	Succeeded bool      `gorm:"default:false" json:"succeeded"`
	Error     string    `gorm:"size:500" json:"error,omitempty"`
	Attempts  int       `gorm:"default:1" json:"attempts"`
	UpdatedAt time.Time `json:"updated_at"`
}
