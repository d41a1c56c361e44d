package entities

import "time"

// RunOperation distinguishes the two pipeline operations in the audit trail.
type RunOperation string

const (
	RunOperationPreview RunOperation = "preview"
	RunOperationImport  RunOperation = "import"
)

const (
	RunOutcomeReady   = "ready"
	RunOutcomeSuccess = "success"
	RunOutcomePartial = "partial"
	RunOutcomeError   = "error"
)

// ImportRun is one audited pipeline invocation. The pipeline itself keeps no
// state between calls; runs exist purely so operators can review what was
// previewed and imported, and partial writes stay visible.
type ImportRun struct {
	ID             string       `gorm:"primaryKey;size:36" json:"id"`
	Operation      RunOperation `gorm:"size:16;index" json:"operation"`
	Supplier       string       `gorm:"size:16;index" json:"supplier"`
	PartNumber     string       `gorm:"size:128" json:"part_number"`
	Outcome        string       `gorm:"size:16" json:"outcome"`
	PartID         int          `json:"part_id,omitempty"`
	SupplierPartID int          `json:"supplier_part_id,omitempty"`
	ErrorMsg       string       `gorm:"size:500" json:"error,omitempty"`
	DurationMS     int64        `json:"duration_ms"`
	CreatedAt      time.Time    `gorm:"index" json:"created_at"`
}
