package domain

import "time"

// TransactionStatus represents the status of an upload transaction
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusRolledBack TransactionStatus = "rolled-back"
)

// Terminal reports whether no further transition can happen
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusRolledBack
}

// StepStatus represents the status of a single pipeline step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepKind identifies a pipeline step
type StepKind string

const (
	StepDuplicateCheck      StepKind = "duplicate-check"
	StepMetadataExtraction  StepKind = "metadata-extraction"
	StepThumbnailGeneration StepKind = "thumbnail-generation"
	StepPresignedURL        StepKind = "presigned-url"
	StepFileUpload          StepKind = "file-upload"
	StepThumbnailUpload     StepKind = "thumbnail-upload"
	StepDatabaseUpdate      StepKind = "database-update"
)

// CompensationKind identifies the undo operation of a completed step
type CompensationKind string

const (
	// CompensationNone marks steps whose effect expires on its own
	// (presigned credentials). Kept as an explicit variant so rollback
	// logs show the step was considered.
	CompensationNone         CompensationKind = "none"
	CompensationDeleteObject CompensationKind = "delete-object"
	CompensationRemoveRecord CompensationKind = "remove-record"
)

// Compensation is a typed undo operation registered by a completed step.
// Tagged variants instead of closures so rollback is inspectable and
// testable.
type Compensation struct {
	Kind     CompensationKind `json:"kind"`
	Path     string           `json:"path,omitempty"`
	RecordID string           `json:"recordId,omitempty"`
	Year     int              `json:"year,omitempty"`
}

// TransactionStep is one step of the ingestion pipeline
type TransactionStep struct {
	ID           string            `json:"id"`
	Kind         StepKind          `json:"kind"`
	Status       StepStatus        `json:"status"`
	Data         map[string]string `json:"data,omitempty"`
	Error        string            `json:"error,omitempty"`
	Compensation *Compensation     `json:"compensation,omitempty"`
}

// UploadTransaction is the ephemeral, process-local record of one
// ingestion attempt. It is never persisted; a process restart discards
// in-flight transactions.
type UploadTransaction struct {
	ID        string             `json:"id"`
	Status    TransactionStatus  `json:"status"`
	Steps     []*TransactionStep `json:"steps"`
	StartTime time.Time          `json:"startTime"`
	EndTime   *time.Time         `json:"endTime,omitempty"`
	Result    *MediaRecord       `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
}
