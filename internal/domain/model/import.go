package model

import "time"

// ImportPhase describes where the image import flow currently stands.
type ImportPhase string

const (
	ImportPhaseIdle       ImportPhase = "IDLE"
	ImportPhaseUploading  ImportPhase = "UPLOADING"
	ImportPhaseReviewing  ImportPhase = "REVIEWING"
	ImportPhaseReady      ImportPhase = "READY"
	ImportPhaseConfirming ImportPhase = "CONFIRMING"
	ImportPhaseConfirmed  ImportPhase = "CONFIRMED"
	ImportPhaseFailed     ImportPhase = "FAILED"
)

// ImportStatus is a snapshot of the import flow for presentation.
type ImportStatus struct {
	Phase      ImportPhase
	Candidates []string
	Message    string
	UpdatedAt  time.Time
}

// UploadImageRequest is the body for the image upload call.
type UploadImageRequest struct {
	ImageBase64 string `json:"image_base64"`
	FileName    string `json:"file_name"`
}

// BulkCalculation applies the same redeem flag and points to every record.
type BulkCalculation struct {
	HasRedeemValue bool
	NumberOfPoints int
}
