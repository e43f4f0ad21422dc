package dto

import (
	"time"

	"github.com/polkiloo/phonetrack/internal/domain/model"
)

// ImportStatusResponse describes the current import flow state.
type ImportStatusResponse struct {
	Phase      string    `json:"phase"`
	Candidates []string  `json:"candidates"`
	Message    string    `json:"message,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CandidatesRequest replaces the review buffer.
type CandidatesRequest struct {
	Numbers []string `json:"numbers" binding:"required"`
}

// FromImportStatus maps the workflow status to its response body.
func FromImportStatus(s model.ImportStatus) ImportStatusResponse {
	candidates := s.Candidates
	if candidates == nil {
		candidates = []string{}
	}
	return ImportStatusResponse{
		Phase:      string(s.Phase),
		Candidates: candidates,
		Message:    s.Message,
		UpdatedAt:  s.UpdatedAt,
	}
}
