package dto

import (
	"time"

	"github.com/polkiloo/phonetrack/internal/domain/model"
)

// CreateRequest is the add-form payload.
type CreateRequest struct {
	Number         string  `json:"number" binding:"required"`
	HasRedeemValue bool    `json:"has_redeem_value"`
	Name           *string `json:"name"`
}

// Draft converts the request into a domain draft.
func (r CreateRequest) Draft() model.Draft {
	return model.Draft{Number: r.Number, HasRedeemValue: r.HasRedeemValue, Name: r.Name}
}

// PatchRequest lists field edits. Omitted fields stay as they are.
// DerivePoints recomputes points from the amount spent.
type PatchRequest struct {
	HasRedeemValue *bool      `json:"has_redeem_value"`
	LastUsed       *time.Time `json:"last_used"`
	LastTried      *time.Time `json:"last_tried"`
	Name           *string    `json:"name"`
	AmountSpent    *float64   `json:"amount_spent" binding:"omitempty,gte=0"`
	NumberOfPoints *int       `json:"number_of_points" binding:"omitempty,gte=0"`
	DerivePoints   bool       `json:"derive_points"`
}

// Patch converts the request into a domain patch.
func (r PatchRequest) Patch() model.Patch {
	return model.Patch{
		HasRedeemValue: r.HasRedeemValue,
		LastUsed:       r.LastUsed,
		LastTried:      r.LastTried,
		Name:           r.Name,
		AmountSpent:    r.AmountSpent,
		NumberOfPoints: r.NumberOfPoints,
		DerivePoints:   r.DerivePoints,
	}
}

// BulkRequest applies the same redeem flag and points to every record.
type BulkRequest struct {
	HasRedeemValue bool `json:"has_redeem_value"`
	NumberOfPoints int  `json:"number_of_points" binding:"gte=0"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
