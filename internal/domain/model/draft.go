package model

import (
	"time"

	"github.com/google/uuid"
)

// Draft holds add-form input before the service assigns the canonical record.
type Draft struct {
	Number         string  `validate:"required,max=32"`
	HasRedeemValue bool
	Name           *string `validate:"omitempty,max=128"`
}

// NewRecord builds the full create payload with a client-generated id and zeroed counters.
func (d Draft) NewRecord(id uuid.UUID) PhoneNumber {
	return PhoneNumber{
		ID:             id,
		Number:         d.Number,
		HasRedeemValue: d.HasRedeemValue,
		Name:           d.Name,
	}
}

// Patch lists field edits for a single record. Nil fields are left alone.
type Patch struct {
	HasRedeemValue *bool
	LastUsed       *time.Time
	LastTried      *time.Time
	Name           *string
	AmountSpent    *float64
	NumberOfPoints *int
	// DerivePoints recomputes NumberOfPoints from AmountSpent after the other edits.
	DerivePoints bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.HasRedeemValue == nil && p.LastUsed == nil && p.LastTried == nil &&
		p.Name == nil && p.AmountSpent == nil && p.NumberOfPoints == nil && !p.DerivePoints
}

// Apply returns a copy of rec with the patch applied. Values are absolute so
// applying the same patch twice gives the same record.
func (p Patch) Apply(rec PhoneNumber) PhoneNumber {
	out := rec.Clone()
	if p.HasRedeemValue != nil {
		out.HasRedeemValue = *p.HasRedeemValue
	}
	if p.LastUsed != nil {
		t := p.LastUsed.UTC()
		out.LastUsed = &t
	}
	if p.LastTried != nil {
		t := p.LastTried.UTC()
		out.LastTried = &t
	}
	if p.Name != nil {
		n := *p.Name
		out.Name = &n
	}
	if p.AmountSpent != nil {
		out.AmountSpent = *p.AmountSpent
	}
	if p.NumberOfPoints != nil {
		out.NumberOfPoints = *p.NumberOfPoints
	}
	if p.DerivePoints {
		out.NumberOfPoints = CalculatePoints(out)
	}
	return out
}

// UpdatePayload is the partial-update body sent with PUT. It carries only mutable fields.
type UpdatePayload struct {
	HasRedeemValue *bool      `json:"has_redeem_value,omitempty"`
	LastUsed       *Timestamp `json:"last_used,omitempty"`
	LastTried      *Timestamp `json:"last_tried,omitempty"`
	Name           *string    `json:"name,omitempty"`
	AmountSpent    *float64   `json:"amount_spent,omitempty"`
	NumberOfPoints *int       `json:"number_of_points,omitempty"`
}

// UpdatePayloadFor builds the PUT body for a record. The redeem flag, amount and
// points are always present; absent timestamps and name are omitted.
func UpdatePayloadFor(rec PhoneNumber) UpdatePayload {
	redeem := rec.HasRedeemValue
	amount := rec.AmountSpent
	points := rec.NumberOfPoints
	return UpdatePayload{
		HasRedeemValue: &redeem,
		LastUsed:       timestampFrom(rec.LastUsed),
		LastTried:      timestampFrom(rec.LastTried),
		Name:           rec.Name,
		AmountSpent:    &amount,
		NumberOfPoints: &points,
	}
}

// DeletedDetail is the exact confirmation the service returns for a successful delete.
const DeletedDetail = "Phone number deleted."

// DeleteResponse is the delete confirmation payload.
type DeleteResponse struct {
	Detail string `json:"detail"`
}

// Confirmed reports whether the payload carries the success sentinel.
func (r DeleteResponse) Confirmed() bool {
	return r.Detail == DeletedDetail
}
