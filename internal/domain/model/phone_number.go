package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PhoneNumber is a tracked phone number with its usage and loyalty metadata.
type PhoneNumber struct {
	ID             uuid.UUID
	Number         string
	HasRedeemValue bool
	LastUsed       *time.Time
	LastTried      *time.Time
	Name           *string
	AmountSpent    float64
	NumberOfPoints int
}

// wirePhoneNumber mirrors the JSON schema shared by the service and the local cache.
type wirePhoneNumber struct {
	ID             uuid.UUID  `json:"id"`
	Number         string     `json:"number"`
	HasRedeemValue bool       `json:"has_redeem_value"`
	LastUsed       *Timestamp `json:"last_used,omitempty"`
	LastTried      *Timestamp `json:"last_tried,omitempty"`
	Name           *string    `json:"name,omitempty"`
	AmountSpent    float64    `json:"amount_spent"`
	NumberOfPoints int        `json:"number_of_points"`
}

// MarshalJSON encodes the record using the external snake_case schema.
func (p PhoneNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(wirePhoneNumber{
		ID:             p.ID,
		Number:         p.Number,
		HasRedeemValue: p.HasRedeemValue,
		LastUsed:       timestampFrom(p.LastUsed),
		LastTried:      timestampFrom(p.LastTried),
		Name:           p.Name,
		AmountSpent:    p.AmountSpent,
		NumberOfPoints: p.NumberOfPoints,
	})
}

// UnmarshalJSON decodes the external schema. A missing or null timestamp stays nil.
func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	var w wirePhoneNumber
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = PhoneNumber{
		ID:             w.ID,
		Number:         w.Number,
		HasRedeemValue: w.HasRedeemValue,
		LastUsed:       w.LastUsed.timePtr(),
		LastTried:      w.LastTried.timePtr(),
		Name:           w.Name,
		AmountSpent:    w.AmountSpent,
		NumberOfPoints: w.NumberOfPoints,
	}
	return nil
}

// Equal reports whether two records carry the same values. Timestamps compare by instant.
func (p PhoneNumber) Equal(o PhoneNumber) bool {
	return p.ID == o.ID &&
		p.Number == o.Number &&
		p.HasRedeemValue == o.HasRedeemValue &&
		equalTime(p.LastUsed, o.LastUsed) &&
		equalTime(p.LastTried, o.LastTried) &&
		equalString(p.Name, o.Name) &&
		p.AmountSpent == o.AmountSpent &&
		p.NumberOfPoints == o.NumberOfPoints
}

// DisplayName returns the label or an empty string.
func (p PhoneNumber) DisplayName() string {
	if p.Name == nil {
		return ""
	}
	return *p.Name
}

// String is used by log lines and CLI output.
func (p PhoneNumber) String() string {
	return fmt.Sprintf("%s (%s)", p.Number, p.ID)
}

// CalculatePoints derives loyalty points from spend: one point per whole unit.
// The derivation is advisory; callers decide whether to apply it.
func CalculatePoints(p PhoneNumber) int {
	return int(p.AmountSpent)
}

// Clone returns a deep copy so callers never alias engine-owned pointers.
func (p PhoneNumber) Clone() PhoneNumber {
	c := p
	if p.LastUsed != nil {
		t := *p.LastUsed
		c.LastUsed = &t
	}
	if p.LastTried != nil {
		t := *p.LastTried
		c.LastTried = &t
	}
	if p.Name != nil {
		n := *p.Name
		c.Name = &n
	}
	return c
}

// CloneAll deep-copies a collection preserving order.
func CloneAll(records []PhoneNumber) []PhoneNumber {
	out := make([]PhoneNumber, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
