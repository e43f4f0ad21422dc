package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/phonetrack/internal/domain/model"
)

// PhoneNumberRemote describes the authoritative phone number service.
type PhoneNumberRemote interface {
	FetchAll(ctx context.Context) ([]model.PhoneNumber, error)
	Get(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error)
	Search(ctx context.Context, number string) (uuid.UUID, error)
	Create(ctx context.Context, record model.PhoneNumber) (model.PhoneNumber, error)
	Update(ctx context.Context, id uuid.UUID, payload model.UpdatePayload) (model.PhoneNumber, error)
	Delete(ctx context.Context, record model.PhoneNumber) (model.DeleteResponse, error)
	ApplyCalculations(ctx context.Context, calc model.BulkCalculation) error
}
