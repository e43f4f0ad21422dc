package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/phonetrack/internal/app"
	"github.com/polkiloo/phonetrack/internal/domain/model"
)

// PhoneNumberFacade covers collection operations exposed via HTTP.
type PhoneNumberFacade interface {
	List(ctx context.Context) ([]model.PhoneNumber, error)
	Refresh(ctx context.Context) (app.RefreshResult, error)
	Get(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error)
	Add(ctx context.Context, draft model.Draft) (model.PhoneNumber, error)
	Modify(ctx context.Context, id uuid.UUID, patch model.Patch) (model.PhoneNumber, error)
	MarkUsed(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error)
	MarkTried(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error)
	ApplyToAll(ctx context.Context, calc model.BulkCalculation) ([]model.PhoneNumber, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ImportFacade covers the image import flow.
type ImportFacade interface {
	ImportStatus() model.ImportStatus
	UploadImage(ctx context.Context, image []byte, fileName string) (model.ImportStatus, error)
	ReviewImport(ctx context.Context) (model.ImportStatus, error)
	EditCandidates(ctx context.Context, numbers []string) (model.ImportStatus, error)
	RemoveCandidate(ctx context.Context, number string) (model.ImportStatus, error)
	ConfirmImport(ctx context.Context) (model.ImportStatus, error)
	ResetImport() (model.ImportStatus, error)
}

// TrackerFacade aggregates the operations used across handlers.
type TrackerFacade interface {
	PhoneNumberFacade
	ImportFacade
}

var _ TrackerFacade = (*app.Tracker)(nil)
