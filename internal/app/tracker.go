package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/phonetrack/internal/domain/model"
)

// Collection is the reconciliation engine surface the tracker uses.
type Collection interface {
	Hydrate(ctx context.Context) error
	Refresh(ctx context.Context) error
	Snapshot(ctx context.Context) ([]model.PhoneNumber, error)
	Get(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error)
	FindByNumber(ctx context.Context, number string) (model.PhoneNumber, error)
	Add(ctx context.Context, draft model.Draft) (model.PhoneNumber, error)
	Update(ctx context.Context, record model.PhoneNumber) (model.PhoneNumber, error)
	Modify(ctx context.Context, id uuid.UUID, patch model.Patch) (model.PhoneNumber, error)
	MarkUsed(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error)
	MarkTried(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error)
	ApplyToAll(ctx context.Context, calc model.BulkCalculation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Importer is the import workflow surface the tracker uses.
type Importer interface {
	Status() model.ImportStatus
	Upload(ctx context.Context, image []byte, fileName string) (model.ImportStatus, error)
	Review(ctx context.Context) (model.ImportStatus, error)
	EditCandidates(ctx context.Context, numbers []string) (model.ImportStatus, error)
	RemoveCandidate(ctx context.Context, number string) (model.ImportStatus, error)
	Confirm(ctx context.Context) (model.ImportStatus, error)
	Reset() error
}

// Tracker exposes the collection and the import flow to the bridge API and the CLI.
type Tracker struct {
	collection Collection
	importer   Importer
}

// NewTracker builds the facade.
func NewTracker(collection Collection, importer Importer) *Tracker {
	return &Tracker{collection: collection, importer: importer}
}

// Start loads the cached collection so reads work before the first refresh.
func (t *Tracker) Start(ctx context.Context) error {
	return t.collection.Hydrate(ctx)
}

func (t *Tracker) List(ctx context.Context) ([]model.PhoneNumber, error) {
	return t.collection.Snapshot(ctx)
}

// RefreshResult is the list after a refresh attempt. SyncErr is set when the
// service could not be reached and Records is the last known-good list.
type RefreshResult struct {
	Records []model.PhoneNumber
	SyncErr error
}

// Refresh resyncs and returns the best list available.
func (t *Tracker) Refresh(ctx context.Context) (RefreshResult, error) {
	syncErr := t.collection.Refresh(ctx)
	list, err := t.collection.Snapshot(ctx)
	if err != nil {
		return RefreshResult{}, err
	}
	return RefreshResult{Records: list, SyncErr: syncErr}, nil
}

func (t *Tracker) Get(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error) {
	return t.collection.Get(ctx, id)
}

func (t *Tracker) FindByNumber(ctx context.Context, number string) (model.PhoneNumber, error) {
	return t.collection.FindByNumber(ctx, number)
}

func (t *Tracker) Add(ctx context.Context, draft model.Draft) (model.PhoneNumber, error) {
	return t.collection.Add(ctx, draft)
}

func (t *Tracker) Update(ctx context.Context, record model.PhoneNumber) (model.PhoneNumber, error) {
	return t.collection.Update(ctx, record)
}

func (t *Tracker) Modify(ctx context.Context, id uuid.UUID, patch model.Patch) (model.PhoneNumber, error) {
	return t.collection.Modify(ctx, id, patch)
}

func (t *Tracker) MarkUsed(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error) {
	return t.collection.MarkUsed(ctx, id)
}

func (t *Tracker) MarkTried(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error) {
	return t.collection.MarkTried(ctx, id)
}

// ApplyToAll runs the bulk calculation and returns the refreshed list.
func (t *Tracker) ApplyToAll(ctx context.Context, calc model.BulkCalculation) ([]model.PhoneNumber, error) {
	if err := t.collection.ApplyToAll(ctx, calc); err != nil {
		return nil, err
	}
	return t.collection.Snapshot(ctx)
}

func (t *Tracker) Delete(ctx context.Context, id uuid.UUID) error {
	return t.collection.Delete(ctx, id)
}

func (t *Tracker) ImportStatus() model.ImportStatus {
	return t.importer.Status()
}

func (t *Tracker) UploadImage(ctx context.Context, image []byte, fileName string) (model.ImportStatus, error) {
	return t.importer.Upload(ctx, image, fileName)
}

func (t *Tracker) ReviewImport(ctx context.Context) (model.ImportStatus, error) {
	return t.importer.Review(ctx)
}

func (t *Tracker) EditCandidates(ctx context.Context, numbers []string) (model.ImportStatus, error) {
	return t.importer.EditCandidates(ctx, numbers)
}

func (t *Tracker) RemoveCandidate(ctx context.Context, number string) (model.ImportStatus, error) {
	return t.importer.RemoveCandidate(ctx, number)
}

func (t *Tracker) ConfirmImport(ctx context.Context) (model.ImportStatus, error) {
	return t.importer.Confirm(ctx)
}

// ResetImport returns the workflow to idle.
func (t *Tracker) ResetImport() (model.ImportStatus, error) {
	if err := t.importer.Reset(); err != nil {
		return t.importer.Status(), err
	}
	return t.importer.Status(), nil
}
