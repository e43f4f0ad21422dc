package usecase

import (
	"context"
	"encoding/base64"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/model"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
)

const (
	// DefaultUploadFileName is sent when the caller does not name the image.
	DefaultUploadFileName = "uploaded_image.jpeg"

	msgUploading      = "Uploading image..."
	msgReviewing      = "Fetching numbers for review..."
	msgReady          = "Review the extracted numbers."
	msgNothingToShow  = "No numbers were found in the image."
	msgReviewFailed   = "Failed to fetch numbers for review: "
	msgUploadFailed   = "Failed to upload image: "
	msgConfirming     = "Confirming numbers..."
	msgConfirmed      = "Phone numbers confirmed and added."
	msgConfirmFailed  = "Failed to confirm numbers. Please try again."
	msgEditFailed     = "Failed to update numbers: "
	msgResyncFailed   = " The list could not be refreshed."
	msgCandidatesSent = "Numbers updated for review."
)

// Refresher resynchronizes the collection from the service.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ImportWorkflow drives the image import flow: upload, review, confirm.
// Only one step runs at a time within a process.
type ImportWorkflow struct {
	remote   repository.ExtractionRemote
	engine   Refresher
	fileName string
	logger   *slog.Logger

	running atomic.Bool
	mu      sync.Mutex
	status  model.ImportStatus
	now     func() time.Time
}

// NewImportWorkflow builds an idle workflow.
func NewImportWorkflow(remote repository.ExtractionRemote, engine Refresher, fileName string, logger *slog.Logger) *ImportWorkflow {
	if fileName == "" {
		fileName = DefaultUploadFileName
	}
	w := &ImportWorkflow{remote: remote, engine: engine, fileName: fileName, logger: logger, now: time.Now}
	w.status = model.ImportStatus{Phase: model.ImportPhaseIdle, Candidates: []string{}, UpdatedAt: w.now().UTC()}
	return w
}

// Status returns a copy of the current import state.
func (w *ImportWorkflow) Status() model.ImportStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.status
	out.Candidates = slices.Clone(w.status.Candidates)
	if out.Candidates == nil {
		out.Candidates = []string{}
	}
	return out
}

func (w *ImportWorkflow) set(phase model.ImportPhase, candidates []string, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status.Phase = phase
	if candidates != nil {
		w.status.Candidates = slices.Clone(candidates)
	}
	w.status.Message = message
	w.status.UpdatedAt = w.now().UTC()
}

func (w *ImportWorkflow) begin() error {
	if !w.running.CompareAndSwap(false, true) {
		return domainErrors.ErrImportInProgress
	}
	return nil
}

func (w *ImportWorkflow) end() { w.running.Store(false) }

// Upload sends the image for extraction and, on success, fetches the
// candidates for review.
func (w *ImportWorkflow) Upload(ctx context.Context, image []byte, fileName string) (model.ImportStatus, error) {
	if len(image) == 0 {
		return w.Status(), domainErrors.ErrEmptyImage
	}
	if err := w.begin(); err != nil {
		return w.Status(), err
	}
	defer w.end()

	if fileName == "" {
		fileName = w.fileName
	}
	w.set(model.ImportPhaseUploading, []string{}, msgUploading)

	req := model.UploadImageRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
		FileName:    fileName,
	}
	if err := w.remote.UploadImage(ctx, req); err != nil {
		w.logger.Warn("image upload failed", slog.String("file_name", fileName), slog.String("error", err.Error()))
		w.set(model.ImportPhaseFailed, nil, msgUploadFailed+domainErrors.UserMessage(err))
		return w.Status(), err
	}
	w.logger.Info("image uploaded", slog.String("file_name", fileName), slog.Int("bytes", len(image)))

	w.review(ctx)
	return w.Status(), nil
}

// Review refetches the candidates. A failed fetch leaves an empty list and
// the reason in the status message.
func (w *ImportWorkflow) Review(ctx context.Context) (model.ImportStatus, error) {
	if err := w.begin(); err != nil {
		return w.Status(), err
	}
	defer w.end()

	w.review(ctx)
	return w.Status(), nil
}

func (w *ImportWorkflow) review(ctx context.Context) {
	w.set(model.ImportPhaseReviewing, nil, msgReviewing)

	numbers, err := w.remote.ReviewCandidates(ctx)
	if err != nil {
		w.logger.Warn("review fetch failed", slog.String("error", err.Error()))
		w.set(model.ImportPhaseReady, []string{}, msgReviewFailed+domainErrors.UserMessage(err))
		return
	}
	message := msgReady
	if len(numbers) == 0 {
		numbers, message = []string{}, msgNothingToShow
	}
	w.set(model.ImportPhaseReady, numbers, message)
}

// EditCandidates replaces the review buffer with numbers.
func (w *ImportWorkflow) EditCandidates(ctx context.Context, numbers []string) (model.ImportStatus, error) {
	if err := w.begin(); err != nil {
		return w.Status(), err
	}
	defer w.end()

	updated, err := w.remote.EditCandidates(ctx, numbers)
	if err != nil {
		w.logger.Warn("edit candidates failed", slog.String("error", err.Error()))
		w.set(w.Status().Phase, nil, msgEditFailed+domainErrors.UserMessage(err))
		return w.Status(), err
	}
	w.set(model.ImportPhaseReady, updated, msgCandidatesSent)
	return w.Status(), nil
}

// RemoveCandidate drops one number from the review buffer and adopts the
// list the service reports back.
func (w *ImportWorkflow) RemoveCandidate(ctx context.Context, number string) (model.ImportStatus, error) {
	if err := w.begin(); err != nil {
		return w.Status(), err
	}
	defer w.end()

	remaining, err := w.remote.RemoveCandidate(ctx, number)
	if err != nil {
		w.logger.Warn("remove candidate failed", slog.String("number", number), slog.String("error", err.Error()))
		w.set(w.Status().Phase, nil, msgEditFailed+domainErrors.UserMessage(err))
		return w.Status(), err
	}
	if remaining == nil {
		remaining = []string{}
	}
	w.set(model.ImportPhaseReady, remaining, msgCandidatesSent)
	return w.Status(), nil
}

// Confirm commits the reviewed numbers and resyncs the collection.
func (w *ImportWorkflow) Confirm(ctx context.Context) (model.ImportStatus, error) {
	if err := w.begin(); err != nil {
		return w.Status(), err
	}
	defer w.end()

	w.set(model.ImportPhaseConfirming, nil, msgConfirming)
	if err := w.remote.ConfirmCandidates(ctx); err != nil {
		w.logger.Warn("confirm failed", slog.String("error", err.Error()))
		w.set(model.ImportPhaseFailed, nil, msgConfirmFailed)
		return w.Status(), err
	}

	message := msgConfirmed
	if err := w.engine.Refresh(ctx); err != nil {
		message += msgResyncFailed
	}
	w.set(model.ImportPhaseConfirmed, []string{}, message)
	w.logger.Info("import confirmed")
	return w.Status(), nil
}

// Reset returns the workflow to idle.
func (w *ImportWorkflow) Reset() error {
	if err := w.begin(); err != nil {
		return err
	}
	defer w.end()
	w.set(model.ImportPhaseIdle, []string{}, "")
	return nil
}
