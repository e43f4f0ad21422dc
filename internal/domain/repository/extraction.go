package repository

import (
	"context"

	"github.com/polkiloo/phonetrack/internal/domain/model"
)

// ExtractionRemote is the server-side image extraction and review buffer.
type ExtractionRemote interface {
	UploadImage(ctx context.Context, req model.UploadImageRequest) error
	ReviewCandidates(ctx context.Context) ([]string, error)
	EditCandidates(ctx context.Context, numbers []string) ([]string, error)
	RemoveCandidate(ctx context.Context, number string) ([]string, error)
	ConfirmCandidates(ctx context.Context) error
}
