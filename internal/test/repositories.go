package test

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/model"
)

// PhoneNumberRemoteStub is an in-memory stand-in for the phone number service.
// Fn hooks override the default behaviour of each call.
type PhoneNumberRemoteStub struct {
	FetchAllFn func(context.Context) ([]model.PhoneNumber, error)
	CreateFn   func(context.Context, model.PhoneNumber) (model.PhoneNumber, error)
	UpdateFn   func(context.Context, uuid.UUID, model.UpdatePayload) (model.PhoneNumber, error)
	DeleteFn   func(context.Context, model.PhoneNumber) (model.DeleteResponse, error)
	ApplyFn    func(context.Context, model.BulkCalculation) error

	mu      sync.Mutex
	records []model.PhoneNumber
	calls   map[string]int
}

// NewPhoneNumberRemoteStub seeds the stub with records in server order.
func NewPhoneNumberRemoteStub(records ...model.PhoneNumber) *PhoneNumberRemoteStub {
	return &PhoneNumberRemoteStub{records: model.CloneAll(records), calls: make(map[string]int)}
}

func (s *PhoneNumberRemoteStub) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[op]++
}

// Calls returns how many times op was invoked.
func (s *PhoneNumberRemoteStub) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// TotalCalls returns the number of remote calls of any kind.
func (s *PhoneNumberRemoteStub) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// Records returns the server-side collection.
func (s *PhoneNumberRemoteStub) Records() []model.PhoneNumber {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneAll(s.records)
}

// SetRecords replaces the server-side collection.
func (s *PhoneNumberRemoteStub) SetRecords(records ...model.PhoneNumber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = model.CloneAll(records)
}

func notFound(op string) error {
	return &domainErrors.SyncError{Kind: domainErrors.KindNotFound, Op: op, Status: http.StatusNotFound, Message: "Phone number not found."}
}

func (s *PhoneNumberRemoteStub) FetchAll(ctx context.Context) ([]model.PhoneNumber, error) {
	s.record("fetch_all")
	if s.FetchAllFn != nil {
		return s.FetchAllFn(ctx)
	}
	return s.Records(), nil
}

func (s *PhoneNumberRemoteStub) Get(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error) {
	s.record("get")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return model.PhoneNumber{}, notFound("get")
}

func (s *PhoneNumberRemoteStub) Search(ctx context.Context, number string) (uuid.UUID, error) {
	s.record("search")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Number == number {
			return r.ID, nil
		}
	}
	return uuid.Nil, notFound("search")
}

func (s *PhoneNumberRemoteStub) Create(ctx context.Context, rec model.PhoneNumber) (model.PhoneNumber, error) {
	s.record("create")
	if s.CreateFn != nil {
		return s.CreateFn(ctx, rec)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec.Clone())
	return rec.Clone(), nil
}

func (s *PhoneNumberRemoteStub) Update(ctx context.Context, id uuid.UUID, payload model.UpdatePayload) (model.PhoneNumber, error) {
	s.record("update")
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, payload)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records[i] = ApplyPayload(r, payload)
			return s.records[i].Clone(), nil
		}
	}
	return model.PhoneNumber{}, notFound("update")
}

func (s *PhoneNumberRemoteStub) Delete(ctx context.Context, rec model.PhoneNumber) (model.DeleteResponse, error) {
	s.record("delete")
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, rec)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.Number == rec.Number {
			s.records = slices.Delete(s.records, i, i+1)
			return model.DeleteResponse{Detail: model.DeletedDetail}, nil
		}
	}
	return model.DeleteResponse{}, notFound("delete")
}

func (s *PhoneNumberRemoteStub) ApplyCalculations(ctx context.Context, calc model.BulkCalculation) error {
	s.record("bulk_calculations")
	if s.ApplyFn != nil {
		return s.ApplyFn(ctx, calc)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		s.records[i].HasRedeemValue = calc.HasRedeemValue
		s.records[i].NumberOfPoints = calc.NumberOfPoints
	}
	return nil
}

// ApplyPayload merges a partial update into rec the way the service does.
func ApplyPayload(rec model.PhoneNumber, p model.UpdatePayload) model.PhoneNumber {
	out := rec.Clone()
	data := model.Patch{
		HasRedeemValue: p.HasRedeemValue,
		Name:           p.Name,
		AmountSpent:    p.AmountSpent,
		NumberOfPoints: p.NumberOfPoints,
	}
	if p.LastUsed != nil {
		t := toTime(p.LastUsed)
		data.LastUsed = &t
	}
	if p.LastTried != nil {
		t := toTime(p.LastTried)
		data.LastTried = &t
	}
	return data.Apply(out)
}

// ExtractionRemoteStub stands in for the server-side review buffer.
type ExtractionRemoteStub struct {
	UploadFn  func(context.Context, model.UploadImageRequest) error
	ReviewFn  func(context.Context) ([]string, error)
	EditFn    func(context.Context, []string) ([]string, error)
	RemoveFn  func(context.Context, string) ([]string, error)
	ConfirmFn func(context.Context) error

	mu         sync.Mutex
	Uploads    []model.UploadImageRequest
	Candidates []string
}

func (s *ExtractionRemoteStub) UploadImage(ctx context.Context, req model.UploadImageRequest) error {
	s.mu.Lock()
	s.Uploads = append(s.Uploads, req)
	s.mu.Unlock()
	if s.UploadFn != nil {
		return s.UploadFn(ctx, req)
	}
	return nil
}

func (s *ExtractionRemoteStub) ReviewCandidates(ctx context.Context) ([]string, error) {
	if s.ReviewFn != nil {
		return s.ReviewFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.Candidates), nil
}

func (s *ExtractionRemoteStub) EditCandidates(ctx context.Context, numbers []string) ([]string, error) {
	if s.EditFn != nil {
		return s.EditFn(ctx, numbers)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Candidates = slices.Clone(numbers)
	return slices.Clone(numbers), nil
}

func (s *ExtractionRemoteStub) RemoveCandidate(ctx context.Context, number string) ([]string, error) {
	if s.RemoveFn != nil {
		return s.RemoveFn(ctx, number)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Candidates = slices.DeleteFunc(s.Candidates, func(c string) bool { return c == number })
	return slices.Clone(s.Candidates), nil
}

func (s *ExtractionRemoteStub) ConfirmCandidates(ctx context.Context) error {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx)
	}
	return nil
}

// CacheStoreStub records saves in memory.
type CacheStoreStub struct {
	mu      sync.Mutex
	Loaded  []model.PhoneNumber
	Saved   [][]model.PhoneNumber
	SaveErr error
}

func (c *CacheStoreStub) Load(context.Context) []model.PhoneNumber {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.CloneAll(c.Loaded)
}

func (c *CacheStoreStub) Save(_ context.Context, records []model.PhoneNumber) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Saved = append(c.Saved, model.CloneAll(records))
	return c.SaveErr
}

// Saves returns how many times Save was called.
func (c *CacheStoreStub) Saves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Saved)
}

// Last returns the most recently saved collection.
func (c *CacheStoreStub) Last() []model.PhoneNumber {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Saved) == 0 {
		return nil
	}
	return model.CloneAll(c.Saved[len(c.Saved)-1])
}
