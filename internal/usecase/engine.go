package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/model"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
	"github.com/polkiloo/phonetrack/internal/metrics"
)

const saveTimeout = 5 * time.Second

// CacheStore persists the collection shadow.
type CacheStore interface {
	Load(ctx context.Context) []model.PhoneNumber
	Save(ctx context.Context, records []model.PhoneNumber) error
}

// state is only touched from the engine goroutine.
type state struct {
	records []model.PhoneNumber
	pending map[string]struct{}
}

func (s *state) indexOf(id uuid.UUID) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// Engine owns the in-memory collection. Every read and write runs on a single
// goroutine; remote completions are sent back to it before they touch state,
// and always look records up by id at that point.
type Engine struct {
	remote   repository.PhoneNumberRemote
	cache    CacheStore
	logger   *slog.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate

	ops       chan func(*state)
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	now   func() time.Time
	newID func() uuid.UUID
}

// NewEngine constructs the engine and starts its owner goroutine.
func NewEngine(remote repository.PhoneNumberRemote, cache CacheStore, logger *slog.Logger, m *metrics.Metrics) *Engine {
	e := &Engine{
		remote:   remote,
		cache:    cache,
		logger:   logger,
		metrics:  m,
		validate: newValidator(),
		ops:      make(chan func(*state)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		now:      time.Now,
		newID:    uuid.New,
	}
	go e.loop(&state{records: []model.PhoneNumber{}, pending: make(map[string]struct{})})
	return e
}

func (e *Engine) loop(s *state) {
	defer close(e.done)
	for {
		select {
		case op := <-e.ops:
			op(s)
		case <-e.stop:
			return
		}
	}
}

// Close stops the owner goroutine. Later calls fail with ErrClosed.
func (e *Engine) Close() {
	e.closeOnce.Do(func() { close(e.stop) })
	<-e.done
}

// exec runs fn on the owner goroutine and waits for it.
func (e *Engine) exec(ctx context.Context, fn func(*state)) error {
	finished := make(chan struct{})
	op := func(s *state) {
		defer close(finished)
		fn(s)
	}
	select {
	case e.ops <- op:
	case <-e.done:
		return domainErrors.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-finished
	return nil
}

// complete delivers a remote result to the owner. It ignores caller
// cancellation so a finished request is never dropped half way.
func (e *Engine) complete(fn func(*state)) error {
	return e.exec(context.Background(), fn)
}

// commit saves the current collection. Runs on the owner goroutine.
func (e *Engine) commit(s *state) {
	e.metrics.SetCollectionSize(len(s.records))
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := e.cache.Save(ctx, model.CloneAll(s.records)); err != nil {
		e.logger.Warn("cache save failed", slog.String("error", err.Error()))
	}
}

// Hydrate replaces the collection with the cached copy without saving.
func (e *Engine) Hydrate(ctx context.Context) error {
	records := e.cache.Load(ctx)
	return e.exec(ctx, func(s *state) {
		s.records = records
		e.metrics.SetCollectionSize(len(records))
		e.logger.Info("collection hydrated from cache", slog.Int("records", len(records)))
	})
}

// Refresh replaces the collection with the service's list, in server order.
// On failure the collection is left alone.
func (e *Engine) Refresh(ctx context.Context) error {
	records, err := e.remote.FetchAll(ctx)
	if err != nil {
		e.logger.Warn("refresh failed", slog.String("error", err.Error()))
		return fmt.Errorf("refresh: %w", err)
	}
	return e.complete(func(s *state) {
		s.records = model.CloneAll(records)
		e.commit(s)
		e.logger.Debug("collection refreshed", slog.Int("records", len(records)))
	})
}

// Snapshot returns a copy of the collection.
func (e *Engine) Snapshot(ctx context.Context) ([]model.PhoneNumber, error) {
	var out []model.PhoneNumber
	err := e.exec(ctx, func(s *state) {
		out = model.CloneAll(s.records)
	})
	return out, err
}

// Get returns one record by id.
func (e *Engine) Get(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error) {
	var (
		out   model.PhoneNumber
		found bool
	)
	if err := e.exec(ctx, func(s *state) {
		if i := s.indexOf(id); i >= 0 {
			out, found = s.records[i].Clone(), true
		}
	}); err != nil {
		return model.PhoneNumber{}, err
	}
	if !found {
		return model.PhoneNumber{}, domainErrors.ErrNotFound
	}
	return out, nil
}

// FindByNumber returns the record whose number matches, ignoring formatting.
func (e *Engine) FindByNumber(ctx context.Context, number string) (model.PhoneNumber, error) {
	key := NormalizeNumber(number)
	var (
		out   model.PhoneNumber
		found bool
	)
	if err := e.exec(ctx, func(s *state) {
		for _, r := range s.records {
			if NormalizeNumber(r.Number) == key {
				out, found = r.Clone(), true
				return
			}
		}
	}); err != nil {
		return model.PhoneNumber{}, err
	}
	if !found {
		return model.PhoneNumber{}, domainErrors.ErrNotFound
	}
	return out, nil
}

// Lookup asks the service for the id of number.
func (e *Engine) Lookup(ctx context.Context, number string) (uuid.UUID, error) {
	return e.remote.Search(ctx, number)
}

// Add validates the draft, rejects duplicates without contacting the service,
// creates the record remotely and adopts the server copy.
func (e *Engine) Add(ctx context.Context, draft model.Draft) (model.PhoneNumber, error) {
	draft, err := validateDraft(e.validate, draft)
	if err != nil {
		return model.PhoneNumber{}, err
	}

	key := NormalizeNumber(draft.Number)
	var dup bool
	if err := e.exec(ctx, func(s *state) {
		if _, ok := s.pending[key]; ok {
			dup = true
			return
		}
		for _, r := range s.records {
			if NormalizeNumber(r.Number) == key {
				dup = true
				return
			}
		}
		s.pending[key] = struct{}{}
	}); err != nil {
		return model.PhoneNumber{}, err
	}
	if dup {
		return model.PhoneNumber{}, &domainErrors.DuplicateError{Number: draft.Number}
	}

	created, remoteErr := e.remote.Create(ctx, draft.NewRecord(e.newID()))
	if err := e.complete(func(s *state) {
		delete(s.pending, key)
		if remoteErr != nil {
			return
		}
		if i := s.indexOf(created.ID); i >= 0 {
			s.records[i] = created.Clone()
		} else {
			s.records = append(s.records, created.Clone())
		}
		e.commit(s)
	}); err != nil {
		return model.PhoneNumber{}, err
	}
	if remoteErr != nil {
		e.logger.Warn("create failed", slog.String("number", draft.Number), slog.String("error", remoteErr.Error()))
		return model.PhoneNumber{}, fmt.Errorf("add phone number: %w", remoteErr)
	}
	e.logger.Info("phone number added", slog.String("id", created.ID.String()))
	return created, nil
}

// Update pushes the full mutable state of record to the service.
func (e *Engine) Update(ctx context.Context, record model.PhoneNumber) (model.PhoneNumber, error) {
	if _, err := e.Get(ctx, record.ID); err != nil {
		return model.PhoneNumber{}, err
	}
	return e.push(ctx, record)
}

// Modify applies patch to the current copy of the record and pushes it.
func (e *Engine) Modify(ctx context.Context, id uuid.UUID, patch model.Patch) (model.PhoneNumber, error) {
	current, err := e.Get(ctx, id)
	if err != nil {
		return model.PhoneNumber{}, err
	}
	if patch.Empty() {
		return current, nil
	}
	return e.push(ctx, patch.Apply(current))
}

// push sends an update and applies the server copy if the record still exists.
// A record deleted meanwhile yields ErrNotFound whatever the update outcome.
// On failure the collection is untouched and the last known-good copy is returned.
func (e *Engine) push(ctx context.Context, desired model.PhoneNumber) (model.PhoneNumber, error) {
	updated, remoteErr := e.remote.Update(ctx, desired.ID, model.UpdatePayloadFor(desired))

	var (
		current model.PhoneNumber
		present bool
	)
	if err := e.complete(func(s *state) {
		i := s.indexOf(desired.ID)
		if i < 0 {
			return
		}
		present = true
		if remoteErr == nil {
			s.records[i] = updated.Clone()
			e.commit(s)
		}
		current = s.records[i].Clone()
	}); err != nil {
		return model.PhoneNumber{}, err
	}

	if !present {
		e.logger.Info("update completed after delete, ignoring", slog.String("id", desired.ID.String()))
		return model.PhoneNumber{}, domainErrors.ErrNotFound
	}
	if remoteErr != nil {
		e.logger.Warn("update failed", slog.String("id", desired.ID.String()), slog.String("error", remoteErr.Error()))
		return current, fmt.Errorf("update phone number: %w", remoteErr)
	}
	return current, nil
}

// SetRedeemValue toggles redemption eligibility.
func (e *Engine) SetRedeemValue(ctx context.Context, id uuid.UUID, redeem bool) (model.PhoneNumber, error) {
	return e.Modify(ctx, id, model.Patch{HasRedeemValue: &redeem})
}

// SetAmountSpent records spend and derives points from it.
func (e *Engine) SetAmountSpent(ctx context.Context, id uuid.UUID, amount float64) (model.PhoneNumber, error) {
	if amount < 0 {
		return model.PhoneNumber{}, domainErrors.ErrInvalidAmount
	}
	return e.Modify(ctx, id, model.Patch{AmountSpent: &amount, DerivePoints: true})
}

// SetPoints sets points directly, bypassing derivation.
func (e *Engine) SetPoints(ctx context.Context, id uuid.UUID, points int) (model.PhoneNumber, error) {
	if points < 0 {
		return model.PhoneNumber{}, domainErrors.ErrInvalidAmount
	}
	return e.Modify(ctx, id, model.Patch{NumberOfPoints: &points})
}

// SetName relabels a record.
func (e *Engine) SetName(ctx context.Context, id uuid.UUID, name string) (model.PhoneNumber, error) {
	return e.Modify(ctx, id, model.Patch{Name: &name})
}

// MarkUsed stamps last_used with the current time.
func (e *Engine) MarkUsed(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error) {
	now := e.now().UTC()
	return e.Modify(ctx, id, model.Patch{LastUsed: &now})
}

// MarkTried stamps last_tried with the current time.
func (e *Engine) MarkTried(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error) {
	now := e.now().UTC()
	return e.Modify(ctx, id, model.Patch{LastTried: &now})
}

// ApplyToAll sets the redeem flag and points on every record, then resyncs.
func (e *Engine) ApplyToAll(ctx context.Context, calc model.BulkCalculation) error {
	if calc.NumberOfPoints < 0 {
		return domainErrors.ErrInvalidAmount
	}
	if err := e.remote.ApplyCalculations(ctx, calc); err != nil {
		e.logger.Warn("bulk calculations failed", slog.String("error", err.Error()))
		return fmt.Errorf("apply calculations: %w", err)
	}
	return e.Refresh(ctx)
}

// Delete removes a record remotely. The local copy is dropped only when the
// service answers with the exact confirmation detail.
func (e *Engine) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := e.Get(ctx, id)
	if err != nil {
		return err
	}

	resp, err := e.remote.Delete(ctx, record)
	if err != nil {
		e.logger.Warn("delete failed", slog.String("id", id.String()), slog.String("error", err.Error()))
		return fmt.Errorf("delete phone number: %w", err)
	}
	if !resp.Confirmed() {
		e.logger.Warn("delete not confirmed", slog.String("id", id.String()), slog.String("detail", resp.Detail))
		return &domainErrors.NotConfirmedError{Detail: resp.Detail}
	}

	if err := e.complete(func(s *state) {
		if i := s.indexOf(id); i >= 0 {
			s.records = append(s.records[:i], s.records[i+1:]...)
			e.commit(s)
		}
	}); err != nil {
		return err
	}
	e.logger.Info("phone number deleted", slog.String("id", id.String()))
	return nil
}

// IsUserError reports whether err came from input the user can fix.
func IsUserError(err error) bool {
	var dup *domainErrors.DuplicateError
	return errors.As(err, &dup) ||
		errors.Is(err, domainErrors.ErrInvalidDraft) ||
		errors.Is(err, domainErrors.ErrInvalidAmount) ||
		domainErrors.IsKind(err, domainErrors.KindValidation)
}
